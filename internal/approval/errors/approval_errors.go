package approvalerrors

import (
	"net/http"

	"go-expense/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrExpenseNotFound = apperror.New(
		apperror.CodeNotFound,
		"expense not found",
		http.StatusNotFound,
	)
	ErrNotExpenseOwner = apperror.New(
		apperror.CodeForbidden,
		"only the creator can submit this expense",
		http.StatusForbidden,
	)
	ErrInvalidStateTransition = apperror.New(
		apperror.CodeInvalidState,
		"expense cannot be submitted from its current status",
		http.StatusConflict,
	)
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval not found",
		http.StatusNotFound,
	)
	ErrNotAssignedApprover = apperror.New(
		apperror.CodeForbidden,
		"you are not the assigned approver for this step",
		http.StatusForbidden,
	)
	ErrInvalidDecisionValue = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be APPROVED or REJECTED",
		http.StatusBadRequest,
	)
	ErrApprovalAlreadyDecided = apperror.New(
		apperror.CodeConflict,
		"this approval has already been decided",
		http.StatusConflict,
	)
	ErrExpenseNotPending = apperror.New(
		apperror.CodeInvalidState,
		"expense is no longer awaiting approval",
		http.StatusConflict,
	)
)

// ChainCreationFailed membungkus error infrastruktur saat pembuatan chain
// agar caller tetap mendapat kode yang stabil dan transaksi di-rollback utuh.
func ChainCreationFailed(err error) *apperror.AppError {
	return apperror.Wrap(
		err,
		apperror.CodeInternalError,
		"failed to create approval chain",
		http.StatusInternalServerError,
	)
}
