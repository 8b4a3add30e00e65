package expenseerrors

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
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount_cents must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrExpenseNotFound = apperror.New(
		apperror.CodeNotFound,
		"expense not found",
		http.StatusNotFound,
	)
	ErrNotExpenseOwner = apperror.New(
		apperror.CodeForbidden,
		"only the creator can modify this expense",
		http.StatusForbidden,
	)
	ErrOnlyDraftEditable = apperror.New(
		apperror.CodeInvalidState,
		"only draft expenses can be modified",
		http.StatusConflict,
	)
	ErrExpenseNumberConflict = apperror.New(
		apperror.CodeConflict,
		"expense number already exists",
		http.StatusConflict,
	)
)
