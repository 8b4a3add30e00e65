package expense

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-expense/internal/company"
	expenseerrors "go-expense/internal/expense/errors"
	"go-expense/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const expenseNumberCounter = "expense_number"

//go:generate mockgen -source=expense_service.go -destination=mock/expense_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateExpenseRequest) (ExpenseResponse, error)
	GetAll(ctx context.Context, companyID string) ([]ExpenseResponse, error)
	GetMine(ctx context.Context, companyID, actorID string) ([]ExpenseResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ExpenseResponse, error)
	Update(ctx context.Context, companyID, actorID, id string, req UpdateExpenseRequest) (ExpenseResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (ExpenseResponse, error)
	Delete(ctx context.Context, companyID, actorID, id string) error
}

type service struct {
	db          *sql.DB
	repo        Repository
	counterRepo counter.Repository
	companyRepo company.Repository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	companyRepo company.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("expense.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("expense.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		counterRepo: counterRepo,
		companyRepo: companyRepo,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateExpenseRequest) (ExpenseResponse, error) {
	s.logger.Debug("create expense requested",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.Int64("amount_cents", req.AmountCents),
	)

	companyUUID, actorUUID, expenseDate, err := validateCreateRequest(companyID, actorID, req.AmountCents, req.ExpenseDate)
	if err != nil {
		s.logger.Warn("create expense validation failed", zap.Error(err))
		return ExpenseResponse{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		comp, err := s.companyRepo.FindByID(ctx, companyID)
		if err != nil {
			s.logger.Error("create expense company lookup failed", zap.Error(err))
			return ExpenseResponse{}, err
		}
		currency = comp.DefaultCurrency
	}

	seq, err := s.counterRepo.GetNextValue(ctx, companyID, expenseNumberCounter)
	if err != nil {
		s.logger.Error("create expense counter failed", zap.Error(err))
		return ExpenseResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create expense begin tx failed", zap.Error(err))
		return ExpenseResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e := &Expense{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		CreatedBy:     actorUUID,
		ExpenseNumber: fmt.Sprintf("EXP-%06d", seq),
		Description:   req.Description,
		Category:      req.Category,
		AmountCents:   req.AmountCents,
		Currency:      currency,
		ExpenseDate:   expenseDate,
		Status:        StatusDraft,
	}

	if err := qtx.Create(ctx, e); err != nil {
		s.logger.Error("create expense persist failed", zap.Error(err))
		return ExpenseResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create expense commit failed", zap.Error(err))
		return ExpenseResponse{}, err
	}
	s.logger.Info("create expense success",
		zap.String("expense_id", e.ID.String()),
		zap.String("expense_number", e.ExpenseNumber),
		zap.String("company_id", companyID),
	)

	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]ExpenseResponse, error) {
	expenses, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(expenses), nil
}

func (s *service) GetMine(ctx context.Context, companyID, actorID string) ([]ExpenseResponse, error) {
	expenses, err := s.repo.FindAllByCreator(ctx, companyID, actorID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(expenses), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ExpenseResponse, error) {
	e, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ExpenseResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, companyID, actorID, id string, req UpdateExpenseRequest) (ExpenseResponse, error) {
	s.logger.Debug("update expense requested",
		zap.String("expense_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	_, _, expenseDate, err := validateCreateRequest(companyID, actorID, req.AmountCents, req.ExpenseDate)
	if err != nil {
		return ExpenseResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update expense begin tx failed", zap.Error(err))
		return ExpenseResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ExpenseResponse{}, mapRepositoryError(err)
	}
	if e.CreatedBy.String() != actorID {
		return ExpenseResponse{}, expenseerrors.ErrNotExpenseOwner
	}
	if e.Status != StatusDraft {
		return ExpenseResponse{}, expenseerrors.ErrOnlyDraftEditable
	}

	e.Description = req.Description
	e.Category = req.Category
	e.AmountCents = req.AmountCents
	e.ExpenseDate = expenseDate
	if c := strings.ToUpper(strings.TrimSpace(req.Currency)); c != "" {
		e.Currency = c
	}

	if err := qtx.Update(ctx, e); err != nil {
		s.logger.Error("update expense persist failed",
			zap.String("expense_id", id),
			zap.Error(err),
		)
		return ExpenseResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update expense commit failed",
			zap.String("expense_id", id),
			zap.Error(err),
		)
		return ExpenseResponse{}, err
	}
	s.logger.Info("update expense success", zap.String("expense_id", id))

	return mapToResponse(*e), nil
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string) (ExpenseResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel expense begin tx failed", zap.Error(err))
		return ExpenseResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ExpenseResponse{}, mapRepositoryError(err)
	}
	if e.CreatedBy.String() != actorID {
		return ExpenseResponse{}, expenseerrors.ErrNotExpenseOwner
	}
	if e.Status != StatusDraft {
		return ExpenseResponse{}, expenseerrors.ErrOnlyDraftEditable
	}

	e.Status = StatusCancelled
	if err := qtx.Update(ctx, e); err != nil {
		s.logger.Error("cancel expense persist failed",
			zap.String("expense_id", id),
			zap.Error(err),
		)
		return ExpenseResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel expense commit failed",
			zap.String("expense_id", id),
			zap.Error(err),
		)
		return ExpenseResponse{}, err
	}
	s.logger.Info("cancel expense success", zap.String("expense_id", id))

	return mapToResponse(*e), nil
}

func (s *service) Delete(ctx context.Context, companyID, actorID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if e.CreatedBy.String() != actorID {
		return expenseerrors.ErrNotExpenseOwner
	}
	if e.Status != StatusDraft {
		return expenseerrors.ErrOnlyDraftEditable
	}

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		return mapRepositoryError(err)
	}
	return tx.Commit()
}

func validateCreateRequest(companyID, actorID string, amountCents int64, expenseDate string) (uuid.UUID, uuid.UUID, time.Time, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, time.Time{}, expenseerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, time.Time{}, expenseerrors.ErrInvalidActorID
	}
	if amountCents <= 0 {
		return uuid.Nil, uuid.Nil, time.Time{}, expenseerrors.ErrInvalidAmount
	}
	date, err := parseDate(expenseDate)
	if err != nil {
		return uuid.Nil, uuid.Nil, time.Time{}, err
	}
	return companyUUID, actorUUID, date, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, expenseerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(e Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:                  e.ID.String(),
		ExpenseNumber:       e.ExpenseNumber,
		Description:         e.Description,
		Category:            e.Category,
		AmountCents:         e.AmountCents,
		Currency:            e.Currency,
		ExpenseDate:         e.ExpenseDate.Format("2006-01-02"),
		Status:              e.Status,
		CurrentApprovalStep: e.CurrentApprovalStep,
		CreatedBy:           e.CreatedBy.String(),
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
	}
	if e.SubmittedAt != nil {
		v := e.SubmittedAt.Format(time.RFC3339)
		resp.SubmittedAt = &v
	}
	return resp
}

func mapToListResponse(expenses []Expense) []ExpenseResponse {
	resp := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = mapToResponse(e)
	}
	return resp
}
