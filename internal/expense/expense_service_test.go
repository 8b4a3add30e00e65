package expense_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-expense/internal/company"
	"go-expense/internal/expense"
	expenseerrors "go-expense/internal/expense/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeExpenseRepository struct {
	withTxFn             func(tx *sql.Tx) expense.Repository
	createFn             func(ctx context.Context, e *expense.Expense) error
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]expense.Expense, error)
	findAllByCreatorFn   func(ctx context.Context, companyID, creatorID string) ([]expense.Expense, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*expense.Expense, error)
	updateFn             func(ctx context.Context, e *expense.Expense) error
	deleteFn             func(ctx context.Context, companyID, id string) error
}

func (f *fakeExpenseRepository) WithTx(tx *sql.Tx) expense.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeExpenseRepository) FindAllByCompany(ctx context.Context, companyID string) ([]expense.Expense, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeExpenseRepository) FindAllByCreator(ctx context.Context, companyID, creatorID string) ([]expense.Expense, error) {
	if f.findAllByCreatorFn != nil {
		return f.findAllByCreatorFn(ctx, companyID, creatorID)
	}
	return nil, nil
}

func (f *fakeExpenseRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*expense.Expense, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, e)
	}
	return nil
}

func (f *fakeExpenseRepository) Delete(ctx context.Context, companyID, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, companyID, id)
	}
	return nil
}

func (f *fakeExpenseRepository) MarkSubmitted(ctx context.Context, companyID, id, status string, step int, submittedAt time.Time) (bool, error) {
	return true, nil
}

func (f *fakeExpenseRepository) FinalizeStatus(ctx context.Context, companyID, id, status string) (bool, error) {
	return true, nil
}

func (f *fakeExpenseRepository) SetCurrentStep(ctx context.Context, companyID, id string, step int) error {
	return nil
}

type fakeCounterRepository struct {
	getNextValueFn func(ctx context.Context, companyID, counterType string) (int64, error)
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	if f.getNextValueFn != nil {
		return f.getNextValueFn(ctx, companyID, counterType)
	}
	return 1, nil
}

type fakeCompanyRepository struct {
	findByIDFn func(ctx context.Context, id string) (*company.Company, error)
}

func (f *fakeCompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return &company.Company{DefaultCurrency: "USD"}, nil
}

type expenseServiceDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	service     expense.Service
	repo        *fakeExpenseRepository
	counterRepo *fakeCounterRepository
	companyRepo *fakeCompanyRepository
}

func setupExpenseServiceTest(t *testing.T) *expenseServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeExpenseRepository{}
	counterRepo := &fakeCounterRepository{}
	companyRepo := &fakeCompanyRepository{}
	svc := expense.NewService(db, repo, counterRepo, companyRepo)

	return &expenseServiceDeps{
		db:          db,
		sqlMock:     sqlMock,
		service:     svc,
		repo:        repo,
		counterRepo: counterRepo,
		companyRepo: companyRepo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestExpenseService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	validReq := expense.CreateExpenseRequest{
		Description: "Client dinner",
		Category:    "MEALS",
		AmountCents: 8750,
		Currency:    "usd",
		ExpenseDate: "2026-08-20",
	}

	t.Run("success", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.counterRepo.getNextValueFn = func(ctx context.Context, cid, counterType string) (int64, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, "expense_number", counterType)
			return 42, nil
		}
		deps.repo.createFn = func(ctx context.Context, e *expense.Expense) error {
			assert.Equal(t, "EXP-000042", e.ExpenseNumber)
			assert.Equal(t, expense.StatusDraft, e.Status)
			assert.Equal(t, "USD", e.Currency)
			assert.Equal(t, actorID, e.CreatedBy.String())
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID, actorID, validReq)

		assert.NoError(t, err)
		assert.Equal(t, "EXP-000042", resp.ExpenseNumber)
		assert.Equal(t, expense.StatusDraft, resp.Status)
		assert.Equal(t, "2026-08-20", resp.ExpenseDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success currency falls back to company default", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.companyRepo.findByIDFn = func(ctx context.Context, id string) (*company.Company, error) {
			assert.Equal(t, companyID, id)
			return &company.Company{DefaultCurrency: "IDR"}, nil
		}
		deps.repo.createFn = func(ctx context.Context, e *expense.Expense) error {
			assert.Equal(t, "IDR", e.Currency)
			return nil
		}

		req := validReq
		req.Currency = ""
		resp, err := deps.service.Create(ctx, companyID, actorID, req)

		assert.NoError(t, err)
		assert.Equal(t, "IDR", resp.Currency)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid amount", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		req := validReq
		req.AmountCents = 0
		_, err := deps.service.Create(ctx, companyID, actorID, req)

		assert.ErrorIs(t, err, expenseerrors.ErrInvalidAmount)
	})

	t.Run("negative invalid date format", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		req := validReq
		req.ExpenseDate = "20/08/2026"
		_, err := deps.service.Create(ctx, companyID, actorID, req)

		assert.ErrorIs(t, err, expenseerrors.ErrInvalidDateFormat)
	})

	t.Run("negative invalid company id", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, "not-a-uuid", actorID, validReq)

		assert.ErrorIs(t, err, expenseerrors.ErrInvalidCompanyID)
	})
}

func TestExpenseService_Update(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	actorID := uuid.New()
	expenseID := uuid.New()

	existing := func(status string) *expense.Expense {
		return &expense.Expense{
			ID:          expenseID,
			CompanyID:   companyID,
			CreatedBy:   actorID,
			Description: "Old description",
			AmountCents: 1000,
			Currency:    "USD",
			ExpenseDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Status:      status,
		}
	}

	req := expense.UpdateExpenseRequest{
		Description: "New description",
		Category:    "TRAVEL",
		AmountCents: 2500,
		ExpenseDate: "2026-08-21",
	}

	t.Run("success", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*expense.Expense, error) {
			return existing(expense.StatusDraft), nil
		}
		deps.repo.updateFn = func(ctx context.Context, e *expense.Expense) error {
			assert.Equal(t, "New description", e.Description)
			assert.Equal(t, int64(2500), e.AmountCents)
			// currency kosong pada request tidak menimpa nilai lama
			assert.Equal(t, "USD", e.Currency)
			return nil
		}

		resp, err := deps.service.Update(ctx, companyID.String(), actorID.String(), expenseID.String(), req)

		assert.NoError(t, err)
		assert.Equal(t, "New description", resp.Description)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not owner", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*expense.Expense, error) {
			return existing(expense.StatusDraft), nil
		}

		_, err := deps.service.Update(ctx, companyID.String(), uuid.New().String(), expenseID.String(), req)

		assert.ErrorIs(t, err, expenseerrors.ErrNotExpenseOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not draft", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*expense.Expense, error) {
			return existing(expense.StatusPending), nil
		}

		_, err := deps.service.Update(ctx, companyID.String(), actorID.String(), expenseID.String(), req)

		assert.ErrorIs(t, err, expenseerrors.ErrOnlyDraftEditable)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*expense.Expense, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Update(ctx, companyID.String(), actorID.String(), expenseID.String(), req)

		assert.ErrorIs(t, err, expenseerrors.ErrExpenseNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestExpenseService_Cancel(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	actorID := uuid.New()
	expenseID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*expense.Expense, error) {
			return &expense.Expense{
				ID:        expenseID,
				CompanyID: companyID,
				CreatedBy: actorID,
				Status:    expense.StatusDraft,
			}, nil
		}
		deps.repo.updateFn = func(ctx context.Context, e *expense.Expense) error {
			assert.Equal(t, expense.StatusCancelled, e.Status)
			return nil
		}

		resp, err := deps.service.Cancel(ctx, companyID.String(), actorID.String(), expenseID.String())

		assert.NoError(t, err)
		assert.Equal(t, expense.StatusCancelled, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative submitted expense cannot be cancelled", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*expense.Expense, error) {
			return &expense.Expense{
				ID:        expenseID,
				CompanyID: companyID,
				CreatedBy: actorID,
				Status:    expense.StatusPending,
			}, nil
		}

		_, err := deps.service.Cancel(ctx, companyID.String(), actorID.String(), expenseID.String())

		assert.ErrorIs(t, err, expenseerrors.ErrOnlyDraftEditable)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestExpenseService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	actorID := uuid.New()
	expenseID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*expense.Expense, error) {
			return &expense.Expense{
				ID:        expenseID,
				CompanyID: companyID,
				CreatedBy: actorID,
				Status:    expense.StatusDraft,
			}, nil
		}

		deleted := false
		deps.repo.deleteFn = func(ctx context.Context, cid, id string) error {
			deleted = true
			assert.Equal(t, expenseID.String(), id)
			return nil
		}

		err := deps.service.Delete(ctx, companyID.String(), actorID.String(), expenseID.String())

		assert.NoError(t, err)
		assert.True(t, deleted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative not owner", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*expense.Expense, error) {
			return &expense.Expense{
				ID:        expenseID,
				CompanyID: companyID,
				CreatedBy: uuid.New(),
				Status:    expense.StatusDraft,
			}, nil
		}

		err := deps.service.Delete(ctx, companyID.String(), actorID.String(), expenseID.String())

		assert.ErrorIs(t, err, expenseerrors.ErrNotExpenseOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestExpenseService_GetMine(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupExpenseServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllByCreatorFn = func(ctx context.Context, cid, creatorID string) ([]expense.Expense, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, actorID, creatorID)
			return []expense.Expense{
				{ID: uuid.New(), ExpenseNumber: "EXP-000001", Status: expense.StatusDraft},
				{ID: uuid.New(), ExpenseNumber: "EXP-000002", Status: expense.StatusPending},
			}, nil
		}

		resp, err := deps.service.GetMine(ctx, companyID, actorID)

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
		assert.Equal(t, "EXP-000001", resp[0].ExpenseNumber)
	})
}
