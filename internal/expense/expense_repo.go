package expense

import (
	"context"
	"database/sql"
	"time"

	"go-expense/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=expense_repo.go -destination=mock/expense_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Expense) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Expense, error)
	FindAllByCreator(ctx context.Context, companyID, creatorID string) ([]Expense, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Expense, error)
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, companyID, id string) error

	// MarkSubmitted memindahkan expense DRAFT ke status hasil submit
	// (PENDING untuk chain berisi, APPROVED untuk auto-approve).
	// Mengembalikan false bila status sudah bukan DRAFT.
	MarkSubmitted(ctx context.Context, companyID, id, status string, step int, submittedAt time.Time) (bool, error)

	// FinalizeStatus memindahkan expense PENDING ke status final.
	// Mengembalikan false bila expense sudah tidak PENDING.
	FinalizeStatus(ctx context.Context, companyID, id, status string) (bool, error)

	SetCurrentStep(ctx context.Context, companyID, id string, step int) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn memilih eksekutor: transaksi milik service kalau ada, kalau tidak pool utama
func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx != nil {
		db := r.db.Session(&gorm.Session{Context: ctx, NewDB: true})
		db.Statement.ConnPool = r.tx
		return db
	}
	return r.db.WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, e *Expense) error {
	return r.conn(ctx).Create(e).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Expense, error) {
	var expenses []Expense
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("created_at DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *repository) FindAllByCreator(ctx context.Context, companyID, creatorID string) ([]Expense, error) {
	var expenses []Expense
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Expense, error) {
	var e Expense
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) Update(ctx context.Context, e *Expense) error {
	return r.conn(ctx).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Expense{}, "id = ?", id).Error
}

func (r *repository) MarkSubmitted(ctx context.Context, companyID, id, status string, step int, submittedAt time.Time) (bool, error) {
	res := r.conn(ctx).
		Model(&Expense{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Where("status = ?", StatusDraft).
		Updates(map[string]any{
			"status":                status,
			"current_approval_step": step,
			"submitted_at":          submittedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FinalizeStatus menutup expense PENDING ke status terminal.
// current_approval_step dibiarkan sebagai jejak step terakhir yang diputus.
func (r *repository) FinalizeStatus(ctx context.Context, companyID, id, status string) (bool, error) {
	res := r.conn(ctx).
		Model(&Expense{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Where("status = ?", StatusPending).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) SetCurrentStep(ctx context.Context, companyID, id string, step int) error {
	return r.conn(ctx).
		Model(&Expense{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Update("current_approval_step", step).Error
}
