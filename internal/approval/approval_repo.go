package approval

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// PendingApprovalRow adalah hasil join approval + expense untuk daftar
// pekerjaan seorang approver.
type PendingApprovalRow struct {
	ApprovalID    string
	Step          int
	ExpenseID     string
	ExpenseNumber string
	Description   string
	AmountCents   int64
	Currency      string
	ExpenseDate   time.Time
	CreatedBy     string
	CreatedAt     time.Time
}

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateBatch(ctx context.Context, approvals []Approval) error
	FindByID(ctx context.Context, id string) (*Approval, error)
	FindByExpense(ctx context.Context, expenseID string) ([]Approval, error)
	FindPendingByApprover(ctx context.Context, companyID, approverID string) ([]PendingApprovalRow, error)

	// Decide adalah compare-and-set: hanya berhasil bila approval masih
	// PENDING. Mengembalikan false saat keputusan lain sudah menang.
	Decide(ctx context.Context, id, decision string, comments *string, decidedAt time.Time) (bool, error)
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

func (r *repository) CreateBatch(ctx context.Context, approvals []Approval) error {
	if len(approvals) == 0 {
		return nil
	}
	return r.conn(ctx).Create(&approvals).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Approval, error) {
	var a Approval
	err := r.conn(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindByExpense(ctx context.Context, expenseID string) ([]Approval, error) {
	var approvals []Approval
	err := r.conn(ctx).
		Where("expense_id = ?", expenseID).
		Order("step ASC").
		Find(&approvals).Error
	return approvals, err
}

// FindPendingByApprover memuat semua baris PENDING milik approver pada
// expense yang masih berjalan, termasuk step yang belum menjadi step
// berjalan. Keputusan memang boleh masuk lebih dulu dari urutan step.
func (r *repository) FindPendingByApprover(ctx context.Context, companyID, approverID string) ([]PendingApprovalRow, error) {
	var rows []PendingApprovalRow
	err := r.conn(ctx).
		Table("approvals").
		Select(`approvals.id AS approval_id,
			approvals.step,
			expenses.id AS expense_id,
			expenses.expense_number,
			expenses.description,
			expenses.amount_cents,
			expenses.currency,
			expenses.expense_date,
			expenses.created_by,
			approvals.created_at`).
		Joins("JOIN expenses ON expenses.id = approvals.expense_id").
		Where("expenses.company_id = ?", companyID).
		Where("expenses.deleted_at IS NULL").
		Where("expenses.status = ?", "PENDING").
		Where("approvals.approver_id = ?", approverID).
		Where("approvals.decision = ?", DecisionPending).
		Order("approvals.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Decide(ctx context.Context, id, decision string, comments *string, decidedAt time.Time) (bool, error) {
	res := r.conn(ctx).
		Model(&Approval{}).
		Where("id = ?", id).
		Where("decision = ?", DecisionPending).
		Updates(map[string]any{
			"decision":   decision,
			"comments":   comments,
			"decided_at": decidedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
