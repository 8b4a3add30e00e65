package expense

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "DRAFT"
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// Expense adalah pengeluaran yang diajukan karyawan.
// AmountCents disimpan sebagai integer (minor unit) agar bebas masalah floating point.
type Expense struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID `gorm:"column:company_id;type:uuid;not null;index:idx_expenses_company_status"`
	CreatedBy     uuid.UUID `gorm:"column:created_by;type:uuid;not null;index"`
	ExpenseNumber string    `gorm:"column:expense_number;type:varchar(30);not null;uniqueIndex:uq_expenses_company_number"`
	Description   string    `gorm:"column:description;type:text;not null"`
	Category      string    `gorm:"column:category;type:varchar(100)"`
	AmountCents   int64     `gorm:"column:amount_cents;not null"`
	Currency      string    `gorm:"column:currency;type:varchar(3);not null"`
	ExpenseDate   time.Time `gorm:"column:expense_date;type:date;not null"`
	Status        string    `gorm:"column:status;type:varchar(20);not null;default:'DRAFT';index:idx_expenses_company_status"`

	// CurrentApprovalStep adalah step approval yang sedang menunggu keputusan.
	// 0 berarti belum disubmit atau sudah final.
	CurrentApprovalStep int        `gorm:"column:current_approval_step;not null;default:0"`
	SubmittedAt         *time.Time `gorm:"column:submitted_at"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}
