package approval

import (
	"time"

	"github.com/google/uuid"
)

const (
	DecisionPending  = "PENDING"
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)

const (
	RuleTypePercentage = "PERCENTAGE"
	RuleTypeSpecific   = "SPECIFIC"
	RuleTypeHybrid     = "HYBRID"
)

// ApproverAssignment adalah konfigurasi rantai approval per company.
// Resolusi approver: is_manager dulu, lalu user_id, terakhir role.
// Assignment yang tidak bisa di-resolve dilewati tanpa error.
type ApproverAssignment struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid"`
	Role      *string    `gorm:"column:role;type:varchar(50)"`
	Sequence  int        `gorm:"column:sequence;not null"`
	IsManager bool       `gorm:"column:is_manager;not null;default:false"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Approval adalah satu step keputusan pada satu expense.
// Step mengikuti sequence assignment, jadi tidak harus berurutan rapat.
type Approval struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ExpenseID  uuid.UUID  `gorm:"column:expense_id;type:uuid;not null;uniqueIndex:uq_approvals_expense_step"`
	ApproverID uuid.UUID  `gorm:"column:approver_id;type:uuid;not null;index"`
	Step       int        `gorm:"column:step;not null;uniqueIndex:uq_approvals_expense_step"`
	Decision   string     `gorm:"column:decision;type:varchar(20);not null;default:'PENDING'"`
	Comments   *string    `gorm:"column:comments;type:text"`
	DecidedAt  *time.Time `gorm:"column:decided_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// ApprovalRule adalah aturan auto-approve per company.
// Satu saja rule enabled yang terpenuhi sudah cukup (OR).
type ApprovalRule struct {
	ID                     uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID              uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	RuleType               string     `gorm:"column:rule_type;type:varchar(20);not null"`
	PercentageThreshold    *int       `gorm:"column:percentage_threshold"`
	SpecificApproverUserID *uuid.UUID `gorm:"column:specific_approver_user_id;type:uuid"`
	SpecificApproverRole   *string    `gorm:"column:specific_approver_role;type:varchar(50)"`
	Enabled                bool       `gorm:"column:enabled;not null;default:true"`
	CreatedAt              time.Time  `gorm:"column:created_at;autoCreateTime"`
}
