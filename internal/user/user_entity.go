package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleFinance  = "FINANCE"
	RoleDirector = "DIRECTOR"
	RoleCFO      = "CFO"
	RoleEmployee = "EMPLOYEE"
)

type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	FullName  string    `gorm:"column:full_name;type:varchar(200);not null"`
	Role      string    `gorm:"column:role;type:varchar(50);not null;default:'EMPLOYEE';index:idx_users_company_role"`
	IsActive  bool      `gorm:"column:is_active;default:true"`

	// IsManagerApprover menandai manager yang boleh menjadi approver langsung
	IsManagerApprover bool       `gorm:"column:is_manager_approver;default:false"`
	ManagerID         *uuid.UUID `gorm:"column:manager_id;type:uuid"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}
