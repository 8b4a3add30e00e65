package rbac

import "gorm.io/gorm"

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetUserRoles(companyID string) ([]UserRoleRow, error)
	GetRolePermissions(companyID string) ([]RolePermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type UserRoleRow struct {
	UserID string
	Role   string
}

type RolePermissionRow struct {
	Role     string
	Resource string
	Action   string
}

func (r *repository) GetUserRoles(companyID string) ([]UserRoleRow, error) {
	var result []UserRoleRow

	err := r.db.
		Table("users").
		Select("users.id AS user_id, users.role").
		Where("users.company_id = ?", companyID).
		Where("users.is_active = true").
		Where("users.deleted_at IS NULL").
		Scan(&result).Error

	return result, err
}

func (r *repository) GetRolePermissions(companyID string) ([]RolePermissionRow, error) {
	var result []RolePermissionRow

	err := r.db.
		Table("role_permissions").
		Select("role_permissions.role, role_permissions.resource, role_permissions.action").
		Where("role_permissions.company_id = ?", companyID).
		Scan(&result).Error

	return result, err
}
