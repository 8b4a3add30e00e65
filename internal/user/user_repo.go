package user

import (
	"context"
	"errors"

	"go-expense/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*User, error)
	// FindFirstActiveByRole resolves role-based approver assignments.
	// Ordering is created_at ASC, id ASC so the resolved chain is reproducible
	// even when multiple active users share the role.
	FindFirstActiveByRole(ctx context.Context, companyID, role string) (*User, error)
	FindActiveByRole(ctx context.Context, companyID, role string) ([]User, error)
	RolesByIDs(ctx context.Context, companyID string, ids []string) (map[string]string, error)
	FindOptionsByCompany(ctx context.Context, companyID string) ([]User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindFirstActiveByRole(ctx context.Context, companyID, role string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("role = ?", role).
		Where("is_active = true").
		Order("created_at ASC, id ASC").
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindActiveByRole(ctx context.Context, companyID, role string) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("role = ?", role).
		Where("is_active = true").
		Order("created_at ASC, id ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) RolesByIDs(ctx context.Context, companyID string, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	type row struct {
		ID   string
		Role string
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Select("id, role").
		Scopes(tenant.Scope(companyID)).
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	roles := make(map[string]string, len(rows))
	for _, rw := range rows {
		roles[rw.ID] = rw.Role
	}
	return roles, nil
}

func (r *repository) FindOptionsByCompany(ctx context.Context, companyID string) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("is_active = true").
		Order("full_name ASC").
		Find(&users).Error
	return users, err
}
