package approval

import (
	"context"

	"go-expense/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=assignment_repo.go -destination=mock/assignment_repo_mock.go -package=mock
type AssignmentRepository interface {
	FindAllByCompany(ctx context.Context, companyID string) ([]ApproverAssignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) FindAllByCompany(ctx context.Context, companyID string) ([]ApproverAssignment, error) {
	var assignments []ApproverAssignment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("sequence ASC").
		Find(&assignments).Error
	return assignments, err
}
