package approval

import (
	"context"

	"go-expense/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rule_repo.go -destination=mock/rule_repo_mock.go -package=mock
type RuleRepository interface {
	FindEnabledByCompany(ctx context.Context, companyID string) ([]ApprovalRule, error)
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) FindEnabledByCompany(ctx context.Context, companyID string) ([]ApprovalRule, error) {
	var rules []ApprovalRule
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("enabled = true").
		Order("created_at ASC").
		Find(&rules).Error
	return rules, err
}
