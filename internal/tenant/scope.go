package tenant

import "gorm.io/gorm"

// Scope membatasi query ke satu company. Semua data expense, approval,
// dan notifikasi wajib lewat scope ini supaya tidak bocor antar tenant.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
