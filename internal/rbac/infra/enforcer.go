package infra

import "github.com/casbin/casbin/v2"

// NewEnforcer memuat model RBAC dengan domain, di mana company_id
// menjadi domain sehingga role hanya berlaku di tenant-nya sendiri.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcer(modelPath)
}
