package company

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string    `gorm:"column:name;type:varchar(200);not null;uniqueIndex"`
	DefaultCurrency string    `gorm:"column:default_currency;type:varchar(3);not null;default:'USD'"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Company) TableName() string {
	return "companies"
}
