package notification

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index:idx_notifications_company_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_notifications_company_user"`
	Title     string    `gorm:"column:title;type:varchar(200);not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Link      string    `gorm:"column:link;type:varchar(300)"`
	IsRead    bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
