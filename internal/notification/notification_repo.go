package notification

import (
	"context"
	"database/sql"

	"go-expense/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateBatch(ctx context.Context, notifications []Notification) error
	FindAllByUser(ctx context.Context, companyID, userID string) ([]Notification, error)
	CountUnread(ctx context.Context, companyID, userID string) (int64, error)
	MarkRead(ctx context.Context, companyID, userID, id string) (bool, error)
	MarkAllRead(ctx context.Context, companyID, userID string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn memilih eksekutor: transaksi milik service kalau ada, kalau tidak pool utama
func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx != nil {
		db := r.db.Session(&gorm.Session{Context: ctx, NewDB: true})
		db.Statement.ConnPool = r.tx
		return db
	}
	return r.db.WithContext(ctx)
}

func (r *repository) CreateBatch(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.conn(ctx).Create(&notifications).Error
}

func (r *repository) FindAllByUser(ctx context.Context, companyID, userID string) ([]Notification, error) {
	var notifications []Notification
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error
	return notifications, err
}

func (r *repository) CountUnread(ctx context.Context, companyID, userID string) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Notification{}).
		Scopes(tenant.Scope(companyID)).
		Where("user_id = ?", userID).
		Where("is_read = false").
		Count(&count).Error
	return count, err
}

func (r *repository) MarkRead(ctx context.Context, companyID, userID, id string) (bool, error) {
	res := r.conn(ctx).
		Model(&Notification{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Update("is_read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkAllRead(ctx context.Context, companyID, userID string) error {
	return r.conn(ctx).
		Model(&Notification{}).
		Scopes(tenant.Scope(companyID)).
		Where("user_id = ?", userID).
		Where("is_read = false").
		Update("is_read", true).Error
}
