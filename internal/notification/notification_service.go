package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go-expense/internal/events"
	"go-expense/internal/messaging/kafka"
	notificationerrors "go-expense/internal/notification/errors"
	"go-expense/internal/user"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const unreadCountKeyPrefix = "notifications:unread:"

func UnreadCountKey(companyID, userID string) string {
	return unreadCountKeyPrefix + companyID + ":" + userID
}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	// NotifyApprovalRequested memberi tahu approver bahwa gilirannya tiba.
	// Dipanggil setelah commit transaksi engine; kegagalan ditelan caller.
	NotifyApprovalRequested(ctx context.Context, input ApprovalRequestedInput) error
	// NotifyDecision memberi tahu pembuat expense plus admin aktif
	// (selain pembuat) bahwa expense mencapai status final.
	NotifyDecision(ctx context.Context, input DecisionInput) error

	GetAll(ctx context.Context, companyID, userID string) ([]NotificationResponse, error)
	UnreadCount(ctx context.Context, companyID, userID string) (int64, error)
	MarkRead(ctx context.Context, companyID, userID, id string) error
	MarkAllRead(ctx context.Context, companyID, userID string) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	userRepo   user.Repository
	outboxRepo kafka.OutboxRepository
	rdb        *redis.Client
	sf         *singleflight.Group
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	userRepo user.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		rdb:        rdb,
		sf:         &singleflight.Group{},
		logger:     l,
	}
}

func (s *service) NotifyApprovalRequested(ctx context.Context, input ApprovalRequestedInput) error {
	companyUUID, err := uuid.Parse(input.CompanyID)
	if err != nil {
		return err
	}
	approverUUID, err := uuid.Parse(input.ApproverID)
	if err != nil {
		return notificationerrors.ErrInvalidUserID
	}

	n := Notification{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		UserID:    approverUUID,
		Title:     "Approval needed",
		Message: fmt.Sprintf("Expense %s (%s) is waiting for your approval",
			input.ExpenseNumber, formatAmount(input.Currency, input.AmountCents)),
		Link: "/expenses/" + input.ExpenseID,
	}

	payload, err := json.Marshal(events.ApprovalRequestedEvent{
		EventType:  events.EventTypeApprovalRequested,
		RequestID:  input.RequestID,
		ExpenseID:  input.ExpenseID,
		CompanyID:  input.CompanyID,
		ApproverID: input.ApproverID,
		Step:       input.Step,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := s.persistWithOutbox(ctx, []Notification{n}, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     input.RequestID,
		AggregateType: "expense",
		AggregateID:   input.ExpenseID,
		EventType:     events.EventTypeApprovalRequested,
		Topic:         events.ApprovalLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		return err
	}

	s.invalidateUnreadCount(ctx, input.CompanyID, input.ApproverID)
	s.logger.Info("approval requested notification created",
		zap.String("expense_id", input.ExpenseID),
		zap.String("approver_id", input.ApproverID),
		zap.Int("step", input.Step),
	)
	return nil
}

func (s *service) NotifyDecision(ctx context.Context, input DecisionInput) error {
	companyUUID, err := uuid.Parse(input.CompanyID)
	if err != nil {
		return err
	}
	creatorUUID, err := uuid.Parse(input.CreatorID)
	if err != nil {
		return notificationerrors.ErrInvalidUserID
	}

	title := "Expense " + input.Decision
	message := fmt.Sprintf("Expense %s has been %s", input.ExpenseNumber, input.Decision)
	if input.Auto {
		message += " automatically"
	}
	link := "/expenses/" + input.ExpenseID

	recipients := []uuid.UUID{creatorUUID}
	admins, err := s.userRepo.FindActiveByRole(ctx, input.CompanyID, user.RoleAdmin)
	if err != nil {
		s.logger.Warn("decision notification admin lookup failed",
			zap.String("company_id", input.CompanyID),
			zap.Error(err),
		)
	} else {
		for _, admin := range admins {
			if admin.ID == creatorUUID {
				continue
			}
			recipients = append(recipients, admin.ID)
		}
	}

	notifications := make([]Notification, len(recipients))
	for i, rid := range recipients {
		notifications[i] = Notification{
			ID:        uuid.New(),
			CompanyID: companyUUID,
			UserID:    rid,
			Title:     title,
			Message:   message,
			Link:      link,
		}
	}

	payload, err := json.Marshal(events.DecisionMadeEvent{
		EventType:  events.EventTypeDecisionMade,
		RequestID:  input.RequestID,
		ExpenseID:  input.ExpenseID,
		CompanyID:  input.CompanyID,
		ApproverID: input.ActorID,
		Decision:   input.Decision,
		Auto:       input.Auto,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := s.persistWithOutbox(ctx, notifications, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     input.RequestID,
		AggregateType: "expense",
		AggregateID:   input.ExpenseID,
		EventType:     events.EventTypeDecisionMade,
		Topic:         events.ApprovalLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		return err
	}

	for _, rid := range recipients {
		s.invalidateUnreadCount(ctx, input.CompanyID, rid.String())
	}
	s.logger.Info("decision notification created",
		zap.String("expense_id", input.ExpenseID),
		zap.String("decision", input.Decision),
		zap.Bool("auto", input.Auto),
		zap.Int("recipients", len(recipients)),
	)
	return nil
}

// persistWithOutbox menulis baris notifikasi dan outbox event dalam satu
// transaksi lokal agar event tidak pernah terbit tanpa notifikasinya.
func (s *service) persistWithOutbox(ctx context.Context, notifications []Notification, event kafka.OutboxEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).CreateBatch(ctx, notifications); err != nil {
		return err
	}
	if err := s.outboxRepo.WithTx(tx).Create(ctx, event); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) GetAll(ctx context.Context, companyID, userID string) ([]NotificationResponse, error) {
	notifications, err := s.repo.FindAllByUser(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		resp[i] = NotificationResponse{
			ID:        n.ID.String(),
			Title:     n.Title,
			Message:   n.Message,
			Link:      n.Link,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

func (s *service) UnreadCount(ctx context.Context, companyID, userID string) (int64, error) {
	cacheKey := UnreadCountKey(companyID, userID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		count, err := s.repo.CountUnread(ctx, companyID, userID)
		if err != nil {
			return int64(0), err
		}
		if s.rdb != nil {
			s.rdb.Set(ctx, cacheKey, strconv.FormatInt(count, 10), 5*time.Minute)
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (s *service) MarkRead(ctx context.Context, companyID, userID, id string) error {
	ok, err := s.repo.MarkRead(ctx, companyID, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return notificationerrors.ErrNotificationNotFound
	}
	s.invalidateUnreadCount(ctx, companyID, userID)
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, companyID, userID string) error {
	if err := s.repo.MarkAllRead(ctx, companyID, userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, companyID, userID)
	return nil
}

func (s *service) invalidateUnreadCount(ctx context.Context, companyID, userID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, UnreadCountKey(companyID, userID)).Err(); err != nil {
		s.logger.Warn("unread count invalidation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func formatAmount(currency string, cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, cents/100, cents%100)
}
