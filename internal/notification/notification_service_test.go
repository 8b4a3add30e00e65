package notification_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-expense/internal/events"
	"go-expense/internal/messaging/kafka"
	"go-expense/internal/notification"
	notificationerrors "go-expense/internal/notification/errors"
	"go-expense/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeNotificationRepository struct {
	withTxFn        func(tx *sql.Tx) notification.Repository
	createBatchFn   func(ctx context.Context, notifications []notification.Notification) error
	findAllByUserFn func(ctx context.Context, companyID, userID string) ([]notification.Notification, error)
	countUnreadFn   func(ctx context.Context, companyID, userID string) (int64, error)
	markReadFn      func(ctx context.Context, companyID, userID, id string) (bool, error)
	markAllReadFn   func(ctx context.Context, companyID, userID string) error
}

func (f *fakeNotificationRepository) WithTx(tx *sql.Tx) notification.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeNotificationRepository) CreateBatch(ctx context.Context, notifications []notification.Notification) error {
	if f.createBatchFn != nil {
		return f.createBatchFn(ctx, notifications)
	}
	return nil
}

func (f *fakeNotificationRepository) FindAllByUser(ctx context.Context, companyID, userID string) ([]notification.Notification, error) {
	if f.findAllByUserFn != nil {
		return f.findAllByUserFn(ctx, companyID, userID)
	}
	return nil, nil
}

func (f *fakeNotificationRepository) CountUnread(ctx context.Context, companyID, userID string) (int64, error) {
	if f.countUnreadFn != nil {
		return f.countUnreadFn(ctx, companyID, userID)
	}
	return 0, nil
}

func (f *fakeNotificationRepository) MarkRead(ctx context.Context, companyID, userID, id string) (bool, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, companyID, userID, id)
	}
	return true, nil
}

func (f *fakeNotificationRepository) MarkAllRead(ctx context.Context, companyID, userID string) error {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, companyID, userID)
	}
	return nil
}

type fakeUserRepository struct {
	findActiveByRoleFn func(ctx context.Context, companyID, role string) ([]user.User, error)
}

func (f *fakeUserRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepository) FindFirstActiveByRole(ctx context.Context, companyID, role string) (*user.User, error) {
	return nil, nil
}

func (f *fakeUserRepository) FindActiveByRole(ctx context.Context, companyID, role string) ([]user.User, error) {
	if f.findActiveByRoleFn != nil {
		return f.findActiveByRoleFn(ctx, companyID, role)
	}
	return nil, nil
}

func (f *fakeUserRepository) RolesByIDs(ctx context.Context, companyID string, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (f *fakeUserRepository) FindOptionsByCompany(ctx context.Context, companyID string) ([]user.User, error) {
	return nil, nil
}

type fakeOutboxRepository struct {
	withTxFn      func(tx *sql.Tx) kafka.OutboxRepository
	createFn      func(ctx context.Context, event kafka.OutboxEvent) error
	listPendingFn func(ctx context.Context, limit int) ([]kafka.OutboxEvent, error)
	markSentFn    func(ctx context.Context, id string) error
	markFailedFn  func(ctx context.Context, id, reason string) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	if f.listPendingFn != nil {
		return f.listPendingFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	if f.markSentFn != nil {
		return f.markSentFn(ctx, id)
	}
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id, reason string) error {
	if f.markFailedFn != nil {
		return f.markFailedFn(ctx, id, reason)
	}
	return nil
}

type notificationServiceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	redismock  redismock.ClientMock
	service    notification.Service
	repo       *fakeNotificationRepository
	userRepo   *fakeUserRepository
	outboxRepo *fakeOutboxRepository
}

func setupNotificationServiceTest(t *testing.T) *notificationServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	dbRedis, redisMock := redismock.NewClientMock()

	repo := &fakeNotificationRepository{}
	userRepo := &fakeUserRepository{}
	outboxRepo := &fakeOutboxRepository{}
	svc := notification.NewService(db, repo, userRepo, outboxRepo, dbRedis)

	return &notificationServiceDeps{
		db:         db,
		sqlMock:    sqlMock,
		redismock:  redisMock,
		service:    svc,
		repo:       repo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestNotificationService_NotifyApprovalRequested(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	approverID := uuid.New().String()
	expenseID := uuid.New().String()

	input := notification.ApprovalRequestedInput{
		RequestID:     "req-123",
		CompanyID:     companyID,
		ExpenseID:     expenseID,
		ExpenseNumber: "EXP-000042",
		ApproverID:    approverID,
		Step:          2,
		AmountCents:   8750,
		Currency:      "USD",
	}

	t.Run("success", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		var created []notification.Notification
		deps.repo.createBatchFn = func(ctx context.Context, notifications []notification.Notification) error {
			created = notifications
			return nil
		}

		var event kafka.OutboxEvent
		deps.outboxRepo.createFn = func(ctx context.Context, e kafka.OutboxEvent) error {
			event = e
			return nil
		}

		deps.redismock.ExpectDel(notification.UnreadCountKey(companyID, approverID)).SetVal(1)

		err := deps.service.NotifyApprovalRequested(ctx, input)

		assert.NoError(t, err)
		assert.Len(t, created, 1)
		assert.Equal(t, approverID, created[0].UserID.String())
		assert.Equal(t, "Approval needed", created[0].Title)
		assert.Contains(t, created[0].Message, "EXP-000042")
		assert.Contains(t, created[0].Message, "USD 87.50")
		assert.Equal(t, "/expenses/"+expenseID, created[0].Link)

		assert.Equal(t, events.ApprovalLifecycleTopic, event.Topic)
		assert.Equal(t, events.EventTypeApprovalRequested, event.EventType)
		assert.Equal(t, expenseID, event.AggregateID)
		assert.Equal(t, kafka.OutboxStatusPending, event.Status)

		var payload events.ApprovalRequestedEvent
		assert.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, "req-123", payload.RequestID)
		assert.Equal(t, 2, payload.Step)

		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("negative outbox write rolls back notification", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		deps.outboxRepo.createFn = func(ctx context.Context, e kafka.OutboxEvent) error {
			return errors.New("outbox insert failed")
		}

		err := deps.service.NotifyApprovalRequested(ctx, input)

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid approver id", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		bad := input
		bad.ApproverID = "not-a-uuid"
		err := deps.service.NotifyApprovalRequested(ctx, bad)

		assert.ErrorIs(t, err, notificationerrors.ErrInvalidUserID)
	})
}

func TestNotificationService_NotifyDecision(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	creatorID := uuid.New()
	adminID := uuid.New()
	expenseID := uuid.New().String()

	input := notification.DecisionInput{
		RequestID:     "req-456",
		CompanyID:     companyID,
		ExpenseID:     expenseID,
		ExpenseNumber: "EXP-000042",
		CreatorID:     creatorID.String(),
		ActorID:       uuid.New().String(),
		Decision:      "APPROVED",
		Auto:          false,
	}

	t.Run("success creator and admins notified", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.userRepo.findActiveByRoleFn = func(ctx context.Context, cid, role string) ([]user.User, error) {
			assert.Equal(t, user.RoleAdmin, role)
			return []user.User{
				{ID: adminID, Role: user.RoleAdmin, IsActive: true},
				// admin yang juga pembuat tidak boleh dobel
				{ID: creatorID, Role: user.RoleAdmin, IsActive: true},
			}, nil
		}

		var created []notification.Notification
		deps.repo.createBatchFn = func(ctx context.Context, notifications []notification.Notification) error {
			created = notifications
			return nil
		}

		deps.redismock.ExpectDel(notification.UnreadCountKey(companyID, creatorID.String())).SetVal(1)
		deps.redismock.ExpectDel(notification.UnreadCountKey(companyID, adminID.String())).SetVal(1)

		err := deps.service.NotifyDecision(ctx, input)

		assert.NoError(t, err)
		assert.Len(t, created, 2)
		assert.Equal(t, creatorID, created[0].UserID)
		assert.Equal(t, adminID, created[1].UserID)
		assert.Equal(t, "Expense APPROVED", created[0].Title)
		assert.Equal(t, "Expense EXP-000042 has been APPROVED", created[0].Message)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("success auto decision mentions automation", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		var created []notification.Notification
		deps.repo.createBatchFn = func(ctx context.Context, notifications []notification.Notification) error {
			created = notifications
			return nil
		}

		auto := input
		auto.Auto = true
		err := deps.service.NotifyDecision(ctx, auto)

		assert.NoError(t, err)
		assert.Len(t, created, 1)
		assert.Equal(t, "Expense EXP-000042 has been APPROVED automatically", created[0].Message)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success admin lookup failure still notifies creator", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)

		deps.userRepo.findActiveByRoleFn = func(ctx context.Context, cid, role string) ([]user.User, error) {
			return nil, errors.New("db unavailable")
		}

		var created []notification.Notification
		deps.repo.createBatchFn = func(ctx context.Context, notifications []notification.Notification) error {
			created = notifications
			return nil
		}

		err := deps.service.NotifyDecision(ctx, input)

		assert.NoError(t, err)
		assert.Len(t, created, 1)
		assert.Equal(t, creatorID, created[0].UserID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestNotificationService_UnreadCount(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	userID := uuid.New().String()

	cacheKey := notification.UnreadCountKey(companyID, userID)

	t.Run("success cache hit skips repo", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(cacheKey).SetVal("7")
		deps.repo.countUnreadFn = func(ctx context.Context, cid, uid string) (int64, error) {
			t.Fatal("repo must not be hit on cache hit")
			return 0, nil
		}

		count, err := deps.service.UnreadCount(ctx, companyID, userID)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("success cache miss stores count", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(cacheKey).RedisNil()
		deps.redismock.ExpectSet(cacheKey, "7", 5*time.Minute).SetVal("OK")
		deps.repo.countUnreadFn = func(ctx context.Context, cid, uid string) (int64, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, userID, uid)
			return 7, nil
		}

		count, err := deps.service.UnreadCount(ctx, companyID, userID)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.redismock.ExpectGet(cacheKey).RedisNil()
		deps.repo.countUnreadFn = func(ctx context.Context, cid, uid string) (int64, error) {
			return 0, errors.New("db error")
		}

		_, err := deps.service.UnreadCount(ctx, companyID, userID)

		assert.Error(t, err)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	userID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		id := uuid.New().String()
		deps.repo.markReadFn = func(ctx context.Context, cid, uid, nid string) (bool, error) {
			assert.Equal(t, id, nid)
			return true, nil
		}
		// cache unread ikut di-invalidate
		deps.redismock.ExpectDel(notification.UnreadCountKey(companyID, userID)).SetVal(1)

		assert.NoError(t, deps.service.MarkRead(ctx, companyID, userID, id))
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.markReadFn = func(ctx context.Context, cid, uid, nid string) (bool, error) {
			return false, nil
		}

		err := deps.service.MarkRead(ctx, companyID, userID, uuid.New().String())

		assert.ErrorIs(t, err, notificationerrors.ErrNotificationNotFound)
	})
}

func TestNotificationService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	userID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupNotificationServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllByUserFn = func(ctx context.Context, cid, uid string) ([]notification.Notification, error) {
			return []notification.Notification{
				{
					ID:        uuid.New(),
					Title:     "Approval needed",
					Message:   "Expense EXP-000001 is waiting",
					Link:      "/expenses/abc",
					IsRead:    false,
					CreatedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
				},
			}, nil
		}

		resp, err := deps.service.GetAll(ctx, companyID, userID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Approval needed", resp[0].Title)
		assert.False(t, resp[0].IsRead)
	})
}
