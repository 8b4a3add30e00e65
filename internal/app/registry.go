package app

import (
	"database/sql"
	"path/filepath"

	"go-expense/internal/approval"
	"go-expense/internal/company"
	"go-expense/internal/expense"
	"go-expense/internal/messaging/kafka"
	"go-expense/internal/notification"
	"go-expense/internal/rbac"
	"go-expense/internal/rbac/infra"
	"go-expense/internal/shared/counter"
	"go-expense/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	companyRepo := company.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	expenseRepo := expense.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	assignmentRepo := approval.NewAssignmentRepository(gormDB)
	ruleRepo := approval.NewRuleRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	userService := user.NewService(userRepo, rdb)
	expenseService := expense.NewService(db, expenseRepo, counterRepo, companyRepo)
	notificationService := notification.NewService(db, notificationRepo, userRepo, outboxRepo, rdb)
	approvalService := approval.NewService(
		db,
		approvalRepo,
		assignmentRepo,
		ruleRepo,
		expenseRepo,
		userRepo,
		notificationService,
	)

	// --- Handlers ---
	userHandler := user.NewHandler(userService)
	expenseHandler := expense.NewHandler(expenseService)
	approvalHandler := approval.NewHandler(approvalService)
	notificationHandler := notification.NewHandler(notificationService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		user.RegisterRoutes(api, userHandler, rbacService)
		expense.RegisterRoutes(api, expenseHandler, rbacService)
		approval.RegisterRoutes(api, approvalHandler, rbacService, rdb)
		notification.RegisterRoutes(api, notificationHandler)
	}

	return nil
}
