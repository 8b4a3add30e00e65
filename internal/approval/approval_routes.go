package approval

import (
	"go-expense/internal/middleware"
	"go-expense/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Submit menempel di bawah /expenses karena itu aksi pada expense,
// tapi handlernya milik engine agar package expense tidak perlu
// mengenal approval.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	expenses := r.Group("/expenses")
	expenses.Use(middleware.AuthMiddleware())
	{
		expenses.POST("/:id/submit",
			middleware.RBACAuthorize(rbacService, "expense", "submit"),
			middleware.Idempotency(rdb),
			handler.Submit,
		)
		expenses.GET("/:id/approvals", middleware.RBACAuthorize(rbacService, "expense", "read"), handler.History)
	}

	approvals := r.Group("/approvals")
	approvals.Use(middleware.AuthMiddleware())
	{
		approvals.GET("/pending", middleware.RBACAuthorize(rbacService, "approval", "read"), handler.Pending)
		approvals.POST("/:id/decision",
			middleware.RBACAuthorize(rbacService, "approval", "decide"),
			middleware.Idempotency(rdb),
			handler.Decide,
		)
	}
}
