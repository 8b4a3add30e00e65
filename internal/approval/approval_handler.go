package approval

import (
	"net/http"

	"go-expense/internal/shared/apperror"
	"go-expense/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("approval.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("approval request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := c.GetString("user_id")
	expenseID := c.Param("id")
	h.logger.Debug("http submit expense",
		zap.String("company_id", companyID),
		zap.String("expense_id", expenseID),
	)

	resp, err := h.service.SubmitForApproval(c.Request.Context(), companyID, actorID, expenseID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Decide(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := c.GetString("user_id")
	approvalID := c.Param("id")

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http decide validation failed", zap.Error(err))
		mapped := apperror.MapValidationError(err)
		httpErr := apperror.ToHTTP(mapped)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	resp, err := h.service.RecordDecision(c.Request.Context(), companyID, actorID, approvalID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) History(c *gin.Context) {
	companyID := c.GetString("company_id")
	expenseID := c.Param("id")

	resp, err := h.service.ChainForExpense(c.Request.Context(), companyID, expenseID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Pending(c *gin.Context) {
	companyID := c.GetString("company_id")
	approverID := c.GetString("user_id")

	resp, err := h.service.PendingForApprover(c.Request.Context(), companyID, approverID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
