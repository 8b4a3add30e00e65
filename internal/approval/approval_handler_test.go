package approval_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-expense/internal/approval"
	approvalerrors "go-expense/internal/approval/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeApprovalService struct {
	submitFn  func(ctx context.Context, companyID, actorID, expenseID string) (approval.SubmitResponse, error)
	decideFn  func(ctx context.Context, companyID, actorID, approvalID string, req approval.DecisionRequest) (approval.DecisionResponse, error)
	pendingFn func(ctx context.Context, companyID, approverID string) ([]approval.PendingApprovalResponse, error)
	chainFn   func(ctx context.Context, companyID, expenseID string) ([]approval.ApprovalStepResponse, error)
}

func (f *fakeApprovalService) SubmitForApproval(ctx context.Context, companyID, actorID, expenseID string) (approval.SubmitResponse, error) {
	return f.submitFn(ctx, companyID, actorID, expenseID)
}

func (f *fakeApprovalService) RecordDecision(ctx context.Context, companyID, actorID, approvalID string, req approval.DecisionRequest) (approval.DecisionResponse, error) {
	return f.decideFn(ctx, companyID, actorID, approvalID, req)
}

func (f *fakeApprovalService) PendingForApprover(ctx context.Context, companyID, approverID string) ([]approval.PendingApprovalResponse, error) {
	return f.pendingFn(ctx, companyID, approverID)
}

func (f *fakeApprovalService) ChainForExpense(ctx context.Context, companyID, expenseID string) ([]approval.ApprovalStepResponse, error) {
	return f.chainFn(ctx, companyID, expenseID)
}

func TestHandler_SubmitAndPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	expenseID := uuid.New().String()

	svc := &fakeApprovalService{
		submitFn: func(ctx context.Context, cid, aid, eid string) (approval.SubmitResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, actorID, aid)
			assert.Equal(t, expenseID, eid)
			return approval.SubmitResponse{ExpenseID: eid, Status: "PENDING", CurrentApprovalStep: 1}, nil
		},
		pendingFn: func(ctx context.Context, cid, aid string) ([]approval.PendingApprovalResponse, error) {
			return []approval.PendingApprovalResponse{
				{ApprovalID: uuid.New().String(), ExpenseNumber: "EXP-000042", Step: 1},
			}, nil
		},
	}

	h := approval.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("company_id", companyID)
	c.Set("user_id", actorID)
	c.Params = gin.Params{{Key: "id", Value: expenseID}}
	c.Request = httptest.NewRequest(http.MethodPost, "/expenses/"+expenseID+"/submit", nil)
	h.Submit(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
	assert.Contains(t, w.Body.String(), `"current_approval_step":1`)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Set("company_id", companyID)
	c2.Set("user_id", actorID)
	c2.Request = httptest.NewRequest(http.MethodGet, "/approvals/pending", nil)
	h.Pending(c2)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "EXP-000042")
}

func TestHandler_History(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	expenseID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeApprovalService{
			chainFn: func(ctx context.Context, cid, eid string) ([]approval.ApprovalStepResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, expenseID, eid)
				return []approval.ApprovalStepResponse{
					{ApprovalID: uuid.New().String(), Step: 1, Decision: "APPROVED"},
					{ApprovalID: uuid.New().String(), Step: 2, Decision: "PENDING"},
				}, nil
			},
		}
		h := approval.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("company_id", companyID)
		c.Set("user_id", actorID)
		c.Params = gin.Params{{Key: "id", Value: expenseID}}
		c.Request = httptest.NewRequest(http.MethodGet, "/expenses/"+expenseID+"/approvals", nil)
		h.History(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"step":1`)
		assert.Contains(t, w.Body.String(), `"decision":"PENDING"`)
	})

	t.Run("negative expense not found", func(t *testing.T) {
		svc := &fakeApprovalService{
			chainFn: func(ctx context.Context, cid, eid string) ([]approval.ApprovalStepResponse, error) {
				return nil, approvalerrors.ErrExpenseNotFound
			},
		}
		h := approval.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("company_id", companyID)
		c.Set("user_id", actorID)
		c.Params = gin.Params{{Key: "id", Value: expenseID}}
		c.Request = httptest.NewRequest(http.MethodGet, "/expenses/"+expenseID+"/approvals", nil)
		h.History(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"ok":false`)
	})
}

func TestHandler_Decide(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	approvalID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeApprovalService{
			decideFn: func(ctx context.Context, cid, aid, apid string, req approval.DecisionRequest) (approval.DecisionResponse, error) {
				assert.Equal(t, approvalID, apid)
				assert.Equal(t, "APPROVED", req.Decision)
				return approval.DecisionResponse{ApprovalID: apid, ExpenseStatus: "APPROVED"}, nil
			},
		}
		h := approval.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("company_id", companyID)
		c.Set("user_id", actorID)
		c.Params = gin.Params{{Key: "id", Value: approvalID}}
		c.Request = httptest.NewRequest(http.MethodPost, "/approvals/"+approvalID+"/decision",
			strings.NewReader(`{"decision":"APPROVED"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		h.Decide(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"expense_status":"APPROVED"`)
	})

	t.Run("negative already decided maps to conflict", func(t *testing.T) {
		svc := &fakeApprovalService{
			decideFn: func(ctx context.Context, cid, aid, apid string, req approval.DecisionRequest) (approval.DecisionResponse, error) {
				return approval.DecisionResponse{}, approvalerrors.ErrApprovalAlreadyDecided
			},
		}
		h := approval.NewHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("company_id", companyID)
		c.Set("user_id", actorID)
		c.Params = gin.Params{{Key: "id", Value: approvalID}}
		c.Request = httptest.NewRequest(http.MethodPost, "/approvals/"+approvalID+"/decision",
			strings.NewReader(`{"decision":"APPROVED"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		h.Decide(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"ok":false`)
	})
}
