package approval

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	approvalerrors "go-expense/internal/approval/errors"
	"go-expense/internal/expense"
	"go-expense/internal/notification"
	"go-expense/internal/shared/contextutil"
	"go-expense/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=engine.go -destination=mock/engine_mock.go -package=mock
type Service interface {
	// SubmitForApproval membangun approval chain dari konfigurasi assignment
	// company dan memindahkan expense DRAFT ke PENDING. Chain kosong
	// (semua assignment gagal di-resolve) berarti langsung APPROVED.
	SubmitForApproval(ctx context.Context, companyID, actorID, expenseID string) (SubmitResponse, error)

	// RecordDecision mencatat keputusan approver pada satu step.
	// REJECTED menghentikan seluruh proses; APPROVED mengevaluasi rule
	// auto-approve lalu maju ke step berikutnya bila masih ada.
	RecordDecision(ctx context.Context, companyID, actorID, approvalID string, req DecisionRequest) (DecisionResponse, error)

	PendingForApprover(ctx context.Context, companyID, approverID string) ([]PendingApprovalResponse, error)

	// ChainForExpense mengembalikan riwayat approval satu expense, urut step.
	ChainForExpense(ctx context.Context, companyID, expenseID string) ([]ApprovalStepResponse, error)
}

type service struct {
	db             *sql.DB
	repo           Repository
	assignmentRepo AssignmentRepository
	ruleRepo       RuleRepository
	expenseRepo    expense.Repository
	userRepo       user.Repository
	notifier       notification.Service
	logger         *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	assignmentRepo AssignmentRepository,
	ruleRepo RuleRepository,
	expenseRepo expense.Repository,
	userRepo user.Repository,
	notifier notification.Service,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{
		db:             db,
		repo:           repo,
		assignmentRepo: assignmentRepo,
		ruleRepo:       ruleRepo,
		expenseRepo:    expenseRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		logger:         l,
	}
}

func (s *service) SubmitForApproval(ctx context.Context, companyID, actorID, expenseID string) (SubmitResponse, error) {
	s.logger.Debug("submit for approval requested",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("expense_id", expenseID),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return SubmitResponse{}, approvalerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return SubmitResponse{}, approvalerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit begin tx failed", zap.Error(err))
		return SubmitResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	expQtx := s.expenseRepo.WithTx(tx)

	e, err := expQtx.FindByIDAndCompany(ctx, companyID, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubmitResponse{}, approvalerrors.ErrExpenseNotFound
		}
		return SubmitResponse{}, err
	}
	if e.CreatedBy.String() != actorID {
		return SubmitResponse{}, approvalerrors.ErrNotExpenseOwner
	}
	if e.Status != expense.StatusDraft {
		s.logger.Warn("submit rejected by status",
			zap.String("expense_id", expenseID),
			zap.String("status", e.Status),
		)
		return SubmitResponse{}, approvalerrors.ErrInvalidStateTransition
	}

	assignments, err := s.assignmentRepo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return SubmitResponse{}, approvalerrors.ChainCreationFailed(err)
	}

	approvals := make([]Approval, 0, len(assignments))
	for _, asg := range assignments {
		approverID, ok, err := s.resolveApprover(ctx, companyID, e.CreatedBy, asg)
		if err != nil {
			return SubmitResponse{}, approvalerrors.ChainCreationFailed(err)
		}
		if !ok {
			s.logger.Debug("assignment skipped, approver unresolved",
				zap.String("assignment_id", asg.ID.String()),
				zap.Int("sequence", asg.Sequence),
			)
			continue
		}
		approvals = append(approvals, Approval{
			ID:         uuid.New(),
			ExpenseID:  e.ID,
			ApproverID: approverID,
			Step:       asg.Sequence,
			Decision:   DecisionPending,
		})
	}

	now := time.Now().UTC()

	if len(approvals) == 0 {
		ok, err := expQtx.MarkSubmitted(ctx, companyID, expenseID, expense.StatusApproved, 0, now)
		if err != nil {
			return SubmitResponse{}, err
		}
		if !ok {
			return SubmitResponse{}, approvalerrors.ErrInvalidStateTransition
		}
		if err := tx.Commit(); err != nil {
			s.logger.Error("submit commit failed", zap.Error(err))
			return SubmitResponse{}, err
		}
		s.logger.Info("expense auto-approved, empty chain",
			zap.String("expense_id", expenseID),
			zap.String("company_id", companyID),
		)

		s.emitDecision(ctx, e, "", expense.StatusApproved, true)
		return SubmitResponse{
			ExpenseID:           expenseID,
			Status:              expense.StatusApproved,
			CurrentApprovalStep: 0,
		}, nil
	}

	firstStep := approvals[0].Step
	firstApprover := approvals[0].ApproverID
	for _, a := range approvals[1:] {
		if a.Step < firstStep {
			firstStep = a.Step
			firstApprover = a.ApproverID
		}
	}

	if err := qtx.CreateBatch(ctx, approvals); err != nil {
		s.logger.Error("submit chain persist failed",
			zap.String("expense_id", expenseID),
			zap.Error(err),
		)
		return SubmitResponse{}, approvalerrors.ChainCreationFailed(err)
	}

	ok, err := expQtx.MarkSubmitted(ctx, companyID, expenseID, expense.StatusPending, firstStep, now)
	if err != nil {
		return SubmitResponse{}, err
	}
	if !ok {
		return SubmitResponse{}, approvalerrors.ErrInvalidStateTransition
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit commit failed", zap.Error(err))
		return SubmitResponse{}, err
	}
	s.logger.Info("submit for approval success",
		zap.String("expense_id", expenseID),
		zap.Int("chain_length", len(approvals)),
		zap.Int("first_step", firstStep),
	)

	s.emitApprovalRequested(ctx, e, firstApprover.String(), firstStep)
	return SubmitResponse{
		ExpenseID:           expenseID,
		Status:              expense.StatusPending,
		CurrentApprovalStep: firstStep,
	}, nil
}

// resolveApprover menerapkan prioritas is_manager > user_id > role.
// manager_id dan user_id dipakai apa adanya; hanya resolusi role yang
// menyaring user aktif. Mengembalikan ok=false bila assignment tidak
// menghasilkan approver.
func (s *service) resolveApprover(ctx context.Context, companyID string, creatorID uuid.UUID, asg ApproverAssignment) (uuid.UUID, bool, error) {
	switch {
	case asg.IsManager:
		creator, err := s.userRepo.FindByIDAndCompany(ctx, companyID, creatorID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, false, nil
			}
			return uuid.Nil, false, err
		}
		if creator.ManagerID == nil {
			return uuid.Nil, false, nil
		}
		return *creator.ManagerID, true, nil

	case asg.UserID != nil:
		return *asg.UserID, true, nil

	case asg.Role != nil && *asg.Role != "":
		u, err := s.userRepo.FindFirstActiveByRole(ctx, companyID, *asg.Role)
		if err != nil {
			return uuid.Nil, false, err
		}
		if u == nil {
			return uuid.Nil, false, nil
		}
		return u.ID, true, nil
	}

	return uuid.Nil, false, nil
}

func (s *service) RecordDecision(ctx context.Context, companyID, actorID, approvalID string, req DecisionRequest) (DecisionResponse, error) {
	s.logger.Debug("record decision requested",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("approval_id", approvalID),
		zap.String("decision", req.Decision),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return DecisionResponse{}, approvalerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return DecisionResponse{}, approvalerrors.ErrInvalidActorID
	}
	decision := strings.ToUpper(strings.TrimSpace(req.Decision))
	if decision != DecisionApproved && decision != DecisionRejected {
		return DecisionResponse{}, approvalerrors.ErrInvalidDecisionValue
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("record decision begin tx failed", zap.Error(err))
		return DecisionResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	expQtx := s.expenseRepo.WithTx(tx)

	a, err := qtx.FindByID(ctx, approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecisionResponse{}, approvalerrors.ErrApprovalNotFound
		}
		return DecisionResponse{}, err
	}

	// lookup lewat company memastikan approval lintas tenant tampak tidak ada
	e, err := expQtx.FindByIDAndCompany(ctx, companyID, a.ExpenseID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecisionResponse{}, approvalerrors.ErrApprovalNotFound
		}
		return DecisionResponse{}, err
	}

	if a.ApproverID.String() != actorID {
		return DecisionResponse{}, approvalerrors.ErrNotAssignedApprover
	}
	if e.Status != expense.StatusPending {
		s.logger.Warn("decision on terminal expense rejected",
			zap.String("expense_id", e.ID.String()),
			zap.String("status", e.Status),
		)
		return DecisionResponse{}, approvalerrors.ErrExpenseNotPending
	}

	now := time.Now().UTC()
	ok, err := qtx.Decide(ctx, approvalID, decision, req.Comments, now)
	if err != nil {
		return DecisionResponse{}, err
	}
	if !ok {
		return DecisionResponse{}, approvalerrors.ErrApprovalAlreadyDecided
	}

	resp := DecisionResponse{
		ApprovalID: approvalID,
		ExpenseID:  e.ID.String(),
	}

	if decision == DecisionRejected {
		ok, err := expQtx.FinalizeStatus(ctx, companyID, e.ID.String(), expense.StatusRejected)
		if err != nil {
			return DecisionResponse{}, err
		}
		if !ok {
			return DecisionResponse{}, approvalerrors.ErrExpenseNotPending
		}
		if err := tx.Commit(); err != nil {
			s.logger.Error("record decision commit failed", zap.Error(err))
			return DecisionResponse{}, err
		}
		s.logger.Info("expense rejected",
			zap.String("expense_id", e.ID.String()),
			zap.String("approver_id", actorID),
			zap.Int("step", a.Step),
		)

		s.emitDecision(ctx, e, actorID, expense.StatusRejected, false)
		resp.ExpenseStatus = expense.StatusRejected
		resp.CurrentApprovalStep = e.CurrentApprovalStep
		return resp, nil
	}

	approvals, err := qtx.FindByExpense(ctx, e.ID.String())
	if err != nil {
		return DecisionResponse{}, err
	}
	rules, err := s.ruleRepo.FindEnabledByCompany(ctx, companyID)
	if err != nil {
		return DecisionResponse{}, err
	}

	roleByApprover := map[string]string{}
	if len(rules) > 0 {
		ids := make([]string, 0, len(approvals))
		seen := make(map[string]struct{}, len(approvals))
		for _, row := range approvals {
			id := row.ApproverID.String()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		roleByApprover, err = s.userRepo.RolesByIDs(ctx, companyID, ids)
		if err != nil {
			return DecisionResponse{}, err
		}
	}

	if rulesSatisfied(rules, approvals, roleByApprover) {
		ok, err := expQtx.FinalizeStatus(ctx, companyID, e.ID.String(), expense.StatusApproved)
		if err != nil {
			return DecisionResponse{}, err
		}
		if !ok {
			return DecisionResponse{}, approvalerrors.ErrExpenseNotPending
		}
		if err := tx.Commit(); err != nil {
			s.logger.Error("record decision commit failed", zap.Error(err))
			return DecisionResponse{}, err
		}
		s.logger.Info("expense auto-approved by rule",
			zap.String("expense_id", e.ID.String()),
			zap.String("approver_id", actorID),
		)

		s.emitDecision(ctx, e, actorID, expense.StatusApproved, true)
		resp.ExpenseStatus = expense.StatusApproved
		resp.CurrentApprovalStep = e.CurrentApprovalStep
		return resp, nil
	}

	// approvals sudah terurut step ASC, cari yang masih menunggu
	var next *Approval
	for i := range approvals {
		if approvals[i].Decision == DecisionPending {
			next = &approvals[i]
			break
		}
	}

	if next == nil {
		ok, err := expQtx.FinalizeStatus(ctx, companyID, e.ID.String(), expense.StatusApproved)
		if err != nil {
			return DecisionResponse{}, err
		}
		if !ok {
			return DecisionResponse{}, approvalerrors.ErrExpenseNotPending
		}
		if err := tx.Commit(); err != nil {
			s.logger.Error("record decision commit failed", zap.Error(err))
			return DecisionResponse{}, err
		}
		s.logger.Info("expense approved, chain exhausted",
			zap.String("expense_id", e.ID.String()),
			zap.String("approver_id", actorID),
		)

		s.emitDecision(ctx, e, actorID, expense.StatusApproved, false)
		resp.ExpenseStatus = expense.StatusApproved
		resp.CurrentApprovalStep = e.CurrentApprovalStep
		return resp, nil
	}

	if err := expQtx.SetCurrentStep(ctx, companyID, e.ID.String(), next.Step); err != nil {
		return DecisionResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("record decision commit failed", zap.Error(err))
		return DecisionResponse{}, err
	}
	s.logger.Info("approval advanced",
		zap.String("expense_id", e.ID.String()),
		zap.Int("from_step", a.Step),
		zap.Int("to_step", next.Step),
	)

	s.emitApprovalRequested(ctx, e, next.ApproverID.String(), next.Step)

	nextApproverID := next.ApproverID.String()
	resp.ExpenseStatus = expense.StatusPending
	resp.CurrentApprovalStep = next.Step
	resp.NextApproverID = &nextApproverID
	return resp, nil
}

func (s *service) PendingForApprover(ctx context.Context, companyID, approverID string) ([]PendingApprovalResponse, error) {
	rows, err := s.repo.FindPendingByApprover(ctx, companyID, approverID)
	if err != nil {
		return nil, err
	}

	resp := make([]PendingApprovalResponse, len(rows))
	for i, row := range rows {
		resp[i] = PendingApprovalResponse{
			ApprovalID:    row.ApprovalID,
			Step:          row.Step,
			ExpenseID:     row.ExpenseID,
			ExpenseNumber: row.ExpenseNumber,
			Description:   row.Description,
			AmountCents:   row.AmountCents,
			Currency:      row.Currency,
			ExpenseDate:   row.ExpenseDate.Format("2006-01-02"),
			CreatedBy:     row.CreatedBy,
			WaitingSince:  row.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

func (s *service) ChainForExpense(ctx context.Context, companyID, expenseID string) ([]ApprovalStepResponse, error) {
	// lookup lewat company: expense tenant lain tampak tidak ada
	e, err := s.expenseRepo.FindByIDAndCompany(ctx, companyID, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approvalerrors.ErrExpenseNotFound
		}
		return nil, err
	}

	approvals, err := s.repo.FindByExpense(ctx, e.ID.String())
	if err != nil {
		return nil, err
	}

	resp := make([]ApprovalStepResponse, len(approvals))
	for i, a := range approvals {
		resp[i] = ApprovalStepResponse{
			ApprovalID: a.ID.String(),
			Step:       a.Step,
			ApproverID: a.ApproverID.String(),
			Decision:   a.Decision,
			Comments:   a.Comments,
			CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		}
		if a.DecidedAt != nil {
			decidedAt := a.DecidedAt.Format(time.RFC3339)
			resp[i].DecidedAt = &decidedAt
		}
	}
	return resp, nil
}

// emitApprovalRequested berjalan setelah commit. Kegagalan hanya dicatat,
// keputusan yang sudah tersimpan tidak boleh ikut gagal.
func (s *service) emitApprovalRequested(ctx context.Context, e *expense.Expense, approverID string, step int) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.NotifyApprovalRequested(ctx, notification.ApprovalRequestedInput{
		RequestID:     contextutil.GetRequestID(ctx),
		CompanyID:     e.CompanyID.String(),
		ExpenseID:     e.ID.String(),
		ExpenseNumber: e.ExpenseNumber,
		ApproverID:    approverID,
		Step:          step,
		AmountCents:   e.AmountCents,
		Currency:      e.Currency,
	})
	if err != nil {
		s.logger.Warn("approval requested notification failed",
			zap.String("expense_id", e.ID.String()),
			zap.String("approver_id", approverID),
			zap.Error(err),
		)
	}
}

func (s *service) emitDecision(ctx context.Context, e *expense.Expense, actorID, status string, auto bool) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.NotifyDecision(ctx, notification.DecisionInput{
		RequestID:     contextutil.GetRequestID(ctx),
		CompanyID:     e.CompanyID.String(),
		ExpenseID:     e.ID.String(),
		ExpenseNumber: e.ExpenseNumber,
		CreatorID:     e.CreatedBy.String(),
		ActorID:       actorID,
		Decision:      status,
		Auto:          auto,
	})
	if err != nil {
		s.logger.Warn("decision notification failed",
			zap.String("expense_id", e.ID.String()),
			zap.String("decision", status),
			zap.Error(err),
		)
	}
}
