package approval

type DecisionRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Comments *string `json:"comments"`
}

type SubmitResponse struct {
	ExpenseID           string `json:"expense_id"`
	Status              string `json:"status"`
	CurrentApprovalStep int    `json:"current_approval_step"`
}

type DecisionResponse struct {
	ApprovalID          string  `json:"approval_id"`
	ExpenseID           string  `json:"expense_id"`
	ExpenseStatus       string  `json:"expense_status"`
	CurrentApprovalStep int     `json:"current_approval_step"`
	NextApproverID      *string `json:"next_approver_id,omitempty"`
}

type ApprovalStepResponse struct {
	ApprovalID string  `json:"approval_id"`
	Step       int     `json:"step"`
	ApproverID string  `json:"approver_id"`
	Decision   string  `json:"decision"`
	Comments   *string `json:"comments,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type PendingApprovalResponse struct {
	ApprovalID    string `json:"approval_id"`
	Step          int    `json:"step"`
	ExpenseID     string `json:"expense_id"`
	ExpenseNumber string `json:"expense_number"`
	Description   string `json:"description"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
	ExpenseDate   string `json:"expense_date"`
	CreatedBy     string `json:"created_by"`
	WaitingSince  string `json:"waiting_since"`
}
