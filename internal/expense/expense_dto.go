package expense

type CreateExpenseRequest struct {
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Currency    string `json:"currency"`
	ExpenseDate string `json:"expense_date" binding:"required"`
}

type UpdateExpenseRequest struct {
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Currency    string `json:"currency"`
	ExpenseDate string `json:"expense_date" binding:"required"`
}

type ExpenseResponse struct {
	ID                  string  `json:"id"`
	ExpenseNumber       string  `json:"expense_number"`
	Description         string  `json:"description"`
	Category            string  `json:"category"`
	AmountCents         int64   `json:"amount_cents"`
	Currency            string  `json:"currency"`
	ExpenseDate         string  `json:"expense_date"`
	Status              string  `json:"status"`
	CurrentApprovalStep int     `json:"current_approval_step"`
	CreatedBy           string  `json:"created_by"`
	SubmittedAt         *string `json:"submitted_at,omitempty"`
	CreatedAt           string  `json:"created_at"`
}
