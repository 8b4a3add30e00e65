package notification

type NotificationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// ApprovalRequestedInput membawa data yang dibutuhkan emitter saat satu
// approver mendapat giliran memutus.
type ApprovalRequestedInput struct {
	RequestID     string
	CompanyID     string
	ExpenseID     string
	ExpenseNumber string
	ApproverID    string
	Step          int
	AmountCents   int64
	Currency      string
}

// DecisionInput membawa data yang dibutuhkan emitter saat expense mencapai
// status final. ActorID kosong dan Auto true untuk auto-approval.
type DecisionInput struct {
	RequestID     string
	CompanyID     string
	ExpenseID     string
	ExpenseNumber string
	CreatorID     string
	ActorID       string
	Decision      string
	Auto          bool
}
