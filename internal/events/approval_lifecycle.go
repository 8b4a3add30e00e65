package events

import "time"

const ApprovalLifecycleTopic = "expense.approval.lifecycle.v1"

const (
	EventTypeApprovalRequested = "approval_requested"
	EventTypeDecisionMade      = "decision_made"
)

// ApprovalRequestedEvent diterbitkan saat satu approver mendapat giliran.
type ApprovalRequestedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	ExpenseID  string    `json:"expense_id"`
	CompanyID  string    `json:"company_id"`
	ApproverID string    `json:"approver_id"`
	Step       int       `json:"step"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DecisionMadeEvent diterbitkan saat expense berpindah status karena keputusan
// approver atau auto-approval (chain kosong / conditional rule terpenuhi).
type DecisionMadeEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	ExpenseID  string    `json:"expense_id"`
	CompanyID  string    `json:"company_id"`
	ApproverID string    `json:"approver_id,omitempty"`
	Decision   string    `json:"decision"`
	Auto       bool      `json:"auto"`
	OccurredAt time.Time `json:"occurred_at"`
}
