package dto

import (
	"encoding/json"
	"strings"
	"time"

	"member-finance/internal/core/domain"
	"member-finance/internal/core/ports"
	"member-finance/internal/service"

	"github.com/shopspring/decimal"
)

// TransactionRequest is the request body of the transaction entry form.
// Field rules live in the form validator so every failure is reported per field.
type TransactionRequest struct {
	Date          string          `json:"date"`
	Amount        json.RawMessage `json:"amount"` // number or numeric string
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	RecipientType string          `json:"recipient_type"`
	RecipientID   string          `json:"recipient_id"`
	RecipientName string          `json:"recipient_name"`
}

// ToFormInput converts the body into the form's raw input.
func (r TransactionRequest) ToFormInput() service.TransactionFormInput {
	return service.TransactionFormInput{
		Date:          r.Date,
		Amount:        rawAmount(r.Amount),
		Type:          r.Type,
		Category:      r.Category,
		Description:   r.Description,
		RecipientType: r.RecipientType,
		RecipientID:   r.RecipientID,
		RecipientName: r.RecipientName,
	}
}

// NeedsMembers reports whether the recipient must be resolved against the
// member directory.
func (r TransactionRequest) NeedsMembers() bool {
	return r.Type == string(domain.TransactionTypeExpense) && r.RecipientType == service.RecipientTypeMember
}

func rawAmount(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return s
		}
		return str
	}
	return s
}

// TransactionListQuery holds the optional filters of GET /api/v1/transactions.
type TransactionListQuery struct {
	Type      string `form:"type" binding:"omitempty,oneof=income expense"`
	Category  string `form:"category" binding:"omitempty,max=50"`
	StartDate string `form:"start_date" binding:"omitempty,calendar_date"`
	EndDate   string `form:"end_date" binding:"omitempty,calendar_date,date_not_before=StartDate"`
}

// Filter converts the query into a repository filter. Dates were checked
// during binding.
func (q TransactionListQuery) Filter() ports.TransactionFilter {
	var f ports.TransactionFilter
	if q.Type != "" {
		t := domain.TransactionType(q.Type)
		f.Type = &t
	}
	if q.Category != "" {
		c := domain.Category(q.Category)
		f.Category = &c
	}
	if d, err := domain.ParseDate(q.StartDate); err == nil {
		f.StartDate = &d
	}
	if d, err := domain.ParseDate(q.EndDate); err == nil {
		f.EndDate = &d
	}
	return f
}

// YearQuery selects the dashboard year. Zero means the current year.
type YearQuery struct {
	Year int `form:"year" binding:"omitempty,min=1900,max=9999"`
}

// YearOr returns the requested year, or fallback when none was given.
func (q YearQuery) YearOr(fallback int) int {
	if q.Year == 0 {
		return fallback
	}
	return q.Year
}

// HistoryQuery bounds the bank balance history listing.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// BankBalanceRequest is the request body for a new bank balance snapshot.
// Negative amounts are allowed for overdrawn accounts.
type BankBalanceRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Year   int              `json:"year" binding:"omitempty,min=1900,max=9999"`
}

// TransactionResponse is the response body for one transaction.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Recipient   *string         `json:"recipient"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   string          `json:"created_at"`
}

// NewTransactionResponse formats t for the wire.
func NewTransactionResponse(t domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Date:        t.Date.Format(domain.DateLayout),
		Amount:      t.Amount,
		Type:        string(t.Type),
		Category:    string(t.Category),
		Description: t.Description,
		CreatedBy:   t.CreatedBy.String(),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.Recipient != "" {
		recipient := t.Recipient
		resp.Recipient = &recipient
	}
	return resp
}

// NewTransactionList formats a transaction list, never returning nil.
func NewTransactionList(ts []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}

// CashBalanceResponse is the response body for the computed cash balance.
type CashBalanceResponse struct {
	TotalBalance       decimal.Decimal `json:"total_balance"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalManualIncome  decimal.Decimal `json:"total_manual_income"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
}

func NewCashBalanceResponse(s domain.CashBalanceSummary) CashBalanceResponse {
	return CashBalanceResponse{
		TotalBalance:       s.TotalBalance,
		TotalContributions: s.TotalContributions,
		TotalManualIncome:  s.TotalManualIncome,
		TotalExpenses:      s.TotalExpenses,
	}
}

// BankBalanceResponse is the response body for the latest bank balance.
// When Known is false the amount is a placeholder and Reason says why.
type BankBalanceResponse struct {
	Known     bool            `json:"known"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt *string         `json:"updated_at"`
	UpdatedBy *string         `json:"updated_by,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

func NewBankBalanceResponse(r domain.BankBalanceReading) BankBalanceResponse {
	resp := BankBalanceResponse{
		Known:  r.Known,
		Amount: r.Amount,
		Reason: r.Reason,
	}
	if r.UpdatedAt != nil {
		at := r.UpdatedAt.UTC().Format(time.RFC3339)
		resp.UpdatedAt = &at
	}
	if r.Snapshot != nil {
		by := r.Snapshot.UpdatedBy.String()
		resp.UpdatedBy = &by
	}
	return resp
}

// BankSnapshotResponse is one entry of the bank balance history.
type BankSnapshotResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt string          `json:"updated_at"`
	UpdatedBy string          `json:"updated_by"`
}

func NewBankSnapshotList(snapshots []domain.BankBalanceSnapshot) []BankSnapshotResponse {
	out := make([]BankSnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, BankSnapshotResponse{
			ID:        s.ID.String(),
			Amount:    s.Amount,
			UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
			UpdatedBy: s.UpdatedBy.String(),
		})
	}
	return out
}

// ReconciliationResponse is the cash-vs-bank comparison.
type ReconciliationResponse struct {
	Difference decimal.Decimal `json:"difference"`
	Status     string          `json:"status"`
	Alert      bool            `json:"alert"`
}

// DashboardResponse is the response body for the reconciliation dashboard.
type DashboardResponse struct {
	Year           int                    `json:"year"`
	Cash           CashBalanceResponse    `json:"cash"`
	Bank           BankBalanceResponse    `json:"bank"`
	Reconciliation ReconciliationResponse `json:"reconciliation"`
	Transactions   []TransactionResponse  `json:"transactions"`
	GeneratedAt    string                 `json:"generated_at"`
}

func NewDashboardResponse(v *ports.DashboardView) DashboardResponse {
	return DashboardResponse{
		Year: v.Year,
		Cash: NewCashBalanceResponse(v.Cash),
		Bank: NewBankBalanceResponse(v.Bank),
		Reconciliation: ReconciliationResponse{
			Difference: v.Reconciliation.Difference,
			Status:     string(v.Reconciliation.Status),
			Alert:      v.Reconciliation.Alert,
		},
		Transactions: NewTransactionList(v.Transactions),
		GeneratedAt:  v.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

// ReloadFailedMessage is reported when a write succeeded but the dashboard
// reload after it did not.
const ReloadFailedMessage = "Saved, but the dashboard could not be reloaded"

// MutationResponse is the body returned after a committed transaction
// delete or bank balance update. Dashboard is null and ReloadError set when
// the follow-up reload failed; the write itself still happened.
type MutationResponse struct {
	ID          string                `json:"id,omitempty"`
	Snapshot    *BankSnapshotResponse `json:"snapshot,omitempty"`
	Dashboard   *DashboardResponse    `json:"dashboard"`
	ReloadError string                `json:"reload_error,omitempty"`
}

func NewMutationResponse(res *ports.MutationResult) MutationResponse {
	var resp MutationResponse
	if res.Snapshot != nil {
		snapshot := NewBankSnapshotList([]domain.BankBalanceSnapshot{*res.Snapshot})[0]
		resp.Snapshot = &snapshot
	}
	if res.View != nil {
		view := NewDashboardResponse(res.View)
		resp.Dashboard = &view
	}
	if res.ReloadErr != nil {
		// The cause is logged server side; gateway errors are not echoed.
		resp.ReloadError = ReloadFailedMessage
	}
	return resp
}

// MemberResponse is one entry of the member directory.
type MemberResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

func NewMemberList(members domain.MemberDirectory) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse{ID: m.ID.String(), FullName: m.FullName})
	}
	return out
}
