package handler

import (
	"member-finance/internal/adapter/http/dto"
	"member-finance/internal/adapter/http/middleware"
	"member-finance/internal/core/ports"
	"member-finance/internal/service"
	"member-finance/pkg/apperror"
	"member-finance/pkg/response"

	"github.com/gin-gonic/gin"
)

// BalanceHandler handles the cash and bank balance endpoints.
type BalanceHandler struct {
	financeSvc   ports.FinanceService
	dashboardSvc ports.DashboardService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(financeSvc ports.FinanceService, dashboardSvc ports.DashboardService) *BalanceHandler {
	return &BalanceHandler{financeSvc: financeSvc, dashboardSvc: dashboardSvc}
}

// Cash handles GET /api/v1/balances/cash.
func (h *BalanceHandler) Cash(c *gin.Context) {
	summary, err := h.financeSvc.CalculateCashBalance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewCashBalanceResponse(*summary))
}

// Bank handles GET /api/v1/balances/bank. A failed read is reported as
// known=false with a reason, never as an error.
func (h *BalanceHandler) Bank(c *gin.Context) {
	reading := h.financeSvc.GetLatestBankBalance(c.Request.Context())
	response.OK(c, dto.NewBankBalanceResponse(reading))
}

// UpdateBank handles POST /api/v1/balances/bank. Once the snapshot is
// stored the response is 201 even if the dashboard reload fails.
func (h *BalanceHandler) UpdateBank(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.BankBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindingError(err))
		return
	}

	amount := req.Amount.Round(2)
	if err := service.ValidateBankAmount(amount); err != nil {
		response.Error(c, err)
		return
	}

	year := dto.YearQuery{Year: req.Year}.YearOr(currentYear())
	res, err := h.dashboardSvc.UpdateBankBalance(c.Request.Context(), year, amount, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewMutationResponse(res))
}

// History handles GET /api/v1/balances/bank/history.
func (h *BalanceHandler) History(c *gin.Context) {
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindingError(err))
		return
	}

	snapshots, err := h.financeSvc.BankBalanceHistory(c.Request.Context(), q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewBankSnapshotList(snapshots))
}
