package handler

import (
	"member-finance/internal/adapter/http/dto"
	"member-finance/internal/adapter/http/middleware"
	"member-finance/internal/core/domain"
	"member-finance/internal/core/ports"
	"member-finance/internal/service"
	"member-finance/pkg/apperror"
	"member-finance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles the manual transaction endpoints.
type TransactionHandler struct {
	financeSvc   ports.FinanceService
	dashboardSvc ports.DashboardService
	forms        *service.TransactionForms
	memberRepo   ports.MemberRepository
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(
	financeSvc ports.FinanceService,
	dashboardSvc ports.DashboardService,
	forms *service.TransactionForms,
	memberRepo ports.MemberRepository,
) *TransactionHandler {
	return &TransactionHandler{
		financeSvc:   financeSvc,
		dashboardSvc: dashboardSvc,
		forms:        forms,
		memberRepo:   memberRepo,
	}
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	var q dto.TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindingError(err))
		return
	}

	txs, err := h.financeSvc.ListTransactions(c.Request.Context(), q.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionList(txs))
}

// Create handles POST /api/v1/transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindingError(err))
		return
	}
	dto.SanitizeStruct(&req)

	var members domain.MemberDirectory
	if req.NeedsMembers() {
		list, err := h.memberRepo.List(c.Request.Context())
		if err != nil {
			response.Error(c, apperror.QueryError(err))
			return
		}
		members = list
	}

	created, err := h.forms.Submit(c.Request.Context(), actorID, req.ToFormInput(), members)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewTransactionResponse(*created))
}

// Delete handles DELETE /api/v1/transactions/:id and returns the reloaded
// dashboard for ?year= (default: current year).
func (h *TransactionHandler) Delete(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("", apperror.FieldError{
			Field:   "id",
			Message: "must be a valid transaction id",
		}))
		return
	}

	var q dto.YearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindingError(err))
		return
	}

	res, err := h.dashboardSvc.DeleteTransaction(c.Request.Context(), q.YearOr(currentYear()), id, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.NewMutationResponse(res)
	resp.ID = id.String()
	response.OK(c, resp)
}
