package handler

import (
	"member-finance/internal/adapter/http/dto"
	"member-finance/internal/core/ports"
	"member-finance/pkg/apperror"
	"member-finance/pkg/response"

	"github.com/gin-gonic/gin"
)

// MemberHandler serves the member directory used to pick expense recipients.
type MemberHandler struct {
	memberRepo ports.MemberRepository
}

func NewMemberHandler(memberRepo ports.MemberRepository) *MemberHandler {
	return &MemberHandler{memberRepo: memberRepo}
}

// List handles GET /api/v1/members.
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.memberRepo.List(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.QueryError(err))
		return
	}

	response.OK(c, dto.NewMemberList(members))
}
