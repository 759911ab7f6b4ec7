package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/tierledger/internal/http/handlers/shared"
	"github.com/tierledger/internal/http/response"
	"github.com/tierledger/internal/repository"
	"github.com/tierledger/internal/service"

	"github.com/gin-gonic/gin"
)

// ParticipantSyncRequest 参与者目录同步载荷
type ParticipantSyncRequest struct {
	Code       string `json:"code" binding:"required"`
	Tier       string `json:"tier" binding:"required"`
	Name       string `json:"name"`
	BranchCode string `json:"branch_code"`
	AreaCode   string `json:"area_code"`
	StateCode  string `json:"state_code"`
	Status     string `json:"status"`
}

// PutParticipant 同步参与者目录（外部账号系统推送） (Admin)
func (h *Handler) PutParticipant(c *gin.Context) {
	if _, ok := handlershared.GetContextString(c, "admin_name"); !ok {
		return
	}

	var req ParticipantSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	participant, err := h.ParticipantService.Sync(service.SyncParticipantInput{
		Code:       req.Code,
		Tier:       req.Tier,
		Name:       req.Name,
		BranchCode: req.BranchCode,
		AreaCode:   req.AreaCode,
		StateCode:  req.StateCode,
		Status:     req.Status,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "invalid tier or status", nil)
			return
		}
		respondError(c, response.CodeInternal, "participant sync failed", err)
		return
	}
	response.Success(c, participant)
}

// GetParticipants 获取参与者目录列表 (Admin)
func (h *Handler) GetParticipants(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.ParticipantService.List(repository.ParticipantListFilter{
		Page:     page,
		PageSize: pageSize,
		Tier:     c.Query("tier"),
		Status:   c.Query("status"),
		Keyword:  c.Query("keyword"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "participant fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
