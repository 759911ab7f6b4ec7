package admin

import (
	"errors"
	"strconv"

	"github.com/tierledger/internal/http/response"
	"github.com/tierledger/internal/repository"
	"github.com/tierledger/internal/service"

	"github.com/gin-gonic/gin"
)

// GetLedgerEntries 获取佣金台账列表 (Admin)
func (h *Handler) GetLedgerEntries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	entries, total, err := h.CommissionService.ListEntries(repository.LedgerListFilter{
		Page:          page,
		PageSize:      pageSize,
		ReferringCode: c.Query("referring_code"),
		OrderID:       c.Query("order_id"),
		SourceTier:    c.Query("source_tier"),
		Status:        c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "ledger fetch failed", err)
		return
	}
	response.SuccessWithPage(c, entries, response.BuildPagination(page, pageSize, total))
}

// GetLedgerEntry 获取台账行详情 (Admin)
func (h *Handler) GetLedgerEntry(c *gin.Context) {
	id := parseIDParam(c)
	if id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return
	}
	entry, err := h.CommissionService.GetEntry(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "ledger entry not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "ledger fetch failed", err)
		return
	}
	response.Success(c, entry)
}

// GetParticipantBalance 获取指定参与者余额全景 (Admin)
func (h *Handler) GetParticipantBalance(c *gin.Context) {
	code := c.Param("code")

	summary, err := h.BalanceService.Summary(code)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "invalid code", nil)
			return
		}
		respondError(c, response.CodeInternal, "balance query failed", err)
		return
	}
	response.Success(c, summary)
}
