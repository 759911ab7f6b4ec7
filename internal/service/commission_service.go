package service

import (
	"context"
	"strings"
	"time"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/queue"
	"github.com/tierledger/internal/repository"
	"github.com/shopspring/decimal"
)

// CommissionService 佣金事件接入与台账流转服务
type CommissionService struct {
	ledgerRepo      repository.LedgerRepository
	participantRepo repository.ParticipantRepository
	splitter        *SplitCalculator
	queueClient     *queue.Client
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	ledgerRepo repository.LedgerRepository,
	participantRepo repository.ParticipantRepository,
	splitter *SplitCalculator,
	queueClient *queue.Client,
) *CommissionService {
	return &CommissionService{
		ledgerRepo:      ledgerRepo,
		participantRepo: participantRepo,
		splitter:        splitter,
		queueClient:     queueClient,
	}
}

// RecordCommissionInput 佣金事件输入（来自订单系统回调）
type RecordCommissionInput struct {
	OrderID       string
	ReferringCode string
	GrossAmount   decimal.Decimal
	ProductID     string
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	OrderAmount   decimal.Decimal
	CustomerName  string
	// Delivered 为 true 时订单在事件到达前已发货，流水直接入账
	Delivered bool
}

// RecordCommission 登记一条佣金事件。同一 (订单, 推荐码) 重复投递返回
// 已存在的台账行，不产生第二条记录。
func (s *CommissionService) RecordCommission(ctx context.Context, input RecordCommissionInput) (*models.CommissionEntry, error) {
	orderID := strings.TrimSpace(input.OrderID)
	code := normalizeCode(input.ReferringCode)
	if orderID == "" || code == "" {
		return nil, ErrValidation
	}
	if input.GrossAmount.IsNegative() {
		return nil, ErrValidation
	}

	participant, err := s.participantRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, ErrParticipantNotFound
	}
	if participant.Status != constants.ParticipantStatusActive {
		return nil, ErrParticipantDisabled
	}

	if existing, err := s.ledgerRepo.GetByOrderAndCode(orderID, code); err != nil {
		return nil, err
	} else if existing != nil {
		logger.Infow("duplicate commission event ignored",
			"order_id", orderID, "referring_code", code, "entry_id", existing.ID)
		return existing, nil
	}

	rateSnapshot, share, err := s.splitter.ComputeShare(ctx, input.GrossAmount, participant.Tier)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := constants.CommissionEntryStatusPending
	var creditedAt *time.Time
	if input.Delivered {
		status = constants.CommissionEntryStatusCredited
		creditedAt = &now
	}
	entry := &models.CommissionEntry{
		OrderID:          orderID,
		ReferringCode:    code,
		SourceTier:       participant.Tier,
		GrossAmount:      models.NewMoneyFromDecimal(input.GrossAmount.Round(2)),
		TierRateSnapshot: models.NewMoneyFromDecimal(rateSnapshot),
		TierShare:        share,
		ProductID:        strings.TrimSpace(input.ProductID),
		ProductName:      strings.TrimSpace(input.ProductName),
		Quantity:         input.Quantity,
		UnitPrice:        models.NewMoneyFromDecimal(input.UnitPrice.Round(2)),
		OrderAmount:      models.NewMoneyFromDecimal(input.OrderAmount.Round(2)),
		CustomerName:     strings.TrimSpace(input.CustomerName),
		Status:           status,
		CreditedAt:       creditedAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.ledgerRepo.Create(entry); err != nil {
		// 并发重复投递会触发 (order_id, referring_code) 唯一约束，
		// 此时读回已有行并按幂等成功处理。
		if existing, ferr := s.ledgerRepo.GetByOrderAndCode(orderID, code); ferr == nil && existing != nil {
			logger.Infow("concurrent duplicate commission event ignored",
				"order_id", orderID, "referring_code", code, "entry_id", existing.ID)
			return existing, nil
		}
		return nil, err
	}
	return entry, nil
}

// ConfirmDelivery 订单确认交付：订单下所有 pending 流水转为 credited，
// 返回实际入账的行数。已入账或已失效的行不受影响。
func (s *CommissionService) ConfirmDelivery(ctx context.Context, orderID string) (int64, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return 0, ErrValidation
	}
	affected, err := s.ledgerRepo.TransitionByOrder(
		trimmed,
		constants.CommissionEntryStatusPending,
		constants.CommissionEntryStatusCredited,
		"",
		time.Now(),
	)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		if err := s.queueClient.EnqueueCommissionCreditNotify(queue.CommissionCreditNotifyPayload{
			OrderID:       trimmed,
			CreditedCount: affected,
		}); err != nil {
			logger.Warnw("credit notify enqueue failed", "order_id", trimmed, "error", err)
		}
	}
	return affected, nil
}

// CancelOrder 订单取消或退款：订单下所有 pending 流水转为 rejected。
// 已 credited 的行不回滚，需走线下调整。
func (s *CommissionService) CancelOrder(ctx context.Context, orderID, reason string) (int64, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return 0, ErrValidation
	}
	return s.ledgerRepo.TransitionByOrder(
		trimmed,
		constants.CommissionEntryStatusPending,
		constants.CommissionEntryStatusRejected,
		strings.TrimSpace(reason),
		time.Now(),
	)
}

// GetEntry 查询单条台账行
func (s *CommissionService) GetEntry(id uint) (*models.CommissionEntry, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	entry, err := s.ledgerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

// ListEntries 分页查询台账
func (s *CommissionService) ListEntries(filter repository.LedgerListFilter) ([]models.CommissionEntry, int64, error) {
	return s.ledgerRepo.List(filter)
}

// ListByOrder 按订单查询全部流水
func (s *CommissionService) ListByOrder(orderID string) ([]models.CommissionEntry, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, ErrValidation
	}
	return s.ledgerRepo.ListByOrder(trimmed, nil)
}
