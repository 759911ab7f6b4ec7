package service

import (
	"context"
	"strings"
	"time"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/repository"
	"github.com/shopspring/decimal"
)

const reconcileBatchSize = 200

// PaymentService 打款记录与管理层级结算服务。打款记录是管理员
// 线下转账后的补登记，不参与余额推导，仅用于报表与对账。
type PaymentService struct {
	paymentRepo     repository.PaymentRepository
	participantRepo repository.ParticipantRepository
	ledgerRepo      repository.LedgerRepository
	withdrawalRepo  repository.WithdrawalRepository
	rateService     *RateService
}

// NewPaymentService 创建打款记录服务
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	participantRepo repository.ParticipantRepository,
	ledgerRepo repository.LedgerRepository,
	withdrawalRepo repository.WithdrawalRepository,
	rateService *RateService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		participantRepo: participantRepo,
		ledgerRepo:      ledgerRepo,
		withdrawalRepo:  withdrawalRepo,
		rateService:     rateService,
	}
}

// RecordPaymentInput 打款登记输入
type RecordPaymentInput struct {
	RecipientCode string
	GrossAmount   decimal.Decimal
	FeeAmount     decimal.Decimal
	Amount        decimal.Decimal
	TransactionID string
	Notes         string
	RecordedBy    string
	PaidAt        time.Time
}

// RecordPayment 登记一笔线下打款
func (s *PaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*models.PaymentRecord, error) {
	code := normalizeCode(input.RecipientCode)
	txnID := strings.TrimSpace(input.TransactionID)
	if code == "" || txnID == "" {
		return nil, ErrValidation
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrValidation
	}

	participant, err := s.participantRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, ErrParticipantNotFound
	}

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	now := time.Now()
	record := &models.PaymentRecord{
		RecipientCode: code,
		RecipientTier: participant.Tier,
		GrossAmount:   models.NewMoneyFromDecimal(input.GrossAmount.Round(2)),
		FeeAmount:     models.NewMoneyFromDecimal(input.FeeAmount.Round(2)),
		Amount:        models.NewMoneyFromDecimal(input.Amount.Round(2)),
		TransactionID: txnID,
		Notes:         strings.TrimSpace(input.Notes),
		RecordedBy:    strings.TrimSpace(input.RecordedBy),
		PaidAt:        paidAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.paymentRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListPayments 分页查询打款记录
func (s *PaymentService) ListPayments(filter repository.PaymentListFilter) ([]models.PaymentRecord, int64, error) {
	return s.paymentRepo.List(filter)
}

// ManagementEarnings 管理层级收益视图
type ManagementEarnings struct {
	ManagerCode     string       `json:"manager_code"`
	ManagerTier     string       `json:"manager_tier"`
	RatePercent     models.Money `json:"rate_percent"`
	AffiliateCount  int          `json:"affiliate_count"`
	SubtreeCredited models.Money `json:"subtree_credited"`
	Earnings        models.Money `json:"earnings"`
	TotalPaid       models.Money `json:"total_paid"`
	UnpaidEarnings  models.Money `json:"unpaid_earnings"`
}

// ComputeManagementEarnings 推导管理层级（branch/area/state）的团队收益：
// 下辖 affiliate 已入账份额合计 × 管理层级比例，减去已打款合计得到未结金额。
func (s *PaymentService) ComputeManagementEarnings(ctx context.Context, managerCode string) (*ManagementEarnings, error) {
	code := normalizeCode(managerCode)
	if code == "" {
		return nil, ErrValidation
	}
	manager, err := s.participantRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if manager == nil {
		return nil, ErrParticipantNotFound
	}
	if manager.Tier == constants.TierAffiliate {
		return nil, ErrValidation
	}

	rate, err := s.rateService.CurrentRate(ctx, manager.Tier)
	if err != nil {
		return nil, err
	}

	codes, err := s.participantRepo.ListAffiliateCodesByManager(manager.Tier, code)
	if err != nil {
		return nil, err
	}
	credited := decimal.Zero
	if len(codes) > 0 {
		credited, err = s.ledgerRepo.SumSharesByCodes(codes, constants.CommissionEntryStatusCredited)
		if err != nil {
			return nil, err
		}
	}

	paid, err := s.paymentRepo.SumAmountByRecipient(code)
	if err != nil {
		return nil, err
	}

	earnings := credited.Mul(rate).Div(percentBase).Round(2)
	return &ManagementEarnings{
		ManagerCode:     code,
		ManagerTier:     manager.Tier,
		RatePercent:     models.NewMoneyFromDecimal(rate),
		AffiliateCount:  len(codes),
		SubtreeCredited: models.NewMoneyFromDecimal(credited.Round(2)),
		Earnings:        models.NewMoneyFromDecimal(earnings),
		TotalPaid:       models.NewMoneyFromDecimal(paid.Round(2)),
		UnpaidEarnings:  models.NewMoneyFromDecimal(earnings.Sub(paid).Round(2)),
	}, nil
}

// ReconcileDiscrepancy 对账差异：已标记打款的提现申请缺少对应打款记录
type ReconcileDiscrepancy struct {
	WithdrawalID    uint   `json:"withdrawal_id"`
	ReferenceNo     string `json:"reference_no"`
	ParticipantCode string `json:"participant_code"`
	TransactionID   string `json:"transaction_id"`
}

// ReconcilePayments 核对 paid 状态提现申请与打款记录：按打款流水号
// 匹配，缺少打款记录的申请作为差异返回并记录告警。只读操作，
// 差异的修复由人工完成。
func (s *PaymentService) ReconcilePayments(ctx context.Context) ([]ReconcileDiscrepancy, error) {
	paidRequests, err := s.withdrawalRepo.ListByStatus(constants.WithdrawalStatusPaid, reconcileBatchSize)
	if err != nil {
		return nil, err
	}
	if len(paidRequests) == 0 {
		return nil, nil
	}

	txnIDs := make([]string, 0, len(paidRequests))
	for _, req := range paidRequests {
		if strings.TrimSpace(req.TransactionID) != "" {
			txnIDs = append(txnIDs, req.TransactionID)
		}
	}
	recorded, err := s.paymentRepo.ListTransactionIDs(txnIDs)
	if err != nil {
		return nil, err
	}
	recordedSet := make(map[string]struct{}, len(recorded))
	for _, id := range recorded {
		recordedSet[id] = struct{}{}
	}

	var discrepancies []ReconcileDiscrepancy
	for _, req := range paidRequests {
		if _, ok := recordedSet[req.TransactionID]; ok {
			continue
		}
		discrepancies = append(discrepancies, ReconcileDiscrepancy{
			WithdrawalID:    req.ID,
			ReferenceNo:     req.ReferenceNo,
			ParticipantCode: req.ParticipantCode,
			TransactionID:   req.TransactionID,
		})
	}
	if len(discrepancies) > 0 {
		logger.Warnw("payment reconciliation found unmatched withdrawals", "count", len(discrepancies))
	}
	return discrepancies, nil
}
