package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tierledger/internal/config"
	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/queue"
	"github.com/tierledger/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService 提现申请状态机服务。
// 同一参与者的申请与审批通过锁定参与者行串行化，
// 可用余额在申请与批准两个时点分别校验。
type WithdrawalService struct {
	withdrawalRepo  repository.WithdrawalRepository
	participantRepo repository.ParticipantRepository
	balanceService  *BalanceService
	queueClient     *queue.Client

	minAmount  decimal.Decimal
	feePercent decimal.Decimal
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	cfg *config.WithdrawalConfig,
	withdrawalRepo repository.WithdrawalRepository,
	participantRepo repository.ParticipantRepository,
	balanceService *BalanceService,
	queueClient *queue.Client,
) *WithdrawalService {
	minAmount := decimal.NewFromInt(100)
	feePercent := decimal.NewFromInt(18)
	if cfg != nil {
		if cfg.MinAmount > 0 {
			minAmount = decimal.NewFromFloat(cfg.MinAmount)
		}
		if cfg.DefaultFeePercent >= 0 {
			feePercent = decimal.NewFromFloat(cfg.DefaultFeePercent)
		}
	}
	return &WithdrawalService{
		withdrawalRepo:  withdrawalRepo,
		participantRepo: participantRepo,
		balanceService:  balanceService,
		queueClient:     queueClient,
		minAmount:       minAmount,
		feePercent:      feePercent,
	}
}

// WithdrawalRequestInput 提现申请输入
type WithdrawalRequestInput struct {
	ParticipantCode string
	Amount          decimal.Decimal
	PayoutMethod    string
	PayoutAccount   string
}

// Request 提交提现申请。校验顺序：最低限额、重复待审申请、可用余额。
// 手续费与净付金额在此刻固化。
func (s *WithdrawalService) Request(ctx context.Context, input WithdrawalRequestInput) (*models.WithdrawalRequest, error) {
	code := normalizeCode(input.ParticipantCode)
	if code == "" {
		return nil, ErrValidation
	}
	amount := input.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrValidation
	}
	if amount.LessThan(s.minAmount) {
		return nil, ErrBelowMinimum
	}

	var created *models.WithdrawalRequest
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		// 锁定参与者行，串行化该参与者的并发申请与审批。
		participant, err := s.participantRepo.WithTx(tx).GetByCodeForUpdate(code)
		if err != nil {
			return err
		}
		if participant == nil {
			return ErrParticipantNotFound
		}
		if participant.Status != constants.ParticipantStatusActive {
			return ErrParticipantDisabled
		}

		withdrawalTx := s.withdrawalRepo.WithTx(tx)
		hasPending, err := withdrawalTx.HasPendingByCode(code)
		if err != nil {
			return err
		}
		if hasPending {
			return ErrDuplicatePendingRequest
		}

		balance, err := s.balanceService.deriveBalance(tx, code)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balance) {
			return ErrInsufficientBalance
		}

		feeAmount := amount.Mul(s.feePercent).Div(percentBase).Round(2)
		netPayable := amount.Sub(feeAmount).Round(2)

		now := time.Now()
		req := &models.WithdrawalRequest{
			ReferenceNo:     newReferenceNo(now),
			ParticipantCode: code,
			RequestedAmount: models.NewMoneyFromDecimal(amount),
			FeePercent:      models.NewMoneyFromDecimal(s.feePercent),
			FeeAmount:       models.NewMoneyFromDecimal(feeAmount),
			NetPayable:      models.NewMoneyFromDecimal(netPayable),
			BalanceBefore:   models.NewMoneyFromDecimal(balance),
			PayoutMethod:    strings.TrimSpace(input.PayoutMethod),
			PayoutAccount:   strings.TrimSpace(input.PayoutAccount),
			Status:          constants.WithdrawalStatusPending,
			RequestedAt:     now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := withdrawalTx.Create(req); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Approve 批准提现申请。仅 pending 可批准；批准前重新推导余额，
// 佣金回退可能使余额低于已申请金额。批准成功后该金额立即计入
// 余额扣减项（推导公式统计 approved + paid）。
func (s *WithdrawalService) Approve(ctx context.Context, requestID uint, reviewedBy, notes string) (*models.WithdrawalRequest, error) {
	if requestID == 0 {
		return nil, ErrNotFound
	}
	var approved *models.WithdrawalRequest
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		withdrawalTx := s.withdrawalRepo.WithTx(tx)
		req, err := withdrawalTx.GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrNotFound
		}
		if req.Status != constants.WithdrawalStatusPending {
			return ErrAlreadyProcessed
		}

		if _, err := s.participantRepo.WithTx(tx).GetByCodeForUpdate(req.ParticipantCode); err != nil {
			return err
		}

		balance, err := s.balanceService.deriveBalance(tx, req.ParticipantCode)
		if err != nil {
			return err
		}
		if req.RequestedAmount.Decimal.GreaterThan(balance) {
			return ErrInsufficientBalance
		}

		now := time.Now()
		req.Status = constants.WithdrawalStatusApproved
		req.ReviewNotes = strings.TrimSpace(notes)
		req.ReviewedBy = strings.TrimSpace(reviewedBy)
		req.ReviewedAt = &now
		req.UpdatedAt = now
		if err := withdrawalTx.Update(req); err != nil {
			return err
		}
		approved = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// Reject 驳回提现申请。仅 pending 可驳回，驳回原因必填，余额不受影响。
func (s *WithdrawalService) Reject(ctx context.Context, requestID uint, reviewedBy, reason string) (*models.WithdrawalRequest, error) {
	if requestID == 0 {
		return nil, ErrNotFound
	}
	trimmedReason := strings.TrimSpace(reason)
	if trimmedReason == "" {
		return nil, ErrValidation
	}
	var rejected *models.WithdrawalRequest
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		withdrawalTx := s.withdrawalRepo.WithTx(tx)
		req, err := withdrawalTx.GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrNotFound
		}
		if req.Status != constants.WithdrawalStatusPending {
			return ErrAlreadyProcessed
		}

		now := time.Now()
		req.Status = constants.WithdrawalStatusRejected
		req.RejectReason = trimmedReason
		req.ReviewedBy = strings.TrimSpace(reviewedBy)
		req.ReviewedAt = &now
		req.UpdatedAt = now
		if err := withdrawalTx.Update(req); err != nil {
			return err
		}
		rejected = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// MarkPaid 登记线下打款完成。仅 approved 可标记；打款流水号必填。
func (s *WithdrawalService) MarkPaid(ctx context.Context, requestID uint, transactionID, operatedBy string) (*models.WithdrawalRequest, error) {
	if requestID == 0 {
		return nil, ErrNotFound
	}
	txnID := strings.TrimSpace(transactionID)
	if txnID == "" {
		return nil, ErrValidation
	}
	var paid *models.WithdrawalRequest
	err := s.withdrawalRepo.Transaction(func(tx *gorm.DB) error {
		withdrawalTx := s.withdrawalRepo.WithTx(tx)
		req, err := withdrawalTx.GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrNotFound
		}
		if req.Status != constants.WithdrawalStatusApproved {
			return ErrNotApproved
		}

		now := time.Now()
		req.Status = constants.WithdrawalStatusPaid
		req.TransactionID = txnID
		req.ReviewedBy = firstNonEmpty(strings.TrimSpace(operatedBy), req.ReviewedBy)
		req.PaidAt = &now
		req.UpdatedAt = now
		if err := withdrawalTx.Update(req); err != nil {
			return err
		}
		paid = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueWithdrawalPaidNotify(queue.WithdrawalPaidNotifyPayload{
		WithdrawalID:    paid.ID,
		ParticipantCode: paid.ParticipantCode,
		TransactionID:   paid.TransactionID,
	}); err != nil {
		logger.Warnw("withdrawal paid notify enqueue failed", "withdrawal_id", paid.ID, "error", err)
	}
	return paid, nil
}

// Get 查询单条提现申请
func (s *WithdrawalService) Get(requestID uint) (*models.WithdrawalRequest, error) {
	if requestID == 0 {
		return nil, ErrNotFound
	}
	req, err := s.withdrawalRepo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	return req, nil
}

// List 分页查询提现申请
func (s *WithdrawalService) List(filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	return s.withdrawalRepo.List(filter)
}

func newReferenceNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("WD%s%s", now.Format("20060102150405"), suffix)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
