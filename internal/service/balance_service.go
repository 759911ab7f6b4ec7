package service

import (
	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceService 余额推导服务。可用余额不落库，每次从台账与提现
// 申请实时推导：credited 份额合计 - (approved + paid) 申请金额合计。
type BalanceService struct {
	ledgerRepo     repository.LedgerRepository
	withdrawalRepo repository.WithdrawalRepository
}

// NewBalanceService 创建余额推导服务
func NewBalanceService(
	ledgerRepo repository.LedgerRepository,
	withdrawalRepo repository.WithdrawalRepository,
) *BalanceService {
	return &BalanceService{
		ledgerRepo:     ledgerRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

// BalanceSummary 参与者余额视图
type BalanceSummary struct {
	ParticipantCode  string       `json:"participant_code"`
	AvailableBalance models.Money `json:"available_balance"`
	TotalEarned      models.Money `json:"total_earned"`
	TotalPaidOut     models.Money `json:"total_paid_out"`
	PendingShare     models.Money `json:"pending_share"`
}

// AvailableBalance 推导参与者当前可提余额。两次聚合置于同一事务内，
// 避免读到并发提现的中间态。
func (s *BalanceService) AvailableBalance(code string) (decimal.Decimal, error) {
	trimmed := normalizeCode(code)
	if trimmed == "" {
		return decimal.Zero, ErrValidation
	}
	var balance decimal.Decimal
	err := s.ledgerRepo.Transaction(func(tx *gorm.DB) error {
		derived, err := s.deriveBalance(tx, trimmed)
		if err != nil {
			return err
		}
		balance = derived
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Summary 返回参与者余额全景：可提余额、累计入账、累计提走、在途份额
func (s *BalanceService) Summary(code string) (*BalanceSummary, error) {
	trimmed := normalizeCode(code)
	if trimmed == "" {
		return nil, ErrValidation
	}
	summary := &BalanceSummary{ParticipantCode: trimmed}
	err := s.ledgerRepo.Transaction(func(tx *gorm.DB) error {
		ledgerTx := s.ledgerRepo.WithTx(tx)
		withdrawalTx := s.withdrawalRepo.WithTx(tx)

		credited, err := ledgerTx.SumSharesByCode(trimmed, []string{constants.CommissionEntryStatusCredited})
		if err != nil {
			return err
		}
		pending, err := ledgerTx.SumSharesByCode(trimmed, []string{constants.CommissionEntryStatusPending})
		if err != nil {
			return err
		}
		held, err := withdrawalTx.SumRequestedByCode(trimmed, []string{
			constants.WithdrawalStatusApproved,
			constants.WithdrawalStatusPaid,
		})
		if err != nil {
			return err
		}
		paidOut, err := withdrawalTx.SumNetPayableByCode(trimmed, []string{constants.WithdrawalStatusPaid})
		if err != nil {
			return err
		}

		summary.AvailableBalance = models.NewMoneyFromDecimal(credited.Sub(held).Round(2))
		summary.TotalEarned = models.NewMoneyFromDecimal(credited.Round(2))
		summary.TotalPaidOut = models.NewMoneyFromDecimal(paidOut.Round(2))
		summary.PendingShare = models.NewMoneyFromDecimal(pending.Round(2))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// deriveBalance 在既有事务内推导可用余额，供提现流程复用
func (s *BalanceService) deriveBalance(tx *gorm.DB, code string) (decimal.Decimal, error) {
	credited, err := s.ledgerRepo.WithTx(tx).SumSharesByCode(code, []string{constants.CommissionEntryStatusCredited})
	if err != nil {
		return decimal.Zero, err
	}
	held, err := s.withdrawalRepo.WithTx(tx).SumRequestedByCode(code, []string{
		constants.WithdrawalStatusApproved,
		constants.WithdrawalStatusPaid,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return credited.Sub(held).Round(2), nil
}
