package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupBalanceServiceTest(t *testing.T) (*BalanceService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:balance_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CommissionEntry{}, &models.WithdrawalRequest{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewBalanceService(
		repository.NewLedgerRepository(db),
		repository.NewWithdrawalRepository(db),
	), db
}

func createEntryWithStatus(t *testing.T, db *gorm.DB, code, orderID, status string, share decimal.Decimal) {
	t.Helper()

	now := time.Now()
	row := models.CommissionEntry{
		OrderID:       orderID,
		ReferringCode: code,
		SourceTier:    constants.TierAffiliate,
		GrossAmount:   models.NewMoneyFromDecimal(share),
		TierShare:     models.NewMoneyFromDecimal(share),
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create entry failed: %v", err)
	}
}

func createWithdrawalWithStatus(t *testing.T, db *gorm.DB, code, status string, requested, netPayable decimal.Decimal) {
	t.Helper()

	now := time.Now()
	row := models.WithdrawalRequest{
		ReferenceNo:     fmt.Sprintf("WDTEST%d", time.Now().UnixNano()),
		ParticipantCode: code,
		RequestedAmount: models.NewMoneyFromDecimal(requested),
		NetPayable:      models.NewMoneyFromDecimal(netPayable),
		Status:          status,
		RequestedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
}

func TestAvailableBalanceDerivationFormula(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	code := "AFF201"

	// credited 300 + 200，pending 150 与 rejected 90 不计入
	createEntryWithStatus(t, db, code, "ORD-3001", constants.CommissionEntryStatusCredited, decimal.NewFromInt(300))
	createEntryWithStatus(t, db, code, "ORD-3002", constants.CommissionEntryStatusCredited, decimal.NewFromInt(200))
	createEntryWithStatus(t, db, code, "ORD-3003", constants.CommissionEntryStatusPending, decimal.NewFromInt(150))
	createEntryWithStatus(t, db, code, "ORD-3004", constants.CommissionEntryStatusRejected, decimal.NewFromInt(90))

	// approved 120 + paid 100 扣减，pending 60 与 rejected 80 不扣
	createWithdrawalWithStatus(t, db, code, constants.WithdrawalStatusApproved, decimal.NewFromInt(120), decimal.NewFromInt(98))
	createWithdrawalWithStatus(t, db, code, constants.WithdrawalStatusPaid, decimal.NewFromInt(100), decimal.NewFromInt(82))
	createWithdrawalWithStatus(t, db, code, constants.WithdrawalStatusPending, decimal.NewFromInt(60), decimal.NewFromFloat(49.2))
	createWithdrawalWithStatus(t, db, code, constants.WithdrawalStatusRejected, decimal.NewFromInt(80), decimal.NewFromFloat(65.6))

	balance, err := svc.AvailableBalance(code)
	if err != nil {
		t.Fatalf("derive balance failed: %v", err)
	}
	// 500 - 220
	if balance.String() != "280" {
		t.Fatalf("expected balance 280, got %s", balance.String())
	}
}

func TestSummaryReportsEarnedPaidAndPending(t *testing.T) {
	svc, db := setupBalanceServiceTest(t)
	code := "AFF202"

	createEntryWithStatus(t, db, code, "ORD-3101", constants.CommissionEntryStatusCredited, decimal.NewFromInt(400))
	createEntryWithStatus(t, db, code, "ORD-3102", constants.CommissionEntryStatusPending, decimal.NewFromInt(250))
	createWithdrawalWithStatus(t, db, code, constants.WithdrawalStatusPaid, decimal.NewFromInt(100), decimal.NewFromInt(82))

	summary, err := svc.Summary(code)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalEarned.Decimal.String() != "400" {
		t.Fatalf("expected total earned 400, got %s", summary.TotalEarned.Decimal.String())
	}
	if summary.TotalPaidOut.Decimal.String() != "82" {
		t.Fatalf("expected total paid out 82, got %s", summary.TotalPaidOut.Decimal.String())
	}
	if summary.AvailableBalance.Decimal.String() != "300" {
		t.Fatalf("expected available 300, got %s", summary.AvailableBalance.Decimal.String())
	}
	if summary.PendingShare.Decimal.String() != "250" {
		t.Fatalf("expected pending share 250, got %s", summary.PendingShare.Decimal.String())
	}
}

func TestAvailableBalanceZeroForUnknownCode(t *testing.T) {
	svc, _ := setupBalanceServiceTest(t)

	balance, err := svc.AvailableBalance("AFF999")
	if err != nil {
		t.Fatalf("derive balance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", balance.String())
	}
}
