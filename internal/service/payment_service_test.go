package service

import (
	"context"
	"errors"
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

func setupPaymentServiceTest(t *testing.T) (*PaymentService, *RateService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:payment_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Participant{},
		&models.CommissionRate{},
		&models.CommissionEntry{},
		&models.WithdrawalRequest{},
		&models.PaymentRecord{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	rateSvc := NewRateService(repository.NewRateRepository(db))
	svc := NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewParticipantRepository(db),
		repository.NewLedgerRepository(db),
		repository.NewWithdrawalRepository(db),
		rateSvc,
	)
	return svc, rateSvc, db
}

func TestRecordPaymentResolvesRecipientTier(t *testing.T) {
	svc, _, db := setupPaymentServiceTest(t)
	createTestParticipant(t, db, "BR301", constants.TierBranch, constants.ParticipantStatusActive)

	record, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		RecipientCode: "BR301",
		GrossAmount:   decimal.NewFromInt(1000),
		FeeAmount:     decimal.NewFromInt(180),
		Amount:        decimal.NewFromInt(820),
		TransactionID: "TXN-301",
		RecordedBy:    "admin",
	})
	if err != nil {
		t.Fatalf("record payment failed: %v", err)
	}
	if record.RecipientTier != constants.TierBranch {
		t.Fatalf("expected recipient tier branch, got %s", record.RecipientTier)
	}
	if record.Amount.Decimal.String() != "820" {
		t.Fatalf("expected amount 820, got %s", record.Amount.Decimal.String())
	}
}

func TestRecordPaymentRejectsUnknownRecipient(t *testing.T) {
	svc, _, _ := setupPaymentServiceTest(t)

	_, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		RecipientCode: "NOPE",
		Amount:        decimal.NewFromInt(100),
		TransactionID: "TXN-302",
	})
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
}

func TestComputeManagementEarningsAggregatesSubtree(t *testing.T) {
	svc, rateSvc, db := setupPaymentServiceTest(t)

	createTestParticipant(t, db, "BR302", constants.TierBranch, constants.ParticipantStatusActive)
	affA := models.Participant{
		Code: "AFF301", Tier: constants.TierAffiliate, BranchCode: "BR302",
		Status: constants.ParticipantStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	affB := models.Participant{
		Code: "AFF302", Tier: constants.TierAffiliate, BranchCode: "BR302",
		Status: constants.ParticipantStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	affOther := models.Participant{
		Code: "AFF303", Tier: constants.TierAffiliate, BranchCode: "BR999",
		Status: constants.ParticipantStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	for _, p := range []models.Participant{affA, affB, affOther} {
		row := p
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create participant failed: %v", err)
		}
	}

	if _, err := rateSvc.UpdateRate(context.Background(), constants.TierBranch, decimal.NewFromInt(5), "admin"); err != nil {
		t.Fatalf("update rate failed: %v", err)
	}

	createEntryWithStatus(t, db, "AFF301", "ORD-3301", constants.CommissionEntryStatusCredited, decimal.NewFromInt(600))
	createEntryWithStatus(t, db, "AFF302", "ORD-3302", constants.CommissionEntryStatusCredited, decimal.NewFromInt(400))
	createEntryWithStatus(t, db, "AFF302", "ORD-3303", constants.CommissionEntryStatusPending, decimal.NewFromInt(900))
	createEntryWithStatus(t, db, "AFF303", "ORD-3304", constants.CommissionEntryStatusCredited, decimal.NewFromInt(500))

	earnings, err := svc.ComputeManagementEarnings(context.Background(), "BR302")
	if err != nil {
		t.Fatalf("compute management earnings failed: %v", err)
	}
	if earnings.AffiliateCount != 2 {
		t.Fatalf("expected 2 affiliates in subtree, got %d", earnings.AffiliateCount)
	}
	if earnings.SubtreeCredited.Decimal.String() != "1000" {
		t.Fatalf("expected subtree credited 1000, got %s", earnings.SubtreeCredited.Decimal.String())
	}
	// 1000 × 5%
	if earnings.Earnings.Decimal.String() != "50" {
		t.Fatalf("expected earnings 50, got %s", earnings.Earnings.Decimal.String())
	}
}

func TestComputeManagementEarningsRejectsAffiliate(t *testing.T) {
	svc, _, db := setupPaymentServiceTest(t)
	createTestParticipant(t, db, "AFF304", constants.TierAffiliate, constants.ParticipantStatusActive)

	if _, err := svc.ComputeManagementEarnings(context.Background(), "AFF304"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for affiliate code, got %v", err)
	}
}

func TestReconcilePaymentsFlagsMissingRecords(t *testing.T) {
	svc, _, db := setupPaymentServiceTest(t)
	createTestParticipant(t, db, "AFF305", constants.TierAffiliate, constants.ParticipantStatusActive)

	now := time.Now()
	matched := models.WithdrawalRequest{
		ReferenceNo: "WDREC1", ParticipantCode: "AFF305",
		RequestedAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
		NetPayable:      models.NewMoneyFromDecimal(decimal.NewFromInt(164)),
		Status:          constants.WithdrawalStatusPaid, TransactionID: "TXN-OK",
		RequestedAt: now, CreatedAt: now, UpdatedAt: now,
	}
	unmatched := models.WithdrawalRequest{
		ReferenceNo: "WDREC2", ParticipantCode: "AFF305",
		RequestedAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
		NetPayable:      models.NewMoneyFromDecimal(decimal.NewFromInt(246)),
		Status:          constants.WithdrawalStatusPaid, TransactionID: "TXN-MISSING",
		RequestedAt: now, CreatedAt: now, UpdatedAt: now,
	}
	for _, req := range []models.WithdrawalRequest{matched, unmatched} {
		row := req
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("create withdrawal failed: %v", err)
		}
	}

	if _, err := svc.RecordPayment(context.Background(), RecordPaymentInput{
		RecipientCode: "AFF305",
		Amount:        decimal.NewFromInt(164),
		TransactionID: "TXN-OK",
	}); err != nil {
		t.Fatalf("record payment failed: %v", err)
	}

	discrepancies, err := svc.ReconcilePayments(context.Background())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(discrepancies) != 1 {
		t.Fatalf("expected 1 discrepancy, got %d", len(discrepancies))
	}
	if discrepancies[0].TransactionID != "TXN-MISSING" {
		t.Fatalf("expected TXN-MISSING flagged, got %s", discrepancies[0].TransactionID)
	}
}
