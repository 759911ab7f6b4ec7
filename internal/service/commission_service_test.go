package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/queue"
	"github.com/tierledger/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCommissionServiceTest(t *testing.T) (*CommissionService, *RateService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:commission_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Participant{}, &models.CommissionRate{}, &models.CommissionEntry{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	rateSvc := NewRateService(repository.NewRateRepository(db))
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("init queue client failed: %v", err)
	}
	svc := NewCommissionService(
		repository.NewLedgerRepository(db),
		repository.NewParticipantRepository(db),
		NewSplitCalculator(rateSvc),
		queueClient,
	)
	return svc, rateSvc, db
}

func createTestParticipant(t *testing.T, db *gorm.DB, code, tier, status string) models.Participant {
	t.Helper()

	row := models.Participant{
		Code:      code,
		Tier:      tier,
		Name:      "tester",
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create participant failed: %v", err)
	}
	return row
}

func TestRecordCommissionSplitsAtSnapshotRate(t *testing.T) {
	svc, rateSvc, db := setupCommissionServiceTest(t)
	createTestParticipant(t, db, "AFF001", constants.TierAffiliate, constants.ParticipantStatusActive)

	if _, err := rateSvc.UpdateRate(context.Background(), constants.TierAffiliate, decimal.NewFromInt(70), "admin"); err != nil {
		t.Fatalf("update rate failed: %v", err)
	}

	entry, err := svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1001",
		ReferringCode: "AFF001",
		GrossAmount:   decimal.NewFromInt(1000),
		ProductName:   "demo product",
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("record commission failed: %v", err)
	}
	if entry.Status != constants.CommissionEntryStatusPending {
		t.Fatalf("expected pending status, got %s", entry.Status)
	}
	if entry.TierShare.Decimal.String() != "700" {
		t.Fatalf("expected share 700, got %s", entry.TierShare.Decimal.String())
	}
	if entry.TierRateSnapshot.Decimal.String() != "70" {
		t.Fatalf("expected rate snapshot 70, got %s", entry.TierRateSnapshot.Decimal.String())
	}
}

func TestRecordCommissionNormalizesReferringCodeCase(t *testing.T) {
	svc, _, db := setupCommissionServiceTest(t)
	createTestParticipant(t, db, "AFF011", constants.TierAffiliate, constants.ParticipantStatusActive)

	entry, err := svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1011",
		ReferringCode: "aff011",
		GrossAmount:   decimal.NewFromInt(700),
		Delivered:     true,
	})
	if err != nil {
		t.Fatalf("record commission failed: %v", err)
	}
	if entry.ReferringCode != "AFF011" {
		t.Fatalf("expected stored code AFF011, got %q", entry.ReferringCode)
	}

	// 小写投递的流水必须被大写聚合查询看到，否则余额推导会漏账
	ledgerRepo := repository.NewLedgerRepository(db)
	credited, err := ledgerRepo.SumSharesByCode("AFF011", []string{constants.CommissionEntryStatusCredited})
	if err != nil {
		t.Fatalf("sum shares failed: %v", err)
	}
	if credited.String() != "700" {
		t.Fatalf("expected credited sum 700, got %s", credited.String())
	}

	// 大小写不同的重复投递仍命中同一行
	again, err := svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1011",
		ReferringCode: "AFF011",
		GrossAmount:   decimal.NewFromInt(700),
	})
	if err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if again.ID != entry.ID {
		t.Fatalf("expected redelivery to return entry %d, got %d", entry.ID, again.ID)
	}
}

func TestRecordCommissionDeliveredOrderCreditsImmediately(t *testing.T) {
	svc, _, db := setupCommissionServiceTest(t)
	createTestParticipant(t, db, "AFF010", constants.TierAffiliate, constants.ParticipantStatusActive)

	entry, err := svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1010",
		ReferringCode: "AFF010",
		GrossAmount:   decimal.NewFromInt(500),
		Delivered:     true,
	})
	if err != nil {
		t.Fatalf("record commission failed: %v", err)
	}
	if entry.Status != constants.CommissionEntryStatusCredited {
		t.Fatalf("expected credited status, got %s", entry.Status)
	}
	if entry.CreditedAt == nil {
		t.Fatalf("expected credited_at to be set")
	}

	// 已入账，ConfirmDelivery 不应再改动任何行
	affected, err := svc.ConfirmDelivery(context.Background(), "ORD-1010")
	if err != nil {
		t.Fatalf("confirm delivery failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected, got %d", affected)
	}
}

func TestRecordCommissionSnapshotSurvivesRateChange(t *testing.T) {
	svc, rateSvc, db := setupCommissionServiceTest(t)
	createTestParticipant(t, db, "AFF002", constants.TierAffiliate, constants.ParticipantStatusActive)

	if _, err := rateSvc.UpdateRate(context.Background(), constants.TierAffiliate, decimal.NewFromInt(70), "admin"); err != nil {
		t.Fatalf("update rate failed: %v", err)
	}
	entry, err := svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1002",
		ReferringCode: "AFF002",
		GrossAmount:   decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("record commission failed: %v", err)
	}

	if _, err := rateSvc.UpdateRate(context.Background(), constants.TierAffiliate, decimal.NewFromInt(10), "admin"); err != nil {
		t.Fatalf("update rate failed: %v", err)
	}

	reloaded, err := svc.GetEntry(entry.ID)
	if err != nil {
		t.Fatalf("reload entry failed: %v", err)
	}
	if reloaded.TierRateSnapshot.Decimal.String() != "70" {
		t.Fatalf("expected snapshot unchanged at 70, got %s", reloaded.TierRateSnapshot.Decimal.String())
	}
	if reloaded.TierShare.Decimal.String() != "140" {
		t.Fatalf("expected share unchanged at 140, got %s", reloaded.TierShare.Decimal.String())
	}
}

func TestRecordCommissionIsIdempotentPerOrderAndCode(t *testing.T) {
	svc, _, db := setupCommissionServiceTest(t)
	createTestParticipant(t, db, "AFF003", constants.TierAffiliate, constants.ParticipantStatusActive)

	input := RecordCommissionInput{
		OrderID:       "ORD-1003",
		ReferringCode: "AFF003",
		GrossAmount:   decimal.NewFromInt(500),
	}
	first, err := svc.RecordCommission(context.Background(), input)
	if err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	second, err := svc.RecordCommission(context.Background(), input)
	if err != nil {
		t.Fatalf("redelivered record failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same entry on redelivery, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&models.CommissionEntry{}).Where("order_id = ?", "ORD-1003").Count(&count).Error; err != nil {
		t.Fatalf("count entries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one entry, got %d", count)
	}
}

func TestRecordCommissionRejectsUnknownAndDisabledCodes(t *testing.T) {
	svc, _, db := setupCommissionServiceTest(t)
	createTestParticipant(t, db, "AFF004", constants.TierAffiliate, constants.ParticipantStatusDisabled)

	_, err := svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1004",
		ReferringCode: "NOPE",
		GrossAmount:   decimal.NewFromInt(100),
	})
	if !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}

	_, err = svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1004",
		ReferringCode: "AFF004",
		GrossAmount:   decimal.NewFromInt(100),
	})
	if !errors.Is(err, ErrParticipantDisabled) {
		t.Fatalf("expected ErrParticipantDisabled, got %v", err)
	}
}

func TestConfirmDeliveryCreditsPendingExactlyOnce(t *testing.T) {
	svc, _, db := setupCommissionServiceTest(t)
	createTestParticipant(t, db, "AFF005", constants.TierAffiliate, constants.ParticipantStatusActive)

	if _, err := svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1005",
		ReferringCode: "AFF005",
		GrossAmount:   decimal.NewFromInt(300),
	}); err != nil {
		t.Fatalf("record commission failed: %v", err)
	}

	affected, err := svc.ConfirmDelivery(context.Background(), "ORD-1005")
	if err != nil {
		t.Fatalf("confirm delivery failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 credited entry, got %d", affected)
	}

	again, err := svc.ConfirmDelivery(context.Background(), "ORD-1005")
	if err != nil {
		t.Fatalf("repeat confirm failed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected repeat confirm to credit nothing, got %d", again)
	}

	entries, err := svc.ListByOrder("ORD-1005")
	if err != nil {
		t.Fatalf("list by order failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != constants.CommissionEntryStatusCredited {
		t.Fatalf("expected single credited entry, got %+v", entries)
	}
	if entries[0].CreditedAt == nil {
		t.Fatalf("expected credited_at to be set")
	}
}

func TestCancelOrderRejectsPendingOnly(t *testing.T) {
	svc, _, db := setupCommissionServiceTest(t)
	createTestParticipant(t, db, "AFF006", constants.TierAffiliate, constants.ParticipantStatusActive)

	if _, err := svc.RecordCommission(context.Background(), RecordCommissionInput{
		OrderID:       "ORD-1006",
		ReferringCode: "AFF006",
		GrossAmount:   decimal.NewFromInt(400),
	}); err != nil {
		t.Fatalf("record commission failed: %v", err)
	}
	if _, err := svc.ConfirmDelivery(context.Background(), "ORD-1006"); err != nil {
		t.Fatalf("confirm delivery failed: %v", err)
	}

	affected, err := svc.CancelOrder(context.Background(), "ORD-1006", "refund")
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected credited entry untouched by cancel, got %d", affected)
	}
}
