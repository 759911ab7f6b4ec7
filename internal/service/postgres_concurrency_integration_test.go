//go:build integration
// +build integration

package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tierledger/internal/config"
	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/queue"
	"github.com/tierledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresConcurrencyTest 初始化 PostgreSQL 集成测试环境。
// sqlite 下 FOR UPDATE 是空操作，提现串行化语义只能在 postgres 上验证。
func setupPostgresConcurrencyTest(t *testing.T) (*WithdrawalService, *gorm.DB) {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.WithdrawalRequest{},
		&models.CommissionEntry{},
		&models.Participant{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Participant{},
		&models.CommissionEntry{},
		&models.WithdrawalRequest{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	ledgerRepo := repository.NewLedgerRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	balanceSvc := NewBalanceService(ledgerRepo, withdrawalRepo)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("init queue client failed: %v", err)
	}
	svc := NewWithdrawalService(
		&config.WithdrawalConfig{MinAmount: 100, DefaultFeePercent: 18},
		withdrawalRepo,
		participantRepo,
		balanceSvc,
		queueClient,
	)
	return svc, db
}

func seedPostgresParticipantWithBalance(t *testing.T, db *gorm.DB, code string, share decimal.Decimal) {
	t.Helper()

	now := time.Now()
	participant := models.Participant{
		Code:      code,
		Tier:      constants.TierAffiliate,
		Status:    constants.ParticipantStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&participant).Error; err != nil {
		t.Fatalf("create participant failed: %v", err)
	}
	entry := models.CommissionEntry{
		OrderID:       "ORD-PG-" + code,
		ReferringCode: code,
		SourceTier:    constants.TierAffiliate,
		GrossAmount:   models.NewMoneyFromDecimal(share),
		TierShare:     models.NewMoneyFromDecimal(share),
		Status:        constants.CommissionEntryStatusCredited,
		CreditedAt:    &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("create credited entry failed: %v", err)
	}
}

func TestPostgresConcurrentWithdrawalRequestsSingleWinner(t *testing.T) {
	svc, db := setupPostgresConcurrencyTest(t)
	seedPostgresParticipantWithBalance(t, db, "PGAFF01", decimal.NewFromInt(700))

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = svc.Request(context.Background(), WithdrawalRequestInput{
				ParticipantCode: "PGAFF01",
				Amount:          decimal.NewFromInt(700),
			})
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicatePendingRequest):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || duplicates != 1 {
		t.Fatalf("expected exactly one winner and one duplicate rejection, got %d winners / %d duplicates", succeeded, duplicates)
	}

	var count int64
	if err := db.Model(&models.WithdrawalRequest{}).
		Where("participant_code = ?", "PGAFF01").
		Count(&count).Error; err != nil {
		t.Fatalf("count requests failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one stored request, got %d", count)
	}
}

func TestPostgresConcurrentApproveSingleWinner(t *testing.T) {
	svc, db := setupPostgresConcurrencyTest(t)
	seedPostgresParticipantWithBalance(t, db, "PGAFF02", decimal.NewFromInt(700))

	req, err := svc.Request(context.Background(), WithdrawalRequestInput{
		ParticipantCode: "PGAFF02",
		Amount:          decimal.NewFromInt(700),
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = svc.Approve(context.Background(), req.ID, "admin", "")
		}(i)
	}
	wg.Wait()

	var succeeded, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyProcessed):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one approval and one conflict, got %d approvals / %d conflicts", succeeded, conflicts)
	}

	current, err := svc.Get(req.ID)
	if err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	if current.Status != constants.WithdrawalStatusApproved {
		t.Fatalf("expected approved status, got %s", current.Status)
	}
}
