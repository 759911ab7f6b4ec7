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

func setupRateServiceTest(t *testing.T) *RateService {
	t.Helper()

	dsn := fmt.Sprintf("file:rate_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CommissionRate{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewRateService(repository.NewRateRepository(db))
}

func TestCurrentRateFallsBackToDefault(t *testing.T) {
	svc := setupRateServiceTest(t)

	rate, err := svc.CurrentRate(context.Background(), constants.TierBranch)
	if err != nil {
		t.Fatalf("current rate failed: %v", err)
	}
	if rate.String() != "5" {
		t.Fatalf("expected default branch rate 5, got %s", rate.String())
	}
}

func TestUpdateRateOverridesDefault(t *testing.T) {
	svc := setupRateServiceTest(t)

	row, err := svc.UpdateRate(context.Background(), constants.TierArea, decimal.NewFromFloat(2.5), "admin")
	if err != nil {
		t.Fatalf("update rate failed: %v", err)
	}
	if row.UpdatedBy != "admin" {
		t.Fatalf("expected updated_by admin, got %s", row.UpdatedBy)
	}

	rate, err := svc.CurrentRate(context.Background(), constants.TierArea)
	if err != nil {
		t.Fatalf("current rate failed: %v", err)
	}
	if rate.String() != "2.5" {
		t.Fatalf("expected rate 2.5, got %s", rate.String())
	}
}

func TestUpdateRateValidatesRange(t *testing.T) {
	svc := setupRateServiceTest(t)

	if _, err := svc.UpdateRate(context.Background(), constants.TierAffiliate, decimal.NewFromInt(101), "admin"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for rate above 100, got %v", err)
	}
	if _, err := svc.UpdateRate(context.Background(), constants.TierAffiliate, decimal.NewFromInt(-1), "admin"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for negative rate, got %v", err)
	}
	if _, err := svc.UpdateRate(context.Background(), "vip", decimal.NewFromInt(10), "admin"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown tier, got %v", err)
	}
}

func TestListRatesMarksUnconfiguredTiersAsDefault(t *testing.T) {
	svc := setupRateServiceTest(t)

	if _, err := svc.UpdateRate(context.Background(), constants.TierAffiliate, decimal.NewFromInt(70), "admin"); err != nil {
		t.Fatalf("update rate failed: %v", err)
	}

	items, err := svc.ListRates()
	if err != nil {
		t.Fatalf("list rates failed: %v", err)
	}
	if len(items) != len(constants.Tiers) {
		t.Fatalf("expected %d tiers, got %d", len(constants.Tiers), len(items))
	}
	for _, item := range items {
		if item.Tier == constants.TierAffiliate {
			if item.IsDefault {
				t.Fatalf("expected affiliate rate marked configured")
			}
			continue
		}
		if !item.IsDefault {
			t.Fatalf("expected tier %s marked default", item.Tier)
		}
	}
}
