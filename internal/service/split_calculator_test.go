package service

import (
	"context"
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

func setupSplitCalculatorTest(t *testing.T) (*SplitCalculator, *RateService) {
	t.Helper()

	dsn := fmt.Sprintf("file:split_calculator_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CommissionRate{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	rateSvc := NewRateService(repository.NewRateRepository(db))
	return NewSplitCalculator(rateSvc), rateSvc
}

func TestApplyRateRoundsHalfUpToTwoDecimals(t *testing.T) {
	gross := decimal.NewFromFloat(333.33)
	rate := decimal.NewFromInt(5)

	share := ApplyRate(gross, rate)
	if share.Decimal.String() != "16.67" {
		t.Fatalf("expected share 16.67, got %s", share.Decimal.String())
	}
}

func TestApplyRateIsIdempotent(t *testing.T) {
	gross := decimal.NewFromFloat(1234.56)
	rate := decimal.NewFromFloat(7.25)

	first := ApplyRate(gross, rate)
	second := ApplyRate(gross, rate)
	if !first.Decimal.Equal(second.Decimal) {
		t.Fatalf("expected identical shares, got %s and %s", first.Decimal, second.Decimal)
	}
}

func TestComputeShareUsesConfiguredRate(t *testing.T) {
	calc, rateSvc := setupSplitCalculatorTest(t)

	if _, err := rateSvc.UpdateRate(context.Background(), constants.TierAffiliate, decimal.NewFromInt(70), "admin"); err != nil {
		t.Fatalf("update rate failed: %v", err)
	}

	rate, share, err := calc.ComputeShare(context.Background(), decimal.NewFromInt(1000), constants.TierAffiliate)
	if err != nil {
		t.Fatalf("compute share failed: %v", err)
	}
	if rate.String() != "70" {
		t.Fatalf("expected rate snapshot 70, got %s", rate.String())
	}
	if share.Decimal.String() != "700" {
		t.Fatalf("expected share 700, got %s", share.Decimal.String())
	}
}

func TestComputeShareFallsBackToTierDefaults(t *testing.T) {
	calc, _ := setupSplitCalculatorTest(t)

	cases := []struct {
		tier string
		want string
	}{
		{constants.TierAffiliate, "100"},
		{constants.TierBranch, "5"},
		{constants.TierArea, "2"},
		{constants.TierState, "0"},
	}
	for _, tc := range cases {
		rate, _, err := calc.ComputeShare(context.Background(), decimal.NewFromInt(500), tc.tier)
		if err != nil {
			t.Fatalf("compute share for %s failed: %v", tc.tier, err)
		}
		if rate.String() != tc.want {
			t.Fatalf("tier %s: expected default rate %s, got %s", tc.tier, tc.want, rate.String())
		}
	}
}

func TestComputeShareRejectsUnknownTier(t *testing.T) {
	calc, _ := setupSplitCalculatorTest(t)

	if _, _, err := calc.ComputeShare(context.Background(), decimal.NewFromInt(100), "regional"); err == nil {
		t.Fatalf("expected error for unknown tier")
	}
}
