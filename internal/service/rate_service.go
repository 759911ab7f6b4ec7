package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tierledger/internal/cache"
	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const rateCacheTTL = 10 * time.Minute

// 层级缺省比例：费率表未配置时的兜底值。
var defaultRates = map[string]decimal.Decimal{
	constants.TierAffiliate: decimal.NewFromInt(100),
	constants.TierBranch:    decimal.NewFromInt(5),
	constants.TierArea:      decimal.NewFromInt(2),
	constants.TierState:     decimal.Zero,
}

// RateService 佣金费率表服务
type RateService struct {
	repo repository.RateRepository
}

// NewRateService 创建费率表服务
func NewRateService(repo repository.RateRepository) *RateService {
	return &RateService{repo: repo}
}

// RateItem 费率表条目
type RateItem struct {
	Tier        string       `json:"tier"`
	RatePercent models.Money `json:"rate_percent"`
	IsDefault   bool         `json:"is_default"`
	UpdatedBy   string       `json:"updated_by,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// CurrentRate 查询指定层级的当前比例。表中无记录时回退到层级缺省值，
// 缺省也不存在时返回 ErrRateNotConfigured。
func (s *RateService) CurrentRate(ctx context.Context, tier string) (decimal.Decimal, error) {
	t := strings.ToLower(strings.TrimSpace(tier))
	if !constants.IsValidTier(t) {
		return decimal.Zero, ErrValidation
	}

	cacheKey := rateCacheKey(t)
	var cached string
	if ok, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		if rate, perr := decimal.NewFromString(cached); perr == nil {
			return rate, nil
		}
	}

	row, err := s.repo.GetByTier(t)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}
	var rate decimal.Decimal
	if row != nil {
		rate = row.RatePercent.Decimal
	} else {
		fallback, ok := defaultRates[t]
		if !ok {
			return decimal.Zero, ErrRateNotConfigured
		}
		rate = fallback
	}

	if err := cache.SetJSON(ctx, cacheKey, rate.String(), rateCacheTTL); err != nil {
		logger.Warnw("rate cache write failed", "tier", t, "error", err)
	}
	return rate, nil
}

// UpdateRate 管理端更新层级比例并失效缓存
func (s *RateService) UpdateRate(ctx context.Context, tier string, ratePercent decimal.Decimal, updatedBy string) (*models.CommissionRate, error) {
	t := strings.ToLower(strings.TrimSpace(tier))
	if !constants.IsValidTier(t) {
		return nil, ErrValidation
	}
	if ratePercent.IsNegative() || ratePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrValidation
	}

	row, err := s.repo.Upsert(t, ratePercent, strings.TrimSpace(updatedBy))
	if err != nil {
		return nil, err
	}
	if err := cache.Del(ctx, rateCacheKey(t)); err != nil {
		logger.Warnw("rate cache invalidate failed", "tier", t, "error", err)
	}
	return row, nil
}

// ListRates 返回四个层级的完整费率视图，未配置的层级以缺省值标记返回
func (s *RateService) ListRates() ([]RateItem, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	configured := make(map[string]models.CommissionRate, len(rows))
	for _, row := range rows {
		configured[row.Tier] = row
	}

	items := make([]RateItem, 0, len(constants.Tiers))
	for _, tier := range constants.Tiers {
		if row, ok := configured[tier]; ok {
			updatedAt := row.UpdatedAt
			items = append(items, RateItem{
				Tier:        tier,
				RatePercent: row.RatePercent,
				UpdatedBy:   row.UpdatedBy,
				UpdatedAt:   &updatedAt,
			})
			continue
		}
		items = append(items, RateItem{
			Tier:        tier,
			RatePercent: models.NewMoneyFromDecimal(defaultRates[tier]),
			IsDefault:   true,
		})
	}
	return items, nil
}

func rateCacheKey(tier string) string {
	return fmt.Sprintf("rate:%s", tier)
}
