package service

import (
	"context"
	"errors"

	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/models"
	"github.com/shopspring/decimal"
)

var percentBase = decimal.NewFromInt(100)

// SplitCalculator 分成计算器：按层级当前比例拆分毛佣金。
// 比例在计算时刻取快照写入流水，后续费率调整不影响已生成的流水。
type SplitCalculator struct {
	rates *RateService
}

// NewSplitCalculator 创建分成计算器
func NewSplitCalculator(rates *RateService) *SplitCalculator {
	return &SplitCalculator{rates: rates}
}

// ComputeShare 计算层级分成：返回比例快照与分成金额。
// 费率未配置时按 0% 降级并记录告警，保证佣金事件不丢失。
func (c *SplitCalculator) ComputeShare(ctx context.Context, grossAmount decimal.Decimal, tier string) (decimal.Decimal, models.Money, error) {
	rate, err := c.rates.CurrentRate(ctx, tier)
	if err != nil {
		if errors.Is(err, ErrRateNotConfigured) {
			logger.Warnw("commission rate missing, degrading to zero", "tier", tier)
			return decimal.Zero, models.NewMoneyFromDecimal(decimal.Zero), nil
		}
		return decimal.Zero, models.Money{}, err
	}
	return rate, ApplyRate(grossAmount, rate), nil
}

// ApplyRate 按比例快照重新推导分成金额，四舍五入保留两位小数。
// 同一 (毛额, 比例) 输入多次计算结果一致。
func ApplyRate(grossAmount, ratePercent decimal.Decimal) models.Money {
	share := grossAmount.Mul(ratePercent).Div(percentBase).Round(2)
	return models.NewMoneyFromDecimal(share)
}
