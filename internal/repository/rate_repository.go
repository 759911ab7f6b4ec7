package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/tierledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateRepository 层级比例表数据访问接口
type RateRepository interface {
	GetByTier(tier string) (*models.CommissionRate, error)
	GetAll() ([]models.CommissionRate, error)
	Upsert(tier string, ratePercent decimal.Decimal, updatedBy string) (*models.CommissionRate, error)
}

// GormRateRepository GORM 层级比例表仓储
type GormRateRepository struct {
	db *gorm.DB
}

// NewRateRepository 创建层级比例表仓储
func NewRateRepository(db *gorm.DB) *GormRateRepository {
	return &GormRateRepository{db: db}
}

// GetByTier 按层级查询当前比例
func (r *GormRateRepository) GetByTier(tier string) (*models.CommissionRate, error) {
	normalized := strings.TrimSpace(tier)
	if normalized == "" {
		return nil, nil
	}
	var row models.CommissionRate
	if err := r.db.Where("tier = ?", normalized).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetAll 查询全部层级比例
func (r *GormRateRepository) GetAll() ([]models.CommissionRate, error) {
	var rows []models.CommissionRate
	if err := r.db.Order("tier asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert 写入层级比例（存在则更新）
func (r *GormRateRepository) Upsert(tier string, ratePercent decimal.Decimal, updatedBy string) (*models.CommissionRate, error) {
	now := time.Now()
	row := models.CommissionRate{
		Tier:        strings.TrimSpace(tier),
		RatePercent: models.NewMoneyFromDecimal(ratePercent),
		UpdatedBy:   strings.TrimSpace(updatedBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tier"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate_percent", "updated_by", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return nil, err
	}
	return r.GetByTier(row.Tier)
}
