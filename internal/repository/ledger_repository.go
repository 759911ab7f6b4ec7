package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerRepository 佣金台账数据访问接口。台账只追加，行永不删除，
// 唯一允许的变更是带前置状态保护的状态迁移。
type LedgerRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) LedgerRepository

	Create(entry *models.CommissionEntry) error
	GetByID(id uint) (*models.CommissionEntry, error)
	GetByOrderAndCode(orderID, referringCode string) (*models.CommissionEntry, error)
	List(filter LedgerListFilter) ([]models.CommissionEntry, int64, error)
	ListByOrder(orderID string, statuses []string) ([]models.CommissionEntry, error)
	TransitionByOrder(orderID, from, to, reason string, at time.Time) (int64, error)
	SumSharesByCode(code string, statuses []string) (decimal.Decimal, error)
	SumSharesByCodes(codes []string, status string) (decimal.Decimal, error)
}

// GormLedgerRepository GORM 佣金台账仓储
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建佣金台账仓储
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerRepository{db: tx}
}

// Transaction 执行事务
func (r *GormLedgerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 写入台账行。(order_id, referring_code) 唯一索引由数据库保证，
// 重复投递由调用方按唯一冲突处理。
func (r *GormLedgerRepository) Create(entry *models.CommissionEntry) error {
	return r.db.Create(entry).Error
}

// GetByID 按ID查询台账行
func (r *GormLedgerRepository) GetByID(id uint) (*models.CommissionEntry, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.CommissionEntry
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByOrderAndCode 按订单与推荐码查询台账行
func (r *GormLedgerRepository) GetByOrderAndCode(orderID, referringCode string) (*models.CommissionEntry, error) {
	order := strings.TrimSpace(orderID)
	code := strings.ToUpper(strings.TrimSpace(referringCode))
	if order == "" || code == "" {
		return nil, nil
	}
	var row models.CommissionEntry
	if err := r.db.Where("order_id = ? AND referring_code = ?", order, code).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List 查询台账列表
func (r *GormLedgerRepository) List(filter LedgerListFilter) ([]models.CommissionEntry, int64, error) {
	query := r.db.Model(&models.CommissionEntry{})
	if code := strings.TrimSpace(filter.ReferringCode); code != "" {
		query = query.Where("referring_code = ?", strings.ToUpper(code))
	}
	if orderID := strings.TrimSpace(filter.OrderID); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}
	if tier := strings.TrimSpace(filter.SourceTier); tier != "" {
		query = query.Where("source_tier = ?", tier)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.CommissionEntry
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByOrder 按订单查询台账行
func (r *GormLedgerRepository) ListByOrder(orderID string, statuses []string) ([]models.CommissionEntry, error) {
	order := strings.TrimSpace(orderID)
	if order == "" {
		return []models.CommissionEntry{}, nil
	}
	query := r.db.Model(&models.CommissionEntry{}).Where("order_id = ?", order)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var rows []models.CommissionEntry
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TransitionByOrder 带前置状态保护的批量状态迁移（compare-and-swap）。
// WHERE status = from 保证并发确认不会把同一行入账两次；
// 返回实际迁移的行数，0 行属于正常的幂等重放。
func (r *GormLedgerRepository) TransitionByOrder(orderID, from, to, reason string, at time.Time) (int64, error) {
	order := strings.TrimSpace(orderID)
	if order == "" {
		return 0, nil
	}
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	if to == constants.CommissionEntryStatusCredited {
		updates["credited_at"] = at
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		updates["reject_reason"] = reason
	}
	result := r.db.Model(&models.CommissionEntry{}).
		Where("order_id = ? AND status = ?", order, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SumSharesByCode 汇总指定状态的份额金额
func (r *GormLedgerRepository) SumSharesByCode(code string, statuses []string) (decimal.Decimal, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.CommissionEntry{}).
		Where("referring_code = ? AND status IN ?", normalized, statuses).
		Select("COALESCE(SUM(tier_share), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// SumSharesByCodes 汇总一组推荐码在指定状态下的份额金额（子树报表）
func (r *GormLedgerRepository) SumSharesByCodes(codes []string, status string) (decimal.Decimal, error) {
	if len(codes) == 0 || strings.TrimSpace(status) == "" {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.CommissionEntry{}).
		Where("referring_code IN ? AND status = ?", codes, strings.TrimSpace(status)).
		Select("COALESCE(SUM(tier_share), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}
