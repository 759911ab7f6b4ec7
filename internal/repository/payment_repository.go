package repository

import (
	"strings"

	"github.com/tierledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentRepository 打款记录数据访问接口
type PaymentRepository interface {
	Create(record *models.PaymentRecord) error
	List(filter PaymentListFilter) ([]models.PaymentRecord, int64, error)
	SumAmountByRecipient(code string) (decimal.Decimal, error)
	ListTransactionIDs(transactionIDs []string) ([]string, error)
}

// GormPaymentRepository GORM 打款记录仓储
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建打款记录仓储
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create 写入打款记录
func (r *GormPaymentRepository) Create(record *models.PaymentRecord) error {
	return r.db.Create(record).Error
}

// List 查询打款记录
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.PaymentRecord, int64, error) {
	query := r.db.Model(&models.PaymentRecord{})
	if code := strings.TrimSpace(filter.RecipientCode); code != "" {
		query = query.Where("recipient_code = ?", strings.ToUpper(code))
	}
	if tier := strings.TrimSpace(filter.RecipientTier); tier != "" {
		query = query.Where("recipient_tier = ?", tier)
	}
	if filter.PaidFrom != nil {
		query = query.Where("paid_at >= ?", *filter.PaidFrom)
	}
	if filter.PaidTo != nil {
		query = query.Where("paid_at <= ?", *filter.PaidTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.PaymentRecord
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumAmountByRecipient 汇总某参与者的累计实付金额
func (r *GormPaymentRepository) SumAmountByRecipient(code string) (decimal.Decimal, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.PaymentRecord{}).
		Where("recipient_code = ?", normalized).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// ListTransactionIDs 过滤出已存在打款记录的流水号（对账用）
func (r *GormPaymentRepository) ListTransactionIDs(transactionIDs []string) ([]string, error) {
	if len(transactionIDs) == 0 {
		return []string{}, nil
	}
	var found []string
	if err := r.db.Model(&models.PaymentRecord{}).
		Where("transaction_id IN ?", transactionIDs).
		Pluck("transaction_id", &found).Error; err != nil {
		return nil, err
	}
	return found, nil
}
