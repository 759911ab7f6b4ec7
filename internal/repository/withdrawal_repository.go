package repository

import (
	"errors"
	"strings"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalRepository 提现申请数据访问接口
type WithdrawalRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) WithdrawalRepository

	Create(req *models.WithdrawalRequest) error
	Update(req *models.WithdrawalRequest) error
	GetByID(id uint) (*models.WithdrawalRequest, error)
	GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error)
	HasPendingByCode(code string) (bool, error)
	SumRequestedByCode(code string, statuses []string) (decimal.Decimal, error)
	SumNetPayableByCode(code string, statuses []string) (decimal.Decimal, error)
	List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error)
	ListByStatus(status string, limit int) ([]models.WithdrawalRequest, error)
}

// GormWithdrawalRepository GORM 提现申请仓储
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository 创建提现申请仓储
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) WithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Transaction 执行事务
func (r *GormWithdrawalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建提现申请
func (r *GormWithdrawalRepository) Create(req *models.WithdrawalRequest) error {
	return r.db.Create(req).Error
}

// Update 更新提现申请
func (r *GormWithdrawalRepository) Update(req *models.WithdrawalRequest) error {
	return r.db.Save(req).Error
}

// GetByID 按ID查询提现申请
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByIDForUpdate 按ID锁定查询提现申请
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := lockForUpdate(r.db).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// HasPendingByCode 判断参与者是否已有待审申请
func (r *GormWithdrawalRepository) HasPendingByCode(code string) (bool, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return false, nil
	}
	var total int64
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Where("participant_code = ? AND status = ?", normalized, constants.WithdrawalStatusPending).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

// SumRequestedByCode 汇总指定状态的申请金额（余额推导用）
func (r *GormWithdrawalRepository) SumRequestedByCode(code string, statuses []string) (decimal.Decimal, error) {
	return r.sumByCode("requested_amount", code, statuses)
}

// SumNetPayableByCode 汇总指定状态的净付金额（报表用）
func (r *GormWithdrawalRepository) SumNetPayableByCode(code string, statuses []string) (decimal.Decimal, error) {
	return r.sumByCode("net_payable", code, statuses)
}

func (r *GormWithdrawalRepository) sumByCode(column, code string, statuses []string) (decimal.Decimal, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Where("participant_code = ? AND status IN ?", normalized, statuses).
		Select("COALESCE(SUM(" + column + "), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// List 查询提现申请列表
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	query := r.db.Model(&models.WithdrawalRequest{})
	if code := strings.TrimSpace(filter.ParticipantCode); code != "" {
		query = query.Where("participant_code = ?", strings.ToUpper(code))
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

	var rows []models.WithdrawalRequest
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByStatus 按状态查询提现申请（对账轮询用）
func (r *GormWithdrawalRepository) ListByStatus(status string, limit int) ([]models.WithdrawalRequest, error) {
	normalized := strings.TrimSpace(status)
	if normalized == "" {
		return []models.WithdrawalRequest{}, nil
	}
	query := r.db.Where("status = ?", normalized).Order("id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.WithdrawalRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
