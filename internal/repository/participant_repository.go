package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParticipantRepository 参与者目录数据访问接口
type ParticipantRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ParticipantRepository

	GetByCode(code string) (*models.Participant, error)
	GetByCodeForUpdate(code string) (*models.Participant, error)
	Upsert(participant *models.Participant) error
	List(filter ParticipantListFilter) ([]models.Participant, int64, error)
	ListAffiliateCodesByManager(managerTier, managerCode string) ([]string, error)
}

// GormParticipantRepository GORM 参与者目录仓储
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository 创建参与者目录仓储
func NewParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormParticipantRepository) WithTx(tx *gorm.DB) ParticipantRepository {
	if tx == nil {
		return r
	}
	return &GormParticipantRepository{db: tx}
}

// Transaction 执行事务
func (r *GormParticipantRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByCode 按推荐码查询参与者
func (r *GormParticipantRepository) GetByCode(code string) (*models.Participant, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var row models.Participant
	if err := r.db.Where("code = ?", normalized).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByCodeForUpdate 按推荐码锁定查询参与者。
// 提现申请与审批以该行锁串行化同一参与者的余额校验。
func (r *GormParticipantRepository) GetByCodeForUpdate(code string) (*models.Participant, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var row models.Participant
	if err := lockForUpdate(r.db).Where("code = ?", normalized).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Upsert 同步参与者目录（外部账号系统推送）
func (r *GormParticipantRepository) Upsert(participant *models.Participant) error {
	if participant == nil {
		return nil
	}
	participant.Code = strings.ToUpper(strings.TrimSpace(participant.Code))
	participant.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier", "name", "branch_code", "area_code", "state_code", "status", "updated_at",
		}),
	}).Create(participant).Error
}

// List 查询参与者目录
func (r *GormParticipantRepository) List(filter ParticipantListFilter) ([]models.Participant, int64, error) {
	query := r.db.Model(&models.Participant{})
	if tier := strings.TrimSpace(filter.Tier); tier != "" {
		query = query.Where("tier = ?", tier)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("(code LIKE ? OR name LIKE ?)", strings.ToUpper(like), like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Participant
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAffiliateCodesByManager 查询管理层级子树下全部推广者推荐码。
// 子树关系在同步时固化到 branch/area/state 列，按列等值匹配即可。
func (r *GormParticipantRepository) ListAffiliateCodesByManager(managerTier, managerCode string) ([]string, error) {
	code := strings.ToUpper(strings.TrimSpace(managerCode))
	if code == "" {
		return []string{}, nil
	}
	var column string
	switch strings.TrimSpace(managerTier) {
	case constants.TierBranch:
		column = "branch_code"
	case constants.TierArea:
		column = "area_code"
	case constants.TierState:
		column = "state_code"
	default:
		return []string{}, nil
	}

	var codes []string
	if err := r.db.Model(&models.Participant{}).
		Where(column+" = ? AND tier = ?", code, constants.TierAffiliate).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
