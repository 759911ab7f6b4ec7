package service

import (
	"strings"
	"time"

	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/repository"
)

// normalizeCode 推荐码入库与查询前统一大写。外部系统（JWT、回调）
// 传入的大小写不可控，台账、提现、打款各表均以大写形式存储与聚合，
// 服务入口必须先归一，否则聚合查询会漏配。
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParticipantService 参与者目录服务。目录由外部账号系统维护，
// 引擎侧仅做同步写入与只读查询。
type ParticipantService struct {
	repo repository.ParticipantRepository
}

// NewParticipantService 创建参与者目录服务
func NewParticipantService(repo repository.ParticipantRepository) *ParticipantService {
	return &ParticipantService{repo: repo}
}

// SyncParticipantInput 目录同步输入（来自外部账号系统）
type SyncParticipantInput struct {
	Code       string
	Tier       string
	Name       string
	BranchCode string
	AreaCode   string
	StateCode  string
	Status     string
}

// Sync 写入或更新一条参与者目录记录
func (s *ParticipantService) Sync(input SyncParticipantInput) (*models.Participant, error) {
	code := normalizeCode(input.Code)
	tier := strings.ToLower(strings.TrimSpace(input.Tier))
	if code == "" || !constants.IsValidTier(tier) {
		return nil, ErrValidation
	}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = constants.ParticipantStatusActive
	}
	if status != constants.ParticipantStatusActive && status != constants.ParticipantStatusDisabled {
		return nil, ErrValidation
	}

	now := time.Now()
	participant := &models.Participant{
		Code:       code,
		Tier:       tier,
		Name:       strings.TrimSpace(input.Name),
		BranchCode: normalizeCode(input.BranchCode),
		AreaCode:   normalizeCode(input.AreaCode),
		StateCode:  normalizeCode(input.StateCode),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Upsert(participant); err != nil {
		return nil, err
	}
	return s.repo.GetByCode(code)
}

// Get 按推荐码查询参与者
func (s *ParticipantService) Get(code string) (*models.Participant, error) {
	normalized := normalizeCode(code)
	if normalized == "" {
		return nil, ErrValidation
	}
	participant, err := s.repo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, ErrParticipantNotFound
	}
	return participant, nil
}

// List 分页查询参与者目录
func (s *ParticipantService) List(filter repository.ParticipantListFilter) ([]models.Participant, int64, error) {
	return s.repo.List(filter)
}
