package models

import (
	"time"
)

// CommissionRate 层级佣金比例表（管理员可调；历史入账只认快照，不回溯）
type CommissionRate struct {
	ID          uint      `gorm:"primarykey" json:"id"`                             // 主键
	Tier        string    `gorm:"type:varchar(16);not null;uniqueIndex" json:"tier"` // 层级
	RatePercent Money     `gorm:"type:decimal(10,2);not null;default:0" json:"rate_percent"` // 比例（百分比）
	UpdatedBy   string    `gorm:"type:varchar(64)" json:"updated_by"`               // 最后修改人
	CreatedAt   time.Time `json:"created_at"`                                       // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                       // 更新时间
}

// TableName 指定表名
func (CommissionRate) TableName() string {
	return "commission_rates"
}
