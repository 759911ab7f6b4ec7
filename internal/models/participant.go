package models

import (
	"time"
)

// Participant 分销参与者目录（由外部账号系统维护，引擎只读引用）
// 上级链路（branch/area/state）在同步时固化到本行，避免运行期递归查询。
type Participant struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                   // 主键
	Code       string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"`      // 推荐码
	Tier       string    `gorm:"type:varchar(16);not null;index" json:"tier"`            // 层级
	Name       string    `gorm:"type:varchar(100)" json:"name"`                          // 显示名称
	BranchCode string    `gorm:"type:varchar(32);index" json:"branch_code"`              // 上级分支码
	AreaCode   string    `gorm:"type:varchar(32);index" json:"area_code"`                // 上级区域码
	StateCode  string    `gorm:"type:varchar(32);index" json:"state_code"`               // 上级州级码
	Status     string    `gorm:"type:varchar(20);not null;index;default:'active'" json:"status"` // 状态
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (Participant) TableName() string {
	return "participants"
}
