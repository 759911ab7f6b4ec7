package models

import (
	"time"
)

// CommissionEntry 佣金台账行：一条 (订单, 推荐码) 佣金事件
// 金额与比例在创建时固化，此后只允许 pending -> credited / pending -> rejected
// 状态迁移，行本身永不删除。
type CommissionEntry struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                                              // 主键
	OrderID          string     `gorm:"type:varchar(64);not null;index;index:idx_commission_entry_unique,unique" json:"order_id"` // 外部订单ID
	ReferringCode    string     `gorm:"type:varchar(32);not null;index;index:idx_commission_entry_unique,unique" json:"referring_code"` // 推荐码
	SourceTier       string     `gorm:"type:varchar(16);not null;index" json:"source_tier"`                                // 推荐码所属层级
	GrossAmount      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"gross_amount"`                         // 佣金总额（分成前）
	TierRateSnapshot Money      `gorm:"type:decimal(10,2);not null;default:0" json:"tier_rate_snapshot"`                   // 创建时的层级比例快照
	TierShare        Money      `gorm:"type:decimal(20,2);not null;default:0" json:"tier_share"`                           // 该层级应得份额
	ProductID        string     `gorm:"type:varchar(64)" json:"product_id"`                                                // 商品ID
	ProductName      string     `gorm:"type:varchar(200)" json:"product_name"`                                             // 商品名称
	Quantity         int        `gorm:"not null;default:0" json:"quantity"`                                                // 数量
	UnitPrice        Money      `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                           // 单价
	OrderAmount      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"order_amount"`                         // 订单金额
	CustomerName     string     `gorm:"type:varchar(100)" json:"customer_name"`                                            // 客户名称（仅报表展示）
	Status           string     `gorm:"type:varchar(20);not null;index" json:"status"`                                     // 状态
	RejectReason     string     `gorm:"type:varchar(255)" json:"reject_reason"`                                            // 失效原因
	CreditedAt       *time.Time `gorm:"index" json:"credited_at,omitempty"`                                                // 确认入账时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                                           // 创建时间
	UpdatedAt        time.Time  `json:"updated_at"`                                                                        // 更新时间
}

// TableName 指定表名
func (CommissionEntry) TableName() string {
	return "commission_entries"
}
