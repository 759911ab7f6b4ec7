package models

import (
	"time"
)

// PaymentRecord 管理员手工打款记录（任意层级），仅用于报表与对账，
// 不参与可用余额推导（余额权威来源是提现申请的 paid 状态）。
type PaymentRecord struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                        // 主键
	RecipientCode string    `gorm:"type:varchar(32);not null;index" json:"recipient_code"`       // 收款参与者推荐码
	RecipientTier string    `gorm:"type:varchar(16);not null;index" json:"recipient_tier"`       // 收款层级
	GrossAmount   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"gross_amount"`   // 结算基数金额
	FeeAmount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"fee_amount"`     // 扣除手续费
	Amount        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`         // 实付金额
	TransactionID string    `gorm:"type:varchar(100);not null;index" json:"transaction_id"`      // 打款流水号
	Notes         string    `gorm:"type:varchar(255)" json:"notes"`                              // 备注
	RecordedBy    string    `gorm:"type:varchar(64)" json:"recorded_by"`                         // 记录人
	PaidAt        time.Time `gorm:"index" json:"paid_at"`                                        // 打款日期
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                                  // 更新时间
}

// TableName 指定表名
func (PaymentRecord) TableName() string {
	return "payment_records"
}
