package models

import (
	"time"
)

// WithdrawalRequest 提现申请：pending -> approved -> paid，或 pending -> rejected
// 手续费与净付金额在申请时固化，后续费率调整不回溯。
type WithdrawalRequest struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                          // 主键
	ReferenceNo     string     `gorm:"type:varchar(40);not null;uniqueIndex" json:"reference_no"`     // 申请单号
	ParticipantCode string     `gorm:"type:varchar(32);not null;index" json:"participant_code"`       // 参与者推荐码
	RequestedAmount Money      `gorm:"type:decimal(20,2);not null;default:0" json:"requested_amount"` // 申请金额
	FeePercent      Money      `gorm:"type:decimal(10,2);not null;default:0" json:"fee_percent"`      // 手续费比例快照
	FeeAmount       Money      `gorm:"type:decimal(20,2);not null;default:0" json:"fee_amount"`       // 手续费金额
	NetPayable      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"net_payable"`      // 净付金额
	BalanceBefore   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"balance_before"`   // 申请时可用余额快照
	PayoutMethod    string     `gorm:"type:varchar(32)" json:"payout_method"`                         // 收款方式（仅展示）
	PayoutAccount   string     `gorm:"type:varchar(128)" json:"payout_account"`                       // 收款账号（仅展示）
	Status          string     `gorm:"type:varchar(20);not null;index" json:"status"`                 // 状态
	ReviewNotes     string     `gorm:"type:varchar(255)" json:"review_notes"`                         // 审核备注
	RejectReason    string     `gorm:"type:varchar(255)" json:"reject_reason"`                        // 驳回原因
	ReviewedBy      string     `gorm:"type:varchar(64)" json:"reviewed_by"`                           // 审核人
	TransactionID   string     `gorm:"type:varchar(100)" json:"transaction_id"`                       // 打款流水号（paid 时写入）
	RequestedAt     time.Time  `gorm:"index" json:"requested_at"`                                     // 申请时间
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`                                         // 审核时间
	PaidAt          *time.Time `json:"paid_at,omitempty"`                                             // 打款时间
	CreatedAt       time.Time  `json:"created_at"`                                                    // 创建时间
	UpdatedAt       time.Time  `json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
