package constants

// 分销层级常量
const (
	TierAffiliate = "affiliate"
	TierBranch    = "branch"
	TierArea      = "area"
	TierState     = "state"
)

// 参与者状态常量
const (
	ParticipantStatusActive   = "active"
	ParticipantStatusDisabled = "disabled"
)

// 佣金入账状态常量
const (
	CommissionEntryStatusPending  = "pending"
	CommissionEntryStatusCredited = "credited"
	CommissionEntryStatusRejected = "rejected"
)

// 提现申请状态常量
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
	WithdrawalStatusPaid     = "paid"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskWithdrawalPaidNotify   = "withdrawal:paid_notify"
	TaskCommissionCreditNotify = "commission:credit_notify"
)

// JWT 主体类型常量
const (
	AuthSubjectAdmin       = "admin"
	AuthSubjectParticipant = "participant"
)

// Tiers 全部层级列表（用于校验与遍历）
var Tiers = []string{TierAffiliate, TierBranch, TierArea, TierState}

// IsValidTier 判断层级是否合法
func IsValidTier(tier string) bool {
	switch tier {
	case TierAffiliate, TierBranch, TierArea, TierState:
		return true
	}
	return false
}
