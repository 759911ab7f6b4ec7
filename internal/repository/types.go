package repository

import "time"

// LedgerListFilter 查询佣金台账的过滤条件
type LedgerListFilter struct {
	Page          int
	PageSize      int
	ReferringCode string
	OrderID       string
	SourceTier    string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// WithdrawalListFilter 查询提现申请的过滤条件
type WithdrawalListFilter struct {
	Page            int
	PageSize        int
	ParticipantCode string
	Status          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// PaymentListFilter 查询打款记录的过滤条件
type PaymentListFilter struct {
	Page          int
	PageSize      int
	RecipientCode string
	RecipientTier string
	PaidFrom      *time.Time
	PaidTo        *time.Time
}

// ParticipantListFilter 查询参与者目录的过滤条件
type ParticipantListFilter struct {
	Page     int
	PageSize int
	Tier     string
	Status   string
	Keyword  string
}
