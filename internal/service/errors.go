package service

import "errors"

// 业务层统一错误定义，处理层通过 errors.Is 映射为响应码。
var (
	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrValidation 请求参数不合法
	ErrValidation = errors.New("invalid parameter")
	// ErrParticipantNotFound 参与方编码不存在
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrParticipantDisabled 参与方已停用
	ErrParticipantDisabled = errors.New("participant disabled")
	// ErrRateNotConfigured 该层级未配置佣金比例
	ErrRateNotConfigured = errors.New("commission rate not configured")
	// ErrBelowMinimum 提现金额低于最低限额
	ErrBelowMinimum = errors.New("amount below minimum withdrawal")
	// ErrInsufficientBalance 可提余额不足
	ErrInsufficientBalance = errors.New("insufficient available balance")
	// ErrDuplicatePendingRequest 已存在待审核的提现申请
	ErrDuplicatePendingRequest = errors.New("pending withdrawal already exists")
	// ErrAlreadyProcessed 提现申请已被处理
	ErrAlreadyProcessed = errors.New("withdrawal already processed")
	// ErrNotApproved 提现申请尚未批准
	ErrNotApproved = errors.New("withdrawal not approved")
)
