package queue

import (
	"encoding/json"

	"github.com/tierledger/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskWithdrawalPaidNotify 提现打款完成通知任务
	TaskWithdrawalPaidNotify = constants.TaskWithdrawalPaidNotify
	// TaskCommissionCreditNotify 佣金入账通知任务
	TaskCommissionCreditNotify = constants.TaskCommissionCreditNotify
)

// WithdrawalPaidNotifyPayload 提现打款通知任务载荷
type WithdrawalPaidNotifyPayload struct {
	WithdrawalID    uint   `json:"withdrawal_id"`
	ParticipantCode string `json:"participant_code"`
	TransactionID   string `json:"transaction_id"`
}

// CommissionCreditNotifyPayload 佣金入账通知任务载荷
type CommissionCreditNotifyPayload struct {
	OrderID       string `json:"order_id"`
	CreditedCount int64  `json:"credited_count"`
}

// NewWithdrawalPaidNotifyTask 创建提现打款通知任务
func NewWithdrawalPaidNotifyTask(payload WithdrawalPaidNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWithdrawalPaidNotify, body), nil
}

// NewCommissionCreditNotifyTask 创建佣金入账通知任务
func NewCommissionCreditNotifyTask(payload CommissionCreditNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionCreditNotify, body), nil
}
