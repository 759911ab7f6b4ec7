package worker

import (
	"context"
	"encoding/json"

	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/provider"
	"github.com/tierledger/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskWithdrawalPaidNotify, c.handleWithdrawalPaidNotify)
	mux.HandleFunc(queue.TaskCommissionCreditNotify, c.handleCommissionCreditNotify)
}

// handleWithdrawalPaidNotify 处理提现打款通知。通知投递由外部系统
// 承接（本引擎不负责推送渠道），此处记录结构化事件供下游订阅。
func (c *Consumer) handleWithdrawalPaidNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.WithdrawalPaidNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_withdrawal_paid_unmarshal_failed", "error", err)
		return err
	}
	if payload.WithdrawalID == 0 {
		logger.Debugw("worker_withdrawal_paid_skip_invalid_payload")
		return nil
	}

	req, err := c.WithdrawalService.Get(payload.WithdrawalID)
	if err != nil {
		logger.Warnw("worker_withdrawal_paid_fetch_failed", "withdrawal_id", payload.WithdrawalID, "error", err)
		return err
	}
	logger.Infow("withdrawal_paid_notified",
		"withdrawal_id", req.ID,
		"reference_no", req.ReferenceNo,
		"participant_code", req.ParticipantCode,
		"net_payable", req.NetPayable.String(),
		"transaction_id", payload.TransactionID,
	)
	return nil
}

// handleCommissionCreditNotify 处理佣金入账通知
func (c *Consumer) handleCommissionCreditNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.CommissionCreditNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_commission_credit_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == "" {
		logger.Debugw("worker_commission_credit_skip_invalid_payload")
		return nil
	}

	entries, err := c.CommissionService.ListByOrder(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_commission_credit_fetch_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	for _, entry := range entries {
		logger.Infow("commission_credited_notified",
			"order_id", entry.OrderID,
			"referring_code", entry.ReferringCode,
			"tier_share", entry.TierShare.String(),
			"status", entry.Status,
		)
	}
	return nil
}
