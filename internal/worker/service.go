package worker

import (
	"context"
	"errors"
	"time"

	"github.com/tierledger/internal/config"
	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultReconcileInterval = 5 * time.Minute

// Service 异步队列服务
type Service struct {
	name              string
	server            *asynq.Server
	mux               *asynq.ServeMux
	consumer          *Consumer
	reconcileInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, withdrawalCfg *config.WithdrawalConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	interval := defaultReconcileInterval
	if withdrawalCfg != nil && withdrawalCfg.ReconcileIntervalSeconds > 0 {
		interval = time.Duration(withdrawalCfg.ReconcileIntervalSeconds) * time.Second
	}
	return &Service{
		name:              "worker",
		server:            server,
		mux:               mux,
		consumer:          consumer,
		reconcileInterval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.PaymentService != nil {
		go s.runReconcileLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runReconcileLoop 周期性核对 paid 提现与打款记录
func (s *Service) runReconcileLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.PaymentService == nil {
		return
	}
	runOnce := func() {
		discrepancies, err := s.consumer.PaymentService.ReconcilePayments(ctx)
		if err != nil {
			logger.Warnw("worker_reconcile_failed", "error", err)
			return
		}
		if len(discrepancies) == 0 {
			logger.Debugw("worker_reconcile_clean")
		}
	}
	runOnce()

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
