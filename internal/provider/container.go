package provider

import (
	"github.com/tierledger/internal/cache"
	"github.com/tierledger/internal/config"
	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/models"
	"github.com/tierledger/internal/queue"
	"github.com/tierledger/internal/repository"
	"github.com/tierledger/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ParticipantRepo repository.ParticipantRepository
	RateRepo        repository.RateRepository
	LedgerRepo      repository.LedgerRepository
	WithdrawalRepo  repository.WithdrawalRepository
	PaymentRepo     repository.PaymentRepository

	// Services
	ParticipantService *service.ParticipantService
	RateService        *service.RateService
	SplitCalculator    *service.SplitCalculator
	CommissionService  *service.CommissionService
	BalanceService     *service.BalanceService
	WithdrawalService  *service.WithdrawalService
	PaymentService     *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ParticipantRepo = repository.NewParticipantRepository(db)
	c.RateRepo = repository.NewRateRepository(db)
	c.LedgerRepo = repository.NewLedgerRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
}

func (c *Container) initServices() {
	c.ParticipantService = service.NewParticipantService(c.ParticipantRepo)
	c.RateService = service.NewRateService(c.RateRepo)
	c.SplitCalculator = service.NewSplitCalculator(c.RateService)
	c.CommissionService = service.NewCommissionService(c.LedgerRepo, c.ParticipantRepo, c.SplitCalculator, c.QueueClient)
	c.BalanceService = service.NewBalanceService(c.LedgerRepo, c.WithdrawalRepo)
	c.WithdrawalService = service.NewWithdrawalService(
		&c.Config.Withdrawal,
		c.WithdrawalRepo,
		c.ParticipantRepo,
		c.BalanceService,
		c.QueueClient,
	)
	c.PaymentService = service.NewPaymentService(
		c.PaymentRepo,
		c.ParticipantRepo,
		c.LedgerRepo,
		c.WithdrawalRepo,
		c.RateService,
	)
}
