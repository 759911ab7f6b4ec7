package router

import (
	"github.com/tierledger/internal/config"
	adminhandlers "github.com/tierledger/internal/http/handlers/admin"
	publichandlers "github.com/tierledger/internal/http/handlers/public"
	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 订单系统回调（共享密钥鉴权）
		webhook := apiV1.Group("/webhook")
		webhook.Use(WebhookAuthMiddleware(cfg.Webhook.SharedSecret))
		{
			webhook.POST("/commission", publicHandler.PostCommissionEvent)
			webhook.POST("/order-delivered", publicHandler.PostOrderDelivered)
			webhook.POST("/order-cancelled", publicHandler.PostOrderCancelled)
		}

		// 参与者接口（JWT 鉴权）
		me := apiV1.Group("/me")
		me.Use(ParticipantAuthMiddleware(cfg.Auth.JWTSecret))
		{
			me.GET("/balance", publicHandler.GetMyBalance)
			me.GET("/ledger", publicHandler.GetMyLedger)
			me.GET("/withdrawals", publicHandler.GetMyWithdrawals)
			me.POST("/withdrawals", publicHandler.PostMyWithdrawal)
		}

		// 管理端接口（JWT 鉴权）
		admin := apiV1.Group("/admin")
		admin.Use(AdminAuthMiddleware(cfg.Auth.JWTSecret))
		{
			admin.GET("/rates", adminHandler.GetRates)
			admin.PUT("/rates/:tier", adminHandler.PutRate)

			admin.GET("/ledger", adminHandler.GetLedgerEntries)
			admin.GET("/ledger/:id", adminHandler.GetLedgerEntry)

			admin.GET("/withdrawals", adminHandler.GetWithdrawals)
			admin.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
			admin.POST("/withdrawals/:id/approve", adminHandler.PostWithdrawalApprove)
			admin.POST("/withdrawals/:id/reject", adminHandler.PostWithdrawalReject)
			admin.POST("/withdrawals/:id/mark-paid", adminHandler.PostWithdrawalMarkPaid)

			admin.POST("/payments", adminHandler.PostPayment)
			admin.GET("/payments", adminHandler.GetPayments)
			admin.GET("/payments/reconciliation", adminHandler.GetReconciliation)

			admin.GET("/participants", adminHandler.GetParticipants)
			admin.PUT("/participants", adminHandler.PutParticipant)
			admin.GET("/participants/:code/balance", adminHandler.GetParticipantBalance)
			admin.GET("/participants/:code/earnings", adminHandler.GetManagementEarnings)
		}
	}

	return r
}
