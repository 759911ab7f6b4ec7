package main

import (
	"github.com/tierledger/internal/config"
	"github.com/tierledger/internal/constants"
	"github.com/tierledger/internal/logger"
	"github.com/tierledger/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化默认佣金比例表
	rates := []models.CommissionRate{
		{Tier: constants.TierAffiliate, RatePercent: models.NewMoneyFromDecimal(decimal.NewFromInt(100)), UpdatedBy: "seed"},
		{Tier: constants.TierBranch, RatePercent: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), UpdatedBy: "seed"},
		{Tier: constants.TierArea, RatePercent: models.NewMoneyFromDecimal(decimal.NewFromInt(2)), UpdatedBy: "seed"},
		{Tier: constants.TierState, RatePercent: models.NewMoneyFromDecimal(decimal.NewFromInt(0)), UpdatedBy: "seed"},
	}

	for _, rate := range rates {
		var existing models.CommissionRate
		if err := models.DB.Where("tier = ?", rate.Tier).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&rate).Error; err != nil {
				stdLog.Printf("Failed to create rate %s: %v", rate.Tier, err)
			} else {
				stdLog.Printf("Created rate: %s = %s%%", rate.Tier, rate.RatePercent.String())
			}
		} else {
			stdLog.Printf("Rate already exists: %s = %s%%", existing.Tier, existing.RatePercent.String())
		}
	}

	// 演示用四级分销链路：州级 -> 区域 -> 分支 -> 推广员
	participants := []models.Participant{
		{
			Code:   "ST001",
			Tier:   constants.TierState,
			Name:   "Demo State Office",
			Status: constants.ParticipantStatusActive,
		},
		{
			Code:      "AR001",
			Tier:      constants.TierArea,
			Name:      "Demo Area Office",
			StateCode: "ST001",
			Status:    constants.ParticipantStatusActive,
		},
		{
			Code:      "BR001",
			Tier:      constants.TierBranch,
			Name:      "Demo Branch Office",
			AreaCode:  "AR001",
			StateCode: "ST001",
			Status:    constants.ParticipantStatusActive,
		},
		{
			Code:       "AF001",
			Tier:       constants.TierAffiliate,
			Name:       "Demo Affiliate One",
			BranchCode: "BR001",
			AreaCode:   "AR001",
			StateCode:  "ST001",
			Status:     constants.ParticipantStatusActive,
		},
		{
			Code:       "AF002",
			Tier:       constants.TierAffiliate,
			Name:       "Demo Affiliate Two",
			BranchCode: "BR001",
			AreaCode:   "AR001",
			StateCode:  "ST001",
			Status:     constants.ParticipantStatusActive,
		},
	}

	for _, p := range participants {
		var existing models.Participant
		if err := models.DB.Where("code = ?", p.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&p).Error; err != nil {
				stdLog.Printf("Failed to create participant %s: %v", p.Code, err)
			} else {
				stdLog.Printf("Created participant: %s (%s)", p.Code, p.Tier)
			}
		} else {
			stdLog.Printf("Participant already exists: %s (%s)", existing.Code, existing.Tier)
		}
	}

	stdLog.Println("Seed completed")
}
