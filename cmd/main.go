package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	beego "github.com/beego/beego/v2/server/web"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gb-server/common"
	"gb-server/common/logger"
	"gb-server/internal/config"
	infmysql "gb-server/internal/infra/mysql"
	infrds "gb-server/internal/infra/redis"
	"gb-server/internal/service"
	"gb-server/internal/wallet"
	"gb-server/internal/worker"
	_ "gb-server/routers"
)

func main() {
	logger.InitLogger()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 加载配置（Nacos 优先，本地文件兜底）
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatalf("load config failed", zap.Error(err))
	}
	config.Set(cfg)
	config.SetCurrent(cfg)

	if cfg.Server.LogLevel != "" {
		logger.SetLevel(cfg.Server.LogLevel)
	}

	// MySQL
	db := common.InitDB(cfg.Database.DSN, cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	infmysql.UseDB(db.DB)

	// 只读从库（可选，配置后局信息/后台查询走从库）
	if cfg.Database.SlaveDSN != "" {
		slave := common.InitSlaveDB(cfg.Database.SlaveDSN, cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
		infmysql.UseSlaveDB(slave.DB)
	}

	// Redis（可选）
	infrds.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// RocketMQ 配置透传到 beego.AppConfig（infra 层从这里读取）
	if cfg.RocketMQ.NameServer != "" {
		_ = beego.AppConfig.Set("rocketmq_endpoint", cfg.RocketMQ.NameServer)
		_ = beego.AppConfig.Set("rocketmq_access_key", cfg.RocketMQ.AccessKey)
		_ = beego.AppConfig.Set("rocketmq_secret_key", cfg.RocketMQ.SecretKey)
		_ = beego.AppConfig.Set("rocketmq_producer_topics", cfg.RocketMQ.TopicSettle)
		_ = beego.AppConfig.Set("rocketmq_consumer_group", cfg.RocketMQ.ConsumerGroup)
	}

	// 配置热更新：日志级别随配置调整，业务读 GetCurrent 自动生效
	if err := config.StartWatch(ctx, func(oldCfg, newCfg *config.Config) {
		config.Set(newCfg)
		if newCfg.Server.LogLevel != "" {
			logger.SetLevel(newCfg.Server.LogLevel)
		}
	}); err != nil {
		logger.Warn("config watch not started", zap.Error(err))
	}

	// 后台 worker
	var wg sync.WaitGroup
	worker.StartOutboxDispatcher(ctx, &wg)
	worker.StartInboxConsumer(ctx, &wg, service.NewEligibleService(service.NewSettlementService()))
	worker.StartDividendCredit(ctx, &wg, wallet.New())

	// Prometheus 指标端口（与业务端口分离）
	if cfg.Observability.EnableProm {
		addr := cfg.Observability.PromAddr
		if addr == "" {
			addr = ":9091"
		}
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("prometheus metrics listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	// HTTP 服务
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	beego.BConfig.CopyRequestBody = true
	go beego.Run(fmt.Sprintf(":%d", port))
	logger.Info("gb-server started", zap.Int("port", port))

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn("workers did not stop in time")
	}

	logger.Info("gb-server stopped")
}
