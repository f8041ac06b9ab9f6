package routers

import (
	"gb-server/internal/config"
	"gb-server/internal/controller/api"
	"gb-server/internal/metrics"
	"gb-server/internal/middleware"

	beego "github.com/beego/beego/v2/server/web"
)

// init 注册HTTP路由与全局过滤器
func init() {
	cfg := config.Get()

	// 全局过滤器（按执行顺序）
	// 1. Panic Recovery（最先执行，捕获所有 panic）
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RecoveryFilter)

	// 2. 请求ID注入
	beego.InsertFilter("/*", beego.BeforeRouter, middleware.RequestIDFilter)

	// 3. CORS 处理（如果启用）
	if cfg != nil && cfg.CORS.Enabled {
		beego.InsertFilter("/*", beego.BeforeExec, middleware.CORSFilter)
	}

	// 4. HTTP 指标收集
	beego.InsertFilter("/*", beego.BeforeExec, metrics.HTTPMetricsFilter)
	beego.InsertFilter("/*", beego.FinishRouter, metrics.HTTPMetricsAfter)

	// 健康检查（无需认证）
	beego.Router("/healthz", &api.HealthController{}, "get:Healthz")
	beego.Router("/readyz", &api.HealthController{}, "get:Readyz")

	// ========== 业务 API ==========

	// 满员事件接口：平台签名认证（平台侧服务间调用）
	if cfg != nil && cfg.Auth.DemoMode {
		beego.InsertFilter("/api/round/eligible", beego.BeforeExec, middleware.DemoAuthFilter)
	} else {
		beego.InsertFilter("/api/round/eligible", beego.BeforeExec, middleware.PlatformAuthFilter)
	}
	beego.Router("/api/round/eligible", &api.EligibleController{}, "post:RoundEligible")

	// 开奖触发接口：限流（并发触发由状态机仲裁，限流只挡异常流量）
	if cfg != nil && cfg.RateLimit.Enabled {
		beego.InsertFilter("/api/lottery/*", beego.BeforeExec, middleware.RateLimitFilter)
	}
	beego.Router("/api/lottery/draw/:round_id", &api.DrawController{}, "post:Draw")

	// 结算结果查询接口
	beego.Router("/api/lottery/result/:round_id", &api.ResultController{}, "get:GetResult")

	// 局信息查询接口（调试/前端轮询状态）
	beego.Router("/api/round/:round_id", &api.RoundController{}, "get:GetRound")

	// ========== 管理 API（需要管理员认证） ==========

	// 分红记录查询：管理员认证
	if cfg != nil && cfg.Auth.Admin.Enabled {
		beego.InsertFilter("/api/admin/*", beego.BeforeExec, middleware.AdminAuthFilter)
	}
	beego.Router("/api/admin/dividends", &api.AdminController{}, "get:ListDividends")
}
