package api

import (
	"errors"

	helper "gb-server/internal/common/helper"
	"gb-server/internal/common/response"
	"gb-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newEligibleService = func() service.EligibleService {
	return service.NewEligibleService(service.NewSettlementService())
}

type EligibleController struct{ beego.Controller }

// RoundEligible 平台推送拼团满员事件：POST /api/round/eligible
// 平台签名认证由路由过滤器完成；重复推送幂等
func (c *EligibleController) RoundEligible() {
	traceID := helper.GetTraceID(c.Ctx)

	in, ok, msg := helper.ParseAndValidateRoundEligible(c.Ctx)
	if !ok {
		response.BadRequest(&c.Controller, msg, traceID)
		return
	}

	svc := newEligibleService()
	err := svc.RoundEligible(c.Ctx.Request.Context(), service.EligibleInput{
		RoundID:     in.RoundID,
		ProductID:   in.ProductID,
		TargetSize:  in.TargetSize,
		WinnerCount: in.WinnerCount,
		Source:      "api",
		TraceID:     traceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoundFailed):
			response.Conflict(&c.Controller, response.CodeRoundFailed, traceID)
		case errors.Is(err, service.ErrBadRequest):
			response.BadRequest(&c.Controller, "invalid request", traceID)
		default:
			response.InternalError(&c.Controller, traceID)
		}
		return
	}

	response.Success(&c.Controller, map[string]any{"round_id": in.RoundID}, traceID)
}
