package api

import (
	"errors"

	helper "gb-server/internal/common/helper"
	"gb-server/internal/common/response"
	"gb-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

type ResultController struct{ beego.Controller }

// GetResult 查询结算结果：GET /api/lottery/result/:round_id
func (c *ResultController) GetResult() {
	traceID := helper.GetTraceID(c.Ctx)

	roundID := c.Ctx.Input.Param(":round_id")
	if !helper.IsValidRoundID(roundID) {
		response.BadRequest(&c.Controller, "round_id required (alnum/underscore/hyphen, max 64)", traceID)
		return
	}

	svc := newSettlementService()
	res, err := svc.GetResult(c.Ctx.Request.Context(), roundID, traceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoundNotFound):
			response.NotFound(&c.Controller, "拼团局不存在", traceID)
		case errors.Is(err, service.ErrNotYetDrawn):
			response.Conflict(&c.Controller, response.CodeNotYetDrawn, traceID)
		case errors.Is(err, service.ErrRoundFailed):
			response.Conflict(&c.Controller, response.CodeRoundFailed, traceID)
		default:
			response.InternalError(&c.Controller, traceID)
		}
		return
	}

	response.Success(&c.Controller, res, traceID)
}
