package api

import (
	"errors"

	helper "gb-server/internal/common/helper"
	"gb-server/internal/common/response"
	"gb-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newSettlementService = service.NewSettlementService

type DrawController struct{ beego.Controller }

// Draw 触发开奖结算：POST /api/lottery/draw/:round_id
// 幂等：已结算的局重复触发返回既有结果
func (c *DrawController) Draw() {
	traceID := helper.GetTraceID(c.Ctx)

	roundID := c.Ctx.Input.Param(":round_id")
	if !helper.IsValidRoundID(roundID) {
		response.BadRequest(&c.Controller, "round_id required (alnum/underscore/hyphen, max 64)", traceID)
		return
	}

	svc := newSettlementService()
	res, err := svc.Draw(c.Ctx.Request.Context(), roundID, traceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoundNotFound):
			response.NotFound(&c.Controller, "拼团局不存在", traceID)
		case errors.Is(err, service.ErrNotEligible):
			response.Conflict(&c.Controller, response.CodeNotEligible, traceID)
		case errors.Is(err, service.ErrInsufficientParticipants):
			response.Conflict(&c.Controller, response.CodeInsufficientParticipants, traceID)
		case errors.Is(err, service.ErrDrawInProgress):
			response.Accepted(&c.Controller, "开奖进行中，请稍后查询结果", traceID)
		case errors.Is(err, service.ErrRoundFailed):
			response.Conflict(&c.Controller, response.CodeRoundFailed, traceID)
		case errors.Is(err, service.ErrBadRequest):
			response.BadRequest(&c.Controller, "invalid request", traceID)
		default:
			response.InternalError(&c.Controller, traceID)
		}
		return
	}

	response.Success(&c.Controller, res, traceID)
}
