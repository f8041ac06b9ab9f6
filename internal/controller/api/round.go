package api

import (
	"errors"

	helper "gb-server/internal/common/helper"
	"gb-server/internal/common/response"
	"gb-server/internal/service"

	beego "github.com/beego/beego/v2/server/web"
)

var newRoundService = service.NewRoundService

// RoundController 提供拼团局信息查询接口（便于调试/前端轮询状态）
// GET /api/round/:round_id
type RoundController struct {
	beego.Controller
}

func (c *RoundController) GetRound() {
	traceID := helper.GetTraceID(c.Ctx)

	roundID := c.Ctx.Input.Param(":round_id")
	if !helper.IsValidRoundID(roundID) {
		response.BadRequest(&c.Controller, "round_id required (alnum/underscore/hyphen, max 64)", traceID)
		return
	}

	svc := newRoundService()
	v, err := svc.GetRound(c.Ctx.Request.Context(), roundID, traceID)
	if err != nil {
		if errors.Is(err, service.ErrRoundNotFound) {
			response.NotFound(&c.Controller, "拼团局不存在", traceID)
			return
		}
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, v, traceID)
}
