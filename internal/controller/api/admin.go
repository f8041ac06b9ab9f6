package api

import (
	"strconv"
	"strings"

	helper "gb-server/internal/common/helper"
	"gb-server/internal/common/response"
	infmysql "gb-server/internal/infra/mysql"
	"gb-server/internal/model"

	beego "github.com/beego/beego/v2/server/web"
)

// AdminController 管理接口：分红记录分页查询
// GET /api/admin/dividends?round_id=&user_id=&status=&page=&size=
// 管理员 Token 认证由路由过滤器完成
type AdminController struct{ beego.Controller }

func (c *AdminController) ListDividends() {
	traceID := helper.GetTraceID(c.Ctx)

	q := model.DividendQuery{
		RoundID: strings.TrimSpace(c.Ctx.Input.Query("round_id")),
		UserID:  strings.TrimSpace(c.Ctx.Input.Query("user_id")),
	}
	if st := strings.TrimSpace(c.Ctx.Input.Query("status")); st != "" {
		n, err := strconv.Atoi(st)
		if err != nil || (n != int(model.DividendStatusPending) && n != int(model.DividendStatusPaid)) {
			response.BadRequest(&c.Controller, "status must be 1|2", traceID)
			return
		}
		q.Status = int8(n)
	}
	if p := strings.TrimSpace(c.Ctx.Input.Query("page")); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			q.Page = n
		}
	}
	if sz := strings.TrimSpace(c.Ctx.Input.Query("size")); sz != "" {
		if n, err := strconv.Atoi(sz); err == nil {
			q.Size = n
		}
	}

	list, total, err := model.QueryDividends(c.Ctx.Request.Context(), infmysql.ReadSQLX(), q)
	if err != nil {
		response.InternalError(&c.Controller, traceID)
		return
	}

	response.Success(&c.Controller, map[string]any{
		"total": total,
		"list":  list,
	}, traceID)
}
