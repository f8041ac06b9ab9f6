package response

import (
	"time"

	beego "github.com/beego/beego/v2/server/web"
)

// APIResponse 统一 API 响应结构
// 所有 API 都应该返回这个结构，无论成功还是失败
type APIResponse struct {
	Code      int         `json:"code"`                // 业务错误码：0=成功，非0=失败
	Message   string      `json:"message"`             // 错误消息
	Data      interface{} `json:"data,omitempty"`      // 业务数据（失败时为 null）
	TraceID   string      `json:"trace_id,omitempty"`  // 请求追踪ID
	Timestamp int64       `json:"timestamp,omitempty"` // 响应时间戳（Unix 毫秒）
}

// 错误码定义
const (
	CodeSuccess                  = 0    // 成功
	CodeBadRequest               = 1000 // 参数错误
	CodeBusinessError            = 2000 // 业务错误（通用）
	CodeNotEligible              = 2001 // 局未满员，不可开奖
	CodeInsufficientParticipants = 2002 // 有效参与者不足
	CodeDrawInProgress           = 2003 // 开奖进行中
	CodeNotYetDrawn              = 2004 // 尚未开奖
	CodeRoundFailed              = 2005 // 局已失败（终态）
	CodeUnauthorized             = 3000 // 未授权
	CodeInvalidSignature         = 3004 // 签名无效
	CodeTimestampExpired         = 3005 // 时间戳过期
	CodeNonceReused              = 3006 // Nonce 重复使用
	CodeInvalidPlatform          = 3007 // 平台无效
	CodePlatformDisabled         = 3008 // 平台已禁用
	CodeForbidden                = 3009 // 禁止访问
	CodeIPNotAllowed             = 3010 // IP 不在白名单
	CodeNotFound                 = 4004 // 资源不存在
	CodeRateLimitExceeded        = 4000 // 请求频率超限
	CodeSystemError              = 5000 // 系统错误
)

// ErrorMessages 错误消息映射
var ErrorMessages = map[int]string{
	CodeSuccess:                  "success",
	CodeBadRequest:               "参数错误",
	CodeBusinessError:            "业务处理失败",
	CodeNotEligible:              "拼团局未满员，不可开奖",
	CodeInsufficientParticipants: "有效参与者不足，无法结算",
	CodeDrawInProgress:           "开奖进行中，请稍后重试",
	CodeNotYetDrawn:              "尚未开奖",
	CodeRoundFailed:              "拼团局已失败，需人工处理",
	CodeNotFound:                 "资源不存在",
	CodeRateLimitExceeded:        "请求频率超限",
	CodeSystemError:              "系统繁忙，请稍后重试",
}

// Success 成功响应
func Success(c *beego.Controller, data interface{}, traceID string) {
	c.Data["json"] = APIResponse{
		Code:      CodeSuccess,
		Message:   ErrorMessages[CodeSuccess],
		Data:      data,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// Error 错误响应（使用预定义的错误消息）
// 示例：
//
//	response.Error(c, 409, response.CodeNotEligible, traceID)
func Error(c *beego.Controller, httpStatus int, code int, traceID string) {
	c.Ctx.Output.SetStatus(httpStatus)
	c.Data["json"] = APIResponse{
		Code:      code,
		Message:   getErrorMessage(code),
		Data:      nil,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// ErrorWithMessage 错误响应（使用自定义错误消息）
func ErrorWithMessage(c *beego.Controller, httpStatus int, code int, message string, traceID string) {
	c.Ctx.Output.SetStatus(httpStatus)
	c.Data["json"] = APIResponse{
		Code:      code,
		Message:   message,
		Data:      nil,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// BadRequest 参数错误响应（HTTP 400）
func BadRequest(c *beego.Controller, message string, traceID string) {
	ErrorWithMessage(c, 400, CodeBadRequest, message, traceID)
}

// Conflict 资源冲突响应（HTTP 409）
func Conflict(c *beego.Controller, code int, traceID string) {
	Error(c, 409, code, traceID)
}

// NotFound 资源不存在响应（HTTP 404）
func NotFound(c *beego.Controller, message string, traceID string) {
	ErrorWithMessage(c, 404, CodeNotFound, message, traceID)
}

// InternalError 系统错误响应（HTTP 500）
func InternalError(c *beego.Controller, traceID string) {
	Error(c, 500, CodeSystemError, traceID)
}

// InternalErrorWithMessage 系统错误响应（HTTP 500，自定义消息）
// 注意：生产环境不应该暴露详细的错误信息，应该记录到日志
func InternalErrorWithMessage(c *beego.Controller, message string, traceID string) {
	ErrorWithMessage(c, 500, CodeSystemError, message, traceID)
}

// Accepted 请求已接受但尚未处理完成（HTTP 202）
// 用于开奖独占中的并发触发方轮询重试
func Accepted(c *beego.Controller, message string, traceID string) {
	c.Ctx.Output.SetStatus(202)
	c.Ctx.Output.Header("Retry-After", "1") // 建议客户端 1 秒后重试
	c.Data["json"] = APIResponse{
		Code:      CodeDrawInProgress,
		Message:   message,
		Data:      nil,
		TraceID:   traceID,
		Timestamp: time.Now().UnixMilli(),
	}
	c.ServeJSON()
}

// getErrorMessage 获取错误消息，如果未定义则返回通用消息
func getErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "未知错误"
}
