package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	beegocontext "github.com/beego/beego/v2/server/web/context"
)

// IsJSONContentType 判断是否为 JSON 请求
func IsJSONContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.Contains(ct, "json")
}

// 默认输入保护参数
const (
	defaultJSONMaxBytes int64         = 1 << 20 // 1MB
	defaultParseTimeout time.Duration = 1 * time.Second
)

type deadlineReader struct {
	r        io.Reader
	deadline time.Time
}

func (dr *deadlineReader) Read(p []byte) (int, error) {
	if time.Now().After(dr.deadline) {
		return 0, fmt.Errorf("read timeout")
	}
	return dr.r.Read(p)
}

// jsonBodyReader 在 JSON 分支下为请求体增加大小限制与解析超时保护
func jsonBodyReader(ctx *beegocontext.Context) io.Reader {
	lr := io.LimitReader(ctx.Request.Body, defaultJSONMaxBytes)
	return &deadlineReader{r: lr, deadline: time.Now().Add(defaultParseTimeout)}
}

// GetTraceID 统一提取 trace_id：优先从中间件注入的数据取，其次从常见请求头降级
func GetTraceID(ctx *beegocontext.Context) string {
	if v := ctx.Input.GetData("trace_id"); v != nil {
		return fmt.Sprint(v)
	}
	if h := strings.TrimSpace(ctx.Input.Header("X-Trace-ID")); h != "" {
		return h
	}
	if h := strings.TrimSpace(ctx.Input.Header("Trace-Id")); h != "" {
		return h
	}
	return ""
}

// parseByContentType 按 Content-Type 选择解析函数，减少重复 if/else 分支
func parseByContentType[T any](ctx *beegocontext.Context,
	jsonParser func(io.Reader) (T, bool, string),
	formParser func(*beegocontext.Context) (T, bool, string),
) (T, bool, string) {
	ct := ctx.Input.Header("Content-Type")
	if IsJSONContentType(ct) {
		return jsonParser(jsonBodyReader(ctx))
	}
	return formParser(ctx)
}

// IsValidRoundID 校验局ID格式：非空、不超过64、仅字母数字下划线连字符
func IsValidRoundID(id string) bool {
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for _, c := range id {
		if !((c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '_' || c == '-') {
			return false
		}
	}
	return true
}

// -------- RoundEligible helpers --------

// RoundEligibleParsed 为解析后的满员事件入参（与控制器/服务层解耦）
type RoundEligibleParsed struct {
	RoundID     string `json:"round_id"`
	ProductID   string `json:"product_id"`
	TargetSize  int    `json:"target_size"`
	WinnerCount int    `json:"winner_count"`
	EventTime   int64  `json:"event_time"` // 毫秒，可选
}

// ParseRoundEligibleFromJSON 解析 JSON 到 RoundEligibleParsed。失败返回 false 与错误消息。
func ParseRoundEligibleFromJSON(r io.Reader) (RoundEligibleParsed, bool, string) {
	var out RoundEligibleParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return RoundEligibleParsed{}, false, "invalid json body"
	}
	return out, true, ""
}

// ParseRoundEligibleFromForm 从表单读取字段，返回 RoundEligibleParsed。
func ParseRoundEligibleFromForm(ctx *beegocontext.Context) (RoundEligibleParsed, bool, string) {
	var out RoundEligibleParsed
	out.RoundID = strings.TrimSpace(ctx.Input.Query("round_id"))
	out.ProductID = strings.TrimSpace(ctx.Input.Query("product_id"))

	if ts := strings.TrimSpace(ctx.Input.Query("target_size")); ts != "" {
		if n, err := strconv.Atoi(ts); err == nil {
			out.TargetSize = n
		}
	}
	if wc := strings.TrimSpace(ctx.Input.Query("winner_count")); wc != "" {
		if n, err := strconv.Atoi(wc); err == nil {
			out.WinnerCount = n
		}
	}
	if et := strings.TrimSpace(ctx.Input.Query("event_time")); et != "" {
		if v, err := strconv.ParseInt(et, 10, 64); err == nil {
			out.EventTime = v
		}
	}
	return out, true, ""
}

// ValidateRoundEligible 对通用字段做二次校验（适用于 JSON 与 FORM）。失败返回 false 与错误消息。
func ValidateRoundEligible(in *RoundEligibleParsed) (bool, string) {
	if !IsValidRoundID(in.RoundID) {
		return false, "round_id required (alnum/underscore/hyphen, max 64)"
	}
	if in.ProductID == "" || len(in.ProductID) > 64 {
		return false, "product_id required (max 64)"
	}
	if in.TargetSize < 2 {
		return false, "target_size must be >= 2"
	}
	if in.WinnerCount < 1 || in.WinnerCount >= in.TargetSize {
		return false, "winner_count must be >= 1 and < target_size"
	}
	return true, ""
}

// ParseAndValidateRoundEligible 按 Content-Type 自动解析并做统一校验
func ParseAndValidateRoundEligible(ctx *beegocontext.Context) (RoundEligibleParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseRoundEligibleFromJSON, ParseRoundEligibleFromForm)
	if !ok {
		return RoundEligibleParsed{}, false, msg
	}
	if ok, msg := ValidateRoundEligible(&out); !ok {
		return RoundEligibleParsed{}, false, msg
	}
	return out, true, ""
}
