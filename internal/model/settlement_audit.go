package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// SettlementAudit 对应 settlement_audit 表（状态机审计）
// event_type 采用数值枚举（1=round_eligible 2=draw_begin 3=draw_settle 4=draw_fail 5=draw_revert）
// prev_state/next_state 使用字符串快照，便于直观查询
type SettlementAudit struct {
	ID int64 `db:"id"`
	// 局ID
	RoundID string `db:"round_id"`
	// 商品ID
	ProductID string `db:"product_id"`
	// 事件类型（数值：1=round_eligible 2=draw_begin 3=draw_settle 4=draw_fail 5=draw_revert）
	EventType int8   `db:"event_type"`
	PrevState string `db:"prev_state"`
	NextState string `db:"next_state"`
	Operator  string `db:"operator"`
	Source    string `db:"source"`
	Payload   string `db:"payload"`
	TraceID   string `db:"trace_id"`
	CreatedAt int64  `db:"created_at"`
}

// 审计事件类型
const (
	AuditEvtRoundEligible int8 = 1
	AuditEvtDrawBegin     int8 = 2
	AuditEvtDrawSettle    int8 = 3
	AuditEvtDrawFail      int8 = 4
	AuditEvtDrawRevert    int8 = 5
)

// Insert
func (e *SettlementAudit) Insert(ctx context.Context, exec sqlx.ExtContext) error {
	now := time.Now().UnixMilli()

	sqlStr := "INSERT INTO settlement_audit (round_id, product_id, event_type, prev_state, next_state, operator, source, payload, trace_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	args := []interface{}{e.RoundID, e.ProductID, e.EventType, e.PrevState, e.NextState, e.Operator, e.Source, e.Payload, e.TraceID, now}

	_, err := exec.ExecContext(ctx, sqlStr, args...)
	return err
}
