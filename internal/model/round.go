package model

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// GroupRound 对应 group_round 表
// 说明：时间为毫秒时间戳；状态采用数值枚举
// status: 1=open 2=eligible 3=drawing 4=settled 5=failed
// 状态推进必须走条件更新（WHERE status=?），禁止无条件写 status
type GroupRound struct {
	ID          int64  `db:"id"`
	RoundID     string `db:"round_id"`     // 局ID(业务主键)
	ProductID   string `db:"product_id"`   // 商品ID
	TargetSize  int    `db:"target_size"`  // 成团人数
	WinnerCount int    `db:"winner_count"` // 中奖名额(>=1 且 < target_size)
	Status      int8   `db:"status"`
	DrawnAt     int64  `db:"drawn_at"` // 开奖时间(毫秒，未开奖为0)
	TraceID     string `db:"trace_id"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

// 状态码常量（与 internal/state 的字符串状态一一对应）
const (
	RoundStatusOpen     int8 = 1
	RoundStatusEligible int8 = 2
	RoundStatusDrawing  int8 = 3
	RoundStatusSettled  int8 = 4
	RoundStatusFailed   int8 = 5
)

// EnsureRound 确保拼团局存在（不存在则以 open 状态创建）
// 满员推送可能先于本服务看到该局，创建取决于推送携带的团配置
func EnsureRound(ctx context.Context, exec sqlx.ExtContext, roundID, productID string, targetSize, winnerCount int, traceID string) error {
	var cnt int
	sqlCheck := "SELECT COUNT(1) FROM group_round WHERE round_id = ?"
	if err := sqlx.GetContext(ctx, exec, &cnt, sqlCheck, roundID); err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}

	now := time.Now().UnixMilli()
	sqlIns := "INSERT INTO group_round (round_id, product_id, target_size, winner_count, status, drawn_at, trace_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)"
	_, err := exec.ExecContext(ctx, sqlIns, roundID, productID, targetSize, winnerCount, RoundStatusOpen, traceID, now, now)
	return err
}

// GetRound 获取局信息（不加锁）
func GetRound(ctx context.Context, exec sqlx.ExtContext, roundID string) (*GroupRound, error) {
	sqlStr := `SELECT id, round_id, product_id, target_size, winner_count, status, drawn_at,
		trace_id, created_at, updated_at
		FROM group_round WHERE round_id = ?`
	var r GroupRound
	if err := sqlx.GetContext(ctx, exec, &r, sqlStr, roundID); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRoundForUpdate 在事务中按局ID加锁并返回局信息
func GetRoundForUpdate(ctx context.Context, exec sqlx.ExtContext, roundID string) (*GroupRound, error) {
	sqlStr := `SELECT id, round_id, product_id, target_size, winner_count, status, drawn_at,
		trace_id, created_at, updated_at
		FROM group_round WHERE round_id = ? FOR UPDATE`
	var r GroupRound
	if err := sqlx.GetContext(ctx, exec, &r, sqlStr, roundID); err != nil {
		return nil, err
	}
	return &r, nil
}

// MarkEligible 条件更新 open -> eligible，返回是否由本次调用完成转换
func MarkEligible(ctx context.Context, exec sqlx.ExtContext, roundID string) (bool, error) {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE group_round SET status = ?, updated_at = ? WHERE round_id = ? AND status = ?"
	res, err := exec.ExecContext(ctx, sqlStr, RoundStatusEligible, now, roundID, RoundStatusOpen)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// TryBeginDraw 条件更新 eligible -> drawing。
// 这是并发开奖的唯一仲裁点：多实例同时触发时只有一个调用方 RowsAffected==1。
func TryBeginDraw(ctx context.Context, exec sqlx.ExtContext, roundID string) (bool, error) {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE group_round SET status = ?, updated_at = ? WHERE round_id = ? AND status = ?"
	res, err := exec.ExecContext(ctx, sqlStr, RoundStatusDrawing, now, roundID, RoundStatusEligible)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// MarkSettled 条件更新 drawing -> settled 并写入开奖时间
func MarkSettled(ctx context.Context, exec sqlx.ExtContext, roundID string, drawnAtMs int64) (bool, error) {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE group_round SET status = ?, drawn_at = ?, updated_at = ? WHERE round_id = ? AND status = ?"
	res, err := exec.ExecContext(ctx, sqlStr, RoundStatusSettled, drawnAtMs, now, roundID, RoundStatusDrawing)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// MarkFailed 条件更新 eligible/drawing -> failed（人工介入终态）
func MarkFailed(ctx context.Context, exec sqlx.ExtContext, roundID string) (bool, error) {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE group_round SET status = ?, updated_at = ? WHERE round_id = ? AND status IN (?, ?)"
	res, err := exec.ExecContext(ctx, sqlStr, RoundStatusFailed, now, roundID, RoundStatusEligible, RoundStatusDrawing)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// RevertDrawing 条件更新 drawing -> eligible。
// 仅用于结算事务提交失败后的回退，保证重试安全（局回到开奖前状态）。
func RevertDrawing(ctx context.Context, exec sqlx.ExtContext, roundID string) (bool, error) {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE group_round SET status = ?, updated_at = ? WHERE round_id = ? AND status = ?"
	res, err := exec.ExecContext(ctx, sqlStr, RoundStatusEligible, now, roundID, RoundStatusDrawing)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// RoundSnapshot 提供 GET 接口所需的最小字段集合
type RoundSnapshot struct {
	RoundID     string `db:"round_id"`
	ProductID   string `db:"product_id"`
	TargetSize  int    `db:"target_size"`
	WinnerCount int    `db:"winner_count"`
	Status      int8   `db:"status"`
	DrawnAt     int64  `db:"drawn_at"`
}

// GetRoundSnapshot 按局ID查询所需字段（无锁读取）
func GetRoundSnapshot(ctx context.Context, exec sqlx.ExtContext, roundID string) (*RoundSnapshot, error) {
	sqlStr := `SELECT round_id, product_id, target_size, winner_count, status, drawn_at
		FROM group_round WHERE round_id = ?`
	var rs RoundSnapshot
	if err := sqlx.GetContext(ctx, exec, &rs, sqlStr, roundID); err != nil {
		return nil, err
	}
	return &rs, nil
}
