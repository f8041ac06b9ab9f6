package model

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/jmoiron/sqlx"
)

// DividendRecord 对应 dividend_record 表
// 金额为最小货币单位整数（分），全部记录之和必须等于未中奖者出资总额
// （中奖者的出资是奖品成本，不进分红）
// status: 1=pending(待入账) 2=paid(已入账)
type DividendRecord struct {
	ID         int64  `db:"id"`
	RoundID    string `db:"round_id"`
	OrderID    string `db:"order_id"`
	UserID     string `db:"user_id"`
	Amount     int64  `db:"amount"` // 分红金额(分)
	Status     int8   `db:"status"`
	PaidAt     int64  `db:"paid_at"` // 入账时间(毫秒，未入账为0)
	WalletTxID string `db:"wallet_tx_id"`
	TraceID    string `db:"trace_id"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
}

const (
	DividendStatusPending int8 = 1
	DividendStatusPaid    int8 = 2
)

// InsertDividendRecords 批量写入分红记录（结算事务内调用）
func InsertDividendRecords(ctx context.Context, exec sqlx.ExtContext, recs []DividendRecord) error {
	if len(recs) == 0 {
		return nil
	}
	now := time.Now().UnixMilli()
	sqlStr := `INSERT INTO dividend_record
		(round_id, order_id, user_id, amount, status, paid_at, wallet_tx_id, trace_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, '', ?, ?, ?)`
	for i := range recs {
		r := &recs[i]
		if _, err := exec.ExecContext(ctx, sqlStr,
			r.RoundID, r.OrderID, r.UserID, r.Amount, DividendStatusPending, r.TraceID, now, now); err != nil {
			return err
		}
	}
	return nil
}

// ListDividendsByRound 查询局内全部分红记录，按 order_id 升序
func ListDividendsByRound(ctx context.Context, exec sqlx.ExtContext, roundID string) ([]DividendRecord, error) {
	sqlStr := `SELECT id, round_id, order_id, user_id, amount, status, paid_at, wallet_tx_id, trace_id, created_at, updated_at
		FROM dividend_record WHERE round_id = ? ORDER BY order_id ASC`
	var list []DividendRecord
	if err := sqlx.SelectContext(ctx, exec, &list, sqlStr, roundID); err != nil {
		return nil, err
	}
	return list, nil
}

// ListPendingDividends 拉取待入账分红（给后台入账 worker 使用）
func ListPendingDividends(ctx context.Context, exec sqlx.ExtContext, limit int) ([]DividendRecord, error) {
	sqlStr := `SELECT id, round_id, order_id, user_id, amount, status, paid_at, wallet_tx_id, trace_id, created_at, updated_at
		FROM dividend_record WHERE status = ? ORDER BY id ASC LIMIT ?`
	var list []DividendRecord
	if err := sqlx.SelectContext(ctx, exec, &list, sqlStr, DividendStatusPending, limit); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkDividendPaid 条件更新 pending -> paid，并记录钱包流水号
func MarkDividendPaid(ctx context.Context, exec sqlx.ExtContext, id int64, walletTxID string) (bool, error) {
	now := time.Now().UnixMilli()
	sqlStr := "UPDATE dividend_record SET status = ?, paid_at = ?, wallet_tx_id = ?, updated_at = ? WHERE id = ? AND status = ?"
	res, err := exec.ExecContext(ctx, sqlStr, DividendStatusPaid, now, walletTxID, now, id, DividendStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// DividendQuery 后台分红查询条件
type DividendQuery struct {
	RoundID string
	UserID  string
	Status  int8 // 0 表示不过滤
	Page    int
	Size    int
}

// QueryDividends 后台分页查询，条件组合较多，用 goqu 动态拼接
func QueryDividends(ctx context.Context, exec sqlx.ExtContext, q DividendQuery) ([]DividendRecord, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 || q.Size > 200 {
		q.Size = 20
	}

	d := goqu.Dialect("mysql")
	conds := []goqu.Expression{}
	if q.RoundID != "" {
		conds = append(conds, goqu.C("round_id").Eq(q.RoundID))
	}
	if q.UserID != "" {
		conds = append(conds, goqu.C("user_id").Eq(q.UserID))
	}
	if q.Status != 0 {
		conds = append(conds, goqu.C("status").Eq(q.Status))
	}

	countSQL, countArgs, err := d.From("dividend_record").Select(goqu.COUNT("*")).Where(conds...).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := sqlx.GetContext(ctx, exec, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := d.From("dividend_record").
		Select("id", "round_id", "order_id", "user_id", "amount", "status", "paid_at", "wallet_tx_id", "trace_id", "created_at", "updated_at").
		Where(conds...).
		Order(goqu.C("id").Desc()).
		Limit(uint(q.Size)).
		Offset(uint((q.Page - 1) * q.Size)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var list []DividendRecord
	if err := sqlx.SelectContext(ctx, exec, &list, listSQL, listArgs...); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
