package model

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Participant 对应 participants 表
// 订单金额一律用最小货币单位的整数（int64 分），避免浮点误差
// 本服务只读该表，订单写入由订单收单系统负责
type Participant struct {
	ID                 int64  `db:"id"`
	OrderID            string `db:"order_id"`
	RoundID            string `db:"round_id"`
	UserID             string `db:"user_id"`
	ContributionAmount int64  `db:"contribution_amount"` // 出资额(分)
	Eligible           int8   `db:"eligible"`            // 1=参与资格有效 0=已剔除(退款等)
	CreatedAt          int64  `db:"created_at"`
}

// ListEligibleByRound 查询局内全部有效参与者，按 order_id 升序。
// 排序是抽奖可复现的前提：任何调用方拿到的序列必须一致。
func ListEligibleByRound(ctx context.Context, exec sqlx.ExtContext, roundID string) ([]Participant, error) {
	sqlStr := `SELECT id, order_id, round_id, user_id, contribution_amount, eligible, created_at
		FROM participants
		WHERE round_id = ? AND eligible = 1
		ORDER BY order_id ASC`
	var list []Participant
	if err := sqlx.SelectContext(ctx, exec, &list, sqlStr, roundID); err != nil {
		return nil, err
	}
	return list, nil
}

// CountEligibleByRound 统计局内有效参与者数量
func CountEligibleByRound(ctx context.Context, exec sqlx.ExtContext, roundID string) (int, error) {
	var cnt int
	sqlStr := "SELECT COUNT(1) FROM participants WHERE round_id = ? AND eligible = 1"
	if err := sqlx.GetContext(ctx, exec, &cnt, sqlStr, roundID); err != nil {
		return 0, err
	}
	return cnt, nil
}
