package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"gb-server/common"
)

// LotteryRecord 对应 lottery_record 表
// round_id 上有唯一索引，是开奖恰好一次的第二道保险：
// 状态机条件更新失效时（例如人工改库），唯一键冲突仍能拦住重复开奖
type LotteryRecord struct {
	ID          int64  `db:"id"`
	RoundID     string `db:"round_id"`
	Seed        string `db:"seed"`           // 随机种子(hex，逐字节存储，用于复现)
	WinnerIDs   string `db:"winner_ids"`     // 中奖 order_id 列表(JSON 数组)
	WinnerCount int    `db:"winner_count"`   // 本局名额
	EligibleCnt int    `db:"eligible_count"` // 开奖时有效参与者数
	DrawnAt     int64  `db:"drawn_at"`       // 开奖时间(毫秒)
	TraceID     string `db:"trace_id"`
	CreatedAt   int64  `db:"created_at"`
}

// InsertLotteryRecord 写入开奖记录。
// round_id 唯一键冲突返回 ErrLotteryDup，调用方按已结算的幂等路径处理。
func InsertLotteryRecord(ctx context.Context, exec sqlx.ExtContext, rec *LotteryRecord) error {
	now := time.Now().UnixMilli()
	sqlStr := `INSERT INTO lottery_record
		(round_id, seed, winner_ids, winner_count, eligible_count, drawn_at, trace_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := exec.ExecContext(ctx, sqlStr,
		rec.RoundID, rec.Seed, rec.WinnerIDs, rec.WinnerCount, rec.EligibleCnt,
		rec.DrawnAt, rec.TraceID, now)
	if err != nil {
		if me, ok := err.(*mysql.MySQLError); ok && me.Number == 1062 {
			return ErrLotteryDup
		}
		return err
	}
	return nil
}

// GetLotteryRecord 按局ID查询开奖记录，不存在返回 (nil, nil)
func GetLotteryRecord(ctx context.Context, exec sqlx.ExtContext, roundID string) (*LotteryRecord, error) {
	sqlStr := `SELECT id, round_id, seed, winner_ids, winner_count, eligible_count, drawn_at, trace_id, created_at
		FROM lottery_record WHERE round_id = ?`
	var rec LotteryRecord
	if err := sqlx.GetContext(ctx, exec, &rec, sqlStr, roundID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// WinnerList 解析 winner_ids JSON 数组
func (r *LotteryRecord) WinnerList() ([]string, error) {
	var ids []string
	if err := common.JsonUnmarshalFromString(r.WinnerIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// EncodeWinnerIDs 序列化中奖列表为 JSON 存储格式
func EncodeWinnerIDs(ids []string) (string, error) {
	return common.JsonMarshalToString(ids)
}
