package model

import "errors"

// 模型层哨兵错误，service 层据此区分业务语义
var (
	// ErrLotteryDup 开奖记录唯一键冲突（该局已有开奖结果）
	ErrLotteryDup = errors.New("lottery record already exists for round")
)
