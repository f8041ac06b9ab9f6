package state

import "fmt"

// State 拼团局状态
const (
	StateOpen     = "open"     // 开团中(未满员)
	StateEligible = "eligible" // 已满员、待开奖
	StateDrawing  = "drawing"  // 开奖中(独占)
	StateSettled  = "settled"  // 已结算(终态)
	StateFailed   = "failed"   // 失败(终态，需人工处理)
)

// Event 结算事件
const (
	EvtRoundEligible = "round_eligible" // 订单侧推送：满员
	EvtDrawBegin     = "draw_begin"     // 抢到开奖权
	EvtDrawSettle    = "draw_settle"    // 结算完成
	EvtDrawFail      = "draw_fail"      // 结算失败(如有效参与人不足)
	EvtDrawRevert    = "draw_revert"    // 结算事务失败回滚，释放开奖权
)

// NextState 根据当前状态与事件计算下一个状态，非法转换报错。
// settled 与 failed 为终态：任何事件都不允许离开。
func NextState(cur, evt string) (string, error) {
	switch cur {
	case StateOpen:
		if evt == EvtRoundEligible {
			return StateEligible, nil
		}
	case StateEligible:
		if evt == EvtDrawBegin {
			return StateDrawing, nil
		}
		if evt == EvtDrawFail {
			return StateFailed, nil
		}
	case StateDrawing:
		if evt == EvtDrawSettle {
			return StateSettled, nil
		}
		if evt == EvtDrawFail {
			return StateFailed, nil
		}
		if evt == EvtDrawRevert {
			return StateEligible, nil
		}
	}
	return cur, fmt.Errorf("invalid transition: %s --%s--> ?", cur, evt)
}
