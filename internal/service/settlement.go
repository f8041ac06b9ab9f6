package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gb-server/common/helper"
	"gb-server/internal/config"
	infmysql "gb-server/internal/infra/mysql"
	infrds "gb-server/internal/infra/redis"
	"gb-server/internal/metrics"
	"gb-server/internal/model"
	"gb-server/internal/state"
)

// 结算事务超时：超过则回滚，避免长事务占用锁
const defaultTxTimeout = 3 * time.Second

// 结算结果缓存 TTL
const resultCacheTTL = 2 * time.Minute

type SettlementService interface {
	// Draw 触发开奖结算；已结算时幂等返回既有结果
	Draw(ctx context.Context, roundID, traceID string) (*SettleResult, error)
	// GetResult 查询结算结果；未开奖返回 ErrNotYetDrawn
	GetResult(ctx context.Context, roundID, traceID string) (*SettleResult, error)
}

type settlementService struct{}

func NewSettlementService() SettlementService { return &settlementService{} }

// LotteryView 开奖信息视图
type LotteryView struct {
	RoundID       string   `json:"round_id"`
	ProductID     string   `json:"product_id"`
	Seed          string   `json:"seed"`
	WinnerCount   int      `json:"winner_count"`
	EligibleCount int      `json:"eligible_count"`
	Winners       []string `json:"winners"` // 中奖 order_id，升序
	DrawnAt       int64    `json:"drawn_at"`
}

// DividendView 单笔分红视图
type DividendView struct {
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	Amount    int64  `json:"amount"`     // 分
	AmountStr string `json:"amount_str"` // 两位小数展示金额
	Status    int8   `json:"status"`     // 1=pending 2=paid
}

// SettleResult 结算结果（Draw 与 GetResult 共用的出参）
// winners 在顶层重复一份，调用方不必下钻 lottery 结构
type SettleResult struct {
	Lottery   LotteryView    `json:"lottery"`
	Winners   []string       `json:"winners"` // 中奖 order_id，升序
	Dividends []DividendView `json:"dividends"`
}

// Draw: 两段式开奖。
// 第一段用条件更新 eligible->drawing 做并发仲裁（独立提交，多实例下仅一方成功）；
// 第二段在单事务内完成选取中奖者、计算分红、落开奖记录与分红记录、推进 settled。
// 第二段失败时尽力回退 drawing->eligible，保证重试安全。
func (s *settlementService) Draw(ctx context.Context, roundID, traceID string) (*SettleResult, error) {
	if roundID == "" {
		return nil, ErrBadRequest
	}

	fmt.Printf("[Settle] 收到开奖请求: round_id=%s, trace_id=%s\n", roundID, traceID)

	start := time.Now()
	resultLabel := "fail"
	defer func() { metrics.RecordSettle(resultLabel, start) }()

	db := infmysql.SQLX()

	// 快速路径：先读一次状态，终态直接返回
	round, err := model.GetRound(ctx, db, roundID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	if round.Status == model.RoundStatusSettled {
		fmt.Printf("[Settle] 该局已结算，返回既有结果: round_id=%s, trace_id=%s\n", roundID, traceID)
		resultLabel = "success_idempotent"
		return s.loadResult(ctx, round, traceID)
	}

	// ========== 第一段：条件更新仲裁 ==========
	won, err := model.TryBeginDraw(ctx, db, roundID)
	if err != nil {
		return nil, err
	}
	if !won {
		// 没抢到独占权：重读状态判定调用方应得的语义
		cur, err := model.GetRound(ctx, db, roundID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrRoundNotFound
			}
			return nil, err
		}
		switch cur.Status {
		case model.RoundStatusSettled:
			fmt.Printf("[Settle] 并发开奖已由他方完成: round_id=%s, trace_id=%s\n", roundID, traceID)
			resultLabel = "success_idempotent"
			return s.loadResult(ctx, cur, traceID)
		case model.RoundStatusDrawing:
			resultLabel = "conflict"
			return nil, ErrDrawInProgress
		case model.RoundStatusOpen:
			return nil, ErrNotEligible
		case model.RoundStatusFailed:
			return nil, ErrRoundFailed
		default:
			return nil, ErrNotEligible
		}
	}

	fmt.Printf("[Settle] 获得开奖独占权: round_id=%s, trace_id=%s\n", roundID, traceID)

	// 审计：draw_begin（独立落库，不依赖结算事务）
	s.auditAsync(ctx, round, model.AuditEvtDrawBegin, state.StateEligible, state.StateDrawing, "", traceID)

	// ========== 第二段：结算事务 ==========
	res, settleErr := s.settle(ctx, round, traceID)
	if settleErr != nil {
		if settleErr == ErrInsufficientParticipants {
			resultLabel = "insufficient"
			return nil, settleErr
		}
		// 事务失败：尽力回退 drawing -> eligible，让后续重试回到开奖前状态
		fmt.Printf("[Settle] 结算事务失败，回退状态: round_id=%s, error=%v, trace_id=%s\n",
			roundID, settleErr, traceID)
		if ok, rerr := model.RevertDrawing(ctx, db, roundID); rerr != nil || !ok {
			fmt.Printf("[Settle] 状态回退失败（需人工关注）: round_id=%s, ok=%v, error=%v, trace_id=%s\n",
				roundID, ok, rerr, traceID)
		} else {
			s.auditAsync(ctx, round, model.AuditEvtDrawRevert, state.StateDrawing, state.StateEligible,
				settleErr.Error(), traceID)
		}
		return nil, settleErr
	}

	resultLabel = "success"
	fmt.Printf("[Settle] 开奖处理完成: round_id=%s, winners=%d, dividends=%d, trace_id=%s\n",
		roundID, len(res.Lottery.Winners), len(res.Dividends), traceID)
	return res, nil
}

// settle 执行结算事务（调用时局必须处于 drawing 状态）
func (s *settlementService) settle(ctx context.Context, round *model.GroupRound, traceID string) (*SettleResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, defaultTxTimeout)
	defer cancel()

	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// 加锁重读，确认独占权仍在本实例手里
	locked, err := model.GetRoundForUpdate(txCtx, tx, round.RoundID)
	if err != nil {
		return nil, err
	}
	if locked.Status != model.RoundStatusDrawing {
		return nil, ErrDrawInProgress
	}

	participants, err := model.ListEligibleByRound(txCtx, tx, round.RoundID)
	if err != nil {
		return nil, err
	}
	metrics.RecordSettleParticipants(len(participants))

	fmt.Printf("[Settle] 找到 %d 个有效参与者: round_id=%s, winner_count=%d, trace_id=%s\n",
		len(participants), round.RoundID, round.WinnerCount, traceID)

	// 有效参与者不足名额：标记失败（终态，需人工处理），该分支提交事务
	if len(participants) < round.WinnerCount {
		if _, err := model.MarkFailed(txCtx, tx, round.RoundID); err != nil {
			return nil, err
		}
		aud := &model.SettlementAudit{
			RoundID:   round.RoundID,
			ProductID: round.ProductID,
			EventType: model.AuditEvtDrawFail,
			PrevState: state.StateDrawing,
			NextState: state.StateFailed,
			Operator:  "system",
			Source:    "api",
			Payload: toJSON(map[string]any{
				"reason":         "insufficient participants",
				"eligible_count": len(participants),
				"winner_count":   round.WinnerCount,
			}),
			TraceID: traceID,
		}
		if err := aud.Insert(txCtx, tx); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		fmt.Printf("[Settle] 有效参与者不足，局已标记失败: round_id=%s, eligible=%d, winner_count=%d, trace_id=%s\n",
			round.RoundID, len(participants), round.WinnerCount, traceID)
		return nil, ErrInsufficientParticipants
	}

	// 纯计算：种子、中奖名单、分红方案
	secret := seedSecret()
	winners, shares, seed, err := computeSettlement(participants, round.WinnerCount, secret, round.RoundID)
	if err != nil {
		return nil, err
	}

	drawnAt := time.Now().UnixMilli()
	winnerJSON, err := model.EncodeWinnerIDs(winners)
	if err != nil {
		return nil, err
	}

	// ========== 幂等性第二道保险：开奖记录唯一键 ==========
	rec := &model.LotteryRecord{
		RoundID:     round.RoundID,
		Seed:        seed,
		WinnerIDs:   winnerJSON,
		WinnerCount: round.WinnerCount,
		EligibleCnt: len(participants),
		DrawnAt:     drawnAt,
		TraceID:     traceID,
	}
	if err := model.InsertLotteryRecord(txCtx, tx, rec); err != nil {
		if err == model.ErrLotteryDup {
			// 唯一键拦截：他方已落开奖记录，走幂等读路径
			fmt.Printf("[Settle] 开奖记录已存在，跳过重复结算: round_id=%s, trace_id=%s\n",
				round.RoundID, traceID)
			_ = tx.Rollback()
			return s.loadResult(ctx, round, traceID)
		}
		return nil, err
	}

	// 分红记录（pending，由后台 worker 入账）
	recs := make([]model.DividendRecord, 0, len(shares))
	for _, sh := range shares {
		recs = append(recs, model.DividendRecord{
			RoundID: round.RoundID,
			OrderID: sh.OrderID,
			UserID:  sh.UserID,
			Amount:  sh.Amount,
			TraceID: traceID,
		})
	}
	if err := model.InsertDividendRecords(txCtx, tx, recs); err != nil {
		return nil, err
	}

	// 每笔分红一条待入账事件，通知侧按单推送
	for _, sh := range shares {
		if err := model.CreateOutbox(txCtx, tx, "dividend_pending",
			round.RoundID+":"+sh.OrderID, map[string]any{
				"event":    "dividend_pending",
				"round_id": round.RoundID,
				"order_id": sh.OrderID,
				"user_id":  sh.UserID,
				"amount":   sh.Amount,
				"trace_id": traceID,
			}); err != nil {
			return nil, err
		}
	}

	// Outbox：结算完成事件（事务内写入，确保与数据库状态一致）
	fmt.Printf("[Settle] 写入 Outbox: topic=round_settled, round_id=%s, trace_id=%s\n",
		round.RoundID, traceID)
	if err := model.CreateOutbox(txCtx, tx, "round_settled", round.RoundID, map[string]any{
		"event":          "round_settled",
		"round_id":       round.RoundID,
		"product_id":     round.ProductID,
		"winners":        winners,
		"winner_count":   round.WinnerCount,
		"eligible_count": len(participants),
		"dividend_count": len(shares),
		"drawn_at":       drawnAt,
		"trace_id":       traceID,
	}); err != nil {
		return nil, err
	}

	// 推进 drawing -> settled
	ok, err := model.MarkSettled(txCtx, tx, round.RoundID, drawnAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("mark settled failed: unexpected status, round_id=%s", round.RoundID)
	}

	// 审计：draw_settle
	aud := &model.SettlementAudit{
		RoundID:   round.RoundID,
		ProductID: round.ProductID,
		EventType: model.AuditEvtDrawSettle,
		PrevState: state.StateDrawing,
		NextState: state.StateSettled,
		Operator:  "system",
		Source:    "api",
		Payload: toJSON(map[string]any{
			"seed":           seed,
			"winners":        winners,
			"eligible_count": len(participants),
			"dividend_count": len(shares),
		}),
		TraceID: traceID,
	}
	if err := aud.Insert(txCtx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		fmt.Printf("[Settle] 提交事务失败: round_id=%s, error=%v, trace_id=%s\n",
			round.RoundID, err, traceID)
		return nil, err
	}

	res := buildResult(round, rec, winners, recs)

	// 结算结果写入 Redis，便于结果接口快速返回
	s.cacheResult(ctx, round.RoundID, res, traceID)

	return res, nil
}

// GetResult 查询结算结果：优先 Redis 缓存，未命中回源数据库
func (s *settlementService) GetResult(ctx context.Context, roundID, traceID string) (*SettleResult, error) {
	if roundID == "" {
		return nil, ErrBadRequest
	}

	if r := infrds.Client(); r != nil {
		if b, err := r.Get(ctx, infrds.SettleResultKey(roundID)).Bytes(); err == nil && len(b) > 0 {
			var res SettleResult
			if json.Unmarshal(b, &res) == nil {
				return &res, nil
			}
		}
	}

	db := infmysql.SQLX()
	round, err := model.GetRound(ctx, db, roundID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}

	switch round.Status {
	case model.RoundStatusSettled:
		return s.loadResult(ctx, round, traceID)
	case model.RoundStatusFailed:
		return nil, ErrRoundFailed
	default:
		return nil, ErrNotYetDrawn
	}
}

// loadResult 从数据库装配已结算局的结果视图，并回填缓存
func (s *settlementService) loadResult(ctx context.Context, round *model.GroupRound, traceID string) (*SettleResult, error) {
	db := infmysql.SQLX()

	rec, err := model.GetLotteryRecord(ctx, db, round.RoundID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		// 状态为 settled 但开奖记录缺失：数据异常
		return nil, fmt.Errorf("settled round missing lottery record: round_id=%s", round.RoundID)
	}

	winners, err := rec.WinnerList()
	if err != nil {
		return nil, err
	}

	divs, err := model.ListDividendsByRound(ctx, db, round.RoundID)
	if err != nil {
		return nil, err
	}

	res := buildResult(round, rec, winners, divs)
	s.cacheResult(ctx, round.RoundID, res, traceID)
	return res, nil
}

// buildResult 装配结算结果视图
func buildResult(round *model.GroupRound, rec *model.LotteryRecord, winners []string, divs []model.DividendRecord) *SettleResult {
	views := make([]DividendView, 0, len(divs))
	for _, d := range divs {
		views = append(views, DividendView{
			OrderID:   d.OrderID,
			UserID:    d.UserID,
			Amount:    d.Amount,
			AmountStr: helper.MinorUnitsToDisplay(d.Amount),
			Status:    dividendStatus(d.Status),
		})
	}
	return &SettleResult{
		Lottery: LotteryView{
			RoundID:       round.RoundID,
			ProductID:     round.ProductID,
			Seed:          rec.Seed,
			WinnerCount:   rec.WinnerCount,
			EligibleCount: rec.EligibleCnt,
			Winners:       winners,
			DrawnAt:       rec.DrawnAt,
		},
		Winners:   winners,
		Dividends: views,
	}
}

// dividendStatus 刚结算完的记录尚未写 status 字段时默认为 pending
func dividendStatus(st int8) int8 {
	if st == 0 {
		return model.DividendStatusPending
	}
	return st
}

// cacheResult 结算结果写入 Redis（失败仅记录，不影响主流程）
func (s *settlementService) cacheResult(ctx context.Context, roundID string, res *SettleResult, traceID string) {
	r := infrds.Client()
	if r == nil {
		return
	}
	if b, err := json.Marshal(res); err == nil {
		fmt.Printf("[Settle] 写入 Redis 缓存: key=%s, ttl=2m, trace_id=%s\n",
			infrds.SettleResultKey(roundID), traceID)
		_ = r.Set(ctx, infrds.SettleResultKey(roundID), b, resultCacheTTL).Err()
	}
}

// auditAsync 独立连接写审计（失败仅记录，不阻断主流程）
func (s *settlementService) auditAsync(ctx context.Context, round *model.GroupRound, evt int8, prev, next, reason, traceID string) {
	payload := map[string]any{}
	if reason != "" {
		payload["reason"] = reason
	}
	aud := &model.SettlementAudit{
		RoundID:   round.RoundID,
		ProductID: round.ProductID,
		EventType: evt,
		PrevState: prev,
		NextState: next,
		Operator:  "system",
		Source:    "api",
		Payload:   toJSON(payload),
		TraceID:   traceID,
	}
	if err := aud.Insert(ctx, infmysql.SQLX()); err != nil {
		fmt.Printf("[Settle] 审计写入失败: round_id=%s, event=%d, error=%v, trace_id=%s\n",
			round.RoundID, evt, err, traceID)
	}
}

// computeSettlement 结算的纯计算部分：种子、中奖名单、分红方案
func computeSettlement(participants []model.Participant, winnerCount int, secret, roundID string) (winners []string, shares []DividendShare, seed string, err error) {
	orderIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		orderIDs = append(orderIDs, p.OrderID)
	}

	seed = DeriveSeed(secret, roundID, orderIDs)
	winners, err = SelectWinners(seed, orderIDs, winnerCount)
	if err != nil {
		return nil, nil, "", err
	}

	winnerSet := make(map[string]bool, len(winners))
	for _, w := range winners {
		winnerSet[w] = true
	}

	// 奖池 = 未中奖者出资总额（中奖者的出资换实物，不参与分红）
	var pool int64
	recipients := make([]model.Participant, 0, len(participants)-len(winners))
	for _, p := range participants {
		if winnerSet[p.OrderID] {
			continue
		}
		pool += p.ContributionAmount
		recipients = append(recipients, p)
	}

	shares = Distribute(pool, recipients)
	return winners, shares, seed, nil
}

// seedSecret 读取随机种子密钥（未配置时用固定占位值，便于本地联调）
func seedSecret() string {
	if cfg := config.GetCurrent(); cfg != nil && cfg.Settlement.SeedSecret != "" {
		return cfg.Settlement.SeedSecret
	}
	return "dev-seed-secret"
}

func toJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
