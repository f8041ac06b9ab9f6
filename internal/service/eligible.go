package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gb-server/internal/config"
	infmysql "gb-server/internal/infra/mysql"
	"gb-server/internal/model"
	"gb-server/internal/state"
)

// EligibleInput 满员事件入参
type EligibleInput struct {
	RoundID     string
	ProductID   string
	TargetSize  int
	WinnerCount int
	Source      string // "api" | "mq"
	TraceID     string
}

type EligibleService interface {
	// RoundEligible 处理拼团满员事件：建局（如缺失）并推进 open -> eligible。
	// 重复投递幂等：已处于 eligible 及之后状态直接返回成功。
	RoundEligible(ctx context.Context, in EligibleInput) error
}

type eligibleService struct {
	settle SettlementService
}

func NewEligibleService(settle SettlementService) EligibleService {
	return &eligibleService{settle: settle}
}

func (s *eligibleService) RoundEligible(ctx context.Context, in EligibleInput) error {
	if in.RoundID == "" || in.ProductID == "" {
		return ErrBadRequest
	}
	if in.TargetSize < 2 || in.WinnerCount < 1 || in.WinnerCount >= in.TargetSize {
		return ErrBadRequest
	}

	fmt.Printf("[Eligible] 收到满员事件: round_id=%s, product_id=%s, target_size=%d, winner_count=%d, source=%s, trace_id=%s\n",
		in.RoundID, in.ProductID, in.TargetSize, in.WinnerCount, in.Source, in.TraceID)

	txCtx, cancel := context.WithTimeout(ctx, defaultTxTimeout)
	defer cancel()

	tx, err := infmysql.SQLX().BeginTxx(txCtx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// 满员事件可能先于本服务看到该局：按事件携带的团配置建局
	if err := model.EnsureRound(txCtx, tx, in.RoundID, in.ProductID, in.TargetSize, in.WinnerCount, in.TraceID); err != nil {
		return err
	}

	changed, err := model.MarkEligible(txCtx, tx, in.RoundID)
	if err != nil {
		return err
	}
	if !changed {
		// 没有发生状态转换：重复投递或局已推进到后续状态，均视为幂等成功
		cur, err := model.GetRound(txCtx, tx, in.RoundID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrRoundNotFound
			}
			return err
		}
		if cur.Status == model.RoundStatusFailed {
			return ErrRoundFailed
		}
		fmt.Printf("[Eligible] 重复满员事件，跳过: round_id=%s, status=%d, trace_id=%s\n",
			in.RoundID, cur.Status, in.TraceID)
		return tx.Commit()
	}

	aud := &model.SettlementAudit{
		RoundID:   in.RoundID,
		ProductID: in.ProductID,
		EventType: model.AuditEvtRoundEligible,
		PrevState: state.StateOpen,
		NextState: state.StateEligible,
		Operator:  "platform",
		Source:    in.Source,
		Payload: toJSON(map[string]any{
			"target_size":  in.TargetSize,
			"winner_count": in.WinnerCount,
		}),
		TraceID: in.TraceID,
	}
	if err := aud.Insert(txCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	fmt.Printf("[Eligible] 局已推进至待开奖: round_id=%s, trace_id=%s\n", in.RoundID, in.TraceID)

	// 功能开关：满员后自动触发开奖（异步，失败由后续手动/重试触发兜底）
	if config.GetFeatureFlag("auto_draw") {
		go func(roundID, traceID string) {
			c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := s.settle.Draw(c, roundID, traceID); err != nil {
				fmt.Printf("[Eligible] 自动开奖失败: round_id=%s, error=%v, trace_id=%s\n",
					roundID, err, traceID)
			}
		}(in.RoundID, in.TraceID)
	}

	return nil
}
