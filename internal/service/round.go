package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	infmysql "gb-server/internal/infra/mysql"
	infrds "gb-server/internal/infra/redis"
	"gb-server/internal/model"
	"gb-server/internal/state"
)

// 局信息缓存 TTL：状态会变化，缓存周期要短
const roundCacheTTL = 30 * time.Second

// RoundView 拼团局查询视图
type RoundView struct {
	RoundID       string `json:"round_id"`
	ProductID     string `json:"product_id"`
	TargetSize    int    `json:"target_size"`
	WinnerCount   int    `json:"winner_count"`
	EligibleCount int    `json:"eligible_count"` // 当前有效参与者数量
	Status        string `json:"status"`         // open|eligible|drawing|settled|failed
	DrawnAt       int64  `json:"drawn_at,omitempty"`
}

type RoundService interface {
	GetRound(ctx context.Context, roundID, traceID string) (*RoundView, error)
}

type roundService struct{}

func NewRoundService() RoundService { return &roundService{} }

// GetRound 查询局信息：优先 Redis 缓存，未命中回源数据库并回填
func (s *roundService) GetRound(ctx context.Context, roundID, traceID string) (*RoundView, error) {
	if roundID == "" {
		return nil, ErrBadRequest
	}

	if r := infrds.Client(); r != nil {
		if b, err := r.Get(ctx, infrds.RoundInfoKey(roundID)).Bytes(); err == nil && len(b) > 0 {
			var v RoundView
			if json.Unmarshal(b, &v) == nil {
				return &v, nil
			}
		}
	}

	// 展示类查询可容忍复制延迟，走从库
	rdb := infmysql.ReadSQLX()
	snap, err := model.GetRoundSnapshot(ctx, rdb, roundID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}

	cnt, err := model.CountEligibleByRound(ctx, rdb, roundID)
	if err != nil {
		return nil, err
	}

	v := &RoundView{
		RoundID:       snap.RoundID,
		ProductID:     snap.ProductID,
		TargetSize:    snap.TargetSize,
		WinnerCount:   snap.WinnerCount,
		EligibleCount: cnt,
		Status:        statusToState(snap.Status),
		DrawnAt:       snap.DrawnAt,
	}

	if r := infrds.Client(); r != nil {
		if b, err := json.Marshal(v); err == nil {
			_ = r.Set(ctx, infrds.RoundInfoKey(roundID), b, roundCacheTTL).Err()
		}
	}

	return v, nil
}

// statusToState 数值状态码转字符串状态
func statusToState(code int8) string {
	switch code {
	case model.RoundStatusOpen:
		return state.StateOpen
	case model.RoundStatusEligible:
		return state.StateEligible
	case model.RoundStatusDrawing:
		return state.StateDrawing
	case model.RoundStatusSettled:
		return state.StateSettled
	case model.RoundStatusFailed:
		return state.StateFailed
	default:
		return fmt.Sprintf("unknown(%d)", code)
	}
}
