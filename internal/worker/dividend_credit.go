package worker

import (
	"context"
	"sync"
	"time"

	"gb-server/common/helper"
	"gb-server/common/logger"
	"gb-server/internal/config"
	infmysql "gb-server/internal/infra/mysql"
	"gb-server/internal/metrics"
	"gb-server/internal/model"
	"gb-server/internal/wallet"

	"go.uber.org/zap"
)

// StartDividendCredit 启动分红入账 worker：
// 周期性拉取 pending 分红记录，逐笔调用钱包入账，成功后条件更新为 paid。
// 钱包侧以 biz_key 幂等，入账成功但本地更新失败时重试不会重复打款。
func StartDividendCredit(ctx context.Context, wg *sync.WaitGroup, client wallet.Client) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		// 启动抖动，避免多实例同时扫表
		jitter := time.Duration(helper.GenerateRandNum(0, 1000)) * time.Millisecond
		select {
		case <-ctx.Done():
			return
		case <-time.After(jitter):
		}

		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				creditBatch(ctx, client)
			}
		}
	}()
}

func creditBatch(ctx context.Context, client wallet.Client) {
	limit := int(config.GetThreshold("dividend_credit_batch", 50))

	c, cancel := context.WithTimeout(ctx, 2*time.Second)
	rows, err := model.ListPendingDividends(c, infmysql.SQLX(), limit)
	cancel()
	if err != nil {
		logger.Warn("dividend credit: list pending failed", zap.Error(err))
		return
	}

	for _, d := range rows {
		if ctx.Err() != nil {
			return
		}

		bizKey := "dividend:" + d.RoundID + ":" + d.OrderID
		txID, err := client.Credit(wallet.CreditInput{
			UserID:  d.UserID,
			OrderID: d.OrderID,
			RoundID: d.RoundID,
			Amount:  d.Amount,
			BizKey:  bizKey,
			TraceID: d.TraceID,
		})
		if err != nil {
			// 入账调用失败可能是超时后实际已落账：按业务键回查确认
			qTxID, qErr := client.QueryByBizKey(bizKey, d.TraceID)
			if qErr != nil {
				metrics.RecordDividendCredit("fail", 0)
				logger.Warn("dividend credit: wallet call failed",
					zap.Int64("id", d.ID),
					zap.String("round_id", d.RoundID),
					zap.String("order_id", d.OrderID),
					zap.Error(err))
				continue
			}
			logger.Info("dividend credit: recovered tx by biz_key",
				zap.Int64("id", d.ID), zap.String("biz_key", bizKey), zap.String("tx_id", qTxID))
			txID = qTxID
		}

		ok, err := model.MarkDividendPaid(ctx, infmysql.SQLX(), d.ID, txID)
		if err != nil {
			logger.Warn("dividend credit: mark paid failed",
				zap.Int64("id", d.ID), zap.String("tx_id", txID), zap.Error(err))
			continue
		}
		if !ok {
			// 已被他方更新（重复入账由钱包幂等吸收）
			metrics.RecordDividendCredit("skip", 0)
			continue
		}
		metrics.RecordDividendCredit("success", d.Amount)
		logger.Info("dividend credited",
			zap.Int64("id", d.ID),
			zap.String("round_id", d.RoundID),
			zap.String("order_id", d.OrderID),
			zap.Int64("amount", d.Amount),
			zap.String("tx_id", txID))
	}
}
