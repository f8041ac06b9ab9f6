package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"gb-server/internal/model"
)

// 分红模块：把奖池无损地按出资比例分给未中奖者
// 全程使用最小货币单位的 int64 整数，份额之和恒等于奖池

// DividendShare 单个未中奖者的分红份额
type DividendShare struct {
	OrderID string
	UserID  string
	Amount  int64 // 分
}

// Distribute 计算分红方案
// 规则：
//  1. 基础份额 = 奖池 * 本人出资 / 未中奖者出资总额（整除向下取整）
//  2. 截断余数逐一分配，出资多者优先；出资相同时 order_id 小者优先
//
// 未中奖者为空（全员中奖）时返回空列表。
// 结算流程传入的 pool 即未中奖者出资总额，此时每人恰好拿回本人出资；
// 公式按一般比例分配实现，奖池口径调整时余数处理依然精确守恒。
func Distribute(pool int64, recipients []model.Participant) []DividendShare {
	if len(recipients) == 0 {
		return []DividendShare{}
	}

	var totalC int64
	for _, p := range recipients {
		totalC += p.ContributionAmount
	}

	poolDec := decimal.NewFromInt(pool)
	base := make([]int64, len(recipients))
	var distributed int64
	for i, p := range recipients {
		var quo decimal.Decimal
		if totalC > 0 {
			// QuoRem 精度 0 得到精确的整数商
			// 注意不能用 Div：接近整数的商会被舍入进位，导致份额超发
			quo, _ = poolDec.Mul(decimal.NewFromInt(p.ContributionAmount)).
				QuoRem(decimal.NewFromInt(totalC), 0)
		} else {
			// 出资总额为 0（理论上不会发生）：退化为平均分
			quo, _ = poolDec.QuoRem(decimal.NewFromInt(int64(len(recipients))), 0)
		}
		base[i] = quo.IntPart()
		distributed += base[i]
	}
	remainder := pool - distributed

	// 余数分配顺序：出资降序，出资相同时 order_id 升序
	order := make([]int, len(recipients))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := recipients[order[a]], recipients[order[b]]
		if ra.ContributionAmount != rb.ContributionAmount {
			return ra.ContributionAmount > rb.ContributionAmount
		}
		return ra.OrderID < rb.OrderID
	})

	for i := 0; remainder > 0; i++ {
		base[order[i%len(order)]]++
		remainder--
	}

	shares := make([]DividendShare, 0, len(recipients))
	for i, p := range recipients {
		shares = append(shares, DividendShare{
			OrderID: p.OrderID,
			UserID:  p.UserID,
			Amount:  base[i],
		})
	}

	// 输出按 order_id 升序，与落库和接口返回顺序一致
	sort.Slice(shares, func(a, b int) bool { return shares[a].OrderID < shares[b].OrderID })
	return shares
}
