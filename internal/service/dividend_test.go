package service

import (
	"fmt"
	"testing"

	"gb-server/internal/model"
)

func mkParticipant(orderID, userID string, amount int64) model.Participant {
	return model.Participant{
		OrderID:            orderID,
		RoundID:            "R1",
		UserID:             userID,
		ContributionAmount: amount,
		Eligible:           1,
	}
}

func TestDistributeEvenSplit(t *testing.T) {
	// 9 个未中奖者各出 100，奖池 900：每人恰好拿回 100，无余数
	var ps []model.Participant
	for i := 1; i <= 9; i++ {
		ps = append(ps, mkParticipant(fmt.Sprintf("o%02d", i), fmt.Sprintf("u%02d", i), 100))
	}
	shares := Distribute(900, ps)

	if len(shares) != 9 {
		t.Fatalf("expect 9 shares, got %d", len(shares))
	}
	for _, s := range shares {
		if s.Amount != 100 {
			t.Fatalf("share %s = %d, want 100", s.OrderID, s.Amount)
		}
	}
}

func TestDistributeProportional(t *testing.T) {
	// 出资 100/100/101，奖池 301：比例分配恰好还原各自出资，精确守恒
	ps := []model.Participant{
		mkParticipant("a1", "ua", 100),
		mkParticipant("b1", "ub", 100),
		mkParticipant("c1", "uc", 101),
	}
	shares := Distribute(301, ps)

	got := map[string]int64{}
	var total int64
	for _, s := range shares {
		got[s.OrderID] = s.Amount
		total += s.Amount
	}
	if total != 301 {
		t.Fatalf("shares must sum to pool 301, got %d", total)
	}
	if got["a1"] != 100 || got["b1"] != 100 || got["c1"] != 101 {
		t.Fatalf("unexpected shares: %v", got)
	}
}

func TestDistributeRemainderToLargestContributor(t *testing.T) {
	// 奖池与出资总额不同口径时，截断余数给出资最高者
	ps := []model.Participant{
		mkParticipant("a1", "ua", 100),
		mkParticipant("b1", "ub", 100),
		mkParticipant("c1", "uc", 101),
	}
	// 奖池 100：基础 33/33/33，余 1 给 c1
	shares := Distribute(100, ps)

	got := map[string]int64{}
	var total int64
	for _, s := range shares {
		got[s.OrderID] = s.Amount
		total += s.Amount
	}
	if total != 100 {
		t.Fatalf("shares must sum to pool 100, got %d", total)
	}
	if got["c1"] != got["a1"]+1 || got["a1"] != got["b1"] {
		t.Fatalf("extra unit should go to largest contributor: %v", got)
	}
}

func TestDistributeRemainderTieBreak(t *testing.T) {
	// 出资相同，余数按 order_id 升序分配
	ps := []model.Participant{
		mkParticipant("x3", "u3", 50),
		mkParticipant("x1", "u1", 50),
		mkParticipant("x2", "u2", 50),
	}
	// 奖池 152：基础 50，余 2 给 x1、x2
	shares := Distribute(152, ps)

	got := map[string]int64{}
	for _, s := range shares {
		got[s.OrderID] = s.Amount
	}
	if got["x1"] != 51 || got["x2"] != 51 || got["x3"] != 50 {
		t.Fatalf("unexpected shares: %v", got)
	}
}

func TestDistributeNoRecipients(t *testing.T) {
	shares := Distribute(0, nil)
	if shares == nil || len(shares) != 0 {
		t.Fatalf("no recipients should give empty share list, got %v", shares)
	}
}

func TestDistributeConservation(t *testing.T) {
	// 随人数与出资波动验证守恒：份额之和恒等于奖池，输出按 order_id 升序
	for n := 1; n <= 30; n++ {
		var ps []model.Participant
		var pool int64
		for i := 0; i < n; i++ {
			amt := int64(37*i + 101) // 故意不整除
			ps = append(ps, mkParticipant(fmt.Sprintf("o%03d", i), fmt.Sprintf("u%03d", i), amt))
			pool += amt
		}
		// 三种奖池口径：等于出资总额、小于、大于
		for _, p := range []int64{pool, pool / 3, pool*2 + 7} {
			shares := Distribute(p, ps)
			var total int64
			for _, s := range shares {
				total += s.Amount
				if s.Amount < 0 {
					t.Fatalf("n=%d pool=%d negative share %s=%d", n, p, s.OrderID, s.Amount)
				}
			}
			if total != p {
				t.Fatalf("n=%d total %d != pool %d", n, total, p)
			}
			for i := 1; i < len(shares); i++ {
				if shares[i-1].OrderID >= shares[i].OrderID {
					t.Fatalf("shares not sorted by order_id: %v", shares)
				}
			}
		}
	}
}

func TestComputeSettlementInvariant(t *testing.T) {
	// 分红总额 + 中奖者出资 == 全部出资，单位不多不少
	var ps []model.Participant
	var totalPool int64
	for i := 0; i < 10; i++ {
		amt := int64(100)
		ps = append(ps, mkParticipant(fmt.Sprintf("%d", i+1), fmt.Sprintf("u%d", i+1), amt))
		totalPool += amt
	}

	winners, shares, seed, err := computeSettlement(ps, 1, "secret", "R1")
	if err != nil {
		t.Fatalf("compute error: %v", err)
	}
	if len(winners) != 1 {
		t.Fatalf("expect 1 winner, got %v", winners)
	}
	if len(shares) != 9 {
		t.Fatalf("expect 9 shares, got %d", len(shares))
	}
	var divTotal int64
	for _, s := range shares {
		if s.OrderID == winners[0] {
			t.Fatalf("winner %s got a dividend", s.OrderID)
		}
		if s.Amount != 100 {
			t.Fatalf("share %s = %d, want 100", s.OrderID, s.Amount)
		}
		divTotal += s.Amount
	}
	if divTotal+100 != totalPool {
		t.Fatalf("conservation broken: dividends %d + winner 100 != %d", divTotal, totalPool)
	}

	// 同样输入重算，结果逐字节一致
	winners2, shares2, seed2, err := computeSettlement(ps, 1, "secret", "R1")
	if err != nil {
		t.Fatalf("recompute error: %v", err)
	}
	if seed2 != seed || winners2[0] != winners[0] || len(shares2) != len(shares) {
		t.Fatalf("recompute diverged: %v/%v vs %v/%v", winners, seed, winners2, seed2)
	}
}

func TestComputeSettlementAllWinners(t *testing.T) {
	ps := []model.Participant{
		mkParticipant("o1", "u1", 100),
		mkParticipant("o2", "u2", 100),
	}
	winners, shares, _, err := computeSettlement(ps, 2, "secret", "R1")
	if err != nil {
		t.Fatalf("compute error: %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("expect 2 winners, got %v", winners)
	}
	if len(shares) != 0 {
		t.Fatalf("all winners should give empty share list, got %v", shares)
	}
}
