package service

import (
	"encoding/json"
	"testing"

	"gb-server/internal/model"
)

func TestBuildResultEnvelope(t *testing.T) {
	round := &model.GroupRound{
		RoundID:     "R1",
		ProductID:   "P1",
		TargetSize:  10,
		WinnerCount: 1,
		Status:      model.RoundStatusSettled,
	}
	rec := &model.LotteryRecord{
		RoundID:     "R1",
		Seed:        "abc123",
		WinnerCount: 1,
		EligibleCnt: 3,
		DrawnAt:     1700000000000,
	}
	winners := []string{"o2"}
	divs := []model.DividendRecord{
		{RoundID: "R1", OrderID: "o1", UserID: "u1", Amount: 100},
		{RoundID: "R1", OrderID: "o3", UserID: "u3", Amount: 101},
	}

	res := buildResult(round, rec, winners, divs)

	// winners 顶层与 lottery 内各一份，内容一致
	if len(res.Winners) != 1 || res.Winners[0] != "o2" {
		t.Fatalf("top-level winners wrong: %v", res.Winners)
	}
	if len(res.Lottery.Winners) != 1 || res.Lottery.Winners[0] != "o2" {
		t.Fatalf("lottery winners wrong: %v", res.Lottery.Winners)
	}
	if len(res.Dividends) != 2 {
		t.Fatalf("expect 2 dividends, got %d", len(res.Dividends))
	}
	// 刚结算的记录 status 字段未写时按 pending 返回
	for _, d := range res.Dividends {
		if d.Status != model.DividendStatusPending {
			t.Fatalf("dividend %s status = %d, want pending", d.OrderID, d.Status)
		}
	}

	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(b, &envelope); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	for _, key := range []string{"lottery", "winners", "dividends"} {
		if _, ok := envelope[key]; !ok {
			t.Fatalf("response missing top-level %q field: %s", key, b)
		}
	}
}
