package state

import "testing"

func TestNextStateTransitions(t *testing.T) {
	cases := []struct {
		cur, evt, want string
	}{
		{StateOpen, EvtRoundEligible, StateEligible},
		{StateEligible, EvtDrawBegin, StateDrawing},
		{StateEligible, EvtDrawFail, StateFailed},
		{StateDrawing, EvtDrawSettle, StateSettled},
		{StateDrawing, EvtDrawFail, StateFailed},
		{StateDrawing, EvtDrawRevert, StateEligible},
	}
	for _, c := range cases {
		got, err := NextState(c.cur, c.evt)
		if err != nil {
			t.Fatalf("%s --%s--> error: %v", c.cur, c.evt, err)
		}
		if got != c.want {
			t.Fatalf("%s --%s--> %s, want %s", c.cur, c.evt, got, c.want)
		}
	}
}

func TestNextStateRejectsInvalid(t *testing.T) {
	all := []string{StateOpen, StateEligible, StateDrawing, StateSettled, StateFailed}
	events := []string{EvtRoundEligible, EvtDrawBegin, EvtDrawSettle, EvtDrawFail, EvtDrawRevert}

	valid := map[string]bool{
		StateOpen + EvtRoundEligible: true,
		StateEligible + EvtDrawBegin: true,
		StateEligible + EvtDrawFail:  true,
		StateDrawing + EvtDrawSettle: true,
		StateDrawing + EvtDrawFail:   true,
		StateDrawing + EvtDrawRevert: true,
	}

	for _, cur := range all {
		for _, evt := range events {
			_, err := NextState(cur, evt)
			if valid[cur+evt] {
				if err != nil {
					t.Fatalf("%s --%s--> should be valid: %v", cur, evt, err)
				}
				continue
			}
			if err == nil {
				t.Fatalf("%s --%s--> should be rejected", cur, evt)
			}
		}
	}
}

func TestTerminalStatesStayPut(t *testing.T) {
	// settled 与 failed 为终态：任何事件都报错且状态不变
	for _, cur := range []string{StateSettled, StateFailed} {
		for _, evt := range []string{EvtRoundEligible, EvtDrawBegin, EvtDrawSettle, EvtDrawFail, EvtDrawRevert} {
			got, err := NextState(cur, evt)
			if err == nil {
				t.Fatalf("terminal %s accepted event %s", cur, evt)
			}
			if got != cur {
				t.Fatalf("terminal %s moved to %s on %s", cur, got, evt)
			}
		}
	}
}
