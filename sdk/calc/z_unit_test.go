// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package calc

import (
	"testing"

	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/spec"
	"pgregory.net/rapid"
)

const (
	T  = spec.TEN
	J  = spec.J
	Q  = spec.Q
	K  = spec.K
	A  = spec.A
	P1 = spec.P1
	P2 = spec.P2
	P3 = spec.P3
	P4 = spec.P4
	S  = spec.SCATTER
)

func grid(rows ...[spec.Reels]spec.Symbol) buf.Grid {
	var g buf.Grid
	for i, r := range rows {
		g[i] = r
	}
	return g
}

func mustEvaluator(t *testing.T, lines []spec.Payline, policy PayoutPolicy) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(lines, policy)
	if err != nil {
		t.Fatalf("evaluator err: %v", err)
	}
	return ev
}

func TestPayoutPolicySwitch(t *testing.T) {
	g := grid(
		[5]spec.Symbol{K, K, K, K, J},
		[5]spec.Symbol{P1, P1, P1, P1, Q},
		[5]spec.Symbol{T, J, Q, A, P2},
	)
	all := mustEvaluator(t, spec.DefaultPaylines(), PayAllWins).Evaluate(g, 1)
	if all.TotalPayout != 12 || len(all.LineWins) != 2 {
		t.Fatalf("pay all: total=%d wins=%+v", all.TotalPayout, all.LineWins)
	}
	if all.LineWins[0] != (buf.LineWin{Line: 1, Symbol: K, Count: 4, Payout: 4}) {
		t.Fatalf("unexpected first win %+v", all.LineWins[0])
	}

	hi := mustEvaluator(t, spec.DefaultPaylines(), PayHighestWin).Evaluate(g, 1)
	if hi.TotalPayout != 8 || len(hi.LineWins) != 1 {
		t.Fatalf("pay highest: total=%d wins=%+v", hi.TotalPayout, hi.LineWins)
	}
	if hi.LineWins[0].Line != 2 || hi.LineWins[0].Symbol != P1 {
		t.Fatalf("highest should be middle row P1, got %+v", hi.LineWins[0])
	}
}

func TestPayHighestTieKeepsFirstLine(t *testing.T) {
	g := grid(
		[5]spec.Symbol{K, K, K, K, J},
		[5]spec.Symbol{T, J, Q, P2, P3},
		[5]spec.Symbol{A, A, A, A, Q},
	)
	hi := mustEvaluator(t, spec.DefaultPaylines(), PayHighestWin).Evaluate(g, 3)
	if len(hi.LineWins) != 1 || hi.LineWins[0].Line != 1 || hi.LineWins[0].Payout != 12 {
		t.Fatalf("tie should keep line 1, got %+v", hi.LineWins)
	}
}

func TestLeftAnchoredRun(t *testing.T) {
	lines := []spec.Payline{{0, 0, 0, 0, 0}}
	ev := mustEvaluator(t, lines, PayAllWins)

	broken := grid([5]spec.Symbol{A, A, Q, A, A}, [5]spec.Symbol{T, J, Q, K, P1}, [5]spec.Symbol{J, Q, K, P1, P2})
	if r := ev.Evaluate(broken, 1); len(r.LineWins) != 0 {
		t.Fatalf("A A Q A A must not pay, got %+v", r.LineWins)
	}
	three := grid([5]spec.Symbol{A, A, A, Q, A}, [5]spec.Symbol{T, J, Q, K, P1}, [5]spec.Symbol{J, Q, K, P1, P2})
	r := ev.Evaluate(three, 1)
	if len(r.LineWins) != 1 || r.LineWins[0].Count != 3 || r.LineWins[0].Payout != 2 {
		t.Fatalf("A A A Q A should be run 3, got %+v", r.LineWins)
	}
	notFirst := grid([5]spec.Symbol{Q, A, A, A, A}, [5]spec.Symbol{T, J, Q, K, P1}, [5]spec.Symbol{J, Q, K, P1, P2})
	if r := ev.Evaluate(notFirst, 1); len(r.LineWins) != 0 {
		t.Fatalf("run not anchored at column 0 must not pay, got %+v", r.LineWins)
	}
}

func TestScatterNeverForLine(t *testing.T) {
	g := grid(
		[5]spec.Symbol{T, J, Q, K, A},
		[5]spec.Symbol{S, S, S, S, S},
		[5]spec.Symbol{J, Q, K, A, T},
	)
	r := mustEvaluator(t, spec.DefaultPaylines(), PayAllWins).Evaluate(g, 1)
	if len(r.LineWins) != 0 {
		t.Fatalf("scatter row must not form a line, got %+v", r.LineWins)
	}
	if r.ScatterCount != 5 || r.ScatterPayout != 20 || r.TotalPayout != 20 {
		t.Fatalf("scatter count=%d payout=%d total=%d", r.ScatterCount, r.ScatterPayout, r.TotalPayout)
	}
}

func TestScatterClamp(t *testing.T) {
	g := grid(
		[5]spec.Symbol{S, J, S, K, S},
		[5]spec.Symbol{T, S, Q, S, A},
		[5]spec.Symbol{J, Q, S, A, T},
	)
	r := mustEvaluator(t, spec.DefaultPaylines(), PayAllWins).Evaluate(g, 2)
	if r.ScatterCount != 6 {
		t.Fatalf("expected 6 scatters, got %d", r.ScatterCount)
	}
	if r.ScatterPayout != 40 {
		t.Fatalf("6 scatters should pay as 5 (20*2), got %d", r.ScatterPayout)
	}

	two := grid([5]spec.Symbol{S, J, Q, K, A}, [5]spec.Symbol{T, S, Q, P1, A}, [5]spec.Symbol{J, Q, K, A, T})
	if r := mustEvaluator(t, spec.DefaultPaylines(), PayAllWins).Evaluate(two, 1); r.ScatterPayout != 0 {
		t.Fatalf("2 scatters must not pay, got %d", r.ScatterPayout)
	}
}

func TestEndToEndSingleMiddleLine(t *testing.T) {
	g := grid(
		[5]spec.Symbol{T, J, Q, K, A},
		[5]spec.Symbol{P1, P1, P1, P1, P1},
		[5]spec.Symbol{J, Q, K, A, T},
	)
	for _, bet := range []int{1, 2, 5, 10} {
		r, err := Evaluate(g, []spec.Payline{{1, 1, 1, 1, 1}}, true, bet)
		if err != nil {
			t.Fatalf("evaluate err: %v", err)
		}
		want := buf.LineWin{Line: 1, Symbol: P1, Count: 5, Payout: 16 * bet}
		if len(r.LineWins) != 1 || r.LineWins[0] != want {
			t.Fatalf("bet %d: got %+v want %+v", bet, r.LineWins, want)
		}
		if r.TotalPayout != 16*bet {
			t.Fatalf("bet %d: total %d", bet, r.TotalPayout)
		}
	}
}

func TestNewEvaluatorRejectsBadLines(t *testing.T) {
	if _, err := NewEvaluator(nil, PayAllWins); !errs.IsConfiguration(err) {
		t.Fatalf("empty paylines must fail, got %v", err)
	}
	if _, err := NewEvaluator([]spec.Payline{{0, 1, 3, 1, 0}}, PayAllWins); !errs.IsConfiguration(err) {
		t.Fatalf("row 3 must fail, got %v", err)
	}
}

func drawGrid(rt *rapid.T) buf.Grid {
	var g buf.Grid
	sym := rapid.IntRange(0, spec.SymbolCount-1)
	for row := range g {
		for col := range g[row] {
			g[row][col] = spec.Symbol(sym.Draw(rt, "cell"))
		}
	}
	return g
}

func TestEvaluateProperties(t *testing.T) {
	all := mustEvaluator(t, spec.DefaultPaylines(), PayAllWins)
	hi := mustEvaluator(t, spec.DefaultPaylines(), PayHighestWin)
	lines := spec.DefaultPaylines()

	rapid.Check(t, func(rt *rapid.T) {
		g := drawGrid(rt)
		bet := rapid.SampledFrom([]int{1, 2, 5, 10}).Draw(rt, "bet")
		ra := all.Evaluate(g, bet)
		rh := hi.Evaluate(g, bet)

		if len(rh.LineWins) > 1 {
			rt.Fatalf("highest policy recorded %d wins", len(rh.LineWins))
		}
		if ra.TotalPayout < rh.TotalPayout {
			rt.Fatalf("pay all %d < highest %d", ra.TotalPayout, rh.TotalPayout)
		}
		if ra.ScatterCount != g.CountScatters() || ra.ScatterPayout != rh.ScatterPayout {
			rt.Fatalf("scatter result differs between policies")
		}
		if ra.TotalPayout != ra.LinePayout()+ra.ScatterPayout {
			rt.Fatalf("total mismatch")
		}
		for _, lw := range ra.LineWins {
			line := lines[lw.Line-1]
			if lw.Symbol.IsScatter() || lw.Count < 3 || lw.Count > 5 {
				rt.Fatalf("bad win %+v", lw)
			}
			for col := 0; col < lw.Count; col++ {
				if g[line[col]][col] != lw.Symbol {
					rt.Fatalf("win %+v not contiguous at col %d", lw, col)
				}
			}
			if lw.Count < spec.Reels && g[line[lw.Count]][lw.Count] == lw.Symbol {
				rt.Fatalf("win %+v stopped early", lw)
			}
			if lw.Payout != lw.Symbol.PayoutFor(lw.Count)*bet {
				rt.Fatalf("win %+v payout mismatch", lw)
			}
		}
		if len(rh.LineWins) == 1 {
			for _, lw := range ra.LineWins {
				if lw.Payout > rh.LineWins[0].Payout {
					rt.Fatalf("highest %+v beaten by %+v", rh.LineWins[0], lw)
				}
			}
		}
	})
}
