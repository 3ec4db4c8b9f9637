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
	"slices"

	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/spec"
)

// PayoutPolicy 線獎記錄策略
type PayoutPolicy uint8

const (
	// PayAllWins 每條中獎線都記錄並加總
	PayAllWins PayoutPolicy = iota
	// PayHighestWin 只記錄單一最高的線獎，同分取線序較前者
	PayHighestWin
)

// PolicyOf 由 pay_all_wins 旗標取得策略
func PolicyOf(payAllWins bool) PayoutPolicy {
	if payAllWins {
		return PayAllWins
	}
	return PayHighestWin
}

func (p PayoutPolicy) String() string {
	if p == PayHighestWin {
		return "highest"
	}
	return "all"
}

// Evaluator 依賠付線與分散規則計算盤面派彩。
//
// 建立時驗證線形並攤平成盤面索引（row*Reels+col），之後 Evaluate 為純函式、無錯誤路徑，
// 可被多個 goroutine 同時呼叫。
type Evaluator struct {
	lines     []spec.Payline
	lineCount int
	lineFlat  []int8 // lineFlat[l*Reels+col] = 盤面攤平索引
	policy    PayoutPolicy
}

// NewEvaluator 驗證賠付線並建立算分器，線形不合法時回傳設定錯誤。
func NewEvaluator(lines []spec.Payline, policy PayoutPolicy) (*Evaluator, error) {
	if len(lines) == 0 {
		return nil, errs.Configf("at least one payline is required")
	}
	if err := spec.ValidatePaylines(lines); err != nil {
		return nil, err
	}
	ev := &Evaluator{
		lines:     slices.Clone(lines),
		lineCount: len(lines),
		lineFlat:  make([]int8, len(lines)*spec.Reels),
		policy:    policy,
	}
	for l, line := range lines {
		for col, row := range line {
			ev.lineFlat[l*spec.Reels+col] = int8(row*spec.Reels + col)
		}
	}
	return ev, nil
}

// Evaluate 一次性計算：適用於只評估單一盤面的呼叫端。
func Evaluate(grid buf.Grid, lines []spec.Payline, payAllWins bool, bet int) (buf.SpinResult, error) {
	ev, err := NewEvaluator(lines, PolicyOf(payAllWins))
	if err != nil {
		return buf.SpinResult{}, err
	}
	return ev.Evaluate(grid, bet), nil
}

// Evaluate 計算盤面：先逐線算線獎，再算全盤分散獎。所有金額皆乘上 bet。
func (ev *Evaluator) Evaluate(grid buf.Grid, bet int) buf.SpinResult {
	flat := flatten(&grid)
	sr := buf.SpinResult{Grid: grid, Bet: bet}

	sr.LineWins = calcByLine(bet, &flat, ev)
	sr.ScatterCount, sr.ScatterPayout = calcByCount(bet, &flat)
	sr.TotalPayout = sr.LinePayout() + sr.ScatterPayout
	return sr
}

// Paylines 回傳賠付線副本
func (ev *Evaluator) Paylines() []spec.Payline { return slices.Clone(ev.lines) }

// Policy 回傳記錄策略
func (ev *Evaluator) Policy() PayoutPolicy { return ev.policy }

type flatGrid = [spec.Rows * spec.Reels]spec.Symbol

func flatten(g *buf.Grid) flatGrid {
	var f flatGrid
	for row := range g {
		copy(f[row*spec.Reels:(row+1)*spec.Reels], g[row][:])
	}
	return f
}
