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

package buf

import "github.com/zintix-labs/slotline/spec"

// Grid 3 列 x 5 軸盤面，Grid[row][col]。以值傳遞，每次 Spin 都是全新的一份。
type Grid [spec.Rows][spec.Reels]spec.Symbol

// At 取第 row 列第 col 軸
func (g *Grid) At(row, col int) spec.Symbol { return g[row][col] }

// SetColumn 把一條輪軸的視窗寫入第 col 軸，視窗第 i 格落在第 i 列。
func (g *Grid) SetColumn(col int, w [spec.Rows]spec.Symbol) {
	for row := range w {
		g[row][col] = w[row]
	}
}

// CountScatters 全盤分散符號數量（不限位置）
func (g *Grid) CountScatters() int {
	c := 0
	for row := range g {
		for col := range g[row] {
			if g[row][col] == spec.SCATTER {
				c++
			}
		}
	}
	return c
}

// LineWin 單條線的中獎紀錄。Line 為 1-based，對應設定中的線序。
type LineWin struct {
	Line   int         `json:"line"`
	Symbol spec.Symbol `json:"symbol"`
	Count  int         `json:"count"`
	Payout int         `json:"payout"`
}

// SpinResult 一次 Spin 的完整結果，建立後不再修改。
//
// TotalPayout = 所有被記錄的 LineWins 金額 + ScatterPayout，皆已乘上 Bet。
type SpinResult struct {
	Grid          Grid      `json:"grid"`
	LineWins      []LineWin `json:"line_wins"`
	ScatterCount  int       `json:"scatter_count"`
	ScatterPayout int       `json:"scatter_payout"`
	TotalPayout   int       `json:"total_payout"`
	Bet           int       `json:"bet"`
}

// LinePayout 線獎總額
func (sr *SpinResult) LinePayout() int {
	w := 0
	for _, lw := range sr.LineWins {
		w += lw.Payout
	}
	return w
}

// Triggered 分散符號 >= 3 顆（同時觸發分散獎與免費遊戲）
func (sr *SpinResult) Triggered() bool {
	return sr.ScatterCount >= spec.MinRun
}

// IsWin 是否有任何派彩
func (sr *SpinResult) IsWin() bool { return sr.TotalPayout > 0 }
