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

// MaxFreeSpinsPerRound 單一局內免費遊戲的上限；連續再觸發超過此數即截斷並標記 Capped
const MaxFreeSpinsPerRound = 10_000

// RoundResult 模擬器的一局：一次付費 Spin，加上它觸發（含再觸發）的全部免費 Spin。
//
// 只保留彙總數字，不保留每次 Spin 的盤面，熱路徑不配置記憶體。
type RoundResult struct {
	Bet        int  `json:"bet"`
	BaseWin    int  `json:"base_win"`    // 付費 Spin 派彩
	FreeWin    int  `json:"free_win"`    // 免費 Spin 派彩合計
	LineWin    int  `json:"line_win"`    // 線獎合計（付費 + 免費）
	ScatterWin int  `json:"scatter_win"` // 分散獎合計（付費 + 免費）
	TotalWin   int  `json:"total_win"`
	Triggers   int  `json:"triggers"`   // 觸發次數（含再觸發）
	FreeSpins  int  `json:"free_spins"` // 實際轉完的免費 Spin 數
	MaxSpinWin int  `json:"max_spin_win"`
	Capped     bool `json:"capped"`
}

// Reset 清空以便重用
func (rr *RoundResult) Reset(bet int) {
	*rr = RoundResult{Bet: bet}
}

// AddBase 累加付費 Spin
func (rr *RoundResult) AddBase(sr *SpinResult) {
	rr.BaseWin += sr.TotalPayout
	rr.add(sr)
}

// AddFree 累加一次免費 Spin
func (rr *RoundResult) AddFree(sr *SpinResult) {
	rr.FreeWin += sr.TotalPayout
	rr.FreeSpins++
	rr.add(sr)
}

func (rr *RoundResult) add(sr *SpinResult) {
	lw := sr.LinePayout()
	rr.LineWin += lw
	rr.ScatterWin += sr.ScatterPayout
	rr.TotalWin += sr.TotalPayout
	if sr.TotalPayout > rr.MaxSpinWin {
		rr.MaxSpinWin = sr.TotalPayout
	}
	if sr.Triggered() {
		rr.Triggers++
	}
}

// Triggered 付費 Spin 是否觸發免費遊戲
func (rr *RoundResult) Triggered() bool { return rr.Triggers > 0 }
