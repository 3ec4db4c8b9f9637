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
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/spec"
)

// calcByLine 逐線由左至右計算連線。
//
// 每條線：首格為分散符號則整條跳過；否則從第二軸起延伸，遇到第一個不同圖標即停止。
// 連線 >= 3 成為候選，派彩 = PayoutFor(首格, 連線長) * bet。
// PayAllWins 記錄全部候選；PayHighestWin 只記錄最高者（嚴格大於才取代，因此同分保留較前的線）。
func calcByLine(bet int, flat *flatGrid, ev *Evaluator) []buf.LineWin {
	var wins []buf.LineWin
	best := buf.LineWin{}
	found := false

	for l := 0; l < ev.lineCount; l++ {
		line := ev.lineFlat[l*spec.Reels : (l+1)*spec.Reels]

		first := flat[line[0]]
		if first.IsScatter() {
			continue
		}
		run := 1
		for col := 1; col < spec.Reels; col++ {
			if flat[line[col]] != first {
				break
			}
			run++
		}
		if run < spec.MinRun {
			continue
		}

		lw := buf.LineWin{Line: l + 1, Symbol: first, Count: run, Payout: first.PayoutFor(run) * bet}
		if ev.policy == PayAllWins {
			wins = append(wins, lw)
			continue
		}
		if !found || lw.Payout > best.Payout {
			best = lw
			found = true
		}
	}

	if ev.policy == PayHighestWin && found {
		wins = append(wins, best)
	}
	return wins
}
