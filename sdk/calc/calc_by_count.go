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

import "github.com/zintix-labs/slotline/spec"

// calcByCount 全盤計數分散符號（不限線、不限位置）。
//
// 數量 >= 3 時派彩 = PayoutFor(SCATTER, min(count, 5)) * bet；超過 5 顆以 5 顆計。
func calcByCount(bet int, flat *flatGrid) (count int, payout int) {
	for _, s := range flat {
		if s == spec.SCATTER {
			count++
		}
	}
	if count < spec.MinRun {
		return count, 0
	}
	return count, spec.SCATTER.PayoutFor(min(count, spec.MaxRun)) * bet
}
