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

package stats

import (
	"fmt"
	"slices"
)

// bandEdges 贏分區間的邊界（押注倍數）
var bandEdges = []int{1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000}

var bandLabels = makeBandLabels()

// Bands 依押注倍數把單局贏分分到固定區間：
//
//	[0,0] (0,1) [1,2) [2,5) ... [2000,10000) [10000,+inf)
//
// 建立後唯讀，可併發使用。
type Bands struct {
	bounds []int // bet * bandEdges，遞增
}

// NewBands 押注 bet 的區間
func NewBands(bet int) *Bands {
	b := &Bands{bounds: make([]int, len(bandEdges))}
	for i, e := range bandEdges {
		b.bounds[i] = bet * e
	}
	return b
}

// NumBands 區間個數
func NumBands() int { return len(bandLabels) }

// BandLabels 區間標籤（副本）
func BandLabels() []string { return slices.Clone(bandLabels) }

// Index 贏分所在的區間
func (b *Bands) Index(win int) int {
	if win <= 0 {
		return 0
	}
	n, _ := slices.BinarySearch(b.bounds, win+1)
	return n + 1
}

func makeBandLabels() []string {
	last := len(bandEdges) - 1
	out := make([]string, 0, len(bandEdges)+2)
	out = append(out, "[0,0]", fmt.Sprintf("(0,%d)", bandEdges[0]))
	for i := 1; i <= last; i++ {
		out = append(out, fmt.Sprintf("[%d,%d)", bandEdges[i-1], bandEdges[i]))
	}
	return append(out, fmt.Sprintf("[%d,+inf)", bandEdges[last]))
}
