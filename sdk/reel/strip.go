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

package reel

import (
	"encoding/binary"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/spec"
)

// Strip 一條環狀輪帶。建立後不可變，只由單一 Reel 持有。
type Strip struct {
	symbols []spec.Symbol
	scatter []int // 分散符號位置（遞增）
}

// Build 依分布與最小分散間距建一條輪帶。
//
// 流程：
//  1. 可行性檢查：scatter > 1 且 scatter*minDist > 非分散格數 時直接回傳設定錯誤，不做任何擺放。
//  2. 非分散符號展開成多重集合後 Fisher-Yates 洗牌。
//  3. 擺放分散符號：
//     - 0 顆：不動。
//     - 1 顆：在 n+1 個插入點中均勻挑一個。
//     - 2 顆以上：均勻起點 s，候選 p_i = (s + i*floor(n/k)) mod n，排序後檢查每個環狀間隔（含繞回）
//     都 >= minDist，否則回傳設定錯誤；再依序插在 p_i + i。
//
// 等距擺放是啟發式：部分實際可行的設定仍會被拒絕。
func Build(dist spec.Distribution, minDist int, rng core.RAND) (*Strip, error) {
	n := dist.NonScatterSize()
	k := dist.ScatterCount()

	if k > 1 && k*minDist > n {
		return nil, errs.Configf("impossible to place %d scatters with minimum distance %d on a reel of size %d", k, minDist, n)
	}
	if n+k == 0 {
		return nil, errs.Configf("reel strip would be empty")
	}

	base := make([]spec.Symbol, 0, n+k)
	for s := spec.TEN; s < spec.SCATTER; s++ {
		for range dist.Count(s) {
			base = append(base, s)
		}
	}
	core.Shuffle(rng, base)

	switch {
	case k == 0:
		return newStrip(base), nil
	case k == 1:
		return newStrip(slices.Insert(base, rng.IntN(n+1), spec.SCATTER)), nil
	}

	if n == 0 {
		return nil, errs.Configf("cannot place %d scatters on a reel without other symbols", k)
	}
	start := rng.IntN(n)
	step := n / k
	pos := make([]int, k)
	for i := range pos {
		pos[i] = (start + i*step) % n
	}
	slices.Sort(pos)
	for i := range pos {
		curr, next := pos[i], pos[(i+1)%k]
		if gap := (next - curr + n) % n; gap < minDist {
			return nil, errs.Configf("cannot place %d scatters with minimum distance %d on a reel of size %d", k, minDist, n)
		}
	}

	out := make([]spec.Symbol, 0, n+k)
	prev := 0
	for _, p := range pos {
		out = append(out, base[prev:p]...)
		out = append(out, spec.SCATTER)
		prev = p
	}
	out = append(out, base[prev:]...)
	return newStrip(out), nil
}

// NewStrip 由既有符號序列還原輪帶（例如匯入先前建好的輪帶）。
func NewStrip(symbols []spec.Symbol) (*Strip, error) {
	if len(symbols) == 0 {
		return nil, errs.Configf("reel strip is empty")
	}
	for i, s := range symbols {
		if !s.Valid() {
			return nil, errs.Configf("reel strip has unknown symbol %d at %d", s, i)
		}
	}
	return newStrip(slices.Clone(symbols)), nil
}

func newStrip(symbols []spec.Symbol) *Strip {
	st := &Strip{symbols: symbols}
	for i, s := range symbols {
		if s == spec.SCATTER {
			st.scatter = append(st.scatter, i)
		}
	}
	return st
}

// Len 輪帶長度
func (st *Strip) Len() int { return len(st.symbols) }

// At 環狀取值
func (st *Strip) At(i int) spec.Symbol {
	n := len(st.symbols)
	return st.symbols[((i%n)+n)%n]
}

// Symbols 回傳輪帶副本
func (st *Strip) Symbols() []spec.Symbol { return slices.Clone(st.symbols) }

// ScatterPositions 分散符號所在索引（遞增）
func (st *Strip) ScatterPositions() []int { return slices.Clone(st.scatter) }

// Counts 各圖標在輪帶上的數量
func (st *Strip) Counts() [spec.SymbolCount]int {
	var c [spec.SymbolCount]int
	for _, s := range st.symbols {
		c[s]++
	}
	return c
}

// Window 從 start 開始環狀連續取 spec.Rows 格
func (st *Strip) Window(start int) [spec.Rows]spec.Symbol {
	var w [spec.Rows]spec.Symbol
	for i := range w {
		w[i] = st.At(start + i)
	}
	return w
}

// MinScatterGap 相鄰分散符號（環狀）之間最小的索引差；不足兩顆時回傳 -1。
func (st *Strip) MinScatterGap() int {
	k := len(st.scatter)
	if k < 2 {
		return -1
	}
	n := len(st.symbols)
	best := n
	for i := range st.scatter {
		d := (st.scatter[(i+1)%k] - st.scatter[i] + n) % n
		best = min(best, d)
	}
	return best
}

// AcceptableStarts 回傳視窗內分散符號不超過一顆的起點數。
//
// 為 0 時 Spin 永遠無法停下，建構 Reel 時據此拒絕。
func (st *Strip) AcceptableStarts() int {
	ok := 0
	for i := range st.symbols {
		if scatterIn(st.Window(i)) <= 1 {
			ok++
		}
	}
	return ok
}

func scatterIn(w [spec.Rows]spec.Symbol) int {
	c := 0
	for _, s := range w {
		if s == spec.SCATTER {
			c++
		}
	}
	return c
}

// Fingerprint 一組輪帶的 64-bit 指紋（依序雜湊每條的長度與符號）。
//
// 相同的輪帶組合得到相同的指紋；重播 token 用它確認盤面來源一致。
func Fingerprint(strips []*Strip) uint64 {
	d := xxhash.New()
	var hdr [binary.MaxVarintLen64]byte
	for _, st := range strips {
		n := binary.PutUvarint(hdr[:], uint64(len(st.symbols)))
		_, _ = d.Write(hdr[:n])
		b := make([]byte, len(st.symbols))
		for i, sym := range st.symbols {
			b[i] = byte(sym)
		}
		_, _ = d.Write(b)
	}
	return d.Sum64()
}
