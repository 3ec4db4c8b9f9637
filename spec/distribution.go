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

package spec

import (
	"strconv"
	"strings"

	"github.com/zintix-labs/slotline/errs"
)

// DefaultScatterCount 分布未指定 SCATTER 時使用的分散符號數量
const DefaultScatterCount = 2

// Distribution 每種圖標在單條輪帶上出現的次數。
//
// 以固定長度陣列保存，避免 map 迭代順序造成建帶結果不可重現。
// scatterSet 為 false 時 SCATTER 以 DefaultScatterCount 計。
type Distribution struct {
	counts     [SymbolCount]int
	scatterSet bool
}

// DefaultDistribution 預設分布：非分散符號 85 格，加兩顆分散符號。
func DefaultDistribution() Distribution {
	var d Distribution
	d.counts[TEN] = 15
	d.counts[J] = 15
	d.counts[Q] = 15
	d.counts[K] = 10
	d.counts[A] = 10
	d.counts[P1] = 6
	d.counts[P2] = 6
	d.counts[P3] = 3
	d.counts[P4] = 3
	d.counts[SCATTER] = DefaultScatterCount
	d.scatterSet = true
	return d
}

// NewDistribution 由 map 建立分布；缺少的非分散圖標以 0 計，缺少 SCATTER 則以預設值計。
func NewDistribution(m map[Symbol]int) (Distribution, error) {
	var d Distribution
	for s, c := range m {
		if !s.Valid() {
			return Distribution{}, errs.Configf("distribution has unknown symbol %d", s)
		}
		if c < 0 {
			return Distribution{}, errs.Configf("distribution count for %s must not be negative, got %d", s.Name(), c)
		}
		d.counts[s] = c
		if s == SCATTER {
			d.scatterSet = true
		}
	}
	return d, nil
}

// ParseDistribution 解析 "TEN:15,J:15,...,SCATTER:2" 形式的字串。
//
// 空字串回傳預設分布；圖標名稱可用列舉名或標籤；重複的圖標視為設定錯誤。
func ParseDistribution(src string) (Distribution, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return DefaultDistribution(), nil
	}
	m := make(map[Symbol]int, SymbolCount)
	for _, part := range strings.Split(src, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, num, ok := strings.Cut(part, ":")
		if !ok {
			return Distribution{}, errs.Configf("distribution entry %q must be NAME:count", part)
		}
		sym, ok := ParseSymbol(name)
		if !ok {
			return Distribution{}, unknownSymbol(name)
		}
		if _, dup := m[sym]; dup {
			return Distribution{}, errs.Configf("distribution lists %s more than once", sym.Name())
		}
		c, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil {
			return Distribution{}, errs.Configf("distribution count %q for %s is not an integer", num, sym.Name())
		}
		m[sym] = c
	}
	return NewDistribution(m)
}

// Count 圖標在輪帶上的次數（SCATTER 已套用預設值）
func (d Distribution) Count(s Symbol) int {
	if !s.Valid() {
		return 0
	}
	if s == SCATTER {
		return d.ScatterCount()
	}
	return d.counts[s]
}

// ScatterCount 分散符號數量；未指定時為 DefaultScatterCount
func (d Distribution) ScatterCount() int {
	if !d.scatterSet {
		return DefaultScatterCount
	}
	return d.counts[SCATTER]
}

// NonScatterSize 非分散符號的總格數
func (d Distribution) NonScatterSize() int {
	n := 0
	for s := TEN; s < SCATTER; s++ {
		n += d.counts[s]
	}
	return n
}

// Size 整條輪帶的長度
func (d Distribution) Size() int {
	return d.NonScatterSize() + d.ScatterCount()
}

// String 回傳可再次被 ParseDistribution 解析的字串
func (d Distribution) String() string {
	var b strings.Builder
	for i, s := range All() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.Name())
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(d.Count(s)))
	}
	return b.String()
}

func unknownSymbol(name string) *errs.E {
	return errs.Configf("unknown symbol %q", strings.TrimSpace(name))
}
