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

// 盤面尺寸：5 軸 3 列
const (
	Reels = 5
	Rows  = 3
)

// Payline 每一軸取哪一列（0..2），長度固定為 Reels。
type Payline [Reels]int

// NewPayline 由任意長度的切片建立 Payline，長度或列號不合法時回傳設定錯誤。
func NewPayline(rows []int) (Payline, error) {
	var p Payline
	if len(rows) != Reels {
		return p, errs.Configf("payline must have %d entries, got %d", Reels, len(rows))
	}
	for col, r := range rows {
		if r < 0 || r >= Rows {
			return p, errs.Configf("payline row index %d at column %d out of range [0,%d]", r, col, Rows-1)
		}
		p[col] = r
	}
	return p, nil
}

// Validate 檢查列號範圍
func (p Payline) Validate() error {
	_, err := NewPayline(p[:])
	return err
}

func (p Payline) String() string {
	parts := make([]string, Reels)
	for i, r := range p {
		parts[i] = strconv.Itoa(r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DefaultPaylines 預設五條線：上、中、下、V、倒 V。
func DefaultPaylines() []Payline {
	return []Payline{
		{0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
		{2, 2, 2, 2, 2},
		{0, 1, 2, 1, 0},
		{2, 1, 0, 1, 2},
	}
}

// DefaultPaylineNames 對應 DefaultPaylines 的顯示名稱
func DefaultPaylineNames() []string {
	return []string{"Top Row", "Middle Row", "Bottom Row", "V-Shape", "Inverted V-Shape"}
}

// ParsePaylines 解析 "0,0,0,0,0;1,1,1,1,1" 形式的字串，空字串回傳預設線組。
func ParsePaylines(src string) ([]Payline, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return DefaultPaylines(), nil
	}
	var out []Payline
	for li, row := range strings.Split(src, ";") {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		fields := strings.Split(row, ",")
		idx := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, errs.Configf("payline %d has non-integer entry %q", li+1, f)
			}
			idx[i] = v
		}
		p, err := NewPayline(idx)
		if err != nil {
			return nil, errs.Wrap(err, "payline "+strconv.Itoa(li+1))
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, errs.Configf("no payline parsed from %q", src)
	}
	return out, nil
}

// ValidatePaylines 逐條檢查，回傳第一個錯誤
func ValidatePaylines(lines []Payline) error {
	for i, p := range lines {
		if err := p.Validate(); err != nil {
			return errs.Wrap(err, "payline "+strconv.Itoa(i+1))
		}
	}
	return nil
}
