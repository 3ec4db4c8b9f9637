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

import "strings"

// Symbol 封閉列舉的圖標種類。順序即賠付表與輸出的順序。
type Symbol int8

const (
	TEN Symbol = iota
	J
	Q
	K
	A
	P1
	P2
	P3
	P4
	SCATTER

	// SymbolCount 圖標種類數
	SymbolCount = int(SCATTER) + 1
)

// MinRun / MaxRun 可計分的連線長度區間
const (
	MinRun = 3
	MaxRun = 5
)

var symbolLabels = [SymbolCount]string{"10", "J", "Q", "K", "A", "P1", "P2", "P3", "P4", "S"}

var symbolNames = [SymbolCount]string{"TEN", "J", "Q", "K", "A", "P1", "P2", "P3", "P4", "SCATTER"}

// payTable[s] = {3連, 4連, 5連}
var payTable = [SymbolCount][MaxRun - MinRun + 1]int{
	TEN:     {1, 2, 4},
	J:       {1, 2, 4},
	Q:       {1, 2, 4},
	K:       {2, 4, 8},
	A:       {2, 4, 8},
	P1:      {4, 8, 16},
	P2:      {4, 8, 16},
	P3:      {8, 16, 32},
	P4:      {8, 16, 32},
	SCATTER: {2, 5, 20},
}

// All 依列舉順序回傳全部圖標
func All() []Symbol {
	out := make([]Symbol, SymbolCount)
	for i := range out {
		out[i] = Symbol(i)
	}
	return out
}

// Valid 是否為已定義的圖標
func (s Symbol) Valid() bool { return s >= TEN && s <= SCATTER }

// IsScatter 是否為分散符號
func (s Symbol) IsScatter() bool { return s == SCATTER }

// Label 顯示用標籤（TEN 顯示為 "10"、SCATTER 顯示為 "S"）
func (s Symbol) Label() string {
	if !s.Valid() {
		return "?"
	}
	return symbolLabels[s]
}

// Name 列舉名稱，設定檔以此書寫
func (s Symbol) Name() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return symbolNames[s]
}

func (s Symbol) String() string { return s.Label() }

// PayoutFor 查詢 runLength 連的基礎倍數，區間 [3,5] 以外一律為 0。
func (s Symbol) PayoutFor(runLength int) int {
	if !s.Valid() || runLength < MinRun || runLength > MaxRun {
		return 0
	}
	return payTable[s][runLength-MinRun]
}

// ParseSymbol 接受列舉名稱或顯示標籤，不分大小寫（"TEN"、"10"、"scatter"、"S"）。
func ParseSymbol(str string) (Symbol, bool) {
	key := strings.ToUpper(strings.TrimSpace(str))
	for i := 0; i < SymbolCount; i++ {
		if key == symbolNames[i] || key == symbolLabels[i] {
			return Symbol(i), true
		}
	}
	return 0, false
}

// MarshalText 以列舉名稱輸出，讓 JSON/YAML 可讀
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.Name()), nil
}

// UnmarshalText 解析列舉名稱或標籤
func (s *Symbol) UnmarshalText(b []byte) error {
	sym, ok := ParseSymbol(string(b))
	if !ok {
		return unknownSymbol(string(b))
	}
	*s = sym
	return nil
}
