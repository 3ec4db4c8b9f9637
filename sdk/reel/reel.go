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
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/spec"
)

// Reel 一條輪軸：持有自己的輪帶與自己的亂數流。
//
// 並發語意：Reel 不是 goroutine-safe，由持有它的 Machine 序列化呼叫。
type Reel struct {
	strip   *Strip
	rng     core.PRNG
	redraws uint64
}

// New 以輪帶與 PRNG 建立 Reel。
//
// 輪帶上若不存在任何「分散符號 <= 1」的視窗，Spin 會無限重抽，因此在此回傳設定錯誤。
func New(strip *Strip, rng core.PRNG) (*Reel, error) {
	if rng == nil {
		return nil, errs.Configf("reel needs a prng")
	}
	if strip == nil || strip.Len() == 0 {
		return nil, errs.Configf("reel needs a non-empty strip")
	}
	if strip.AcceptableStarts() == 0 {
		return nil, errs.Configf("reel strip of size %d has no window with at most one scatter", strip.Len())
	}
	return &Reel{strip: strip, rng: rng}, nil
}

// Spin 均勻抽起點並回傳連續三格；視窗內分散符號超過一顆就重抽。
//
// 重抽次數不設上限（設上限會改變分布）。New 已保證至少存在一個合法起點，
// 但合法起點極少的輪帶仍可能耗時很久。
func (r *Reel) Spin() [spec.Rows]spec.Symbol {
	n := r.strip.Len()
	for {
		w := r.strip.Window(r.rng.IntN(n))
		if scatterIn(w) <= 1 {
			return w
		}
		r.redraws++
	}
}

// Strip 回傳輪帶（不可變，可安全共享讀取）
func (r *Reel) Strip() *Strip { return r.strip }

// Redraws 累計因視窗內多顆分散符號而重抽的次數
func (r *Reel) Redraws() uint64 { return r.redraws }

// Snapshot / Restore 轉發到內部 PRNG，用於重現
func (r *Reel) Snapshot() ([]byte, error) { return r.rng.Snapshot() }

func (r *Reel) Restore(b []byte) error { return r.rng.Restore(b) }
