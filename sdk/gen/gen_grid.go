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

package gen

import (
	"fmt"
	"sync"

	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/sdk/reel"
	"github.com/zintix-labs/slotline/spec"
)

// GridGenerator 持有五條輪軸，每次 GenGrid 各自獨立轉一次組成盤面。
type GridGenerator struct {
	reels []*reel.Reel
}

// NewGridGenerator 以既有輪軸建立生成器，輪軸數必須等於 spec.Reels。
func NewGridGenerator(reels []*reel.Reel) (*GridGenerator, error) {
	if len(reels) != spec.Reels {
		return nil, errs.Configf("grid needs %d reels, got %d", spec.Reels, len(reels))
	}
	for i, r := range reels {
		if r == nil {
			return nil, errs.Configf("reel %d is nil", i)
		}
	}
	return &GridGenerator{reels: reels}, nil
}

// BuildReels 依同一份分布建出五條輪軸。
//
// 第 i 條輪軸使用 core.DeriveSeed(seed, i) 建立自己的 PRNG：建帶與後續轉輪共用這條亂數流，
// 因此各輪軸互不共享狀態，可以平行建立，且結果與平行與否無關。
func BuildReels(dist spec.Distribution, minDist int, cf core.PRNGFactory, seed int64) ([]*reel.Reel, error) {
	reels := make([]*reel.Reel, spec.Reels)
	errList := make([]error, spec.Reels)

	wg := new(sync.WaitGroup)
	wg.Add(spec.Reels)
	for i := range spec.Reels {
		go func(i int) {
			defer wg.Done()
			rng := cf.New(core.DeriveSeed(seed, i))
			strip, err := reel.Build(dist, minDist, rng)
			if err != nil {
				errList[i] = err
				return
			}
			reels[i], errList[i] = reel.New(strip, rng)
		}(i)
	}
	wg.Wait()

	for i, err := range errList {
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("build reel %d", i+1))
		}
	}
	return reels, nil
}

// ReelsFromStrips 以既有輪帶建立五條輪軸（例如匯入的輪帶），轉輪亂數流同樣由 seed 派生。
func ReelsFromStrips(strips []*reel.Strip, cf core.PRNGFactory, seed int64) ([]*reel.Reel, error) {
	if len(strips) != spec.Reels {
		return nil, errs.Configf("grid needs %d strips, got %d", spec.Reels, len(strips))
	}
	reels := make([]*reel.Reel, spec.Reels)
	for i, st := range strips {
		r, err := reel.New(st, cf.New(core.DeriveSeed(seed, i)))
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("reel %d", i+1))
		}
		reels[i] = r
	}
	return reels, nil
}

// GenGrid 每條輪軸轉一次，第 c 軸的視窗第 i 格落在 grid[i][c]。
func (g *GridGenerator) GenGrid() buf.Grid {
	var grid buf.Grid
	for col, r := range g.reels {
		grid.SetColumn(col, r.Spin())
	}
	return grid
}

// Reels 回傳輪軸（唯讀用途）
func (g *GridGenerator) Reels() []*reel.Reel { return g.reels }

// Strips 回傳五條輪帶
func (g *GridGenerator) Strips() []*reel.Strip {
	out := make([]*reel.Strip, len(g.reels))
	for i, r := range g.reels {
		out[i] = r.Strip()
	}
	return out
}

// Snapshot 依輪軸順序取得每條輪軸的 PRNG 狀態
func (g *GridGenerator) Snapshot() ([][]byte, error) {
	out := make([][]byte, len(g.reels))
	for i, r := range g.reels {
		b, err := r.Snapshot()
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("snapshot reel %d", i+1))
		}
		out[i] = b
	}
	return out, nil
}

// Restore 還原 Snapshot 取得的狀態
func (g *GridGenerator) Restore(states [][]byte) error {
	if len(states) != len(g.reels) {
		return errs.Warnf("restore needs %d states, got %d", len(g.reels), len(states))
	}
	for i, r := range g.reels {
		if err := r.Restore(states[i]); err != nil {
			return errs.Wrap(err, fmt.Sprintf("restore reel %d", i+1))
		}
	}
	return nil
}
