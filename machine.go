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

package slotline

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math"
	"math/big"
	"slices"
	"sync"

	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/sdk/calc"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/sdk/gen"
	"github.com/zintix-labs/slotline/sdk/reel"
	"github.com/zintix-labs/slotline/spec"
)

// Machine 封裝一台 5x3 拉霸機台。
//
// 對外提供 Spin 入口；對內持有五條輪軸（各自的 PRNG）與算分器。
//
// 並發語意：
//   - Spin / SetBetAmount / RestoreCore 以 mu 序列化，同一台 Machine 可被多 goroutine 呼叫，但不會並行轉輪。
//   - 要併發模擬請建立多台 Machine（見 Simulator.SimMP）。
type Machine struct {
	name     string
	setting  *spec.MachineSetting
	gen      *gen.GridGenerator
	ev       *calc.Evaluator
	bet      int
	mu       sync.Mutex
	initseed int64  // 出生 seed（便於追溯；完整重現請用 SnapshotCore/RestoreCore）
	stripfp  uint64 // 輪帶指紋
	log      *slog.Logger
}

// RandomSeed 以 crypto/rand 產生非負 seed，給不需要重現的呼叫端使用
func RandomSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return seed.Int64(), nil
}

// NewMachine 依設定與 seed 建立機台。
//
// 同一份設定 + 同一個 seed 會得到相同的輪帶與相同的盤面序列。
// 建帶失敗（分散符號無法滿足間距等）回傳設定錯誤。
func NewMachine(ms *spec.MachineSetting, cf core.PRNGFactory, seed int64) (*Machine, error) {
	if err := prepare(ms, cf); err != nil {
		return nil, err
	}
	reels, err := gen.BuildReels(ms.Dist, ms.MinDist, cf, seed)
	if err != nil {
		return nil, errs.Wrap(err, "machine "+ms.MachineName)
	}
	return assemble(ms, reels, seed)
}

// NewMachineWithStrips 以既有輪帶（例如 stripset 匯入）建立機台，不重新洗牌。
func NewMachineWithStrips(ms *spec.MachineSetting, strips []*reel.Strip, cf core.PRNGFactory, seed int64) (*Machine, error) {
	if err := prepare(ms, cf); err != nil {
		return nil, err
	}
	reels, err := gen.ReelsFromStrips(strips, cf, seed)
	if err != nil {
		return nil, errs.Wrap(err, "machine "+ms.MachineName)
	}
	return assemble(ms, reels, seed)
}

func prepare(ms *spec.MachineSetting, cf core.PRNGFactory) error {
	if ms == nil {
		return errs.Configf("machine setting required")
	}
	if cf == nil {
		return errs.Configf("prng factory required")
	}
	return ms.Init()
}

func assemble(ms *spec.MachineSetting, reels []*reel.Reel, seed int64) (*Machine, error) {
	g, err := gen.NewGridGenerator(reels)
	if err != nil {
		return nil, err
	}
	ev, err := calc.NewEvaluator(ms.Lines, calc.PolicyOf(ms.PayAll))
	if err != nil {
		return nil, errs.Wrap(err, "machine "+ms.MachineName)
	}
	m := &Machine{
		name:     ms.MachineName,
		setting:  ms,
		gen:      g,
		ev:       ev,
		bet:      ms.BetAmount,
		initseed: seed,
		stripfp:  reel.Fingerprint(g.Strips()),
		log:      slog.Default().With("machine", ms.MachineName),
	}
	if m.log.Enabled(context.Background(), slog.LevelDebug) {
		sizes := make([]int, len(reels))
		for i, r := range reels {
			sizes[i] = r.Strip().Len()
		}
		m.log.Debug("machine ready", "seed", seed, "strip_sizes", sizes, "paylines", len(ms.Lines), "policy", ev.Policy().String())
	}
	return m, nil
}

// SetLogger 指定機台的 logger（nil 時沿用 slog.Default）
func (m *Machine) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	m.mu.Lock()
	m.log = l.With("machine", m.name)
	m.mu.Unlock()
}

// Spin 以目前押注轉一次並回傳結果
func (m *Machine) Spin() buf.SpinResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spinLocked()
}

func (m *Machine) spinLocked() buf.SpinResult {
	return m.ev.Evaluate(m.gen.GenGrid(), m.bet)
}

// PlayRound 轉一次付費 Spin，並把它觸發的免費 Spin 全部轉完（每次觸發 +FreeSpins 次）。
//
// 結果寫入 rr（會先 Reset）。免費 Spin 超過 buf.MaxFreeSpinsPerRound 時截斷並標記 Capped。
func (m *Machine) PlayRound(rr *buf.RoundResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rr.Reset(m.bet)
	sr := m.spinLocked()
	rr.AddBase(&sr)

	pending := 0
	if sr.Triggered() {
		pending = m.setting.FreeSpins
	}
	for pending > 0 {
		if rr.FreeSpins >= buf.MaxFreeSpinsPerRound {
			rr.Capped = true
			return
		}
		pending--
		sr = m.spinLocked()
		rr.AddFree(&sr)
		if sr.Triggered() {
			pending += m.setting.FreeSpins
		}
	}
}

// BetAmount 目前押注
func (m *Machine) BetAmount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bet
}

// SetBetAmount 更換押注；不在 BetOptions 內回傳 Warn 級輸入錯誤，押注不變
func (m *Machine) SetBetAmount(bet int) error {
	if !slices.Contains(m.setting.BetOptions, bet) {
		return errs.Inputf("bet %d is not one of %v", bet, m.setting.BetOptions)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bet = bet
	m.log.Debug("bet changed", "bet", bet)
	return nil
}

// BetOptions 可選押注（副本）
func (m *Machine) BetOptions() []int { return slices.Clone(m.setting.BetOptions) }

// Paylines 賠付線（副本）
func (m *Machine) Paylines() []spec.Payline { return m.ev.Paylines() }

// PaylineNames 賠付線名稱，與 Paylines 同序
func (m *Machine) PaylineNames() []string { return slices.Clone(m.setting.PaylineNames) }

// Strips 五條輪帶
func (m *Machine) Strips() []*reel.Strip { return m.gen.Strips() }

// Name 機台名稱
func (m *Machine) Name() string { return m.name }

// Setting 建立機台的設定（唯讀用途）
func (m *Machine) Setting() *spec.MachineSetting { return m.setting }

// InitSeed 出生 seed
func (m *Machine) InitSeed() int64 { return m.initseed }

// Fingerprint 五條輪帶的指紋（見 reel.Fingerprint）
func (m *Machine) Fingerprint() uint64 { return m.stripfp }

// Redraws 五條輪軸累計的重抽次數
func (m *Machine) Redraws() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n uint64
	for _, r := range m.gen.Reels() {
		n += r.Redraws()
	}
	return n
}

// SnapshotCore 依輪軸順序取得 PRNG 狀態
func (m *Machine) SnapshotCore() ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen.Snapshot()
}

// RestoreCore 恢復 SnapshotCore 取得的狀態，之後的 Spin 會重現當時的盤面序列
func (m *Machine) RestoreCore(states [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen.Restore(states)
}
