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
	"io"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/zintix-labs/slotline/configs"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/sdk/reel"
	"github.com/zintix-labs/slotline/spec"
)

func mustMachine(t *testing.T, ms *spec.MachineSetting, seed int64) *Machine {
	t.Helper()
	m, err := NewMachine(ms, core.Default(), seed)
	if err != nil {
		t.Fatalf("new machine err: %v", err)
	}
	return m
}

// 每條輪帶都是 [S, J, Q]：任一視窗恰好一顆分散符號，每次 Spin 都出現 5 顆
func scatterStrips(t *testing.T) []*reel.Strip {
	t.Helper()
	out := make([]*reel.Strip, spec.Reels)
	for i := range out {
		st, err := reel.NewStrip([]spec.Symbol{spec.SCATTER, spec.J, spec.Q})
		if err != nil {
			t.Fatalf("strip err: %v", err)
		}
		out[i] = st
	}
	return out
}

func TestMachineDeterministic(t *testing.T) {
	a := mustMachine(t, spec.DefaultMachineSetting(), 2025)
	b := mustMachine(t, spec.DefaultMachineSetting(), 2025)
	for i, st := range a.Strips() {
		if !slices.Equal(st.Symbols(), b.Strips()[i].Symbols()) {
			t.Fatalf("strip %d differs for same seed", i)
		}
		if st.Len() != 85 {
			t.Fatalf("default strip size %d want 85", st.Len())
		}
	}
	for i := 0; i < 200; i++ {
		ra, rb := a.Spin(), b.Spin()
		if !reflect.DeepEqual(ra, rb) {
			t.Fatalf("spin %d diverged", i)
		}
		if ra.Bet != spec.DefaultBetAmount {
			t.Fatalf("spin bet %d want %d", ra.Bet, spec.DefaultBetAmount)
		}
	}
}

func TestMachineSetBetAmount(t *testing.T) {
	m := mustMachine(t, spec.DefaultMachineSetting(), 1)
	if err := m.SetBetAmount(3); !errs.IsInput(err) {
		t.Fatalf("bet 3 should be an input error, got %v", err)
	}
	if m.BetAmount() != 1 {
		t.Fatalf("bet must stay 1 after rejected change")
	}
	if err := m.SetBetAmount(5); err != nil {
		t.Fatalf("bet 5 err: %v", err)
	}
	if sr := m.Spin(); sr.Bet != 5 {
		t.Fatalf("spin bet %d want 5", sr.Bet)
	}
	if !slices.Equal(m.BetOptions(), []int{1, 2, 5, 10}) {
		t.Fatalf("bet options %v", m.BetOptions())
	}
	if len(m.Paylines()) != 5 || m.PaylineNames()[3] != "V-Shape" {
		t.Fatalf("paylines %v names %v", m.Paylines(), m.PaylineNames())
	}
}

func TestMachineSnapshotReplay(t *testing.T) {
	m := mustMachine(t, spec.DefaultMachineSetting(), 9)
	m.Spin()
	snap, err := m.SnapshotCore()
	if err != nil {
		t.Fatalf("snapshot err: %v", err)
	}
	want := []buf.SpinResult{m.Spin(), m.Spin(), m.Spin()}
	if err := m.RestoreCore(snap); err != nil {
		t.Fatalf("restore err: %v", err)
	}
	for i := range want {
		if got := m.Spin(); !reflect.DeepEqual(got, want[i]) {
			t.Fatalf("replayed spin %d differs", i)
		}
	}
}

func TestMachineConfigErrors(t *testing.T) {
	ms := &spec.MachineSetting{Symbols: "J:4,SCATTER:3"}
	if _, err := NewMachine(ms, core.Default(), 1); !errs.IsConfiguration(err) {
		t.Fatalf("infeasible strip should be a configuration error, got %v", err)
	}
	if _, err := NewMachine(nil, core.Default(), 1); !errs.IsConfiguration(err) {
		t.Fatalf("nil setting should be a configuration error, got %v", err)
	}
	bad := make([]*reel.Strip, spec.Reels)
	for i := range bad {
		bad[i], _ = reel.NewStrip([]spec.Symbol{spec.SCATTER})
	}
	if _, err := NewMachineWithStrips(spec.DefaultMachineSetting(), bad, core.Default(), 1); !errs.IsConfiguration(err) {
		t.Fatalf("scatter-only strips should be rejected, got %v", err)
	}
}

func TestMachineWithStripsKeepsStrips(t *testing.T) {
	src := mustMachine(t, spec.DefaultMachineSetting(), 44)
	m, err := NewMachineWithStrips(spec.DefaultMachineSetting(), src.Strips(), core.Default(), 44)
	if err != nil {
		t.Fatalf("with strips err: %v", err)
	}
	for i, st := range m.Strips() {
		if !slices.Equal(st.Symbols(), src.Strips()[i].Symbols()) {
			t.Fatalf("strip %d not preserved", i)
		}
	}
}

func TestPlayRoundFreeSpins(t *testing.T) {
	m, err := NewMachineWithStrips(spec.DefaultMachineSetting(), scatterStrips(t), core.Default(), 3)
	if err != nil {
		t.Fatalf("machine err: %v", err)
	}
	sr := m.Spin()
	if sr.ScatterCount != 5 || sr.ScatterPayout != 20 {
		t.Fatalf("expected 5 scatters paying 20, got %d / %d", sr.ScatterCount, sr.ScatterPayout)
	}

	// 每次都再觸發，免費遊戲必定被截斷
	var rr buf.RoundResult
	m.PlayRound(&rr)
	if !rr.Capped || rr.FreeSpins != buf.MaxFreeSpinsPerRound {
		t.Fatalf("round should be capped at %d, got %d capped=%v", buf.MaxFreeSpinsPerRound, rr.FreeSpins, rr.Capped)
	}
	if rr.ScatterWin != 20*(buf.MaxFreeSpinsPerRound+1) {
		t.Fatalf("scatter win %d", rr.ScatterWin)
	}
	if rr.TotalWin != rr.BaseWin+rr.FreeWin || rr.TotalWin != rr.LineWin+rr.ScatterWin {
		t.Fatalf("round totals inconsistent: %+v", rr)
	}

	zero := 0
	ms := &spec.MachineSetting{FreeSpinsPerTrigger: &zero}
	m0, err := NewMachineWithStrips(ms, scatterStrips(t), core.Default(), 3)
	if err != nil {
		t.Fatalf("machine err: %v", err)
	}
	m0.PlayRound(&rr)
	if rr.FreeSpins != 0 || rr.Triggers != 1 || rr.Capped {
		t.Fatalf("no free spins expected: %+v", rr)
	}
}

func TestSimulatorSim(t *testing.T) {
	s, err := NewSimulator(spec.DefaultMachineSetting(), core.Default(), 7)
	if err != nil {
		t.Fatalf("simulator err: %v", err)
	}
	rep, _, err := s.Sim(2, 3000, false)
	if err != nil {
		t.Fatalf("sim err: %v", err)
	}
	sm := rep.Summary
	if sm.Rounds != 3000 || sm.TotalBet != 6000 || sm.Bet != 2 {
		t.Fatalf("summary mismatch: %+v", sm)
	}
	if sm.TotalWin != sm.LineWin+sm.ScatterWin || sm.TotalWin != sm.BaseWin+sm.FreeWin {
		t.Fatalf("win split inconsistent: %+v", sm)
	}
	if sm.RTP.Hat <= 0 || sm.Hit.Hat <= 0 || sm.Hit.Hat >= 1 {
		t.Fatalf("implausible rtp %.4f hit %.4f", sm.RTP.Hat, sm.Hit.Hat)
	}
	if _, _, err := s.Sim(3, 10, false); !errs.IsInput(err) {
		t.Fatalf("invalid bet should be an input error, got %v", err)
	}
	if _, _, err := s.Sim(1, 0, false); err == nil {
		t.Fatalf("zero rounds must fail")
	}
}

func TestSimulatorSimMPDeterministic(t *testing.T) {
	run := func() (int, int) {
		s, err := NewSimulator(spec.DefaultMachineSetting(), core.Default(), 11)
		if err != nil {
			t.Fatalf("simulator err: %v", err)
		}
		rep, _, err := s.SimMP(1, 500, 4, false)
		if err != nil {
			t.Fatalf("simmp err: %v", err)
		}
		return rep.Summary.Rounds, rep.Summary.TotalWin
	}
	r1, w1 := run()
	r2, w2 := run()
	if r1 != 2000 || r1 != r2 || w1 != w2 {
		t.Fatalf("simmp not reproducible: rounds %d/%d win %d/%d", r1, r2, w1, w2)
	}
}

func TestSimulatorSimPlayers(t *testing.T) {
	s, err := NewSimulator(spec.DefaultMachineSetting(), core.Default(), 13)
	if err != nil {
		t.Fatalf("simulator err: %v", err)
	}
	rep, est, _, err := s.SimPlayers(2, 30, 100, 1, 300, false)
	if err != nil {
		t.Fatalf("sim players err: %v", err)
	}
	if rep.Summary.Rounds == 0 || rep.Summary.Rounds > 30*300 {
		t.Fatalf("rounds %d out of range", rep.Summary.Rounds)
	}
	if sum := est.Bust.Hat + est.Cashout.Hat + est.Alive.Hat; math.Abs(sum-1) > 1e-9 {
		t.Fatalf("session outcomes should sum to 1, got %.4f", sum)
	}
	if est.Players != 30 || est.MeanRounds <= 0 || est.MeanRounds > 300 {
		t.Fatalf("estimate players %d rounds %.1f", est.Players, est.MeanRounds)
	}
	if rep.Player != nil {
		t.Fatalf("merged machine report should not carry a player")
	}
	if _, _, _, err := s.SimPlayers(1, 1, 0, 1, 10, false); err == nil {
		t.Fatalf("balance below bet must fail")
	}
}

func TestWorkerMachinesShareStrips(t *testing.T) {
	s, err := NewSimulator(spec.DefaultMachineSetting(), core.Default(), 42)
	if err != nil {
		t.Fatalf("simulator err: %v", err)
	}
	ms, err := s.workers(4, 1)
	if err != nil {
		t.Fatalf("workers err: %v", err)
	}
	seen := map[int64]struct{}{}
	for i, m := range ms {
		if m.Fingerprint() != ms[0].Fingerprint() {
			t.Fatalf("worker %d has different strips", i)
		}
		if m.InitSeed() < 0 {
			t.Fatalf("worker %d seed must be non-negative, got %d", i, m.InitSeed())
		}
		if _, ok := seen[m.InitSeed()]; ok {
			t.Fatalf("worker %d reuses seed %d", i, m.InitSeed())
		}
		seen[m.InitSeed()] = struct{}{}
	}
	if again, _ := s.workers(2, 2); len(again) != 2 || again[1] != ms[1] || again[1].BetAmount() != 2 {
		t.Fatalf("workers should be reused with the new bet")
	}
}

func TestSlotlineAssembler(t *testing.T) {
	lab, err := New(core.Default(), configs.FS)
	if err != nil {
		t.Fatalf("new slotline err: %v", err)
	}
	if !slices.Contains(lab.Names(), configs.DefaultMachine) || len(lab.Summary()) != len(lab.Names()) {
		t.Fatalf("names %v summary %v", lab.Names(), lab.Summary())
	}
	m, err := lab.NewMachine(configs.DefaultMachine, 99)
	if err != nil {
		t.Fatalf("new machine err: %v", err)
	}
	ref := mustMachine(t, spec.DefaultMachineSetting(), 99)
	for i, st := range m.Strips() {
		if !slices.Equal(st.Symbols(), ref.Strips()[i].Symbols()) {
			t.Fatalf("embedded default config should build the default strips (reel %d)", i)
		}
	}
	if _, err := lab.NewMachine("no-such-machine", 1); !errs.IsInput(err) {
		t.Fatalf("unknown machine should be an input error, got %v", err)
	}
	if _, err := New(nil, configs.FS); !errs.IsConfiguration(err) {
		t.Fatalf("nil factory should be a configuration error, got %v", err)
	}
	y, err := lab.NewMachineByYAML([]byte("machine_name: adhoc\npay_all_wins: false\n"), 1)
	if err != nil || y.Name() != "adhoc" {
		t.Fatalf("yaml machine err: %v", err)
	}
}

func TestReplayRestore(t *testing.T) {
	lab, err := New(core.Default(), configs.FS)
	if err != nil {
		t.Fatalf("new slotline err: %v", err)
	}
	a, err := lab.NewReplay(configs.DefaultMachine, 123)
	if err != nil {
		t.Fatalf("replay err: %v", err)
	}
	a.Machine().Spin()
	first, err := a.Spins(25)
	if err != nil {
		t.Fatalf("spins err: %v", err)
	}
	if first.Rounds != 25 || first.TotalBet != 25 || first.Before == first.After {
		t.Fatalf("report mismatch: rounds %d bet %d", first.Rounds, first.TotalBet)
	}

	// 同 seed 重建的機台，還原後必須重現同一批盤面
	b, err := lab.NewReplayFromToken(configs.DefaultMachine, first.Before)
	if err != nil {
		t.Fatalf("replay from token err: %v", err)
	}
	if b.Machine().InitSeed() != 123 {
		t.Fatalf("token seed got %d want 123", b.Machine().InitSeed())
	}
	again, err := b.RestoreSpins(first.Before, 25)
	if err != nil {
		t.Fatalf("restore spins err: %v", err)
	}
	if !reflect.DeepEqual(first.Results, again.Results) || first.After != again.After {
		t.Fatalf("restored replay differs")
	}

	// 匯入相同輪帶（seed 不同）也能還原
	ms, err := lab.Setting(configs.DefaultMachine)
	if err != nil {
		t.Fatalf("setting err: %v", err)
	}
	im, err := NewMachineWithStrips(ms, a.Machine().Strips(), core.Default(), 456)
	if err != nil {
		t.Fatalf("machine with strips err: %v", err)
	}
	imported, err := NewReplay(im).RestoreSpins(first.Before, 25)
	if err != nil {
		t.Fatalf("restore on imported strips err: %v", err)
	}
	if !reflect.DeepEqual(first.Results, imported.Results) {
		t.Fatalf("imported strips replay differs")
	}

	// 其他 seed 建出的輪帶不同，token 必須被拒絕而不是默默轉出別的盤面
	other, err := lab.NewReplay(configs.DefaultMachine, 456)
	if err != nil {
		t.Fatalf("replay err: %v", err)
	}
	if other.Machine().Fingerprint() == a.Machine().Fingerprint() {
		t.Fatalf("seed 456 should build different strips")
	}
	if _, err := other.RestoreSpins(first.Before, 25); !errs.IsInput(err) {
		t.Fatalf("token from other strips should be an input error, got %v", err)
	}
	if seed, err := ReplaySeed(first.After); err != nil || seed != 123 {
		t.Fatalf("replay seed got %d err %v", seed, err)
	}
	if _, err := b.RestoreSpins("not-a-token!", 1); !errs.IsInput(err) {
		t.Fatalf("bad token should be an input error, got %v", err)
	}
	if _, err := b.Spins(0); !errs.IsInput(err) {
		t.Fatalf("zero rounds should be an input error, got %v", err)
	}
}

func TestSetBetAmountWithConcurrentSetLogger(t *testing.T) {
	m := mustMachine(t, spec.DefaultMachineSetting(), 5)
	opts := m.BetOptions()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 50 {
				m.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
			}
		}()
		go func() {
			defer wg.Done()
			for j := range 50 {
				if err := m.SetBetAmount(opts[(i+j)%len(opts)]); err != nil {
					t.Errorf("set bet err: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	if !slices.Contains(opts, m.BetAmount()) {
		t.Fatalf("bet %d not in options", m.BetAmount())
	}
}
