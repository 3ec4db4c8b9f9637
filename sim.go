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
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/recorder"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/sdk/reel"
	"github.com/zintix-labs/slotline/spec"
	"github.com/zintix-labs/slotline/stats"
)

// workerSeedBase worker 機台的派生序號起點（0..Reels-1 已給輪軸使用）
const workerSeedBase = 1 << 16

// Simulator 以同一組輪帶開多台機台平行模擬，彙整成統計報表。
//
// 第 0 台是建立時的機台；其餘 worker 機台共用它的輪帶，只有轉輪亂數流不同，
// 第 i 台的 seed 為 core.DeriveSeed(seed, workerSeedBase+i)，同一個 seed 的結果可重現。
// 同一個 Simulator 不可同時執行兩次模擬。
type Simulator struct {
	MachineName string
	ms          *spec.MachineSetting
	cf          core.PRNGFactory
	strips      []*reel.Strip
	seed        int64
	machines    []*Machine
}

// NewSimulator 依設定與 seed 建帶並建立模擬器
func NewSimulator(ms *spec.MachineSetting, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	m, err := NewMachine(ms, cf, seed)
	if err != nil {
		return nil, err
	}
	return newSimulatorWith(m, cf, seed), nil
}

// NewSimulatorWithStrips 以既有輪帶建立模擬器（例如重跑匯出的輪帶）
func NewSimulatorWithStrips(ms *spec.MachineSetting, strips []*reel.Strip, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	m, err := NewMachineWithStrips(ms, strips, cf, seed)
	if err != nil {
		return nil, err
	}
	return newSimulatorWith(m, cf, seed), nil
}

func newSimulatorWith(m *Machine, cf core.PRNGFactory, seed int64) *Simulator {
	return &Simulator{
		MachineName: m.Name(),
		ms:          m.Setting(),
		cf:          cf,
		strips:      m.Strips(),
		seed:        seed,
		machines:    []*Machine{m},
	}
}

// Machine 第 0 台機台
func (s *Simulator) Machine() *Machine { return s.machines[0] }

// Sim 單台機台連續跑 round 局
func (s *Simulator) Sim(bet int, round int, showpb bool) (*stats.StatReport, time.Duration, error) {
	return s.SimMP(bet, round, 1, showpb)
}

// SimMP mp 台機台各跑 rounds 局（共 rounds*mp 局），合併成一份報表
func (s *Simulator) SimMP(bet int, rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	if mp < 1 {
		return nil, 0, errs.Inputf("workers must be at least 1, got %d", mp)
	}
	if rounds < 1 {
		return nil, 0, errs.Inputf("rounds must be at least 1, got %d", rounds)
	}
	ms, err := s.workers(mp, bet)
	if err != nil {
		return nil, 0, err
	}
	recs := make([]*recorder.SpinRecorder, mp)
	for i := range recs {
		if recs[i], err = recorder.NewSpinRecorder(s.MachineName, bet, 0); err != nil {
			return nil, 0, err
		}
	}
	before := redraws(ms)

	bar := progress(rounds*mp, showpb)
	var wg sync.WaitGroup
	for i, m := range ms {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := new(buf.RoundResult)
			for range rounds {
				m.PlayRound(rr)
				recs[i].Record(rr)
				bar.Increment()
			}
		}()
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	merged, err := recorder.Merge(recs)
	if err != nil {
		return nil, 0, err
	}
	return s.report(merged, redraws(ms)-before), used, nil
}

// SimPlayers players 位玩家各自帶 initBalance 入場，最多玩 rounds 局。
//
// 餘額不足一注即破產離場，達到 recorder.CashoutFactor 倍本金即贏滿離場。
// 玩家依序分給 mp 台機台，回傳全部局數合併的機台報表與玩家體驗估計。
func (s *Simulator) SimPlayers(mp int, players int, initBalance int, bet int, rounds int, showpb bool) (*stats.StatReport, *stats.PlayerEstimate, time.Duration, error) {
	if players < 1 || initBalance < bet || rounds < 1 || mp < 1 {
		return nil, nil, 0, errs.Inputf("invalid param: players=%d balance=%d bet=%d rounds=%d workers=%d", players, initBalance, bet, rounds, mp)
	}
	ms, err := s.workers(mp, bet)
	if err != nil {
		return nil, nil, 0, err
	}
	recs := make([]*recorder.SpinRecorder, players)
	for i := range recs {
		if recs[i], err = recorder.NewSpinRecorder(s.MachineName, bet, initBalance); err != nil {
			return nil, nil, 0, err
		}
	}
	before := redraws(ms)

	bar := progress(players, showpb)
	jobs := make(chan *recorder.SpinRecorder, min(players, 2048))
	var wg sync.WaitGroup
	for _, m := range ms {
		wg.Add(1)
		go func() {
			defer wg.Done()
			playSessions(m, jobs, rounds, bar)
		}()
	}
	for _, r := range recs {
		jobs <- r
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	merged, err := recorder.Merge(recs)
	if err != nil {
		return nil, nil, 0, err
	}
	rep := s.report(merged, redraws(ms)-before)

	each := make([]*stats.StatReport, players)
	for i, r := range recs {
		each[i] = r.Done()
	}
	return rep, stats.EstimatePlayers(each), used, nil
}

// playSessions 從 jobs 取玩家，一位玩到離場或 rounds 局再換下一位
func playSessions(m *Machine, jobs <-chan *recorder.SpinRecorder, rounds int, bar *pb.ProgressBar) {
	rr := new(buf.RoundResult)
	for p := range jobs {
		for range rounds {
			if p.Broke() {
				break
			}
			m.PlayRound(rr)
			if p.RecordWithPlayer(rr) {
				break
			}
		}
		bar.Increment()
	}
}

// workers 補足到 mp 台機台並把前 mp 台的押注設成 bet
func (s *Simulator) workers(mp int, bet int) ([]*Machine, error) {
	for i := len(s.machines); i < mp; i++ {
		m, err := NewMachineWithStrips(s.ms, s.strips, s.cf, core.DeriveSeed(s.seed, workerSeedBase+i))
		if err != nil {
			return nil, err
		}
		s.machines = append(s.machines, m)
	}
	ms := s.machines[:mp]
	for _, m := range ms {
		if err := m.SetBetAmount(bet); err != nil {
			return nil, err
		}
	}
	return ms, nil
}

func (s *Simulator) report(r *recorder.SpinRecorder, redraws uint64) *stats.StatReport {
	rep := r.Done()
	rep.Summary.Redraws = redraws
	rep.Done()
	return rep
}

func redraws(ms []*Machine) uint64 {
	var n uint64
	for _, m := range ms {
		n += m.Redraws()
	}
	return n
}

func progress(total int, show bool) *pb.ProgressBar {
	bar := pb.StartNew(total)
	if !show {
		bar.SetWriter(io.Discard)
	}
	return bar
}
