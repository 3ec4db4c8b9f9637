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
	"github.com/zintix-labs/slotline/corefmt"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/spec"
)

// MaxReplaySpins 單次重播的上限
const MaxReplaySpins = 5000

// Replay 單機台、單線的可重現轉輪：每批結果都附上開始與結束的 token。
//
// token 帶著建帶 seed 與輪帶指紋；只有輪帶相同的機台能還原它。
// 拿 Before 呼叫 RestoreSpins 會得到逐格相同的盤面，來源不同的 token 以輸入錯誤拒絕。
type Replay struct {
	m *Machine
}

// ReplayReport 一批 Spin 的結果
type ReplayReport struct {
	Before     string           `json:"start_b64u"`
	After      string           `json:"after_b64u"`
	Rounds     int              `json:"rounds"`
	Bet        int              `json:"bet"`
	TotalBet   int              `json:"total_bet"`
	TotalWin   int              `json:"total_win"`
	LineWin    int              `json:"line_win"`
	ScatterWin int              `json:"scatter_win"`
	Rtp        float64          `json:"rtp"`
	Results    []buf.SpinResult `json:"results"`
}

func NewReplay(m *Machine) *Replay { return &Replay{m: m} }

// Machine 底層機台（換押注用）
func (r *Replay) Machine() *Machine { return r.m }

// State 目前五個輪軸的重播 token
func (r *Replay) State() (string, error) {
	st, err := r.m.SnapshotCore()
	if err != nil {
		return "", err
	}
	h := corefmt.ReplayHeader{Seed: r.m.InitSeed(), Fingerprint: r.m.Fingerprint()}
	return corefmt.EncodeReplayToken(h, st), nil
}

// ReplaySeed 取出 token 記錄的建帶 seed，用來重建同一台機台
func ReplaySeed(token string) (int64, error) {
	h, _, err := corefmt.DecodeReplayToken(token, spec.Reels)
	if err != nil {
		return 0, err
	}
	return h.Seed, nil
}

// Spins 從目前狀態連轉 round 次
func (r *Replay) Spins(round int) (ReplayReport, error) {
	if round < 1 || round > MaxReplaySpins {
		return ReplayReport{}, errs.Inputf("round must be between 1 and %d", MaxReplaySpins)
	}
	before, err := r.State()
	if err != nil {
		return ReplayReport{}, err
	}
	rep := ReplayReport{
		Before:  before,
		Bet:     r.m.BetAmount(),
		Results: make([]buf.SpinResult, 0, round),
	}
	for range round {
		sr := r.m.Spin()
		rep.TotalBet += sr.Bet
		rep.TotalWin += sr.TotalPayout
		rep.LineWin += sr.LinePayout()
		rep.ScatterWin += sr.ScatterPayout
		rep.Results = append(rep.Results, sr)
	}
	rep.Rounds = len(rep.Results)
	if rep.TotalBet > 0 {
		rep.Rtp = float64(rep.TotalWin) / float64(rep.TotalBet)
	}
	if rep.After, err = r.State(); err != nil {
		return ReplayReport{}, err
	}
	return rep, nil
}

// RestoreSpins 先還原到 token 的狀態再轉 round 次；token 的輪帶指紋必須與機台相同
func (r *Replay) RestoreSpins(token string, round int) (ReplayReport, error) {
	if round < 1 || round > MaxReplaySpins {
		return ReplayReport{}, errs.Inputf("round must be between 1 and %d", MaxReplaySpins)
	}
	h, states, err := corefmt.DecodeReplayToken(token, spec.Reels)
	if err != nil {
		return ReplayReport{}, err
	}
	if h.Fingerprint != r.m.Fingerprint() {
		return ReplayReport{}, errs.Inputf("replay token belongs to strips built from seed %d (fingerprint %016x), machine has seed %d (fingerprint %016x)",
			h.Seed, h.Fingerprint, r.m.InitSeed(), r.m.Fingerprint())
	}
	if err := r.m.RestoreCore(states); err != nil {
		return ReplayReport{}, errs.WrapInput(err, "machine restore failed")
	}
	return r.Spins(round)
}
