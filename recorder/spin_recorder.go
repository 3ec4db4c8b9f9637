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

// Package recorder 逐局累計模擬結果，結束後轉成 stats.StatReport。
package recorder

import (
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/stats"
)

// CashoutFactor 餘額達到本金幾倍時贏滿離場
const CashoutFactor = 3

// Part 一局贏分的組成
type Part int

const (
	Total Part = iota // 付費 Spin + 免費 Spin
	Base              // 付費 Spin
	Free              // 免費 Spin
	numParts
)

// Tally 單一組成的贏分累計；計數只用 int，換算在 Done
type Tally struct {
	Win   int
	SqSum int   // 單局贏分平方和
	Bands []int // 各贏分區間的局數
}

// Wallet 玩家資金
type Wallet struct {
	Start   int
	Balance int
	High    int
	Low     int
	Bust    bool
	Cashout bool
}

// SpinRecorder 記錄一台機台（或一位玩家）的每一局，Done 產出報表。
//
// 不可併發使用；併發模擬請每個 worker 一個，再用 Merge 合併。
type SpinRecorder struct {
	MachineName string
	Bet         int

	Rounds     int
	TotalBet   int
	LineWin    int
	ScatterWin int
	Triggered  int // 有觸發免費遊戲的局數
	FreeSpins  int
	Capped     int
	Biggest    int // 單局最大贏分
	Parts      [numParts]Tally

	Wallet *Wallet // 沒有帶入本金時為 nil

	bands *stats.Bands
}

// NewSpinRecorder 建立紀錄員；initBalance > 0 時同時追蹤玩家資金
func NewSpinRecorder(name string, bet int, initBalance int) (*SpinRecorder, error) {
	if bet <= 0 {
		return nil, errs.Fatalf("bet must be positive, got %d", bet)
	}
	if initBalance < 0 {
		return nil, errs.Fatalf("init balance must not be negative, got %d", initBalance)
	}
	s := &SpinRecorder{MachineName: name, Bet: bet, bands: stats.NewBands(bet)}
	for i := range s.Parts {
		s.Parts[i].Bands = make([]int, stats.NumBands())
	}
	if initBalance > 0 {
		s.Wallet = &Wallet{Start: initBalance, Balance: initBalance, High: initBalance, Low: initBalance}
	}
	return s, nil
}

// Record 記一局的機台統計
func (s *SpinRecorder) Record(rr *buf.RoundResult) {
	s.Rounds++
	s.TotalBet += rr.Bet
	s.LineWin += rr.LineWin
	s.ScatterWin += rr.ScatterWin
	s.FreeSpins += rr.FreeSpins
	s.Biggest = max(s.Biggest, rr.TotalWin)
	if rr.Triggered() {
		s.Triggered++
	}
	if rr.Capped {
		s.Capped++
	}
	s.tally(Total, rr.TotalWin)
	s.tally(Base, rr.BaseWin)
	s.tally(Free, rr.FreeWin)
}

func (s *SpinRecorder) tally(p Part, win int) {
	t := &s.Parts[p]
	t.Win += win
	t.SqSum += win * win
	t.Bands[s.bands.Index(win)]++
}

// Broke 餘額不足一注（沒有玩家時永遠為 false）
func (s *SpinRecorder) Broke() bool {
	return s.Wallet != nil && s.Wallet.Balance < s.Bet
}

// RecordWithPlayer 記一局並更新玩家資金；回傳玩家是否離場。
//
// 已破產的玩家不再記錄，直接回傳 true。
func (s *SpinRecorder) RecordWithPlayer(rr *buf.RoundResult) bool {
	w := s.Wallet
	if w == nil {
		s.Record(rr)
		return false
	}
	if s.Broke() {
		return true
	}
	s.Record(rr)
	w.Balance += rr.TotalWin - rr.Bet
	w.High = max(w.High, w.Balance)
	w.Low = min(w.Low, w.Balance)
	if w.Balance < s.Bet {
		w.Bust = true
	}
	if w.Balance >= CashoutFactor*w.Start {
		w.Cashout = true
	}
	return w.Bust || w.Cashout
}

// Add 併入 o 的機台統計（玩家資金不合併）
func (s *SpinRecorder) Add(o *SpinRecorder) error {
	switch {
	case o.MachineName != s.MachineName:
		return errs.Fatalf("merge spin recorder: machine %q vs %q", o.MachineName, s.MachineName)
	case o.Bet != s.Bet:
		return errs.Fatalf("merge spin recorder: bet %d vs %d", o.Bet, s.Bet)
	}
	s.Rounds += o.Rounds
	s.TotalBet += o.TotalBet
	s.LineWin += o.LineWin
	s.ScatterWin += o.ScatterWin
	s.Triggered += o.Triggered
	s.FreeSpins += o.FreeSpins
	s.Capped += o.Capped
	s.Biggest = max(s.Biggest, o.Biggest)
	for p := range s.Parts {
		dst, src := &s.Parts[p], &o.Parts[p]
		dst.Win += src.Win
		dst.SqSum += src.SqSum
		for i, c := range src.Bands {
			dst.Bands[i] += c
		}
	}
	return nil
}

// Merge 把多個紀錄員合併成一個新的（不改動輸入）
func Merge(rs []*SpinRecorder) (*SpinRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.NewFatal("merge spin recorder: nothing to merge")
	}
	out, err := NewSpinRecorder(rs[0].MachineName, rs[0].Bet, 0)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if err := out.Add(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Done 轉成報表；比率與區間由 StatReport.Done 計算
func (s *SpinRecorder) Done() *stats.StatReport {
	bf := float64(s.Bet)
	moments := func(p Part) stats.Moments {
		t := s.Parts[p]
		return stats.Moments{Sum: float64(t.Win) / bf, SqSum: float64(t.SqSum) / (bf * bf)}
	}
	rep := &stats.StatReport{
		Summary: &stats.SummaryReport{
			MachineName:  s.MachineName,
			Bet:          s.Bet,
			Rounds:       s.Rounds,
			TotalBet:     s.TotalBet,
			TotalWin:     s.Parts[Total].Win,
			BaseWin:      s.Parts[Base].Win,
			FreeWin:      s.Parts[Free].Win,
			LineWin:      s.LineWin,
			ScatterWin:   s.ScatterWin,
			NoWinRounds:  s.Parts[Total].Bands[0],
			Trigger:      s.Triggered,
			FreeSpins:    s.FreeSpins,
			CappedRounds: s.Capped,
			BiggestWin:   s.Biggest,
		},
		Mult: &stats.MultReport{
			Total:   moments(Total),
			Base:    moments(Base),
			Free:    moments(Free),
			Biggest: float64(s.Biggest) / bf,
		},
		Bands: &stats.BandReport{
			Labels: stats.BandLabels(),
			Total:  append([]int(nil), s.Parts[Total].Bands...),
			Base:   append([]int(nil), s.Parts[Base].Bands...),
			Free:   append([]int(nil), s.Parts[Free].Bands...),
		},
	}
	if w := s.Wallet; w != nil {
		rep.Player = &stats.PlayerReport{
			InitBalance: w.Start,
			Balance:     w.Balance,
			MaxBalance:  w.High,
			MinBalance:  w.Low,
			Bust:        w.Bust,
			Cashout:     w.Cashout,
		}
	}
	return rep
}
