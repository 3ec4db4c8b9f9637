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

// Package session 玩家在主控台遊戲中的狀態：餘額、免費遊戲次數與本場統計。
package session

import (
	"fmt"
	"log/slog"

	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/spec"
)

// ErrInsufficientBalance 沒有免費遊戲且餘額不足一注
var ErrInsufficientBalance = errs.Inputf("insufficient balance")

// Spinner Session 需要的機台能力（*slotline.Machine 即滿足）
type Spinner interface {
	Spin() buf.SpinResult
	BetAmount() int
}

// Stats 本場統計
type Stats struct {
	TotalSpins      int `json:"total_spins"`
	PaidSpins       int `json:"paid_spins"`
	FreeSpinsUsed   int `json:"free_spins_used"`
	TotalBet        int `json:"total_bet"`
	TotalWon        int `json:"total_won"`
	TotalLost       int `json:"total_lost"`
	BiggestWin      int `json:"biggest_win"`
	Triggers        int `json:"triggers"`
	StartingBalance int `json:"starting_balance"`
	EndingBalance   int `json:"ending_balance"`
}

// Net 結束餘額 - 起始餘額
func (s Stats) Net() int { return s.EndingBalance - s.StartingBalance }

// RTP 總贏分 / 總押注；沒有付費 Spin 時為 0
func (s Stats) RTP() float64 {
	if s.TotalBet == 0 {
		return 0
	}
	return float64(s.TotalWon) / float64(s.TotalBet)
}

// Outcome 一次 Play 的結果
type Outcome struct {
	Result  buf.SpinResult
	Free    bool // 這次用的是免費遊戲
	Awarded int  // 這次新增的免費遊戲次數
}

// Session 單一玩家的一場遊戲，不可併發使用
type Session struct {
	m          Spinner
	perTrigger int
	balance    int
	freeSpins  int
	stats      Stats
	log        *slog.Logger
}

// New 以起始餘額開一場遊戲；perTrigger 為每次觸發給的免費遊戲次數
func New(m Spinner, startingBalance int, perTrigger int) (*Session, error) {
	if m == nil {
		return nil, errs.NewFatal("session needs a machine")
	}
	if startingBalance < 0 {
		return nil, errs.Inputf("starting balance must not be negative, got %d", startingBalance)
	}
	if perTrigger < 0 {
		return nil, errs.Inputf("free spins per trigger must not be negative, got %d", perTrigger)
	}
	s := &Session{
		m:          m,
		perTrigger: perTrigger,
		balance:    startingBalance,
		log:        slog.Default().With("component", "session"),
	}
	s.stats.StartingBalance = startingBalance
	s.stats.EndingBalance = startingBalance
	return s, nil
}

// SetLogger nil 時不變
func (s *Session) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l.With("component", "session")
	}
}

// Balance 目前餘額
func (s *Session) Balance() int { return s.balance }

// FreeSpins 剩餘免費遊戲次數
func (s *Session) FreeSpins() int { return s.freeSpins }

// Bet 目前押注（跟隨機台）
func (s *Session) Bet() int { return s.m.BetAmount() }

// CanPlay 有免費遊戲或餘額足夠一注
func (s *Session) CanPlay() bool {
	return s.freeSpins > 0 || s.balance >= s.m.BetAmount()
}

// Play 轉一次。
//
// 有免費遊戲時先消耗一次免費遊戲且不扣款；否則扣一注。派彩加回餘額，
// 分散符號 >= 3 顆再給 perTrigger 次免費遊戲。
func (s *Session) Play() (Outcome, error) {
	bet := s.m.BetAmount()
	free := s.freeSpins > 0
	if !free && s.balance < bet {
		s.log.Warn("spin rejected", "balance", s.balance, "bet", bet)
		return Outcome{}, errs.WrapWithExtra(ErrInsufficientBalance, "cannot spin", fmt.Sprintf("each spin costs %d", bet))
	}

	if free {
		s.freeSpins--
		s.stats.FreeSpinsUsed++
	} else {
		s.balance -= bet
		s.stats.PaidSpins++
		s.stats.TotalBet += bet
	}
	s.stats.TotalSpins++

	sr := s.m.Spin()
	out := Outcome{Result: sr, Free: free}
	if sr.TotalPayout > 0 {
		s.balance += sr.TotalPayout
		s.stats.TotalWon += sr.TotalPayout
		s.stats.BiggestWin = max(s.stats.BiggestWin, sr.TotalPayout)
	} else if !free {
		s.stats.TotalLost += bet
	}
	if sr.ScatterCount >= spec.MinRun {
		s.freeSpins += s.perTrigger
		s.stats.Triggers++
		out.Awarded = s.perTrigger
		s.log.Debug("free spins awarded", "scatters", sr.ScatterCount, "awarded", s.perTrigger, "left", s.freeSpins)
	}
	s.stats.EndingBalance = s.balance
	return out, nil
}

// Stats 目前的統計（EndingBalance 為當下餘額）
func (s *Session) Stats() Stats {
	st := s.stats
	st.EndingBalance = s.balance
	return st
}
