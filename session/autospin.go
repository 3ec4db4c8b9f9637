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

package session

import "github.com/zintix-labs/slotline/errs"

// AutoReport 自動轉的分析結果，不影響玩家的 Session
type AutoReport struct {
	Requested       int `json:"requested"`
	Played          int `json:"played"`
	Bet             int `json:"bet"`
	TotalWon        int `json:"total_won"`
	TotalLost       int `json:"total_lost"`
	BiggestWin      int `json:"biggest_win"`
	StartingBalance int `json:"starting_balance"`
	EndingBalance   int `json:"ending_balance"`
}

// Net 結束餘額 - 起始餘額
func (r AutoReport) Net() int { return r.EndingBalance - r.StartingBalance }

// RTP 總贏分 / (實際轉數 * 押注)
func (r AutoReport) RTP() float64 {
	if r.Played == 0 || r.Bet == 0 {
		return 0
	}
	return float64(r.TotalWon) / float64(r.Played*r.Bet)
}

// AutoSpin 以獨立資金 bet*count 連續付費轉 count 次，餘額不足一注即停。
//
// 只看付費 Spin 的表現：分散符號照付，但不發放免費遊戲。
func AutoSpin(m Spinner, count int) (AutoReport, error) {
	if m == nil {
		return AutoReport{}, errs.NewFatal("auto spin needs a machine")
	}
	if count < 1 {
		return AutoReport{}, errs.Inputf("auto spin count must be positive, got %d", count)
	}
	bet := m.BetAmount()
	r := AutoReport{
		Requested:       count,
		Bet:             bet,
		StartingBalance: bet * count,
	}
	balance := r.StartingBalance
	for range count {
		if balance < bet {
			break
		}
		balance -= bet
		r.Played++
		sr := m.Spin()
		if sr.TotalPayout > 0 {
			balance += sr.TotalPayout
			r.TotalWon += sr.TotalPayout
			r.BiggestWin = max(r.BiggestWin, sr.TotalPayout)
		} else {
			r.TotalLost += bet
		}
	}
	r.EndingBalance = balance
	return r, nil
}
