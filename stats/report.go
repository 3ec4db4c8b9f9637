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

// Package stats 模擬結果的統計報表：機台報表、玩家體驗估計與輸出格式。
package stats

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

// level 所有區間的信賴水準
const level = 0.95

var z95 = distuv.UnitNormal.Quantile(1 - (1-level)/2)

// CI 信賴區間
type CI struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Estimate 點估計與 95% 信賴區間
type Estimate struct {
	Hat float64 `json:"hat" yaml:"hat"`
	CI  CI      `json:"ci"  yaml:"ci"`
}

// StatReport 一次模擬（或單一玩家）的統計報表。
//
// 計數由 recorder 填入；比率、區間與分布比例在 Done 之後才有值。
type StatReport struct {
	Summary *SummaryReport `json:"summary"          yaml:"summary"`
	Mult    *MultReport    `json:"mult"             yaml:"mult"`
	Bands   *BandReport    `json:"bands"            yaml:"bands"`
	Player  *PlayerReport  `json:"player,omitempty" yaml:"player,omitempty"`
	done    bool
}

type SummaryReport struct {
	MachineName  string `json:"machine"       yaml:"machine"`
	Bet          int    `json:"bet"           yaml:"bet"`
	Rounds       int    `json:"rounds"        yaml:"rounds"`
	TotalBet     int    `json:"total_bet"     yaml:"total_bet"`
	TotalWin     int    `json:"total_win"     yaml:"total_win"`
	BaseWin      int    `json:"base_win"      yaml:"base_win"`
	FreeWin      int    `json:"free_win"      yaml:"free_win"`
	LineWin      int    `json:"line_win"      yaml:"line_win"`
	ScatterWin   int    `json:"scatter_win"   yaml:"scatter_win"`
	NoWinRounds  int    `json:"no_win_rounds" yaml:"no_win_rounds"`
	Trigger      int    `json:"trigger"       yaml:"trigger"` // 觸發免費遊戲的局數
	FreeSpins    int    `json:"free_spins"    yaml:"free_spins"`
	CappedRounds int    `json:"capped_rounds" yaml:"capped_rounds"`
	BiggestWin   int    `json:"biggest_win"   yaml:"biggest_win"`
	Redraws      uint64 `json:"redraws"       yaml:"redraws"`

	RTP         Estimate `json:"rtp"          yaml:"rtp"`
	Hit         Estimate `json:"hit"          yaml:"hit"`
	TriggerRate Estimate `json:"trigger_rate" yaml:"trigger_rate"`
	Std         float64  `json:"std"          yaml:"std"`
	Cv          float64  `json:"cv"           yaml:"cv"`
}

// Moments 以押注倍數計的一階與二階和
type Moments struct {
	Sum   float64 `json:"sum"    yaml:"sum"`
	SqSum float64 `json:"sq_sum" yaml:"sq_sum"`
}

// MultReport 單局贏分（押注倍數）的累計
type MultReport struct {
	Total   Moments `json:"total"   yaml:"total"`
	Base    Moments `json:"base"    yaml:"base"`
	Free    Moments `json:"free"    yaml:"free"`
	Biggest float64 `json:"biggest" yaml:"biggest"`
}

// BandReport 各贏分區間的局數與比例（區間見 Bands）
type BandReport struct {
	Labels     []string  `json:"labels"      yaml:"labels"`
	Total      []int     `json:"total"       yaml:"total"`
	Base       []int     `json:"base"        yaml:"base"`
	Free       []int     `json:"free"        yaml:"free"`
	TotalShare []float64 `json:"total_share" yaml:"total_share"`
	BaseShare  []float64 `json:"base_share"  yaml:"base_share"`
	FreeShare  []float64 `json:"free_share"  yaml:"free_share"`
}

// PlayerReport 玩家的資金歷程
type PlayerReport struct {
	InitBalance int  `json:"init_balance" yaml:"init_balance"`
	Balance     int  `json:"balance"      yaml:"balance"`
	MaxBalance  int  `json:"max_balance"  yaml:"max_balance"`
	MinBalance  int  `json:"min_balance"  yaml:"min_balance"`
	Bust        bool `json:"bust"         yaml:"bust"`
	Cashout     bool `json:"cashout"      yaml:"cashout"`
	Alive       bool `json:"alive"        yaml:"alive"`
}

// Done 由計數算出比率與區間；重複呼叫無作用
func (s *StatReport) Done() {
	if s.done {
		return
	}
	sm := s.Summary
	sm.RTP = Estimate{Hat: s.Rtp(), CI: s.Ci()}
	sm.Std = s.Std()
	sm.Cv = s.Cv()
	sm.Hit = proportion(sm.Rounds-sm.NoWinRounds, sm.Rounds)
	sm.TriggerRate = proportion(sm.Trigger, sm.Rounds)

	if b := s.Bands; b != nil {
		b.TotalShare = shares(b.Total, sm.Rounds)
		b.BaseShare = shares(b.Base, sm.Rounds)
		b.FreeShare = shares(b.Free, sm.Rounds)
	}
	if p := s.Player; p != nil {
		p.Alive = !p.Bust && !p.Cashout
	}
	s.done = true
}

// Rtp 總贏分 / 總押注
func (s *StatReport) Rtp() float64 {
	if s.Summary.TotalBet == 0 {
		return 0
	}
	return float64(s.Summary.TotalWin) / float64(s.Summary.TotalBet)
}

// Std 單局贏分（押注倍數）的樣本標準差
func (s *StatReport) Std() float64 {
	n := float64(s.Summary.Rounds)
	if n < 2 || s.Mult == nil {
		return 0
	}
	m := s.Mult.Total
	v := (m.SqSum - m.Sum*m.Sum/n) / (n - 1)
	return math.Sqrt(max(v, 0))
}

// Cv 變異係數 Std / Rtp
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	if rtp <= 0 {
		return 0
	}
	return s.Std() / rtp
}

// Ci RTP 的常態近似 95% 區間（下界不低於 0）
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	n := s.Summary.Rounds
	if n < 2 {
		return CI{Lo: rtp, Hi: rtp}
	}
	half := z95 * s.Std() / math.Sqrt(float64(n))
	return CI{Lo: max(rtp-half, 0), Hi: rtp + half}
}

// Tables 機台報表
func (s *StatReport) Tables() []*Table {
	sm := s.Summary
	t := NewTable(sm.MachineName).
		Addf("Machine", "%s", sm.MachineName).
		Addf("Bet", "%d", sm.Bet).
		Addf("Total Rounds", "%d", sm.Rounds).
		Addf("Total RTP", "%.2f %%", 100*sm.RTP.Hat).
		Add("RTP 95% CI", pctCI(sm.RTP.CI, 2)).
		Addf("Total Bet", "%d", sm.TotalBet).
		Addf("Total Win", "%d", sm.TotalWin).
		Addf("Line Win", "%d", sm.LineWin).
		Addf("Scatter Win", "%d", sm.ScatterWin).
		Addf("Base Win", "%d", sm.BaseWin).
		Addf("Free Win", "%d", sm.FreeWin).
		Addf("Hit Rate", "%.2f %%", 100*sm.Hit.Hat).
		Add("Hit 95% CI", pctCI(sm.Hit.CI, 2)).
		Addf("NoWin Rounds", "%d", sm.NoWinRounds).
		Addf("Trigger", "%d", sm.Trigger).
		Addf("Trigger Rate", "%.4f %%", 100*sm.TriggerRate.Hat).
		Add("Trigger 95% CI", pctCI(sm.TriggerRate.CI, 4)).
		Addf("Free Spins", "%d", sm.FreeSpins)
	biggest := 0.0
	if s.Mult != nil {
		biggest = s.Mult.Biggest
	}
	t.Addf("Biggest Win", "%d (x%.0f)", sm.BiggestWin, biggest).
		Addf("Redraws", "%d", sm.Redraws).
		Addf("STD", "%.3f", sm.Std).
		Addf("CV", "%.3f", sm.Cv)
	if sm.CappedRounds > 0 {
		t.Addf("Capped Rounds", "%d", sm.CappedRounds)
	}
	return []*Table{t}
}

// Elapsed 用時與每秒轉數兩行
func Elapsed(d time.Duration, spins int) string {
	p := message.NewPrinter(lang)
	d = d.Abs()
	sec := max(d.Seconds(), 1e-9)
	var used string
	switch {
	case d < time.Minute:
		used = p.Sprintf("%.2f seconds", sec)
	case d < time.Hour:
		used = p.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		used = p.Sprintf("%dh:%dm:%ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return p.Sprintf("used: %s\nsps : %d spins/sec\n", used, int(float64(spins)/sec))
}

// proportion k/n 與 Clopper-Pearson 區間
func proportion(k, n int) Estimate {
	e := Estimate{CI: CI{Lo: 0, Hi: 1}}
	if n <= 0 {
		return e
	}
	a := (1 - level) / 2
	e.Hat = float64(k) / float64(n)
	if k > 0 {
		e.CI.Lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(a)
	}
	if k < n {
		e.CI.Hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - a)
	}
	return e
}

func shares(counts []int, rounds int) []float64 {
	out := make([]float64, len(counts))
	if rounds <= 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(rounds)
	}
	return out
}

func pctCI(ci CI, prec int) string {
	return "[" + pct(ci.Lo, prec) + "," + pct(ci.Hi, prec) + "]"
}

func pct(x float64, prec int) string {
	return strconv.FormatFloat(100*x, 'f', prec, 64) + "%"
}
