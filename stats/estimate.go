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

package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Spread 一組玩家數值的分布摘要
type Spread struct {
	Mean   Estimate `json:"mean"   yaml:"mean"`
	P10    float64  `json:"p10"    yaml:"p10"`
	Median float64  `json:"median" yaml:"median"`
	P90    float64  `json:"p90"    yaml:"p90"`
}

// PlayerEstimate 多位玩家各自玩完一段後的體驗估計。
//
// 比例類欄位都附 Clopper-Pearson 95% 區間；平均值附常態近似區間。
type PlayerEstimate struct {
	Players    int      `json:"players"     yaml:"players"`
	MeanRounds float64  `json:"mean_rounds" yaml:"mean_rounds"` // 離場前平均局數
	Rtp        Spread   `json:"rtp"         yaml:"rtp"`
	EndBalance Spread   `json:"end_balance" yaml:"end_balance"`
	Losing     Estimate `json:"losing"      yaml:"losing"`    // RTP 低於 100%
	Triggered  Estimate `json:"triggered"   yaml:"triggered"` // 至少觸發一次免費遊戲
	Bust       Estimate `json:"bust"        yaml:"bust"`
	Cashout    Estimate `json:"cashout"     yaml:"cashout"`
	Alive      Estimate `json:"alive"       yaml:"alive"`
}

// EstimatePlayers 彙整每位玩家的報表（一份報表一位玩家）
func EstimatePlayers(reps []*StatReport) *PlayerEstimate {
	n := len(reps)
	pe := &PlayerEstimate{Players: n}
	if n == 0 {
		return pe
	}
	rtp := make([]float64, n)
	end := make([]float64, n)
	var rounds, losing, triggered, bust, cashout, alive int
	for i, r := range reps {
		r.Done()
		rtp[i] = r.Rtp()
		rounds += r.Summary.Rounds
		if rtp[i] < 1 {
			losing++
		}
		if r.Summary.Trigger > 0 {
			triggered++
		}
		p := r.Player
		if p == nil {
			continue
		}
		end[i] = float64(p.Balance)
		switch {
		case p.Bust:
			bust++
		case p.Cashout:
			cashout++
		default:
			alive++
		}
	}
	pe.MeanRounds = float64(rounds) / float64(n)
	pe.Rtp = spreadOf(rtp)
	pe.EndBalance = spreadOf(end)
	pe.Losing = proportion(losing, n)
	pe.Triggered = proportion(triggered, n)
	pe.Bust = proportion(bust, n)
	pe.Cashout = proportion(cashout, n)
	pe.Alive = proportion(alive, n)
	return pe
}

func spreadOf(xs []float64) Spread {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	mean := stat.Mean(sorted, nil)
	half := 0.0
	if n := len(sorted); n > 1 {
		half = z95 * stat.StdDev(sorted, nil) / math.Sqrt(float64(n))
	}
	return Spread{
		Mean:   Estimate{Hat: mean, CI: CI{Lo: mean - half, Hi: mean + half}},
		P10:    stat.Quantile(0.10, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}

// Tables 玩家 RTP 與離場結局兩張表
func (pe *PlayerEstimate) Tables() []*Table {
	r := pe.Rtp
	rt := NewTable("RTP (Player Experience)").
		Add("Mean RTP", fmtEstimate(r.Mean)).
		Add("P10 RTP", pct(r.P10, 2)).
		Add("Median RTP", pct(r.Median, 2)).
		Add("P90 RTP", pct(r.P90, 2)).
		Add("Losing Players", fmtEstimate(pe.Losing))

	b := pe.EndBalance
	st := NewTable("Player Sessions").
		Addf("Players", "%d", pe.Players).
		Addf("Mean Rounds", "%.1f", pe.MeanRounds).
		Add("Free Spins Triggered", fmtEstimate(pe.Triggered)).
		Add("Bust", fmtEstimate(pe.Bust)).
		Add("Cashout", fmtEstimate(pe.Cashout)).
		Add("Alive", fmtEstimate(pe.Alive)).
		Addf("Ending Balance (mean)", "%.1f [%.1f, %.1f]", b.Mean.Hat, b.Mean.CI.Lo, b.Mean.CI.Hi).
		Addf("Ending Balance (P10/P50/P90)", "%.0f / %.0f / %.0f", b.P10, b.Median, b.P90)
	return []*Table{rt, st}
}

func fmtEstimate(e Estimate) string {
	return pct(e.Hat, 2) + " " + pctCI(e.CI, 2)
}
