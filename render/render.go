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

// Package render 主控台遊戲的文字輸出：盤面、賠率表、賠付線與各種摘要。
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/slotline/sdk/buf"
	"github.com/zintix-labs/slotline/session"
	"github.com/zintix-labs/slotline/spec"
	"github.com/zintix-labs/slotline/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const cellWidth = 4 // "*P1*"

var lang = language.English

// Highlight 與盤面同形的標記矩陣
type Highlight [spec.Rows][spec.Reels]bool

// HighlightMatrix 標出每個線獎沿賠付線的前 Count 格。
//
// LineWin.Line 為 1-based；找不到對應賠付線的記錄略過。
func HighlightMatrix(wins []buf.LineWin, lines []spec.Payline) Highlight {
	var h Highlight
	for _, w := range wins {
		idx := w.Line - 1
		if idx < 0 || idx >= len(lines) {
			continue
		}
		pl := lines[idx]
		n := min(w.Count, spec.Reels)
		for col := 0; col < n; col++ {
			row := pl[col]
			if row < 0 || row >= spec.Rows {
				continue
			}
			h[row][col] = true
		}
	}
	return h
}

// Grid 印出盤面：中獎格為 *X*，其他分散符號為 #S#
func Grid(w io.Writer, sr *buf.SpinResult, lines []spec.Payline) error {
	h := HighlightMatrix(sr.LineWins, lines)
	var sb strings.Builder
	for row := 0; row < spec.Rows; row++ {
		for col := 0; col < spec.Reels; col++ {
			sym := sr.Grid.At(row, col)
			cell := sym.Label()
			switch {
			case h[row][col]:
				cell = "*" + cell + "*"
			case sym.IsScatter():
				cell = "#" + cell + "#"
			}
			sb.WriteString(runewidth.FillRight(cell, cellWidth))
			if col < spec.Reels-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// PayoutTable 每個圖標 3/4/5 連的倍數（乘上押注為派彩）
func PayoutTable(w io.Writer) error {
	t := stats.NewTable("Payout Table (x3 / x4 / x5)")
	for _, s := range spec.All() {
		k := s.Label()
		if s.IsScatter() {
			k += " (scatter, anywhere)"
		}
		t.Add(k, fmt.Sprintf("%d / %d / %d", s.PayoutFor(3), s.PayoutFor(4), s.PayoutFor(5)))
	}
	_, err := io.WriteString(w, t.String())
	return err
}

// Paylines 列出賠付線；names 不足時以 "Line N" 補
func Paylines(w io.Writer, lines []spec.Payline, names []string) error {
	var sb strings.Builder
	sb.WriteString("--- Paylines ---\n")
	for i, pl := range lines {
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, runewidth.FillRight(lineName(names, i+1)+":", 18), pl.String())
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// SpinSummary 逐條列出線獎與分散獎
func SpinSummary(w io.Writer, sr *buf.SpinResult, names []string) error {
	var sb strings.Builder
	for _, lw := range sr.LineWins {
		fmt.Fprintf(&sb, "%s: %dx %s, pays %d\n", lineName(names, lw.Line), lw.Count, lw.Symbol.Label(), lw.Payout)
	}
	if sr.ScatterPayout > 0 {
		fmt.Fprintf(&sb, "Scatter: %dx, pays %d\n", sr.ScatterCount, sr.ScatterPayout)
	}
	if len(sr.LineWins) == 0 && sr.ScatterPayout == 0 {
		sb.WriteString("No winning lines or scatters.\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// SessionSummary 離場時的本場統計
func SessionSummary(w io.Writer, st session.Stats) error {
	p := message.NewPrinter(lang)
	t := stats.NewTable("Session Summary").
		Addf("Total Spins", "%d", st.TotalSpins).
		Addf("Free Spins Used", "%d", st.FreeSpinsUsed).
		Addf("Total Bet", "%d", st.TotalBet).
		Addf("Total Won", "%d", st.TotalWon).
		Addf("Total Lost", "%d", st.TotalLost).
		Addf("Biggest Win", "%d", st.BiggestWin).
		Addf("Starting Balance", "%d", st.StartingBalance).
		Addf("Ending Balance", "%d", st.EndingBalance).
		Add("Net Result", signed(p, st.Net()))
	if st.TotalBet > 0 {
		t.Addf("RTP", "%.2f%%", 100*st.RTP())
	}
	_, err := io.WriteString(w, t.String())
	return err
}

// AutoSpinReport 自動轉分析
func AutoSpinReport(w io.Writer, r session.AutoReport) error {
	p := message.NewPrinter(lang)
	t := stats.NewTable("Auto-Spin Analytics").
		Addf("Total Auto-Spins", "%d", r.Played).
		Addf("Bet", "%d", r.Bet).
		Addf("Total Won", "%d", r.TotalWon).
		Addf("Total Lost", "%d", r.TotalLost).
		Addf("Biggest Win", "%d", r.BiggestWin).
		Addf("Starting Balance", "%d", r.StartingBalance).
		Addf("Ending Balance", "%d", r.EndingBalance).
		Add("Net Result", signed(p, r.Net())).
		Addf("RTP", "%.2f%%", 100*r.RTP())
	_, err := io.WriteString(w, t.String())
	return err
}

func lineName(names []string, line int) string {
	if line >= 1 && line <= len(names) && names[line-1] != "" {
		return names[line-1]
	}
	return fmt.Sprintf("Line %d", line)
}

func signed(p *message.Printer, n int) string {
	if n >= 0 {
		return p.Sprintf("+%d", n)
	}
	return p.Sprintf("%d", n)
}
