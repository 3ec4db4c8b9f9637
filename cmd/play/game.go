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

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zintix-labs/slotline"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/render"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/session"
	"github.com/zintix-labs/slotline/spec"
)

// game 一場主控台遊戲：選單迴圈、讀入選項、輸出盤面
type game struct {
	m    *slotline.Machine
	s    *session.Session
	auto int
	in   *bufio.Scanner
	out  io.Writer
}

func newGame(ms *spec.MachineSetting, seed int64, in io.Reader, out io.Writer) (*game, error) {
	m, err := slotline.NewMachine(ms, core.Default(), seed)
	if err != nil {
		return nil, err
	}
	s, err := session.New(m, ms.StartingBalance, ms.FreeSpins)
	if err != nil {
		return nil, err
	}
	return &game{m: m, s: s, auto: ms.AutospinCount, in: bufio.NewScanner(in), out: out}, nil
}

// run 讀到 6 或輸入結束時印出本場統計並離開
func (g *game) run() error {
	fmt.Fprintf(g.out, "Welcome to %s!\n", g.m.Name())
	for {
		g.menu()
		line, ok := g.readLine()
		if !ok {
			return g.exit()
		}
		var err error
		switch line {
		case "1":
			err = g.spin()
		case "2":
			err = render.PayoutTable(g.out)
		case "3":
			err = render.Paylines(g.out, g.m.Paylines(), g.m.PaylineNames())
		case "4":
			g.changeBet()
		case "5":
			err = g.autoSpin()
		case "6":
			return g.exit()
		default:
			fmt.Fprintln(g.out, "Invalid option. Try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (g *game) menu() {
	if fs := g.s.FreeSpins(); fs > 0 {
		fmt.Fprintf(g.out, "\nBalance: %d (Free Spins left: %d)\n", g.s.Balance(), fs)
	} else {
		fmt.Fprintf(g.out, "\nBalance: %d\n", g.s.Balance())
	}
	fmt.Fprintf(g.out, "Current Bet: %d\n", g.s.Bet())
	fmt.Fprintln(g.out, "1. Spin")
	fmt.Fprintln(g.out, "2. View Payout Table")
	fmt.Fprintln(g.out, "3. View Paylines")
	fmt.Fprintln(g.out, "4. Change Bet Amount")
	fmt.Fprintf(g.out, "5. Run %d Auto-Spins (Analytics)\n", g.auto)
	fmt.Fprintln(g.out, "6. Exit")
	fmt.Fprintln(g.out, "Choose an option: ")
}

func (g *game) readLine() (string, bool) {
	if !g.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(g.in.Text()), true
}

func (g *game) spin() error {
	out, err := g.s.Play()
	if errs.IsInput(err) {
		fmt.Fprintf(g.out, "Not enough balance to spin. Each spin costs %d.\n", g.s.Bet())
		return nil
	}
	if err != nil {
		return err
	}
	if out.Free {
		fmt.Fprintln(g.out, "Using free spin...")
	}
	sr := &out.Result
	fmt.Fprintln(g.out, "\n--- Spin Result ---")
	if err := render.Grid(g.out, sr, g.m.Paylines()); err != nil {
		return err
	}
	if err := render.SpinSummary(g.out, sr, g.m.PaylineNames()); err != nil {
		return err
	}
	if sr.TotalPayout > 0 {
		fmt.Fprintf(g.out, "You win: %d!\n", sr.TotalPayout)
	} else {
		fmt.Fprintln(g.out, "No win this time.")
	}
	if out.Awarded > 0 {
		fmt.Fprintf(g.out, "Bonus! You triggered %d free spins with %d Scatters!\n", out.Awarded, sr.ScatterCount)
	}
	return nil
}

func (g *game) changeBet() {
	options := g.m.BetOptions()
	fmt.Fprintln(g.out, "Choose your bet amount:")
	for i, b := range options {
		fmt.Fprintf(g.out, "%d. %d\n", i+1, b)
	}
	fmt.Fprint(g.out, "Enter option number: ")
	line, ok := g.readLine()
	if !ok {
		return
	}
	choice, err := strconv.Atoi(line)
	if err != nil {
		fmt.Fprintln(g.out, "Invalid input. Please enter a number.")
		return
	}
	if choice < 1 || choice > len(options) {
		fmt.Fprintln(g.out, "Invalid bet option.")
		return
	}
	// options 取自機台，不會失敗
	_ = g.m.SetBetAmount(options[choice-1])
	fmt.Fprintf(g.out, "Bet amount set to %d\n", options[choice-1])
}

// autoSpin 另開一筆資金跑分析，不動本場餘額與統計
func (g *game) autoSpin() error {
	fmt.Fprintf(g.out, "Running %d auto-spins...\n", g.auto)
	rep, err := session.AutoSpin(g.m, g.auto)
	if err != nil {
		return err
	}
	return render.AutoSpinReport(g.out, rep)
}

func (g *game) exit() error {
	if err := render.SessionSummary(g.out, g.s.Stats()); err != nil {
		return err
	}
	fmt.Fprintln(g.out, "Thanks for playing!")
	return nil
}
