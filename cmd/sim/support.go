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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zintix-labs/slotline"
	"github.com/zintix-labs/slotline/configs"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/logger"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/spec"
	"github.com/zintix-labs/slotline/stats"
	"github.com/zintix-labs/slotline/stripset"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	file      string
	machine   string
	worker    int
	player    int
	balance   int
	bet       int
	spins     int
	seed      int64
	out       string
	pprofmode string
	pprofdir  string
	dump      string
	strips    string
	replay    string
	logmode   string
}

// bindVar 回傳的 stop 把 log 佇列寫完
func bindVar() (stop func()) {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.file, "config", "", "machine setting file (.yaml/.yml/.json); empty uses the embedded catalog")
	flag.StringVar(&cfg.machine, "machine", configs.DefaultMachine, "machine name in the embedded catalog")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.player, "player", 1, "number of players")
	flag.IntVar(&cfg.balance, "balance", 0, "initial balance per player (0 uses starting_balance)")
	flag.IntVar(&cfg.bet, "bet", 0, "bet per spin (0 uses bet_amount)")
	flag.IntVar(&cfg.spins, "spins", 1000000, "rounds per worker (or per player)")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.out, "out", "table", "report format: table, json, yaml")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	flag.StringVar(&cfg.pprofdir, "pdir", "", "pprof output dir")
	flag.StringVar(&cfg.dump, "dump", "", "export the generated strips (.json or .json.zst)")
	flag.StringVar(&cfg.strips, "strips", "", "load strips exported by -dump instead of building new ones")
	flag.StringVar(&cfg.replay, "replay", "", "replay token: rebuild the machine from its seed (or -strips), replay -spins spins and print json")
	flag.StringVar(&cfg.logmode, "log", "console", "log mode: dev, prod, console, silence")

	flag.Parse()

	stop, err := logger.Install(cfg.logmode, true)
	if err != nil {
		log.Fatal(err)
	}

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := slotline.RandomSeed()
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed
	}
	return stop
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() error {
	if err := cfg.valid(); err != nil {
		return err
	}
	ms, err := loadSetting()
	if err != nil {
		return err
	}
	if cfg.replay != "" && cfg.strips == "" {
		// 沒有匯入輪帶時，依 token 記錄的 seed 重建同一組輪帶
		if cfg.seed, err = slotline.ReplaySeed(cfg.replay); err != nil {
			return err
		}
	}
	s, err := newSimulator(ms)
	if err != nil {
		return err
	}
	if cfg.dump != "" {
		set, err := stripset.New(ms, cfg.seed, s.Machine().Strips())
		if err != nil {
			return err
		}
		if err := stripset.WriteFile(cfg.dump, set); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "strips exported to %s (seed %d)\n", cfg.dump, cfg.seed)
	}

	bet := cfg.bet
	if bet == 0 {
		bet = ms.BetAmount
	}
	if cfg.replay != "" {
		return replay(os.Stdout, s.Machine(), bet)
	}
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	w := os.Stdout
	showpb := stats.Format(cfg.out) == stats.FormatTable
	hw := io.Writer(w)
	if !showpb {
		hw = os.Stderr
	}

	if cfg.player == 1 { // 純機台模擬
		var (
			st   *stats.StatReport
			used time.Duration
		)
		if cfg.worker == 1 { // 單線程
			p.Fprintf(hw, "%s[MACHINE:%s] [BET:%d] [SPINS:%d] [SEED:%d]%s\n", green, ms.MachineName, bet, cfg.spins, cfg.seed, reset)
			st, used, err = s.Sim(bet, cfg.spins, showpb)
		} else {
			p.Fprintf(hw, "%s[WORKERS:%d] [MACHINE:%s] [BET:%d] [SPINS:%d] [SEED:%d]%s\n", green, cfg.worker, ms.MachineName, bet, cfg.worker*cfg.spins, cfg.seed, reset)
			st, used, err = s.SimMP(bet, cfg.spins, cfg.worker, showpb) // 併發
		}
		if err != nil {
			return err
		}
		return writeReport(w, st, used, st.Summary.Rounds)
	}

	// 模擬多玩家體驗
	balance := cfg.balance
	if balance == 0 {
		balance = ms.StartingBalance
	}
	p.Fprintf(hw, "%s[WORKERS:%d] [MACHINE:%s] [PLAYERS:%d BALANCE:%d BET:%d SPINS:%d]%s\n", green, cfg.worker, ms.MachineName, cfg.player, balance, bet, cfg.spins, reset)
	st, est, used, err := s.SimPlayers(cfg.worker, cfg.player, balance, bet, cfg.spins, showpb)
	if err != nil {
		return err
	}
	if err := writeReport(w, st, used, st.Summary.Rounds); err != nil {
		return err
	}
	return writeReport(w, est, 0, 0)
}

// loadSetting 優先讀 -config 指定的檔案，否則從內嵌目錄取 -machine
func loadSetting() (*spec.MachineSetting, error) {
	if cfg.file == "" {
		lab, err := slotline.New(core.Default(), configs.FS)
		if err != nil {
			return nil, err
		}
		return lab.Setting(cfg.machine)
	}
	raw, err := os.ReadFile(cfg.file)
	if err != nil {
		return nil, errs.WrapConfig(err, "read machine setting failed")
	}
	switch strings.ToLower(filepath.Ext(cfg.file)) {
	case ".json":
		return spec.GetMachineSettingByJSON(raw)
	case ".yaml", ".yml":
		return spec.GetMachineSettingByYAML(raw)
	default:
		return nil, errs.Configf("unsupported config file %s (yaml|yml|json)", cfg.file)
	}
}

func newSimulator(ms *spec.MachineSetting) (*slotline.Simulator, error) {
	if cfg.strips == "" {
		return slotline.NewSimulator(ms, core.Default(), cfg.seed)
	}
	set, err := stripset.ReadFile(cfg.strips)
	if err != nil {
		return nil, err
	}
	if err := set.Matches(ms); err != nil {
		return nil, err
	}
	slog.Info("strips imported", "path", cfg.strips, "machine", set.MachineName, "built_seed", set.Seed)
	return slotline.NewSimulatorWithStrips(ms, set.Strips, core.Default(), cfg.seed)
}

func replay(w io.Writer, m *slotline.Machine, bet int) error {
	if err := m.SetBetAmount(bet); err != nil {
		return err
	}
	rep, err := slotline.NewReplay(m).RestoreSpins(cfg.replay, cfg.spins)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// writeReport 表格模式先印用時
func writeReport(w io.Writer, r stats.Report, used time.Duration, rounds int) error {
	f := stats.Format(cfg.out)
	if f == stats.FormatTable && used > 0 {
		if _, err := io.WriteString(w, stats.Elapsed(used, rounds)); err != nil {
			return err
		}
	}
	return stats.Write(w, f, r)
}

func (cfg *config) valid() error {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		return errs.Inputf("value err : workers must > 0")
	}
	// 玩家數量 > 0
	if cfg.player < 1 {
		return errs.Inputf("value err : player must > 0")
	}
	// 玩家數量太多 resize
	if cfg.player > 100000 {
		p.Fprintf(os.Stderr, "too much players: %d resized to 100k players\n", cfg.player)
		cfg.player = 100000
	}
	if cfg.balance < 0 {
		return errs.Inputf("value err : balance must >= 0")
	}
	if cfg.bet < 0 {
		return errs.Inputf("value err : bet must >= 0")
	}
	// 轉數檢查
	if cfg.spins < 1 {
		return errs.Inputf("value err : spins must > 0")
	}
	f, err := stats.ParseFormat(cfg.out)
	if err != nil {
		return err
	}
	cfg.out = string(f)
	if cfg.replay != "" && cfg.spins > slotline.MaxReplaySpins {
		p.Fprintf(os.Stderr, "too much spins for replay : %d resized to %d\n", cfg.spins, slotline.MaxReplaySpins)
		cfg.spins = slotline.MaxReplaySpins
	}

	// 模擬玩家的時候，每個玩家最高不超過15000轉(無意義)
	// 對一個玩家來說 1500轉約1hr 15000轉約10小時 體驗已經轉為長期，直接模擬長局數機台即可
	if cfg.player > 1 && cfg.spins > 15000 {
		p.Fprintf(os.Stderr, "too much spins for each players : %d resized to 15k spins for each player\n", cfg.spins)
		cfg.spins = 15000
	}
	return nil
}
