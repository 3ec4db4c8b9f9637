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

// play 互動式主控台拉霸機。
//
//	go run ./cmd/play -config my.yaml -seed 7
//
// -config 讀不到或不合法時，記錄警告並改用內嵌的預設機台。
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/slotline"
	"github.com/zintix-labs/slotline/configs"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/logger"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/spec"
)

func main() {
	file := flag.String("config", "", "machine setting file (.yaml/.yml/.json)")
	name := flag.String("machine", configs.DefaultMachine, "machine name in the embedded catalog")
	seed := flag.Int64("seed", -1, "int64 seed (< 1 uses crypto/rand)")
	mode := flag.String("log", "console", "log mode: dev, prod, console, silence")
	flag.Parse()

	if _, err := logger.Install(*mode, false); err != nil {
		log.Fatal(err)
	}

	var err error
	if *seed < 1 {
		if *seed, err = slotline.RandomSeed(); err != nil {
			log.Fatal(err)
		}
	}
	ms := loadSetting(*file, *name)
	g, err := newGame(ms, *seed, os.Stdin, os.Stdout)
	if err != nil {
		slog.Error("cannot start machine", "err", err)
		os.Exit(1)
	}
	if err := g.run(); err != nil {
		slog.Error("game aborted", "err", err)
		os.Exit(1)
	}
}

// loadSetting 依序嘗試 -config、內嵌目錄，最後用內建預設值
func loadSetting(file string, name string) *spec.MachineSetting {
	if file != "" {
		ms, err := readSetting(file)
		if err == nil {
			return ms
		}
		slog.Warn("config unusable, using defaults", "file", file, "err", err)
	}
	lab, err := slotline.New(core.Default(), configs.FS)
	if err == nil {
		ms, err := lab.Setting(name)
		if err == nil {
			return ms
		}
		slog.Warn("machine not in catalog, using defaults", "machine", name, "err", err)
	} else {
		slog.Warn("embedded catalog unusable, using defaults", "err", err)
	}
	return spec.DefaultMachineSetting()
}

func readSetting(file string) (*spec.MachineSetting, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, errs.WrapConfig(err, "read machine setting failed")
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return spec.GetMachineSettingByJSON(raw)
	case ".yaml", ".yml":
		return spec.GetMachineSettingByYAML(raw)
	default:
		return nil, errs.Configf("unsupported config file %s (yaml|yml|json)", file)
	}
}
