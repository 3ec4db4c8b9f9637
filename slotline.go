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

// Package slotline 5x3 線獎拉霸機引擎的組裝入口。
//
// Slotline 把兩個地基組在一起：
//  1. Catalog：有哪些機台、各自的設定檔（以機台名稱索引）。
//  2. PRNGFactory：亂數核心工廠，同一個 seed 必定得到同一組輪帶與盤面序列。
//
// 設定來源一律以 fs.FS 注入（go:embed 或 os.DirFS），Slotline 本身不處理路徑。
//
//	lab, _ := slotline.New(core.Default(), configs.FS)
//	m, _ := lab.NewMachine("classic-5x3", 2025)
//	sr := m.Spin()
//
// 不用目錄時也可以直接用 NewMachine(setting, factory, seed) 建機台。
package slotline

import (
	"io/fs"
	"log/slog"

	"github.com/zintix-labs/slotline/catalog"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/sdk/reel"
	"github.com/zintix-labs/slotline/spec"
)

// Slotline 組裝器；建立後唯讀，可被多 goroutine 共用
type Slotline struct {
	cat *catalog.Catalog
	cf  core.PRNGFactory
	sum []catalog.Summary
	log *slog.Logger
}

// New 掃描 cfgs 內所有設定檔並凍結目錄
func New(cf core.PRNGFactory, cfgs ...fs.FS) (*Slotline, error) {
	if cf == nil {
		return nil, errs.Configf("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.Configf("configs required")
	}
	cat, err := catalog.Load(cfgs...)
	if err != nil {
		return nil, err
	}
	sum, err := cat.Summary()
	if err != nil {
		return nil, err
	}
	return &Slotline{cat: cat, cf: cf, sum: sum, log: slog.Default()}, nil
}

// SetLogger 之後建立的機台都用這個 logger
func (s *Slotline) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// Names 已註冊的機台名稱（排序）
func (s *Slotline) Names() []string { return s.cat.Names() }

// Summary 各機台的基本資訊
func (s *Slotline) Summary() []catalog.Summary { return s.sum }

// Setting 取一份獨立的機台設定
func (s *Slotline) Setting(name string) (*spec.MachineSetting, error) {
	return s.cat.Setting(name)
}

// NewMachine 依名稱與 seed 建立機台
func (s *Slotline) NewMachine(name string, seed int64) (*Machine, error) {
	ms, err := s.cat.Setting(name)
	if err != nil {
		return nil, err
	}
	m, err := NewMachine(ms, s.cf, seed)
	if err != nil {
		return nil, err
	}
	m.SetLogger(s.log)
	return m, nil
}

// NewRandomMachine 以 crypto/rand 產生 seed；seed 可由 InitSeed 取回
func (s *Slotline) NewRandomMachine(name string) (*Machine, error) {
	seed, err := RandomSeed()
	if err != nil {
		return nil, err
	}
	return s.NewMachine(name, seed)
}

// NewMachineWithStrips 用目錄內的設定搭配匯入的輪帶
func (s *Slotline) NewMachineWithStrips(name string, strips []*reel.Strip, seed int64) (*Machine, error) {
	ms, err := s.cat.Setting(name)
	if err != nil {
		return nil, err
	}
	m, err := NewMachineWithStrips(ms, strips, s.cf, seed)
	if err != nil {
		return nil, err
	}
	m.SetLogger(s.log)
	return m, nil
}

// NewMachineByYAML 以目錄外的 YAML 設定建機台
func (s *Slotline) NewMachineByYAML(raw []byte, seed int64) (*Machine, error) {
	ms, err := spec.GetMachineSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	return NewMachine(ms, s.cf, seed)
}

// NewMachineByJSON 以目錄外的 JSON 設定建機台
func (s *Slotline) NewMachineByJSON(raw []byte, seed int64) (*Machine, error) {
	ms, err := spec.GetMachineSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	return NewMachine(ms, s.cf, seed)
}

// NewSimulator 依名稱與 seed 建立模擬器
func (s *Slotline) NewSimulator(name string, seed int64) (*Simulator, error) {
	ms, err := s.cat.Setting(name)
	if err != nil {
		return nil, err
	}
	return NewSimulator(ms, s.cf, seed)
}

// NewReplay 依名稱與 seed 建立可重播的單機台
func (s *Slotline) NewReplay(name string, seed int64) (*Replay, error) {
	m, err := s.NewMachine(name, seed)
	if err != nil {
		return nil, err
	}
	return NewReplay(m), nil
}

// NewReplayFromToken 以 token 記錄的 seed 重建機台，之後 RestoreSpins(token, n) 可直接重現
func (s *Slotline) NewReplayFromToken(name string, token string) (*Replay, error) {
	seed, err := ReplaySeed(token)
	if err != nil {
		return nil, err
	}
	return s.NewReplay(name, seed)
}
