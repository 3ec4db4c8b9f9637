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

// Package catalog 機台設定目錄：以機台名稱索引一或多個 fs.FS 裡的設定檔。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/spec"
)

var ErrDupName = errs.Configf("duplicate machine name")

// Entry 一台機台對應的設定檔
type Entry struct {
	Name       string
	ConfigName string
}

// Summary 對外列出機台用
type Summary struct {
	Name       string `json:"name"`
	ConfigName string `json:"config"`
	Paylines   int    `json:"paylines"`
	BetOptions []int  `json:"bet_options"`
	StripSize  int    `json:"strip_size"`
}

// Catalog 名稱不分大小寫；Freeze 後不能再註冊
type Catalog struct {
	byName map[string]Entry
	names  []string
	unique map[string]struct{} // 設定檔名不可重複
	config *multiFS
	frozen bool
}

// New 建立空目錄，之後用 Register / RegisterAll 註冊
func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byName: map[string]Entry{},
		names:  make([]string, 0, 16),
		unique: map[string]struct{}{},
		config: multFS,
	}, nil
}

// Load 掃描所有設定檔註冊後凍結
func Load(cfg ...fs.FS) (*Catalog, error) {
	c, err := New(cfg...)
	if err != nil {
		return nil, err
	}
	if err := c.RegisterAll(); err != nil {
		return nil, err
	}
	c.Freeze()
	return c, nil
}

// Register 全部檢查通過才寫入
func (c *Catalog) Register(ents ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for i := range ents {
		ents[i].Name = normalize(ents[i].Name)
		e := ents[i]
		if e.Name == "" {
			return errs.Configf("machine name required")
		}
		if err := validFileName(e.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.GetFS(e.ConfigName); !ok {
			return errs.Configf("config file not found: %s", e.ConfigName)
		}
		if _, ok := c.byName[e.Name]; ok {
			return errs.Wrap(ErrDupName, e.Name)
		}
		if _, ok := seenName[e.Name]; ok {
			return errs.Wrap(ErrDupName, e.Name)
		}
		if _, ok := c.unique[e.ConfigName]; ok {
			return errs.Configf("duplicate config name: %s", e.ConfigName)
		}
		if _, ok := seenCfg[e.ConfigName]; ok {
			return errs.Configf("duplicate config name: %s", e.ConfigName)
		}
		seenName[e.Name] = struct{}{}
		seenCfg[e.ConfigName] = struct{}{}
	}
	for _, e := range ents {
		c.unique[e.ConfigName] = struct{}{}
		c.byName[e.Name] = e
		c.names = append(c.names, e.Name)
	}
	slices.Sort(c.names)
	return nil
}

// RegisterAll 依檔名排序解析每個設定檔，以檔內 machine_name 註冊。
//
// 任一檔案讀取或解析失敗就整批放棄，不會留下註冊一半的目錄。
func (c *Catalog) RegisterAll() error {
	files := c.config.Files()
	if len(files) == 0 {
		return errs.Configf("no config files found to register")
	}
	ents := make([]Entry, 0, len(files))
	for _, base := range files {
		ms, err := c.parse(base)
		if err != nil {
			return err
		}
		ents = append(ents, Entry{Name: ms.MachineName, ConfigName: base})
	}
	return c.Register(ents...)
}

func (c *Catalog) Freeze() { c.frozen = true }

func (c *Catalog) IsFrozen() bool { return c.frozen }

// GetByName 名稱不分大小寫
func (c *Catalog) GetByName(name string) (Entry, bool) {
	e, ok := c.byName[normalize(name)]
	return e, ok
}

// Names 已排序的機台名稱
func (c *Catalog) Names() []string { return slices.Clone(c.names) }

// All 依名稱排序
func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.byName[n])
	}
	return out
}

// Setting 每次重新讀檔解析，回傳的設定由呼叫端獨佔
func (c *Catalog) Setting(name string) (*spec.MachineSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.Inputf("machine %q does not exist in catalog", name)
	}
	return c.parse(e.ConfigName)
}

// Summary 列出所有機台的基本資訊
func (c *Catalog) Summary() ([]Summary, error) {
	out := make([]Summary, 0, len(c.names))
	for _, n := range c.names {
		ms, err := c.Setting(n)
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{
			Name:       ms.MachineName,
			ConfigName: c.byName[n].ConfigName,
			Paylines:   len(ms.Lines),
			BetOptions: ms.BetOptions,
			StripSize:  ms.Dist.Size(),
		})
	}
	return out, nil
}

func (c *Catalog) parse(base string) (*spec.MachineSetting, error) {
	src, ok := c.config.GetFS(base)
	if !ok {
		return nil, errs.Configf("config file not found: %s", base)
	}
	raw, err := fs.ReadFile(src, base)
	if err != nil {
		return nil, errs.WrapConfig(err, "read config failed: "+base)
	}
	var ms *spec.MachineSetting
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		ms, err = spec.GetMachineSettingByYAML(raw)
	case ".json":
		ms, err = spec.GetMachineSettingByJSON(raw)
	default:
		return nil, errs.Configf("unsupported config format: %q", base)
	}
	if err != nil {
		return nil, errs.Wrap(err, "parse machine setting failed: "+base)
	}
	return ms, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validFileName(file string) error {
	if file == "" {
		return errs.Configf("empty config filename")
	}
	if strings.ContainsAny(file, `/\:`) {
		return errs.Configf("invalid config filename: %q (must be a basename)", file)
	}
	if !isConfigFile(file) {
		return errs.Configf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file)
	}
	if strings.HasPrefix(file, ".") {
		return errs.Configf("invalid config filename: %q (cannot start with '.')", file)
	}
	return nil
}

func isConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// multiFS 把多個平面的設定來源合成一份檔名索引
type multiFS struct {
	src   []fs.FS
	index map[string]int // 檔名 -> src 下標
	files []string
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.Configf("no fs provided")
	}
	m := &multiFS{src: src, index: make(map[string]int, 16)}
	for i, s := range src {
		if s == nil {
			return nil, errs.Configf("fs[%d] is nil", i)
		}
		err := fs.WalkDir(s, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.Configf("config FS must be flat (no subdirectories): %q", path)
			}
			if strings.HasPrefix(path, ".") || !isConfigFile(path) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.Configf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i)
			}
			m.index[path] = i
			m.files = append(m.files, path)
			return nil
		})
		if err != nil {
			return nil, errs.WrapConfig(err, fmt.Sprintf("scan fs[%d] failed", i))
		}
	}
	slices.Sort(m.files)
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if i, ok := m.index[name]; ok {
		return m.src[i], true
	}
	return nil, false
}

func (m *multiFS) Files() []string { return slices.Clone(m.files) }
