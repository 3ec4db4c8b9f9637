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

package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/zintix-labs/slotline/errs"
	"gopkg.in/yaml.v3"
)

// 預設值
const (
	DefaultMinScatterDistance  = 3
	DefaultBetAmount           = 1
	DefaultStartingBalance     = 100
	DefaultFreeSpinsPerTrigger = 10
	DefaultAutospinCount       = 1000
	DefaultMachineName         = "classic-5x3"
)

// DefaultBetOptions 預設可選押注
func DefaultBetOptions() []int { return []int{1, 2, 5, 10} }

// MachineSetting 啟動一台機台所需的全部設定。
//
// 文字欄位沿用 "NAME:count" 與 "r,r,r,r,r;..." 的簡寫格式，Init 後解析成結構化欄位。
// 指標欄位用來區分「未填」與「明確填 0 / false」。
type MachineSetting struct {
	MachineName         string   `yaml:"machine_name"           json:"machine_name"`
	Symbols             string   `yaml:"symbols"                json:"symbols"`
	PaylinesStr         string   `yaml:"paylines"               json:"paylines"`
	PaylineNames        []string `yaml:"payline_names"          json:"payline_names"`
	MinScatterDistance  *int     `yaml:"min_scatter_distance"   json:"min_scatter_distance"`
	PayAllWins          *bool    `yaml:"pay_all_wins"           json:"pay_all_wins"`
	BetAmount           int      `yaml:"bet_amount"             json:"bet_amount"`
	BetOptions          []int    `yaml:"bet_options"            json:"bet_options"`
	StartingBalance     int      `yaml:"starting_balance"       json:"starting_balance"`
	FreeSpinsPerTrigger *int     `yaml:"free_spins_per_trigger" json:"free_spins_per_trigger"`
	AutospinCount       int      `yaml:"autospin_count"         json:"autospin_count"`

	// Init 後衍生
	Dist      Distribution `yaml:"-" json:"-"`
	Lines     []Payline    `yaml:"-" json:"-"`
	MinDist   int          `yaml:"-" json:"-"`
	PayAll    bool         `yaml:"-" json:"-"`
	FreeSpins int          `yaml:"-" json:"-"`
	initFlag  bool
}

// DefaultMachineSetting 全部使用預設值並已完成 Init
func DefaultMachineSetting() *MachineSetting {
	ms := &MachineSetting{}
	// 預設值必定合法
	_ = ms.Init()
	return ms
}

// Init 補齊預設值、解析並檢查設定
func (ms *MachineSetting) Init() error {
	if ms.initFlag {
		return nil
	}
	ms.MachineName = strings.TrimSpace(ms.MachineName)
	if ms.MachineName == "" {
		ms.MachineName = DefaultMachineName
	}

	dist, err := ParseDistribution(ms.Symbols)
	if err != nil {
		return errs.Wrap(err, fmt.Sprintf("machine %s: symbols", ms.MachineName))
	}
	if dist.Size() == 0 {
		return errs.Configf("machine %s: reel strip would be empty", ms.MachineName)
	}
	ms.Dist = dist

	lines, err := ParsePaylines(ms.PaylinesStr)
	if err != nil {
		return errs.Wrap(err, fmt.Sprintf("machine %s: paylines", ms.MachineName))
	}
	ms.Lines = lines

	if len(ms.PaylineNames) == 0 {
		if strings.TrimSpace(ms.PaylinesStr) == "" {
			ms.PaylineNames = DefaultPaylineNames()
		} else {
			ms.PaylineNames = make([]string, len(lines))
			for i := range lines {
				ms.PaylineNames[i] = fmt.Sprintf("Line %d", i+1)
			}
		}
	}
	if len(ms.PaylineNames) != len(ms.Lines) {
		return errs.Configf("machine %s: %d payline names for %d paylines", ms.MachineName, len(ms.PaylineNames), len(ms.Lines))
	}

	ms.MinDist = DefaultMinScatterDistance
	if ms.MinScatterDistance != nil {
		ms.MinDist = *ms.MinScatterDistance
	}
	if ms.MinDist < 0 {
		return errs.Configf("machine %s: min_scatter_distance must not be negative, got %d", ms.MachineName, ms.MinDist)
	}

	ms.PayAll = true
	if ms.PayAllWins != nil {
		ms.PayAll = *ms.PayAllWins
	}

	if len(ms.BetOptions) == 0 {
		ms.BetOptions = DefaultBetOptions()
	}
	for _, b := range ms.BetOptions {
		if b < 1 {
			return errs.Configf("machine %s: invalid bet option %d", ms.MachineName, b)
		}
	}
	if ms.BetAmount == 0 {
		ms.BetAmount = DefaultBetAmount
	}
	if !slices.Contains(ms.BetOptions, ms.BetAmount) {
		return errs.Configf("machine %s: bet_amount %d is not in bet_options %v", ms.MachineName, ms.BetAmount, ms.BetOptions)
	}

	if ms.StartingBalance == 0 {
		ms.StartingBalance = DefaultStartingBalance
	}
	if ms.StartingBalance < 0 {
		return errs.Configf("machine %s: starting_balance must not be negative", ms.MachineName)
	}

	ms.FreeSpins = DefaultFreeSpinsPerTrigger
	if ms.FreeSpinsPerTrigger != nil {
		ms.FreeSpins = *ms.FreeSpinsPerTrigger
	}
	if ms.FreeSpins < 0 {
		return errs.Configf("machine %s: free_spins_per_trigger must not be negative", ms.MachineName)
	}

	if ms.AutospinCount == 0 {
		ms.AutospinCount = DefaultAutospinCount
	}
	if ms.AutospinCount < 0 {
		return errs.Configf("machine %s: autospin_count must be positive", ms.MachineName)
	}

	ms.initFlag = true
	return nil
}

// GetMachineSettingByYAML
// 會讀取 YAML 設定（未知欄位視為錯誤）、補齊預設值並執行基本檢查後回傳
func GetMachineSettingByYAML(data []byte) (*MachineSetting, error) {
	ms := &MachineSetting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// 空文件視為全部使用預設值
	if err := dec.Decode(ms); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.WrapConfig(err, "failed to unmarshall yaml")
	}
	if err := ms.Init(); err != nil {
		return nil, errs.Wrap(err, "machine setting initialized err")
	}
	return ms, nil
}

// GetMachineSettingByJSON
// 會讀取 Json 設定、補齊預設值並執行基本檢查後回傳
func GetMachineSettingByJSON(data []byte) (*MachineSetting, error) {
	ms := &MachineSetting{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ms); err != nil {
		return nil, errs.WrapConfig(err, "can not unmarshall json byte")
	}
	if err := ms.Init(); err != nil {
		return nil, errs.Wrap(err, "machine setting initialized err")
	}
	return ms, nil
}
