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

// Package stripset 匯出/匯入一台機台的五條輪帶與建帶參數（JSON，可選 zstd 壓縮）。
//
// 存的是建帶結果，不是轉輪紀錄；匯入後可用 slotline.NewMachineWithStrips 重建同一台機台。
package stripset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/reel"
	"github.com/zintix-labs/slotline/spec"
)

const Version = 1

// MaxFileBytes 解壓後的檔案上限
const MaxFileBytes = 1 << 20

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Set 一台機台的輪帶組
type Set struct {
	MachineName string
	Seed        int64
	MinDist     int
	Dist        spec.Distribution
	Strips      []*reel.Strip
}

type fileV1 struct {
	Version            int             `json:"version"`
	MachineName        string          `json:"machine_name"`
	Seed               int64           `json:"seed"`
	MinScatterDistance int             `json:"min_scatter_distance"`
	Symbols            string          `json:"symbols"`
	Strips             [][]spec.Symbol `json:"strips"`
}

// New 由設定與輪帶組成 Set 並檢查；strips 的順序即輪軸順序
func New(ms *spec.MachineSetting, seed int64, strips []*reel.Strip) (*Set, error) {
	if ms == nil {
		return nil, errs.Configf("machine setting required")
	}
	if err := ms.Init(); err != nil {
		return nil, err
	}
	s := &Set{
		MachineName: ms.MachineName,
		Seed:        seed,
		MinDist:     ms.MinDist,
		Dist:        ms.Dist,
		Strips:      strips,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate 檢查輪軸數、每條輪帶的圖標數量與分散符號間距
func (s *Set) Validate() error {
	if len(s.Strips) != spec.Reels {
		return errs.Configf("strip set needs %d strips, got %d", spec.Reels, len(s.Strips))
	}
	for i, st := range s.Strips {
		if st == nil {
			return errs.Configf("strip %d is nil", i)
		}
		counts := st.Counts()
		for _, sym := range spec.All() {
			if counts[sym] != s.Dist.Count(sym) {
				return errs.Configf("strip %d holds %d x %s, distribution says %d", i, counts[sym], sym.Name(), s.Dist.Count(sym))
			}
		}
		if gap := st.MinScatterGap(); gap >= 0 && gap < s.MinDist {
			return errs.Configf("strip %d has scatters %d apart, minimum is %d", i, gap, s.MinDist)
		}
	}
	return nil
}

// Write 以 JSON 寫出；compress 為 true 時整份以 zstd 壓縮
func Write(w io.Writer, s *Set, compress bool) error {
	if s == nil {
		return errs.NewFatal("nothing to write")
	}
	f := fileV1{
		Version:            Version,
		MachineName:        s.MachineName,
		Seed:               s.Seed,
		MinScatterDistance: s.MinDist,
		Symbols:            s.Dist.String(),
		Strips:             make([][]spec.Symbol, len(s.Strips)),
	}
	for i, st := range s.Strips {
		f.Strips[i] = st.Symbols()
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errs.Wrap(err, "marshal strip set failed")
	}
	if !compress {
		if _, err := w.Write(append(raw, '\n')); err != nil {
			return errs.Wrap(err, "write strip set failed")
		}
		return nil
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errs.Wrap(err, "create zstd writer failed")
	}
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return errs.Wrap(err, "write strip set failed")
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "close zstd writer failed")
	}
	return nil
}

// Read 讀回 Write 的輸出；依開頭 magic 自動判斷是否為 zstd
func Read(r io.Reader) (*Set, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))
	var src io.Reader = br
	if bytes.Equal(head, zstdMagic) {
		zr, err := zstd.NewReader(br, zstd.WithDecoderMaxMemory(MaxFileBytes), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, errs.Wrap(err, "create zstd reader failed")
		}
		defer zr.Close()
		src = zr
	}
	raw, err := io.ReadAll(io.LimitReader(src, MaxFileBytes+1))
	if err != nil {
		return nil, errs.WrapConfig(err, "read strip set failed")
	}
	if len(raw) > MaxFileBytes {
		return nil, errs.Configf("strip set exceeds %d bytes", MaxFileBytes)
	}

	var f fileV1
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, errs.WrapConfig(err, "decode strip set failed")
	}
	if f.Version != Version {
		return nil, errs.Configf("unsupported strip set version %d", f.Version)
	}
	dist, err := spec.ParseDistribution(f.Symbols)
	if err != nil {
		return nil, err
	}
	s := &Set{
		MachineName: f.MachineName,
		Seed:        f.Seed,
		MinDist:     f.MinScatterDistance,
		Dist:        dist,
		Strips:      make([]*reel.Strip, len(f.Strips)),
	}
	for i, syms := range f.Strips {
		st, err := reel.NewStrip(syms)
		if err != nil {
			return nil, errs.Wrap(err, "strip set")
		}
		s.Strips[i] = st
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteFile 寫到 path；副檔名 .zst 時壓縮
func WriteFile(path string, s *Set) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create strip file failed")
	}
	if err := Write(f, s, strings.HasSuffix(strings.ToLower(path), ".zst")); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(err, "close strip file failed")
	}
	return nil
}

// ReadFile 讀取 WriteFile 的輸出
func ReadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "open strip file failed")
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Matches 匯入的輪帶是否與設定的建帶參數一致
func (s *Set) Matches(ms *spec.MachineSetting) error {
	if err := ms.Init(); err != nil {
		return err
	}
	if s.MinDist != ms.MinDist {
		return errs.Configf("strip set built with min scatter distance %d, machine wants %d", s.MinDist, ms.MinDist)
	}
	for _, sym := range spec.All() {
		if s.Dist.Count(sym) != ms.Dist.Count(sym) {
			return errs.Configf("strip set distribution %s differs from machine %s", s.Dist.String(), ms.Dist.String())
		}
	}
	return nil
}
