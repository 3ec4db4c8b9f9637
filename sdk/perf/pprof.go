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

// Package perf 以 runtime/pprof 包住一段執行，寫出 cpu / heap / allocs profile。
//
//	go run ./cmd/sim -p cpu
//	go tool pprof build/profiling/cpu.pprof
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"slices"

	"github.com/zintix-labs/slotline/errs"
)

// DefaultDir profile 預設寫入的目錄
const DefaultDir = "build/profiling"

// Modes 可用的 profile 種類；空字串表示不做 profiling
var Modes = []string{"", "cpu", "heap", "allocs"}

// Valid mode 是否為 Modes 之一
func Valid(mode string) bool { return slices.Contains(Modes, mode) }

// Run 依 mode 執行 exe 並把 profile 寫到 dir（空字串時用 DefaultDir），回傳 profile 路徑。
//
// mode 為空字串時只執行 exe，不建立目錄也不回傳路徑。exe 的錯誤優先回傳。
func Run(exe func() error, mode string, dir string) (string, error) {
	if !Valid(mode) {
		return "", errs.Inputf("unknown pprof mode %q (cpu|heap|allocs)", mode)
	}
	if mode == "" {
		return "", exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, "create profiling dir failed")
	}
	path := filepath.Join(dir, mode+".pprof")
	switch mode {
	case "cpu":
		return path, cpu(exe, path)
	case "heap":
		return path, snapshot(exe, path, "heap")
	default:
		return path, snapshot(exe, path, "allocs")
	}
}

func cpu(exe func() error, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create cpu profile failed")
	}
	defer func() { _ = f.Close() }()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile failed")
	}
	runErr := exe()
	pprof.StopCPUProfile()
	return runErr
}

// snapshot 先執行 exe，再寫出一次 profile；heap 前先 GC 讓 live objects 較準確
func snapshot(exe func() error, path string, name string) error {
	if err := exe(); err != nil {
		return err
	}
	if name == "heap" {
		runtime.GC()
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+name+" profile failed")
	}
	defer func() { _ = f.Close() }()
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.NewFatal("profile " + name + " not available")
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile failed")
	}
	return nil
}
