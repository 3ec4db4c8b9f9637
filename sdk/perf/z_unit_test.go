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

package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/slotline/errs"
)

func TestRunWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"cpu", "heap", "allocs"} {
		calls := 0
		path, err := Run(func() error { calls++; return nil }, mode, dir)
		if err != nil {
			t.Fatalf("%s run err: %v", mode, err)
		}
		if calls != 1 {
			t.Fatalf("%s: exe called %d times", mode, calls)
		}
		if path != filepath.Join(dir, mode+".pprof") {
			t.Fatalf("%s: unexpected path %s", mode, path)
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			t.Fatalf("%s: profile not written: %v", mode, err)
		}
	}
}

func TestRunPlainAndErrors(t *testing.T) {
	want := errors.New("boom")
	path, err := Run(func() error { return want }, "", "")
	if !errors.Is(err, want) || path != "" {
		t.Fatalf("plain run should return exe error and no path, got %q %v", path, err)
	}
	if _, err := Run(func() error { return nil }, "trace", t.TempDir()); !errs.IsInput(err) {
		t.Fatalf("unknown mode should be an input error, got %v", err)
	}
	if _, err := Run(func() error { return want }, "cpu", t.TempDir()); !errors.Is(err, want) {
		t.Fatalf("cpu run should surface exe error, got %v", err)
	}
}
