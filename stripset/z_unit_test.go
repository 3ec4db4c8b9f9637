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

package stripset_test

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/slotline"
	"github.com/zintix-labs/slotline/errs"
	"github.com/zintix-labs/slotline/sdk/core"
	"github.com/zintix-labs/slotline/sdk/reel"
	"github.com/zintix-labs/slotline/spec"
	"github.com/zintix-labs/slotline/stripset"
)

func buildSet(t *testing.T, seed int64) (*spec.MachineSetting, *stripset.Set) {
	t.Helper()
	ms := spec.DefaultMachineSetting()
	m, err := slotline.NewMachine(ms, core.Default(), seed)
	if err != nil {
		t.Fatalf("machine err: %v", err)
	}
	s, err := stripset.New(ms, seed, m.Strips())
	if err != nil {
		t.Fatalf("stripset err: %v", err)
	}
	return ms, s
}

func sameStrips(t *testing.T, a, b []*reel.Strip) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("strip count %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !slices.Equal(a[i].Symbols(), b[i].Symbols()) {
			t.Fatalf("strip %d differs after round trip", i)
		}
	}
}

func TestWriteReadPlainAndZstd(t *testing.T) {
	ms, s := buildSet(t, 77)
	for _, compress := range []bool{false, true} {
		var b bytes.Buffer
		if err := stripset.Write(&b, s, compress); err != nil {
			t.Fatalf("write(compress=%v) err: %v", compress, err)
		}
		if !compress && !strings.Contains(b.String(), `"SCATTER"`) {
			t.Fatalf("plain output should be readable json")
		}
		back, err := stripset.Read(&b)
		if err != nil {
			t.Fatalf("read(compress=%v) err: %v", compress, err)
		}
		sameStrips(t, s.Strips, back.Strips)
		if back.Seed != 77 || back.MachineName != ms.MachineName || back.MinDist != ms.MinDist {
			t.Fatalf("header mismatch: %+v", back)
		}
		if err := back.Matches(ms); err != nil {
			t.Fatalf("round tripped set should match its setting: %v", err)
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	_, s := buildSet(t, 5)
	dir := t.TempDir()
	for _, name := range []string{"strips.json", "strips.json.zst"} {
		path := filepath.Join(dir, name)
		if err := stripset.WriteFile(path, s); err != nil {
			t.Fatalf("write %s err: %v", name, err)
		}
		back, err := stripset.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s err: %v", name, err)
		}
		sameStrips(t, s.Strips, back.Strips)
	}
}

func TestMachineFromImportedStrips(t *testing.T) {
	ms, s := buildSet(t, 31)
	var b bytes.Buffer
	if err := stripset.Write(&b, s, true); err != nil {
		t.Fatalf("write err: %v", err)
	}
	back, err := stripset.Read(&b)
	if err != nil {
		t.Fatalf("read err: %v", err)
	}
	m1, err := slotline.NewMachineWithStrips(ms, s.Strips, core.Default(), 9)
	if err != nil {
		t.Fatalf("machine err: %v", err)
	}
	m2, err := slotline.NewMachineWithStrips(ms, back.Strips, core.Default(), 9)
	if err != nil {
		t.Fatalf("machine err: %v", err)
	}
	for i := 0; i < 50; i++ {
		if m1.Spin().TotalPayout != m2.Spin().TotalPayout {
			t.Fatalf("spin %d differs between original and imported strips", i)
		}
	}
}

func TestReadRejectsTamperedCounts(t *testing.T) {
	_, s := buildSet(t, 3)
	var b bytes.Buffer
	if err := stripset.Write(&b, s, false); err != nil {
		t.Fatalf("write err: %v", err)
	}
	// 把第一個 P4 換成 TEN，數量就和分布不符
	tampered := strings.Replace(b.String(), `"P4"`, `"TEN"`, 1)
	if _, err := stripset.Read(strings.NewReader(tampered)); !errs.IsConfiguration(err) {
		t.Fatalf("tampered counts should be a configuration error, got %v", err)
	}
	bad := strings.Replace(b.String(), `"P4"`, `"P9"`, 1)
	if _, err := stripset.Read(strings.NewReader(bad)); !errs.IsConfiguration(err) {
		t.Fatalf("unknown symbol should be a configuration error, got %v", err)
	}
	if _, err := stripset.New(spec.DefaultMachineSetting(), 1, s.Strips[:4]); !errs.IsConfiguration(err) {
		t.Fatalf("four strips should be rejected, got %v", err)
	}
}

func TestMatchesDetectsOtherSetting(t *testing.T) {
	_, s := buildSet(t, 8)
	d := 4
	other := &spec.MachineSetting{MinScatterDistance: &d}
	if err := s.Matches(other); !errs.IsConfiguration(err) {
		t.Fatalf("different min distance should not match, got %v", err)
	}
}

func TestReadRejectsOversizedInput(t *testing.T) {
	// 高壓縮比的空白：壓縮後很小，解開超過上限
	blank := bytes.Repeat([]byte{' '}, 4*stripset.MaxFileBytes)
	var zb bytes.Buffer
	zw, err := zstd.NewWriter(&zb)
	if err != nil {
		t.Fatalf("zstd writer err: %v", err)
	}
	if _, err := zw.Write(blank); err != nil {
		t.Fatalf("zstd write err: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zstd close err: %v", err)
	}
	if zb.Len() >= stripset.MaxFileBytes {
		t.Fatalf("compressed payload should be small, got %d bytes", zb.Len())
	}
	if _, err := stripset.Read(&zb); !errs.IsConfiguration(err) {
		t.Fatalf("oversized zstd input should be a configuration error, got %v", err)
	}

	plain := bytes.NewReader(append(blank[:stripset.MaxFileBytes], '{', '}'))
	if _, err := stripset.Read(plain); !errs.IsConfiguration(err) {
		t.Fatalf("oversized plain input should be a configuration error, got %v", err)
	}
}
