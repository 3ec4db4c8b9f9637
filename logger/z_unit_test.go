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

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]LogMode{"": ModeDev, "DEV": ModeDev, "prod": ModeProd, "off": ModeSilence, "console": ModeConsole}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("loud"); err == nil {
		t.Fatalf("unknown mode must fail")
	}
}

func TestModeLevels(t *testing.T) {
	var b bytes.Buffer
	l := New(ModeConsole, &b)
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	if strings.Contains(b.String(), "hidden") || !strings.Contains(b.String(), "shown") {
		t.Fatalf("console mode should only keep warn and above: %q", b.String())
	}

	b.Reset()
	New(ModeProd, &b).Info("spin", "machine", "classic-5x3")
	var rec map[string]any
	if err := json.Unmarshal(b.Bytes(), &rec); err != nil {
		t.Fatalf("prod mode should write json: %v (%q)", err, b.String())
	}
	if rec["machine"] != "classic-5x3" {
		t.Fatalf("attr missing: %v", rec)
	}
	if New(ModeSilence, nil).Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("silence mode must drop everything")
	}
}

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestQueuedDrainsOnClose(t *testing.T) {
	out := &lockedBuffer{}
	ah := NewQueued(slog.NewTextHandler(out, nil), 64)
	l := slog.New(ah).With("machine", "m1")
	for i := 0; i < 10; i++ {
		l.Info("round", "i", i)
	}
	ah.Close()
	if got := strings.Count(out.String(), "machine=m1"); got+int(ah.Dropped()) != 10 {
		t.Fatalf("written %d + dropped %d should be 10", got, ah.Dropped())
	}
	l.Info("after close")
	if strings.Contains(out.String(), "after close") {
		t.Fatalf("records after Close must be dropped")
	}
	ah.Close()
}

func TestInstallSetsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	stop, err := Install("silence", true)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, ok := slog.Default().Handler().(*Queued); !ok {
		t.Fatalf("queued install should wrap the handler, got %T", slog.Default().Handler())
	}
	slog.Info("dropped by level")
	stop()
	stop()

	if _, err := Install("loud", false); err == nil {
		t.Fatalf("unknown mode must fail")
	}
	if ModeConsole.String() != "console" || LogMode(9).String() != "unknown" {
		t.Fatalf("mode names: %s %s", ModeConsole, LogMode(9))
	}
}
