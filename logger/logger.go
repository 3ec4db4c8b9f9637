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

// Package logger 依指令列的 -log 模式組裝 *slog.Logger。
//
// 模擬器的 worker 會並發寫 log，可用 Install(mode, true) 改走 Queued：
// Handle 只入列，由單一 goroutine 依序寫出，佇列滿了就丟棄並計數。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/slotline/errs"
)

// LogMode 預設組態
type LogMode uint8

const (
	ModeDev     LogMode = iota // text, stderr, debug
	ModeProd                   // json, stdout, info
	ModeSilence                // 全部丟棄
	ModeConsole                // text, stderr, warn：互動遊戲用，不干擾畫面
)

var modeNames = map[LogMode]string{
	ModeDev:     "dev",
	ModeProd:    "prod",
	ModeSilence: "silence",
	ModeConsole: "console",
}

// ParseMode 解析 -log 參數；空字串視為 dev
func ParseMode(s string) (LogMode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "":
		return ModeDev, nil
	case "silent", "off":
		return ModeSilence, nil
	}
	for m, name := range modeNames {
		if name == key {
			return m, nil
		}
	}
	return ModeDev, errs.Inputf("unknown log mode %q (dev|prod|console|silence)", s)
}

func (m LogMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Handler 依模式建立 handler；w 為 nil 時寫到該模式的預設輸出
func Handler(mode LogMode, w io.Writer) slog.Handler {
	out := func(def io.Writer) io.Writer {
		if w == nil {
			return def
		}
		return w
	}
	switch mode {
	case ModeProd:
		return slog.NewJSONHandler(out(os.Stdout), &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})
	case ModeConsole:
		return slog.NewTextHandler(out(os.Stderr), &slog.HandlerOptions{Level: slog.LevelWarn})
	default:
		return slog.NewTextHandler(out(os.Stderr), &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// New 依模式建立 Logger
func New(mode LogMode, w io.Writer) *slog.Logger { return slog.New(Handler(mode, w)) }

// Install 解析模式並設為 slog 預設 Logger。
//
// queued 為 true 時改用 Queued；回傳的 stop 會把佇列寫完，程式結束前呼叫。
func Install(mode string, queued bool) (stop func(), err error) {
	m, err := ParseMode(mode)
	if err != nil {
		return func() {}, err
	}
	h := Handler(m, nil)
	if !queued {
		slog.SetDefault(slog.New(h))
		return func() {}, nil
	}
	q := NewQueued(h, 0)
	slog.SetDefault(slog.New(q))
	return q.Close, nil
}

const defaultQueue = 1024

// Queued 非阻塞 handler。
//
// 佇列滿了或 Close 之後的紀錄直接丟棄並計數。next 的寫出錯誤被忽略。
type Queued struct {
	next slog.Handler
	q    *queue
}

// 同一個 Queued 經 WithAttrs / WithGroup 衍生的 handler 共用 queue
type queue struct {
	entries chan entry
	done    chan struct{}
	stop    sync.Once
	drained sync.WaitGroup
	dropped atomic.Uint64
}

type entry struct {
	ctx context.Context
	rec slog.Record
	to  slog.Handler
}

// NewQueued size <= 0 時用 1024
func NewQueued(next slog.Handler, size int) *Queued {
	if next == nil {
		next = Handler(ModeDev, nil)
	}
	if size <= 0 {
		size = defaultQueue
	}
	q := &queue{entries: make(chan entry, size), done: make(chan struct{})}
	q.drained.Add(1)
	go q.run()
	return &Queued{next: next, q: q}
}

func (q *queue) run() {
	defer q.drained.Done()
	write := func(e entry) { _ = e.to.Handle(e.ctx, e.rec) }
	for {
		select {
		case e := <-q.entries:
			write(e)
		case <-q.done:
			for {
				select {
				case e := <-q.entries:
					write(e)
				default:
					return
				}
			}
		}
	}
}

// Dropped 被丟棄的紀錄數
func (h *Queued) Dropped() uint64 { return h.q.dropped.Load() }

// Close 停止收新紀錄並寫完佇列；可重複呼叫
func (h *Queued) Close() {
	h.q.stop.Do(func() { close(h.q.done) })
	h.q.drained.Wait()
}

func (h *Queued) Enabled(ctx context.Context, l slog.Level) bool { return h.next.Enabled(ctx, l) }

func (h *Queued) Handle(ctx context.Context, r slog.Record) error {
	select {
	case <-h.q.done:
		h.q.dropped.Add(1)
		return nil
	default:
	}
	// Record 跨 goroutine 前要 Clone
	select {
	case h.q.entries <- entry{ctx: ctx, rec: r.Clone(), to: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *Queued) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Queued{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *Queued) WithGroup(name string) slog.Handler {
	return &Queued{next: h.next.WithGroup(name), q: h.q}
}
