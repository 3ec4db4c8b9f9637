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

// Package errs 定義 slotline 共用的錯誤型別 *E。
//
// 每個錯誤帶兩個正交的標記：ErrLevel（多嚴重）與 Kind（哪一類問題）。
// 呼叫端用 IsConfiguration / IsInput 分流，不需比對訊息字串。
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLevel 嚴重度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

func (l ErrLevel) String() string {
	switch l {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	case Log:
		return "log"
	}
	return ""
}

// Kind 錯誤類別
type Kind uint8

const (
	KindNone Kind = iota
	// KindConfiguration 設定不可行（分布、輪帶間距、賠付線形狀），建構期同步回報且不重試。
	KindConfiguration
	// KindInput 執行期輸入不合法（押注不在選項內、餘額不足、token 壞掉），呼叫端修正後可重試。
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindInput:
		return "input"
	}
	return ""
}

// E 統一錯誤型別；Extra 是附加上下文，不影響主訊息
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

func (e *E) Error() string {
	var b strings.Builder
	b.WriteString("errlv=")
	b.WriteString(e.ErrLv.String())
	if e.Kind != KindNone {
		b.WriteString(" kind=")
		b.WriteString(e.Kind.String())
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)
	if e.Extra != "" {
		b.WriteString(" | extra: ")
		b.WriteString(e.Extra)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

func (e *E) Unwrap() error { return e.Cause }

// Is 對沒有訊息的哨兵只比 Kind，其餘比指標
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	if t.Message == "" && t.Kind != KindNone {
		return e.Kind == t.Kind
	}
	return e == t
}

// 哨兵：errors.Is(err, errs.ErrConfiguration)
var (
	ErrConfiguration = &E{Kind: KindConfiguration}
	ErrInput         = &E{Kind: KindInput}
)

func NewFatal(msg string) *E { return &E{Message: msg, ErrLv: Fatal} }

func NewWarn(msg string) *E { return &E{Message: msg, ErrLv: Warn} }

func Fatalf(format string, a ...any) *E { return NewFatal(fmt.Sprintf(format, a...)) }

func Warnf(format string, a ...any) *E { return NewWarn(fmt.Sprintf(format, a...)) }

// Configf 設定錯誤，一律 Fatal
func Configf(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Fatal, Kind: KindConfiguration}
}

// Inputf 輸入錯誤，一律 Warn
func Inputf(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Warn, Kind: KindInput}
}

// Wrap 包裝 cause。
//
// cause 鏈上有 *E 時沿用它的 ErrLv 與 Kind；否則（標準庫或三方錯誤）視為 Fatal、KindNone。
func Wrap(cause error, msg string) *E {
	r := &E{Message: msg, Cause: cause, ErrLv: Fatal}
	if inner, ok := AsErr(cause); ok {
		r.ErrLv, r.Kind = inner.ErrLv, inner.Kind
	}
	return r
}

// WrapConfig 包裝並標成 Fatal 的設定錯誤（例如設定檔解碼失敗）
func WrapConfig(cause error, msg string) *E {
	return &E{Message: msg, Cause: cause, ErrLv: Fatal, Kind: KindConfiguration}
}

// WrapInput 包裝並標成 Warn 的輸入錯誤（例如 token 無法解碼）
func WrapInput(cause error, msg string) *E {
	return &E{Message: msg, Cause: cause, ErrLv: Warn, Kind: KindInput}
}

// WrapWithExtra 同 Wrap，另附上下文
func WrapWithExtra(cause error, msg, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

// AsErr 取出錯誤鏈上第一個 *E
func AsErr(err error) (*E, bool) {
	var e *E
	ok := errors.As(err, &e)
	return e, ok
}

func IsConfiguration(err error) bool { return errors.Is(err, ErrConfiguration) }

func IsInput(err error) bool { return errors.Is(err, ErrInput) }
