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

package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// Table 兩欄 key/value 表格，列依加入順序輸出
type Table struct {
	Title string
	rows  [][2]string
}

func NewTable(title string) *Table { return &Table{Title: title} }

// Add 加一列
func (t *Table) Add(key, val string) *Table {
	t.rows = append(t.rows, [2]string{key, val})
	return t
}

// Addf 值以千分位格式化
func (t *Table) Addf(key, format string, args ...any) *Table {
	return t.Add(key, message.NewPrinter(lang).Sprintf(format, args...))
}

// Len 列數
func (t *Table) Len() int { return len(t.rows) }

// String 畫出表格；欄寬以 runewidth 計算，標題置中
func (t *Table) String() string {
	kw, vw := 0, 0
	for _, r := range t.rows {
		kw = max(kw, runewidth.StringWidth(r[0]))
		vw = max(vw, runewidth.StringWidth(r[1]))
	}
	kw += 2
	vw += 2
	inner := kw + vw + 1
	if tw := runewidth.StringWidth(t.Title); tw > inner {
		vw += tw - inner
		inner = tw
	}

	edge := "+" + strings.Repeat("-", inner) + "+\n"
	sep := "+" + strings.Repeat("-", kw) + "+" + strings.Repeat("-", vw) + "+\n"

	var sb strings.Builder
	sb.WriteString(edge)
	sb.WriteString("|" + center(t.Title, inner) + "|\n")
	sb.WriteString(sep)
	for _, r := range t.rows {
		sb.WriteString("| " + runewidth.FillRight(r[0], kw-2) + " | " + runewidth.FillRight(r[1], vw-2) + " |\n")
	}
	sb.WriteString(sep)
	return sb.String()
}

// WriteTables 依序寫出，表格之間空一行
func WriteTables(w io.Writer, ts ...*Table) error {
	for _, t := range ts {
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	return nil
}

func center(s string, width int) string {
	pad := max(width-runewidth.StringWidth(s), 0)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
