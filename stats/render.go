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
	"encoding/json"
	"io"
	"strings"

	"github.com/zintix-labs/slotline/errs"
	"gopkg.in/yaml.v3"
)

// Format 報表輸出格式
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat 不分大小寫；未知格式回傳輸入錯誤
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", errs.Inputf("unknown output %q (table|json|yaml)", s)
}

// Report 可輸出的報表（StatReport、PlayerEstimate）
type Report interface {
	Tables() []*Table
}

// Write 依格式輸出 r；StatReport 會先 Done
func Write(w io.Writer, f Format, r Report) error {
	if d, ok := r.(interface{ Done() }); ok {
		d.Done()
	}
	switch f {
	case FormatJSON:
		return json.NewEncoder(w).Encode(r)
	case FormatYAML:
		return writeYAML(w, r)
	default:
		return WriteTables(w, r.Tables()...)
	}
}

// writeYAML 純量陣列以 flow style 輸出：[a, b, c]
func writeYAML(w io.Writer, v any) error {
	var doc yaml.Node
	if err := doc.Encode(v); err != nil {
		return errs.Wrap(err, "encode yaml report failed")
	}
	flowScalars(&doc)
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(&doc); err != nil {
		_ = enc.Close()
		return errs.Wrap(err, "write yaml report failed")
	}
	return enc.Close()
}

func flowScalars(n *yaml.Node) {
	nested := false
	for _, c := range n.Content {
		flowScalars(c)
		if c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode {
			nested = true
		}
	}
	if n.Kind == yaml.SequenceNode && !nested {
		n.Style = yaml.FlowStyle
	}
}
