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

// Package configs 內建的機台設定檔
package configs

import "embed"

// DefaultMachine 沒有指定機台時使用的名稱
const DefaultMachine = "classic-5x3"

// FS 內建設定（平面目錄，可直接交給 catalog.Load）
//
//go:embed *.yaml *.json
var FS embed.FS
