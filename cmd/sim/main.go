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

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/slotline/sdk/perf"
)

// makefile runner
func main() {
	stop := bindVar()
	path, err := perf.Run(executeSimulator, cfg.pprofmode, cfg.pprofdir)
	stop()
	if err != nil {
		slog.Error("simulation failed", "err", err)
		os.Exit(1)
	}
	if path != "" {
		fmt.Fprintf(os.Stderr, "profile written to %s\n", path)
	}
}
