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

// ops 開發用工作指令：
//
//	go run ./scripts test       # 全部測試，只印 ok / FAIL
//	go run ./scripts race       # 含 -race
//	go run ./scripts sim        # 預設機台跑一百萬局
//	go run ./scripts dump       # 匯出預設機台輪帶到 build/strips.json.zst
//	go run ./scripts profile    # cpu profile 到 build/profiling
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type task struct {
	name   string
	args   []string
	filter bool // 只顯示 ok / FAIL 行
}

var tasks = []task{
	{name: "test", args: []string{"test", "./...", "-cover", "-count=1"}, filter: true},
	{name: "race", args: []string{"test", "./...", "-race", "-count=1"}, filter: true},
	{name: "sim", args: []string{"run", "./cmd/sim", "-spins", "1000000", "-worker", "4"}},
	{name: "dump", args: []string{"run", "./cmd/sim", "-spins", "1", "-dump", "build/strips.json.zst"}},
	{name: "profile", args: []string{"run", "./cmd/sim", "-spins", "2000000", "-p", "cpu"}},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	for _, t := range tasks {
		if t.name == os.Args[1] {
			os.Exit(t.run())
		}
	}
	printColor(colorYellow, fmt.Sprintf("Unknown task: %s", os.Args[1]))
	printUsage()
	os.Exit(1)
}

func printUsage() {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.name
	}
	fmt.Printf("Usage: go run ./scripts [%s]\n", strings.Join(names, "|"))
}

func (t task) run() int {
	printColor(colorGreen, "running "+t.name)
	if strings.HasPrefix(t.name, "test") || t.name == "race" {
		// cache 清不掉不影響測試
		_ = exec.Command("go", "clean", "-testcache").Run()
	}
	cmd := exec.Command("go", t.args...)
	cmd.Stdin = os.Stdin
	if !t.filter {
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
		if err := cmd.Run(); err != nil {
			printColor(colorRed, err.Error())
			return 1
		}
		return 0
	}

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		printColor(colorRed, err.Error())
		return 1
	}
	// 編譯錯誤在 stderr
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		printColor(colorRed, fmt.Sprintf("Error starting go %s: %v", t.args[0], err))
		return 1
	}
	sc := bufio.NewScanner(pipe)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "ok"):
			printColor(colorGreen, line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			printColor(colorRed, line)
		}
	}
	if err := cmd.Wait(); err != nil {
		printColor(colorRed, "\nTests Finished with Errors")
		return 1
	}
	return 0
}

type ansiColor string

const (
	colorYellow ansiColor = "\033[33m"
	colorGreen  ansiColor = "\033[32m"
	colorRed    ansiColor = "\033[31m"
	colorReset  ansiColor = "\033[0m"
)

func printColor(c ansiColor, msg string) {
	fmt.Printf("%s%s%s\n", c, msg, colorReset)
}
