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

package core

// RAND 轉輪與建帶用到的取樣方法
type RAND interface {
	Uint64() uint64
	Float64() float64 // [0,1)
	UintN(uint) uint  // [0,n)；n == 0 時為 0
	IntN(int) int     // [0,n)；n <= 0 時為 -1
}

// Restorable 狀態可序列化並還原
type Restorable interface {
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// PRNG 可取樣、可快照的亂數來源；一條輪軸持有一個
type PRNG interface {
	RAND
	Restorable
}

// PRNGFactory 由 seed 建立 PRNG。
//
// New(seed) 必須是決定性的：輪帶與盤面序列的重現都靠它。
type PRNGFactory interface {
	New(seed int64) PRNG
}

type pcgFactory struct{}

func (pcgFactory) New(seed int64) PRNG { return newPCG64WithSeed(seed) }

// Default PCG64 工廠
func Default() PRNGFactory { return pcgFactory{} }

// Shuffle Fisher-Yates 就地洗牌
func Shuffle[T any](r RAND, src []T) {
	for i := len(src) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// DeriveSeed 由母 seed 與序號派生子 seed（splitmix64），結果非負
func DeriveSeed(base int64, idx int) int64 {
	x := uint64(base) ^ (uint64(idx+1) * 0x9e3779b97f4a7c15)
	return int64(splitmix64(x) >> 1)
}
