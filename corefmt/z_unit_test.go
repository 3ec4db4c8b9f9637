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

package corefmt

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/zintix-labs/slotline/errs"
	"pgregory.net/rapid"
)

func TestStatesRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "n")
		states := make([][]byte, n)
		for i := range states {
			states[i] = rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "state")
		}
		tok := EncodeStates(states)
		if strings.ContainsAny(tok, "+/=") {
			t.Fatalf("token must be url safe without padding: %q", tok)
		}
		back, err := DecodeStates(tok, n)
		if err != nil {
			t.Fatalf("decode err: %v", err)
		}
		if len(back) != n {
			t.Fatalf("got %d states want %d", len(back), n)
		}
		for i := range states {
			if !bytes.Equal(back[i], states[i]) {
				t.Fatalf("state %d differs", i)
			}
		}
	})
}

func TestDecodeStatesRejectsBadTokens(t *testing.T) {
	tok := EncodeStates([][]byte{{1, 2, 3}, {4}})
	if _, err := DecodeStates(tok, 5); !errs.IsInput(err) {
		t.Fatalf("wrong count should be an input error, got %v", err)
	}
	if _, err := DecodeStates("***", 0); !errs.IsInput(err) {
		t.Fatalf("non base64 should be an input error, got %v", err)
	}
	raw, _ := DecodeBase64URL(tok)
	if _, err := DecodeStates(EncodeBase64URL(raw[:len(raw)-1]), 2); !errs.IsInput(err) {
		t.Fatalf("truncated token should be an input error, got %v", err)
	}
	if _, err := DecodeStates(EncodeBase64URL(append(raw, 9)), 2); !errs.IsInput(err) {
		t.Fatalf("trailing bytes should be an input error, got %v", err)
	}
}

func TestBlobFrameStream(t *testing.T) {
	var b bytes.Buffer
	for _, p := range [][]byte{[]byte("alpha"), {}, []byte("gamma")} {
		if err := WriteBlobFrame(&b, p); err != nil {
			t.Fatalf("write err: %v", err)
		}
	}
	r := bufio.NewReader(&b)
	for _, want := range []string{"alpha", "", "gamma"} {
		got, err := ReadBlobFrame(r, 16)
		if err != nil {
			t.Fatalf("read err: %v", err)
		}
		if string(got) != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
	big := EncodeBlobFrame(make([]byte, 32))
	if _, err := ReadBlobFrame(bufio.NewReader(bytes.NewReader(big)), 16); !errs.IsInput(err) {
		t.Fatalf("oversized frame should be rejected, got %v", err)
	}
	p, used, err := DecodeBlobFrame(append(EncodeBlobFrame([]byte("xy")), 7, 7))
	if err != nil || string(p) != "xy" || used != 3 {
		t.Fatalf("decode frame got %q used %d err %v", p, used, err)
	}
}

func TestReplayTokenCarriesHeader(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := ReplayHeader{
			Seed:        rapid.Int64().Draw(t, "seed"),
			Fingerprint: rapid.Uint64().Draw(t, "fp"),
		}
		states := make([][]byte, 5)
		for i := range states {
			states[i] = rapid.SliceOfN(rapid.Byte(), 1, 32).Draw(t, "state")
		}
		tok := EncodeReplayToken(h, states)
		gotH, back, err := DecodeReplayToken(tok, 5)
		if err != nil {
			t.Fatalf("decode err: %v", err)
		}
		if gotH != h {
			t.Fatalf("header got %+v want %+v", gotH, h)
		}
		for i := range states {
			if !bytes.Equal(back[i], states[i]) {
				t.Fatalf("state %d differs", i)
			}
		}
	})
}

func TestDecodeReplayTokenRejectsStateToken(t *testing.T) {
	// 沒有 header 的 state token 不能當重播 token
	tok := EncodeStates([][]byte{{1, 2, 3}, {4}, {5}, {6}, {7}})
	if _, _, err := DecodeReplayToken(tok, 5); !errs.IsInput(err) {
		t.Fatalf("state token without header should be an input error, got %v", err)
	}
	good := EncodeReplayToken(ReplayHeader{Seed: 7, Fingerprint: 9}, [][]byte{{1}, {2}})
	if _, _, err := DecodeReplayToken(good, 5); !errs.IsInput(err) {
		t.Fatalf("wrong count should be an input error, got %v", err)
	}
	if _, _, err := DecodeReplayToken(good+"AA", 2); !errs.IsInput(err) {
		t.Fatalf("trailing bytes should be an input error, got %v", err)
	}
}
