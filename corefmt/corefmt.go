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

// Package corefmt PRNG 快照的傳輸格式。
//
// 單一快照以長度前綴的 blob frame 表示：
//
//	frame := uvarint(len(payload)) || payload
//
// 一台機台的五個輪軸快照依序串成多個 frame，再以 base64url（無 padding）轉成可複製的 state token。
//
// 重播 token 在快照之前多一個 header frame，記錄建帶 seed 與輪帶指紋：
//
//	replay := frame(seed:int64 LE || fingerprint:uint64 LE) || uvarint(count) || frame...
package corefmt

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"io"

	"github.com/zintix-labs/slotline/errs"
)

// MaxStateBytes 解析 token 時單一 frame 的上限
const MaxStateBytes = 1 << 16

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.WrapInput(err, "decode base64url failed")
	}
	return b, nil
}

// AppendBlobFrame 把 payload 以 frame 形式接在 dst 後面
func AppendBlobFrame(dst []byte, payload []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(payload)))
	return append(dst, payload...)
}

// EncodeBlobFrame 單一 frame
func EncodeBlobFrame(payload []byte) []byte {
	return AppendBlobFrame(make([]byte, 0, binary.MaxVarintLen64+len(payload)), payload)
}

// DecodeBlobFrame 解出 frame 開頭的 payload（複本）與整個 frame 的長度
func DecodeBlobFrame(frame []byte) ([]byte, int, error) {
	n, size := binary.Uvarint(frame)
	if size <= 0 {
		return nil, 0, errs.Inputf("decode blob frame failed: invalid varint length")
	}
	if n > MaxStateBytes {
		return nil, 0, errs.Inputf("decode blob frame failed: payload of %d bytes exceeds %d", n, MaxStateBytes)
	}
	if uint64(len(frame)-size) < n {
		return nil, 0, errs.Inputf("decode blob frame failed: truncated payload")
	}
	end := size + int(n)
	out := make([]byte, n)
	copy(out, frame[size:end])
	return out, end, nil
}

// WriteBlobFrame 寫出一個 frame
func WriteBlobFrame(w io.Writer, payload []byte) error {
	if _, err := w.Write(EncodeBlobFrame(payload)); err != nil {
		return errs.Wrap(err, "write blob frame failed")
	}
	return nil
}

// ReadBlobFrame 讀一個 frame；maxBytes > 0 時限制 payload 大小
func ReadBlobFrame(r *bufio.Reader, maxBytes uint64) ([]byte, error) {
	ln, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, errs.Wrap(err, "read blob frame header failed")
	}
	if maxBytes > 0 && ln > maxBytes {
		return nil, errs.Inputf("read blob frame failed: payload exceeds %d bytes", maxBytes)
	}
	buf := make([]byte, ln)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errs.Wrap(err, "read blob frame payload failed")
	}
	return buf, nil
}

// EncodeStates 把多個快照（依輪軸順序）編成一個 state token
func EncodeStates(states [][]byte) string {
	return EncodeBase64URL(appendStates(nil, states))
}

// DecodeStates EncodeStates 的反向；want > 0 時檢查快照個數
func DecodeStates(token string, want int) ([][]byte, error) {
	raw, err := DecodeBase64URL(token)
	if err != nil {
		return nil, err
	}
	return decodeStates(raw, want)
}

// ReplayHeader 重播 token 的來源資訊
type ReplayHeader struct {
	Seed        int64  // 建帶 seed
	Fingerprint uint64 // 五條輪帶的指紋
}

const replayHeaderBytes = 16

// EncodeReplayToken header 加上快照
func EncodeReplayToken(h ReplayHeader, states [][]byte) string {
	hb := make([]byte, replayHeaderBytes)
	binary.LittleEndian.PutUint64(hb[:8], uint64(h.Seed))
	binary.LittleEndian.PutUint64(hb[8:], h.Fingerprint)
	raw := AppendBlobFrame(nil, hb)
	return EncodeBase64URL(appendStates(raw, states))
}

// DecodeReplayToken EncodeReplayToken 的反向；want > 0 時檢查快照個數
func DecodeReplayToken(token string, want int) (ReplayHeader, [][]byte, error) {
	raw, err := DecodeBase64URL(token)
	if err != nil {
		return ReplayHeader{}, nil, err
	}
	hb, used, err := DecodeBlobFrame(raw)
	if err != nil {
		return ReplayHeader{}, nil, err
	}
	if len(hb) != replayHeaderBytes {
		return ReplayHeader{}, nil, errs.Inputf("decode replay token failed: header of %d bytes, want %d", len(hb), replayHeaderBytes)
	}
	h := ReplayHeader{
		Seed:        int64(binary.LittleEndian.Uint64(hb[:8])),
		Fingerprint: binary.LittleEndian.Uint64(hb[8:]),
	}
	states, err := decodeStates(raw[used:], want)
	if err != nil {
		return ReplayHeader{}, nil, err
	}
	return h, states, nil
}

func appendStates(raw []byte, states [][]byte) []byte {
	raw = binary.AppendUvarint(raw, uint64(len(states)))
	for _, st := range states {
		raw = AppendBlobFrame(raw, st)
	}
	return raw
}

func decodeStates(raw []byte, want int) ([][]byte, error) {
	cnt, size := binary.Uvarint(raw)
	if size <= 0 {
		return nil, errs.Inputf("decode state token failed: missing count")
	}
	if want > 0 && cnt != uint64(want) {
		return nil, errs.Inputf("decode state token failed: %d states, want %d", cnt, want)
	}
	if cnt > uint64(len(raw)) {
		return nil, errs.Inputf("decode state token failed: count %d too large", cnt)
	}
	raw = raw[size:]
	out := make([][]byte, 0, cnt)
	for range cnt {
		st, used, err := DecodeBlobFrame(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
		raw = raw[used:]
	}
	if len(raw) != 0 {
		return nil, errs.Inputf("decode state token failed: %d trailing bytes", len(raw))
	}
	return out, nil
}
