package wal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/hivellm/synap/internal/durability"
)

func opTagFromByte(b byte) durability.OpTag { return durability.OpTag(b) }

// Record layout: length:u32_le | crc32:u32_le | body,
// body := op_tag:u8 | op_version:u8 | op_payload. CRC covers the body only.
const frameHeaderSize = 8 // length(4) + crc32(4)

func encodeEntryFrame(e *Entry) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("wal: entry is nil")
	}

	body := make([]byte, 0, 2+len(e.Payload))
	body = append(body, byte(e.OpTag), e.OpVersion)
	body = append(body, e.Payload...)

	crc := crc32.ChecksumIEEE(body)
	length := uint32(len(body))

	out := make([]byte, 0, frameHeaderSize+len(body))
	var lenBuf, crcBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], length)
	binary.LittleEndian.PutUint32(crcBuf[:], crc)
	out = append(out, lenBuf[:]...)
	out = append(out, crcBuf[:]...)
	out = append(out, body...)
	return out, nil
}

// decodeEntryFrame parses one record's body (post length/crc-prefix
// validation, which the reader performs since it needs the declared
// length to know how many bytes to read).
func decodeEntryFrame(body []byte) (*Entry, error) {
	if len(body) < 2 {
		return nil, ErrCorruptedEntry
	}
	return &Entry{
		OpTag:     opTagFromByte(body[0]),
		OpVersion: body[1],
		Payload:   append([]byte(nil), body[2:]...),
	}, nil
}
