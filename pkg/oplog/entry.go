// Package oplog journals the put/remove calls the concurrency stress test
// (pkg/avl's TestConcurrency_RandomPutRemoveAgainstOracle) issues against
// the map, so that a failing randomized run can be replayed deterministically
// outside the test binary. It is test/diagnostic tooling only — the map
// itself has no wire protocol or persisted state.
//
// The on-disk layout is a fixed 24-byte header (magic number, format
// version, entry type, sequence number, payload length, CRC32) followed by
// a payload, all little-endian.
package oplog

import (
	"encoding/binary"
	"io"
)

const (
	HeaderSize = 24 // fixed header size in bytes

	// Magic identifies a well-formed journal entry at the start of its header.
	Magic = 0xC0FFEE01

	// Version is the current on-disk format version.
	Version = 1
)

// OpType enumerates the operations the journal records.
type OpType uint8

const (
	OpPut OpType = iota + 1
	OpRemove
)

// Header is the fixed-size prefix of every journal entry.
type Header struct {
	Magic      uint32
	Version    uint8
	OpType     OpType
	Reserved   uint16 // padding/alignment
	Seq        uint64 // monotonic sequence number, analogous to the WAL's LSN
	PayloadLen uint32
	CRC32      uint32
}

// Entry is one journaled put/remove call.
type Entry struct {
	Header  Header
	Payload []byte
}

// Encode serializes the header into buf, which must be at least HeaderSize bytes.
func (h *Header) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	buf[4] = h.Version
	buf[5] = byte(h.OpType)
	binary.LittleEndian.PutUint16(buf[6:8], h.Reserved)
	binary.LittleEndian.PutUint64(buf[8:16], h.Seq)
	binary.LittleEndian.PutUint32(buf[16:20], h.PayloadLen)
	binary.LittleEndian.PutUint32(buf[20:24], h.CRC32)
}

// Decode deserializes a header from buf.
func (h *Header) Decode(buf []byte) {
	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = buf[4]
	h.OpType = OpType(buf[5])
	h.Reserved = binary.LittleEndian.Uint16(buf[6:8])
	h.Seq = binary.LittleEndian.Uint64(buf[8:16])
	h.PayloadLen = binary.LittleEndian.Uint32(buf[16:20])
	h.CRC32 = binary.LittleEndian.Uint32(buf[20:24])
}

// WriteTo serializes the entry (header + payload) to w and returns the
// number of bytes written.
func (e *Entry) WriteTo(w io.Writer) (int64, error) {
	e.Header.Magic = Magic
	e.Header.Version = Version
	e.Header.PayloadLen = uint32(len(e.Payload))
	e.Header.CRC32 = CalculateCRC32(e.Payload)

	var hdr [HeaderSize]byte
	e.Header.Encode(hdr[:])

	n, err := w.Write(hdr[:])
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(e.Payload)
	return int64(n + m), err
}

// EncodePutPayload packs a put(key, value) call for journaling:
// [4B keyLen][keyLen bytes fingerprint][4B valueLen][valueLen bytes value].
func EncodePutPayload(keyFingerprint []byte, value string) []byte {
	buf := make([]byte, 4+len(keyFingerprint)+4+len(value))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(keyFingerprint)))
	off := 4
	off += copy(buf[off:], keyFingerprint)
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(value)))
	off += 4
	copy(buf[off:], value)
	return buf
}

// EncodeRemovePayload packs a remove(key) call: [4B keyLen][keyLen bytes fingerprint].
func EncodeRemovePayload(keyFingerprint []byte) []byte {
	buf := make([]byte, 4+len(keyFingerprint))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(keyFingerprint)))
	copy(buf[4:], keyFingerprint)
	return buf
}

// DecodePayload unpacks either payload shape back into its fingerprint and,
// for OpPut, its value.
func DecodePayload(op OpType, payload []byte) (keyFingerprint []byte, value string, err error) {
	if len(payload) < 4 {
		return nil, "", io.ErrUnexpectedEOF
	}
	keyLen := binary.LittleEndian.Uint32(payload[0:4])
	off := 4
	if uint32(len(payload[off:])) < keyLen {
		return nil, "", io.ErrUnexpectedEOF
	}
	keyFingerprint = payload[off : off+int(keyLen)]
	off += int(keyLen)

	if op == OpRemove {
		return keyFingerprint, "", nil
	}

	if len(payload[off:]) < 4 {
		return nil, "", io.ErrUnexpectedEOF
	}
	valLen := binary.LittleEndian.Uint32(payload[off : off+4])
	off += 4
	if uint32(len(payload[off:])) < valLen {
		return nil, "", io.ErrUnexpectedEOF
	}
	value = string(payload[off : off+int(valLen)])
	return keyFingerprint, value, nil
}
