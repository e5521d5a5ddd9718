package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// A HashWriter wraps an io.Writer and computes the SHA256 hash of the bytes
// written through it. The archive uses it on the write path so the recorded
// checksum is always taken over exactly the bytes that reach the disk.
type HashWriter struct {
	io.Writer // our io.MultiWriter
	sha256    hash.Hash
}

// NewHashWriter returns a HashWriter wrapping w.
func NewHashWriter(w io.Writer) *HashWriter {
	hw := &HashWriter{sha256: sha256.New()}
	hw.Writer = io.MultiWriter(w, hw.sha256)
	return hw
}

// NewHashWriterPlain returns a HashWriter that does not wrap an output
// stream. It just computes the checksum of the data written to it.
func NewHashWriterPlain() *HashWriter {
	hw := &HashWriter{sha256: sha256.New()}
	hw.Writer = hw.sha256
	return hw
}

// Sum returns the SHA256 hash of everything written so far.
func (hw *HashWriter) Sum() []byte {
	return hw.sha256.Sum(nil)
}

// SumHex returns the SHA256 hash as a lowercase hex string, the form stored
// in metadata records.
func (hw *HashWriter) SumHex() string {
	return hex.EncodeToString(hw.Sum())
}

// CheckSHA256 compares the hash of the written data against goal. An empty
// goal is treated as matching. The computed hash is returned either way.
func (hw *HashWriter) CheckSHA256(goal []byte) ([]byte, bool) {
	computed := hw.Sum()
	return computed, len(goal) == 0 || bytes.Equal(goal, computed)
}

// VerifyStreamHash checksums the given io.Reader and compares the result
// against the provided SHA256 checksum. It returns true if they match. The
// reader is not closed when finished.
func VerifyStreamHash(r io.Reader, sha256goal []byte) (bool, error) {
	hw := NewHashWriterPlain()
	_, err := io.Copy(hw, r)
	if err != nil {
		return false, err
	}
	_, ok := hw.CheckSHA256(sha256goal)
	return ok, nil
}
