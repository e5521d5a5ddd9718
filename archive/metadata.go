package archive

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Metadata is the side-car record written next to every content file. The
// JSON field names are a stable contract with the read layer and must not
// change. The record never contains message content, and carries no PII
// beyond the numeric ids (the sender id only when the store opts in).
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	ChatID      int64     `json:"chat_id"`
	MessageID   int64     `json:"message_id"`
	Type        Kind      `json:"type"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mime_type"`
	Checksum    string    `json:"checksum"` // lowercase hex SHA256 of the content bytes
	StoragePath string    `json:"storage_path"`
	Duration    *int      `json:"duration,omitempty"` // seconds, audio only
	SenderID    *int64    `json:"sender_id,omitempty"`
}

func (m *Metadata) encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ReadMetadata loads and decodes the side-car at path.
func ReadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read metadata")
	}
	md := new(Metadata)
	if err := json.Unmarshal(data, md); err != nil {
		return nil, errors.Wrapf(err, "decode metadata %s", path)
	}
	return md, nil
}
