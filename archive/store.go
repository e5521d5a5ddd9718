package archive

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/archivedrop/archivedrop/naming"
	"github.com/archivedrop/archivedrop/util"
)

// A Store archives message content under the date hierarchy rooted at Root.
// The zero IncludeSender keeps sender ids out of metadata records, which is
// the default privacy posture. A Store holds no other state and is safe for
// concurrent use.
type Store struct {
	Root          string
	IncludeSender bool
}

// NewStore returns a Store rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// SaveText archives a text message. The text is stored UTF-8 encoded with a
// "txt" extension and a "text/plain" MIME type. The timestamp is the
// caller's, not regenerated at write time. It returns the pair of files
// written, or a *StorageError.
func (s *Store) SaveText(chatID, messageID int64, text string, ts time.Time, senderID int64) (Paths, error) {
	return s.save(item{
		chatID:    chatID,
		messageID: messageID,
		kind:      Text,
		content:   []byte(text),
		mimeType:  "text/plain",
		ext:       "txt",
		ts:        ts,
		senderID:  senderID,
	})
}

// SaveAudio archives a voice recording. The caller supplies the already
// validated MIME type and file extension. A duration of zero or less is
// treated as unknown and left out of the metadata.
func (s *Store) SaveAudio(chatID, messageID int64, data []byte, mimeType, ext string, ts time.Time, senderID int64, duration int) (Paths, error) {
	return s.save(item{
		chatID:    chatID,
		messageID: messageID,
		kind:      Audio,
		content:   data,
		mimeType:  mimeType,
		ext:       ext,
		ts:        ts,
		senderID:  senderID,
		duration:  duration,
	})
}

type item struct {
	chatID    int64
	messageID int64
	kind      Kind
	content   []byte
	mimeType  string
	ext       string
	ts        time.Time
	senderID  int64
	duration  int
}

// save performs the two-phase commit: content file first, metadata side-car
// second. Metadata is never written unless the content commit succeeded, and
// if the metadata commit fails the content file is deleted again before the
// error propagates, so "metadata exists iff content exists" holds even on
// failure. A stem collision silently overwrites the previous item.
func (s *Store) save(it item) (Paths, error) {
	if _, err := os.Stat(s.Root); err != nil {
		return Paths{}, &StorageError{
			Kind: BaseDirMissing,
			Err:  errors.Wrapf(err, "base storage directory does not exist: %s", s.Root),
		}
	}

	stem := naming.BuildStem(it.ts, it.chatID, it.messageID, string(it.kind))
	contentPath, metaPath := naming.BuildPaths(s.Root, naming.DateOf(it.ts), stem, it.ext)

	if err := os.MkdirAll(filepath.Dir(contentPath), 0775); err != nil {
		return Paths{}, &StorageError{
			Kind: ContentWrite,
			Err:  errors.Wrap(err, "create date directory"),
		}
	}

	// checksum the exact bytes going to disk
	hw := util.NewHashWriterPlain()
	hw.Write(it.content)

	if err := atomicWrite(contentPath, it.content); err != nil {
		return Paths{}, &StorageError{Kind: ContentWrite, Err: err}
	}

	md := Metadata{
		Timestamp:   it.ts,
		ChatID:      it.chatID,
		MessageID:   it.messageID,
		Type:        it.kind,
		Size:        int64(len(it.content)),
		MimeType:    it.mimeType,
		Checksum:    hw.SumHex(),
		StoragePath: contentPath,
	}
	if it.kind == Audio && it.duration > 0 {
		d := it.duration
		md.Duration = &d
	}
	if s.IncludeSender && it.senderID != 0 {
		id := it.senderID
		md.SenderID = &id
	}

	buf, err := md.encode()
	if err != nil {
		// the record is plain data, this should not happen
		os.Remove(contentPath)
		return Paths{}, &StorageError{Kind: Unexpected, Err: errors.Wrap(err, "encode metadata")}
	}
	if err := atomicWrite(metaPath, buf); err != nil {
		// roll back the content file so no orphan outlives the call
		os.Remove(contentPath)
		return Paths{}, &StorageError{Kind: MetadataWrite, Err: err}
	}

	return Paths{Content: contentPath, Metadata: metaPath}, nil
}
