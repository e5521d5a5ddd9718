// Package archive implements the atomic archival storage engine. Each saved
// message becomes two files under a date hierarchy: a content file holding
// the raw bytes, and a JSON metadata side-car recording size, checksum, and
// identifying fields. The engine guarantees that a reader never observes a
// partial file and that a metadata file exists only when its complete
// content file does, even across failed calls.
//
// The engine holds no in-process state and may be called concurrently; the
// filesystem rename is the only synchronization point, and calls with
// distinct stems never touch the same paths. It assumes a single-host
// POSIX-like filesystem where rename within a directory is atomic.
package archive

import "fmt"

// Kind tells whether an archived item is a text message or a voice
// recording. Its value appears in stems and in the metadata "type" field.
type Kind string

const (
	Text  Kind = "text"
	Audio Kind = "audio"
)

// Paths is the pair of files making up one archived item.
type Paths struct {
	Content  string
	Metadata string
}

// ErrorKind classifies a StorageError. Callers generally treat every kind
// the same way (the item could not be archived, tell the user, do not
// retry), but the kind makes failures safe to log without content.
type ErrorKind int

const (
	Unexpected ErrorKind = iota
	BaseDirMissing
	ContentWrite
	MetadataWrite
)

func (k ErrorKind) String() string {
	switch k {
	case BaseDirMissing:
		return "base directory missing"
	case ContentWrite:
		return "content write failed"
	case MetadataWrite:
		return "metadata write failed"
	default:
		return "unexpected storage failure"
	}
}

// A StorageError is the single error surface of the engine. Every failure
// inside a save is translated to one, with the underlying cause chained.
type StorageError struct {
	Kind ErrorKind
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsKind reports whether err is a StorageError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := err.(*StorageError)
	return ok && se.Kind == kind
}
