// Package validation holds the stateless checks applied to inbound voice
// messages before they reach the storage engine. The engine itself trusts
// its caller; these predicates are the adapter's gatekeeper.
package validation

import "github.com/pkg/errors"

// audioTypes maps each accepted MIME type to the file extension archived
// content of that type must use.
var audioTypes = map[string]string{
	"audio/ogg":   "ogg",
	"audio/mpeg":  "mp3",
	"audio/mp4":   "m4a",
	"audio/x-m4a": "m4a",
	"audio/wav":   "wav",
}

// ExtensionFor returns the archive file extension for a MIME type, and
// whether the type is supported at all.
func ExtensionFor(mimeType string) (string, bool) {
	ext, ok := audioTypes[mimeType]
	return ext, ok
}

// MimeAndExt checks that the MIME type is a supported audio type and that
// the extension agrees with it.
func MimeAndExt(mimeType, ext string) error {
	want, ok := audioTypes[mimeType]
	if !ok {
		return errors.Errorf("unsupported MIME type %q", mimeType)
	}
	if ext != want {
		return errors.Errorf("extension %q does not match MIME type %q", ext, mimeType)
	}
	return nil
}

// Size checks a byte count against the configured maximum. Zero and
// negative counts are rejected, they mean the size is unknown.
func Size(n, max int64) error {
	if n <= 0 {
		return errors.New("file size is unknown or empty")
	}
	if n > max {
		return errors.Errorf("file size %d exceeds the %d byte limit", n, max)
	}
	return nil
}
