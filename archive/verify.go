package archive

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/archivedrop/archivedrop/util"
)

// VerifyResult reports an on-demand fixity check of one archived item.
type VerifyResult struct {
	ContentPath string `json:"content_path"`
	Size        int64  `json:"size"`
	Checksum    string `json:"checksum"` // the recorded checksum
	SizeOK      bool   `json:"size_ok"`
	ChecksumOK  bool   `json:"checksum_ok"`
}

// OK reports whether both the size and the checksum matched.
func (r VerifyResult) OK() bool { return r.SizeOK && r.ChecksumOK }

// Verify re-reads the content file described by the side-car at metaPath and
// compares its size and SHA256 checksum against the recorded values. The
// content file is located as a sibling of the side-car, so a relocated
// archive tree still verifies.
func Verify(metaPath string) (VerifyResult, error) {
	md, err := ReadMetadata(metaPath)
	if err != nil {
		return VerifyResult{}, err
	}
	contentPath := filepath.Join(filepath.Dir(metaPath), filepath.Base(md.StoragePath))
	result := VerifyResult{
		ContentPath: contentPath,
		Checksum:    md.Checksum,
	}

	goal, err := hex.DecodeString(md.Checksum)
	if err != nil {
		return result, errors.Wrap(err, "recorded checksum is not hex")
	}

	f, err := os.Open(contentPath)
	if err != nil {
		return result, errors.Wrap(err, "open content file")
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return result, errors.Wrap(err, "stat content file")
	}
	result.Size = fi.Size()
	result.SizeOK = fi.Size() == md.Size

	ok, err := util.VerifyStreamHash(f, goal)
	if err != nil {
		return result, errors.Wrap(err, "checksum content file")
	}
	result.ChecksumOK = ok
	return result, nil
}
