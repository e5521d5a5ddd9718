package archive

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// atomicWrite commits data to target so that target is only ever observed
// absent or complete. The data is written to a temporary file in the same
// directory as target (never a different mount, so the final rename stays
// atomic), flushed to durable storage, and then renamed onto target. After
// the rename the parent directory entry is synced as well, so the new name
// survives a power loss.
//
// On any failure the temporary file is removed and target is left untouched:
// either still absent, or still holding its previous complete content. A
// second call with the same target overwrites atomically, last writer wins.
// The parent directory must already exist.
func atomicWrite(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, filepath.Base(target)+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	name := tmp.Name()
	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if err2 := tmp.Close(); err == nil {
		err = err2
	}
	if err == nil {
		err = os.Rename(name, target)
	}
	if err != nil {
		os.Remove(name)
		return errors.Wrapf(err, "commit %s", filepath.Base(target))
	}
	return syncDir(dir)
}

// syncDir flushes the directory holding a just-renamed file. The rename
// itself can be durable while the directory's reference to the new name is
// not, until the directory is synced.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return errors.Wrap(err, "open directory for sync")
	}
	err = f.Sync()
	if err2 := f.Close(); err == nil {
		err = err2
	}
	return errors.Wrapf(err, "sync directory %s", dir)
}
