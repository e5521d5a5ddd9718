package server

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/archivedrop/archivedrop/naming"
)

// An Entry is one archived item discovered in the storage tree: the primary
// content file plus, usually, its metadata side-car. Files sharing a stem
// are grouped into one Entry; the `.json` side-car is never the primary
// artifact.
type Entry struct {
	Stem      string    `json:"stem"`
	Name      string    `json:"name"` // primary file name
	Path      string    `json:"path"` // relative to the storage root
	Kind      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ChatID    int64     `json:"chat_id"`
	MessageID int64     `json:"message_id"`
	Size      int64     `json:"size"`
	HasMeta   bool      `json:"has_metadata"`
}

// A Query filters a storage scan.
type Query struct {
	Date  string // "YYYYMMDD", matches the stem's date prefix
	Kind  string // "text" or "audio", empty for both
	Text  string // substring of the file name or of text content
	Limit int    // maximum entries returned, 0 means the default of 100
}

const defaultScanLimit = 100

// searchableSize caps how large a text file we are willing to read while
// searching content.
const searchableSize = 256 * 1024

// scanTree walks the archive tree, groups files by stem, and returns the
// entries matching q, newest first. Files whose names the archive did not
// produce are skipped.
func scanTree(root string, q Query) ([]Entry, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	byStem := make(map[string]*Entry)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		name := info.Name()
		si, ok := naming.ParseStem(name)
		if !ok {
			return nil
		}
		e := byStem[si.Stem]
		if e == nil {
			e = &Entry{Stem: si.Stem}
			byStem[si.Stem] = e
		}
		if si.Ext == "json" {
			e.HasMeta = true
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = name
		}
		e.Name = name
		e.Path = filepath.ToSlash(rel)
		e.Kind = si.Kind
		e.Timestamp = si.Timestamp
		e.ChatID = si.ChatID
		e.MessageID = si.MessageID
		e.Size = info.Size()
		return nil
	})
	if err != nil {
		return nil, err
	}

	var result []Entry
	for _, e := range byStem {
		if e.Name == "" {
			// side-car with no primary file; the engine never leaves
			// these behind, so don't list it as an item
			continue
		}
		if !matches(root, e, q) {
			continue
		}
		result = append(result, *e)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].Stem > result[j].Stem
	})

	limit := q.Limit
	if limit <= 0 {
		limit = defaultScanLimit
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func matches(root string, e *Entry, q Query) bool {
	if q.Date != "" && !strings.HasPrefix(e.Stem, q.Date) {
		return false
	}
	if q.Kind != "" && e.Kind != q.Kind {
		return false
	}
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(q.Text)
	if strings.Contains(strings.ToLower(e.Name), needle) {
		return true
	}
	// fall back to content search for small text items
	if e.Kind == "text" && e.Size <= searchableSize {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(e.Path)))
		if err == nil && strings.Contains(strings.ToLower(string(data)), needle) {
			return true
		}
	}
	return false
}

// resolve maps a file name from the URL back to its location in the date
// hierarchy. Only names the archive itself produced resolve; anything else,
// including traversal attempts, is rejected.
func (ws *WebServer) resolve(name string) (contentPath, metaPath string, ok bool) {
	if name != filepath.Base(name) {
		return "", "", false
	}
	si, ok := naming.ParseStem(name)
	if !ok || si.Ext == "json" {
		return "", "", false
	}
	contentPath, metaPath = naming.BuildPaths(ws.StorageDir,
		naming.DateOf(si.Timestamp), si.Stem, si.Ext)
	return contentPath, metaPath, true
}
