package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/antonholmquist/jason"
	raven "github.com/getsentry/raven-go"
	"github.com/julienschmidt/httprouter"

	"github.com/archivedrop/archivedrop/archive"
	"github.com/archivedrop/archivedrop/naming"
)

// ListFilesHandler handles GET /files. Query parameters: date (YYYYMMDD),
// type (text|audio), q (search text), limit.
func (ws *WebServer) ListFilesHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q := Query{
		Date: r.FormValue("date"),
		Kind: r.FormValue("type"),
		Text: r.FormValue("q"),
	}
	if s := r.FormValue("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			w.WriteHeader(400)
			fmt.Fprintln(w, "bad limit")
			return
		}
		q.Limit = n
	}
	entries, err := scanTree(ws.StorageDir, q)
	if err != nil {
		raven.CaptureError(err, nil)
		w.WriteHeader(500)
		fmt.Fprintln(w, err.Error())
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(entries),
		"files": entries,
	})
}

// MetadataHandler handles GET /files/:name/metadata. It returns the item's
// side-car record. The side-car is parsed rather than passed through, so a
// corrupt file turns into an error instead of garbage output.
func (ws *WebServer) MetadataHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, metaPath, ok := ws.resolve(ps.ByName("name"))
	if !ok {
		w.WriteHeader(404)
		fmt.Fprintln(w, "no such item")
		return
	}
	f, err := os.Open(metaPath)
	if err != nil {
		w.WriteHeader(404)
		fmt.Fprintln(w, "no such item")
		return
	}
	defer f.Close()
	obj, err := jason.NewObjectFromReader(f)
	if err != nil {
		raven.CaptureError(err, map[string]string{"path": metaPath})
		w.WriteHeader(500)
		fmt.Fprintln(w, "unreadable metadata")
		return
	}
	buf, err := obj.Marshal()
	if err != nil {
		w.WriteHeader(500)
		fmt.Fprintln(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(buf)
}

// ContentHandler handles GET /files/:name/content. Text items are served
// inline as text/plain; audio is served with the MIME type recorded in the
// side-car.
func (ws *WebServer) ContentHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	contentPath, metaPath, ok := ws.resolve(ps.ByName("name"))
	if !ok {
		w.WriteHeader(404)
		fmt.Fprintln(w, "no such item")
		return
	}
	if _, err := os.Stat(contentPath); err != nil {
		w.WriteHeader(404)
		fmt.Fprintln(w, "no such item")
		return
	}
	if mime := recordedMimeType(metaPath); mime != "" {
		w.Header().Set("Content-Type", mime)
	}
	http.ServeFile(w, r, contentPath)
}

// DownloadHandler handles GET /files/:name/download, forcing an attachment
// disposition so browsers save rather than play the file.
func (ws *WebServer) DownloadHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	contentPath, _, ok := ws.resolve(ps.ByName("name"))
	if !ok {
		w.WriteHeader(404)
		fmt.Fprintln(w, "no such item")
		return
	}
	if _, err := os.Stat(contentPath); err != nil {
		w.WriteHeader(404)
		fmt.Fprintln(w, "no such item")
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(contentPath)))
	http.ServeFile(w, r, contentPath)
}

// FixityHandler handles GET /fixity/:name, re-checksumming one archived item
// against its side-car on demand.
func (ws *WebServer) FixityHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, metaPath, ok := ws.resolve(ps.ByName("name"))
	if !ok {
		w.WriteHeader(404)
		fmt.Fprintln(w, "no such item")
		return
	}
	if _, err := os.Stat(metaPath); err != nil {
		w.WriteHeader(404)
		fmt.Fprintln(w, "no such item")
		return
	}
	result, err := archive.Verify(metaPath)
	if err != nil {
		raven.CaptureError(err, map[string]string{"path": metaPath})
		w.WriteHeader(500)
		fmt.Fprintln(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(result)
}

// Stats summarizes the whole archive tree.
type Stats struct {
	Items      int            `json:"items"`
	TotalBytes int64          `json:"total_bytes"`
	ByType     map[string]int `json:"by_type"`
	ByDay      map[string]int `json:"by_day"`
}

// StatsHandler handles GET /stats. Counts and sizes come from the metadata
// side-cars, so a content file missing its record is not counted.
func (ws *WebServer) StatsHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stats := Stats{
		ByType: make(map[string]int),
		ByDay:  make(map[string]int),
	}
	err := filepath.Walk(ws.StorageDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		si, ok := naming.ParseStem(info.Name())
		if !ok || si.Ext != "json" {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		obj, err := jason.NewObjectFromReader(f)
		f.Close()
		if err != nil {
			raven.CaptureError(err, map[string]string{"path": path})
			return nil
		}
		stats.Items++
		if size, err := obj.GetInt64("size"); err == nil {
			stats.TotalBytes += size
		}
		if kind, err := obj.GetString("type"); err == nil {
			stats.ByType[kind]++
		}
		stats.ByDay[si.Stem[:8]]++
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		raven.CaptureError(err, nil)
		w.WriteHeader(500)
		fmt.Fprintln(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(stats)
}
