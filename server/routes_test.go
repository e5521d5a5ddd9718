package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/archivedrop/archivedrop/archive"
)

// populate writes a few items through the real storage engine and returns a
// server over the resulting tree.
func populate(t *testing.T) *WebServer {
	t.Helper()
	root := t.TempDir()
	s := archive.NewStore(root)

	ts := time.Date(2025, 9, 25, 14, 30, 45, 0, time.UTC)
	if _, err := s.SaveText(111, 1, "the quick brown fox", ts, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveText(111, 2, "an unrelated note", ts.Add(time.Second), 0); err != nil {
		t.Fatal(err)
	}
	audio := []byte{0x4f, 0x67, 0x67, 0x53, 0, 1, 2, 3}
	other := time.Date(2025, 9, 26, 8, 0, 0, 0, time.UTC)
	if _, err := s.SaveAudio(111, 3, audio, "audio/ogg", "ogg", other, 0, 4); err != nil {
		t.Fatal(err)
	}

	return &WebServer{StorageDir: root, Validator: NewNobodyDecoder()}
}

func get(t *testing.T, h http.Handler, url string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type fileList struct {
	Count int     `json:"count"`
	Files []Entry `json:"files"`
}

func TestListFiles(t *testing.T) {
	ws := populate(t)
	h := ws.addRoutes()

	w := get(t, h, "/files", nil)
	if w.Code != 200 {
		t.Fatalf("Got status %d", w.Code)
	}
	var list fileList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 3 {
		t.Fatalf("Got %d files, expected 3", list.Count)
	}
	// newest first
	if !strings.HasSuffix(list.Files[0].Name, ".ogg") {
		t.Errorf("Got first entry %s, expected the newest (audio) item", list.Files[0].Name)
	}
	for _, e := range list.Files {
		if strings.HasSuffix(e.Name, ".json") {
			t.Errorf("side-car listed as primary artifact: %s", e.Name)
		}
		if !e.HasMeta {
			t.Errorf("entry %s missing its side-car", e.Name)
		}
	}
}

func TestListFilesFilters(t *testing.T) {
	ws := populate(t)
	h := ws.addRoutes()

	w := get(t, h, "/files?type=audio", nil)
	var list fileList
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 1 || list.Files[0].Kind != "audio" {
		t.Errorf("type filter: got %+v", list)
	}

	w = get(t, h, "/files?date=20250925", nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 2 {
		t.Errorf("date filter: got %d files, expected 2", list.Count)
	}

	// content search inside text items
	w = get(t, h, "/files?q=Quick+Brown", nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 1 || list.Files[0].MessageID != 1 {
		t.Errorf("search: got %+v", list)
	}

	w = get(t, h, "/files?limit=1", nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 1 {
		t.Errorf("limit: got %d files", list.Count)
	}

	w = get(t, h, "/files?limit=bogus", nil)
	if w.Code != 400 {
		t.Errorf("bad limit: got status %d", w.Code)
	}
}

func TestContentAndDownload(t *testing.T) {
	ws := populate(t)
	h := ws.addRoutes()
	name := "20250925143045-111-1-text.txt"

	w := get(t, h, "/files/"+name+"/content", nil)
	if w.Code != 200 {
		t.Fatalf("Got status %d", w.Code)
	}
	if w.Body.String() != "the quick brown fox" {
		t.Errorf("Got body %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Got Content-Type %s", ct)
	}

	w = get(t, h, "/files/"+name+"/download", nil)
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, name) {
		t.Errorf("Got Content-Disposition %s", cd)
	}
}

func TestMetadataEndpoint(t *testing.T) {
	ws := populate(t)
	h := ws.addRoutes()

	w := get(t, h, "/files/20250925143045-111-1-text.txt/metadata", nil)
	if w.Code != 200 {
		t.Fatalf("Got status %d", w.Code)
	}
	var md map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &md); err != nil {
		t.Fatal(err)
	}
	if md["type"] != "text" || md["chat_id"] != float64(111) {
		t.Errorf("Got metadata %v", md)
	}
	if _, ok := md["checksum"]; !ok {
		t.Error("metadata missing checksum")
	}
}

func TestFixityEndpoint(t *testing.T) {
	ws := populate(t)
	h := ws.addRoutes()

	w := get(t, h, "/fixity/20250925143045-111-1-text.txt", nil)
	if w.Code != 200 {
		t.Fatalf("Got status %d: %s", w.Code, w.Body.String())
	}
	var result archive.VerifyResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.OK() {
		t.Errorf("Got %+v, expected a clean verification", result)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ws := populate(t)
	h := ws.addRoutes()

	w := get(t, h, "/stats", nil)
	if w.Code != 200 {
		t.Fatalf("Got status %d", w.Code)
	}
	var stats Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Items != 3 {
		t.Errorf("Got %d items, expected 3", stats.Items)
	}
	if stats.ByType["text"] != 2 || stats.ByType["audio"] != 1 {
		t.Errorf("Got per-type counts %v", stats.ByType)
	}
	if stats.ByDay["20250925"] != 2 || stats.ByDay["20250926"] != 1 {
		t.Errorf("Got per-day counts %v", stats.ByDay)
	}
	if stats.TotalBytes == 0 {
		t.Error("total bytes should not be zero")
	}
}

func TestUnknownAndForeignNames(t *testing.T) {
	ws := populate(t)
	h := ws.addRoutes()

	for _, url := range []string{
		"/files/20250925143045-111-9-text.txt/content", // never archived
		"/files/notafilename.txt/content",
		"/files/20250925143045-111-1-text.json/content", // side-car is not content
		"/fixity/notafilename.txt",
	} {
		if w := get(t, h, url, nil); w.Code != 404 {
			t.Errorf("%s: got status %d, expected 404", url, w.Code)
		}
	}
}

func TestTokenAuth(t *testing.T) {
	ws := populate(t)
	td, err := NewListDecoder(strings.NewReader(
		"viewer read  token-read\nindexer mdonly token-md\n"))
	if err != nil {
		t.Fatal(err)
	}
	ws.Validator = td
	h := ws.addRoutes()

	// no token
	if w := get(t, h, "/files", nil); w.Code != 401 {
		t.Errorf("unauthenticated list: got %d, expected 401", w.Code)
	}
	// welcome page needs no token
	if w := get(t, h, "/", nil); w.Code != 200 {
		t.Errorf("welcome: got %d", w.Code)
	}
	// mdonly can list but not read content
	md := map[string]string{"X-Api-Key": "token-md"}
	if w := get(t, h, "/files", md); w.Code != 200 {
		t.Errorf("mdonly list: got %d", w.Code)
	}
	if w := get(t, h, "/files/20250925143045-111-1-text.txt/content", md); w.Code != 401 {
		t.Errorf("mdonly content: got %d, expected 401", w.Code)
	}
	// read role can do both
	rd := map[string]string{"X-Api-Key": "token-read"}
	if w := get(t, h, "/files/20250925143045-111-1-text.txt/content", rd); w.Code != 200 {
		t.Errorf("read content: got %d", w.Code)
	}
}

func TestWelcomeJSON(t *testing.T) {
	ws := populate(t)
	h := ws.addRoutes()
	w := get(t, h, "/", map[string]string{"Accept-Encoding": "application/json"})
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["service"] != "archivedrop" {
		t.Errorf("Got %v", body)
	}
}
