package server

import (
	"html/template"
	"net/http"
	"os"

	"github.com/antonholmquist/jason"
	"github.com/julienschmidt/httprouter"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<head><title>ArchiveDrop</title></head>
<body>
<h1>ArchiveDrop ({{ .Version }})</h1>
<p>Read-only archive interface.</p>
<ul>
<li>GET /files &mdash; list and search archived items</li>
<li>GET /files/{name}/metadata &mdash; metadata side-car</li>
<li>GET /files/{name}/content &mdash; preview content</li>
<li>GET /files/{name}/download &mdash; download content</li>
<li>GET /fixity/{name} &mdash; verify checksum</li>
<li>GET /stats &mdash; archive totals</li>
</ul>
</body>
</html>
`))

// WelcomeHandler handles GET /, identifying the service as HTML or JSON.
func (ws *WebServer) WelcomeHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	writeHTMLorJSON(w, r, welcomeTemplate, struct {
		Service string `json:"service"`
		Version string `json:"version"`
	}{
		Service: "archivedrop",
		Version: Version,
	})
}

// recordedMimeType reads the mime_type field from a side-car, returning ""
// when the side-car is missing or unreadable.
func recordedMimeType(metaPath string) string {
	f, err := os.Open(metaPath)
	if err != nil {
		return ""
	}
	defer f.Close()
	obj, err := jason.NewObjectFromReader(f)
	if err != nil {
		return ""
	}
	mime, err := obj.GetString("mime_type")
	if err != nil {
		return ""
	}
	return mime
}
