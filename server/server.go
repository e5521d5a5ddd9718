// Package server implements the read-only web interface over an archive
// tree. It lists, searches, previews, verifies, and downloads archived
// items. It never writes to the tree: the storage engine owns all writes,
// and the `.json` side-cars are treated as metadata only, never as primary
// content.
package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/facebookgo/httpdown"
	"github.com/julienschmidt/httprouter"
)

// Version of the server. Overridden at build time.
var Version = "devel"

// A WebServer serves the read-only API for one archive tree.
//
// Set the public fields and then call Run. Run listens on the given port and
// blocks handling requests. Do not change any fields after calling Run.
type WebServer struct {
	// PortNumber to listen on. Defaults to 8000.
	PortNumber string

	// StorageDir is the root of the archive tree written by the bot.
	StorageDir string

	// Validator authenticates API tokens. If nil, no authentication is
	// done and every request is treated as an admin.
	Validator TokenDecoder

	server httpdown.Server // used to close our listening socket
}

// Run starts the server and blocks listening for and handling requests.
func (ws *WebServer) Run() error {
	log.Printf("Starting ArchiveDrop web server version %s", Version)
	log.Printf("StorageDir = %s", ws.StorageDir)

	if ws.StorageDir == "" {
		panic("No storage directory given. StorageDir is empty.")
	}
	if ws.Validator == nil {
		log.Println("No Validator given")
		ws.Validator = NewNobodyDecoder()
	}
	if ws.PortNumber == "" {
		ws.PortNumber = "8000"
	}
	log.Println("Listening on", ws.PortNumber)

	h := httpdown.HTTP{}
	var err error
	ws.server, err = h.ListenAndServe(&http.Server{
		Addr:    ":" + ws.PortNumber,
		Handler: ws.addRoutes(),
	})
	if err != nil {
		log.Println(err)
		return err
	}
	return ws.server.Wait()
}

// Stop shuts down the listening socket and waits for in-flight requests.
func (ws *WebServer) Stop() error {
	return ws.server.Stop()
}

func (ws *WebServer) addRoutes() http.Handler {
	var routes = []struct {
		method  string
		route   string
		role    Role // RoleUnknown means no API key is needed
		handler httprouter.Handle
	}{
		{"GET", "/", RoleUnknown, ws.WelcomeHandler},
		{"GET", "/files", RoleMDOnly, ws.ListFilesHandler},
		{"GET", "/files/:name/metadata", RoleMDOnly, ws.MetadataHandler},
		{"GET", "/files/:name/content", RoleRead, ws.ContentHandler},
		{"GET", "/files/:name/download", RoleRead, ws.DownloadHandler},
		{"GET", "/fixity/:name", RoleRead, ws.FixityHandler},
		{"GET", "/stats", RoleMDOnly, ws.StatsHandler},
	}

	r := httprouter.New()
	for _, route := range routes {
		r.Handle(route.method,
			route.route,
			logWrapper(ws.authzWrapper(route.handler, route.role)))
	}
	return r
}

// writeHTMLorJSON returns val as JSON or rendered through the given
// template, depending on the request header "Accept-Encoding".
func writeHTMLorJSON(w http.ResponseWriter,
	r *http.Request,
	tmpl *template.Template,
	val interface{}) {

	if r.Header.Get("Accept-Encoding") == "application/json" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(val)
		return
	}
	tmpl.Execute(w, val)
}

// authzWrapper returns a handler which first checks the request's API key
// for at least the given role. Routes marked RoleUnknown pass everyone. The
// decoded user name is added as the parameter "username".
func (ws *WebServer) authzWrapper(handler httprouter.Handle, leastRole Role) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token := r.Header.Get("X-Api-Key")
		user, role, err := ws.Validator.TokenDecode(token)
		if err != nil {
			w.WriteHeader(500)
			fmt.Fprintln(w, err.Error())
			return
		}
		if role < leastRole {
			w.WriteHeader(401)
			fmt.Fprintln(w, "Forbidden")
			return
		}
		ps = append(ps, httprouter.Param{Key: "username", Value: user})
		handler(w, r, ps)
	}
}

// logWrapper logs the request URL before handling it. Query strings may
// contain search text, so only the path is logged.
func logWrapper(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		log.Println(r.Method, r.URL.Path)
		handler(w, r, ps)
	}
}
