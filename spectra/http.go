package spectra

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/osel/golightfield/server"

	"goji.io/pat"
)

// HTTPWrapper serves acquired spectrum files out of a folder.
type HTTPWrapper struct {
	// Folder is where the acquisition output lands
	Folder string

	RouteTable server.RouteTable
}

// NewHTTPWrapper returns a new wrapper with the route table populated
func NewHTTPWrapper(folder string) HTTPWrapper {
	w := HTTPWrapper{Folder: folder}
	w.RouteTable = server.RouteTable{
		pat.Get("/spectrum"): w.GetSpectrum,
		pat.Get("/file"):     w.GetFile,
	}
	return w
}

// RT satisfies server.HTTPer
func (h HTTPWrapper) RT() server.RouteTable {
	return h.RouteTable
}

// ParseFilename extracts the filename query parameter, rejecting names
// that escape the served folder
func ParseFilename(w http.ResponseWriter, r *http.Request) (string, bool) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		http.Error(w, "filename query parameter is required", http.StatusBadRequest)
		return "", false
	}
	if filename != filepath.Base(filename) {
		http.Error(w, "filename must not contain a path", http.StatusBadRequest)
		return "", false
	}
	return filename, true
}

// ParseCleanup extracts a boolean value (cleanup) from URL query
// parameter "cleanup"; if true, the file is deleted after serving
func ParseCleanup(w http.ResponseWriter, r *http.Request) bool {
	cleanupStr := r.URL.Query().Get("cleanup")
	if cleanupStr == "" {
		cleanupStr = "false"
	}
	cleanup, err := strconv.ParseBool(cleanupStr)
	if err != nil {
		fstr := fmt.Sprintf("cleanup URL parameter error, given %s, cannot be converted to bool", cleanupStr)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusBadRequest)
		return false
	}
	return cleanup
}

// GetSpectrum parses the named export and returns it in the format given
// by the fmt query parameter, json (default) or fits
func (h HTTPWrapper) GetSpectrum(w http.ResponseWriter, r *http.Request) {
	filename, ok := ParseFilename(w, r)
	if !ok {
		return
	}
	path := filepath.Join(h.Folder, filename)
	spec, err := LoadFile(path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	format := r.URL.Query().Get("fmt")
	if format == "" {
		format = "json"
	}
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(spec)
	case "fits":
		w.Header().Set("Content-Type", "image/fits")
		err = WriteFITS(w, spec)
	default:
		http.Error(w, fmt.Sprintf("fmt %s not supported, use json or fits", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("error encoding spectrum %s, %v", path, err)
	}
}

// GetFile serves the raw export file.  With cleanup=true it is deleted
// after serving, so a remote client can drain the acquisition folder.
func (h HTTPWrapper) GetFile(w http.ResponseWriter, r *http.Request) {
	filename, ok := ParseFilename(w, r)
	if !ok {
		return
	}
	cleanup := ParseCleanup(w, r)
	server.ReplyWithFile(w, r, filename, h.Folder)
	if cleanup {
		err := os.Remove(filepath.Join(h.Folder, filename))
		if err != nil {
			log.Printf("error removing %s after serving, %v", filename, err)
		}
	}
}
