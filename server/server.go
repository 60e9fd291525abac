// Package server contains the route table and payload plumbing shared by
// the HTTP wrappers in this module.
package server

import (
	"encoding/json"
	"fmt"
	"go/types"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"goji.io"
	"goji.io/pat"
)

// RouteTable maps goji patterns to the handlers for them
type RouteTable map[goji.Pattern]http.HandlerFunc

// Bind attaches every route in the table to mux
func (rt RouteTable) Bind(mux *goji.Mux) {
	for ptrn, meth := range rt {
		mux.HandleFunc(ptrn, meth)
	}
}

// Endpoints lists the patterns in the table as strings
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for k := range rt {
		if p, ok := k.(*pat.Pattern); ok {
			routes = append(routes, p.String())
		}
	}
	return routes
}

// HTTPer is an object which exposes its functionality over a route table
type HTTPer interface {
	// RT yields the route table so callers can add or inspect routes
	RT() RouteTable
}

// Mux builds a goji mux from an HTTPer with a route-list route included
func Mux(h HTTPer) *goji.Mux {
	mux := goji.NewMux()
	rt := h.RT()
	rt[pat.Get("/route-list")] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(rt.Endpoints())
		if err != nil {
			log.Printf("error encoding route list, %v", err)
		}
	}
	rt.Bind(mux)
	return mux
}

// FloatT is a struct with a single field, F64, used for json exchanges
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct with a single field, Int, used for json exchanges
type IntT struct {
	Int int `json:"int"`
}

// StrT is a struct with a single field, Str, used for json exchanges
type StrT struct {
	Str string `json:"str"`
}

// BoolT is a struct with a single field, Bool, used for json exchanges
type BoolT struct {
	Bool bool `json:"bool"`
}

// HumanPayload is a one-of-several-types value and a tag saying which
// field is live.  It converts to the single-key json envelopes above.
type HumanPayload struct {
	// T is the type of the payload
	T types.BasicKind

	// Bool holds a bool if T == types.Bool
	Bool bool

	// Int holds an int if T == types.Int
	Int int

	// Float holds a float if T == types.Float64
	Float float64

	// String holds a string if T == types.String
	String string
}

// EncodeAndRespond writes the payload to w as json with the appropriate
// envelope for its type
func (hp HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	var obj interface{}
	switch hp.T {
	case types.Bool:
		obj = BoolT{Bool: hp.Bool}
	case types.Int:
		obj = IntT{Int: hp.Int}
	case types.Float64:
		obj = FloatT{F64: hp.Float}
	case types.String:
		obj = StrT{Str: hp.String}
	default:
		http.Error(w, fmt.Sprintf("unknown payload type %v", hp.T), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(obj)
	if err != nil {
		fstr := fmt.Sprintf("error encoding payload to json %q", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
	}
}

// ReplyWithFile replies to the client request by serving the given file
// name from fldr
func ReplyWithFile(w http.ResponseWriter, r *http.Request, fn string, fldr string) {
	filePath, err := filepath.Abs(filepath.Join(fldr, fn))
	if err != nil {
		fstr := fmt.Sprintf("unable to compute abspath of file %s %s %s", fldr, fn, err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		fstr := fmt.Sprintf("source file missing %s", filePath)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		fstr := fmt.Sprintf("error retrieving source file stats %s", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	// stat sets the modtime and content-length headers
	http.ServeContent(w, r, fn, stat.ModTime(), f)
}
