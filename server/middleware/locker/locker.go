// Package locker provides an HTTP middleware which allows a route tree to
// be locked, returning 423 (Locked) until it is released.  It is used to
// fence off an instrument while a human works at the console.
package locker

import (
	"net/http"
	"strings"
	"sync"

	"github.com/osel/golightfield/generichttp"
	"github.com/osel/golightfield/server"

	"goji.io/pat"
)

// Inject adds lock routes to an HTTPer which are used to manipulate the locker
func Inject(other server.HTTPer, l *Locker) {
	rt := other.RT()
	rt[pat.Get("/lock")] = generichttp.GetBool(func() (bool, error) { return l.Locked(), nil })
	rt[pat.Post("/lock")] = generichttp.SetBool(l.Set)
}

// Locker is a flag that bounces requests while set, plus a list of path
// substrings the lock does not apply to.  Unlike a sync.Mutex, setting it
// twice is not an error.
type Locker struct {
	mu       sync.RWMutex
	isLocked bool

	// DoNotProtect is a list of paths not to apply the lock to
	DoNotProtect []string
}

// New returns a new Locker with DoNotProtect prepopulated with "lock"
func New() *Locker {
	return &Locker{DoNotProtect: []string{"lock"}}
}

// Lock the locker
func (l *Locker) Lock() {
	l.mu.Lock()
	l.isLocked = true
	l.mu.Unlock()
}

// Unlock the locker
func (l *Locker) Unlock() {
	l.mu.Lock()
	l.isLocked = false
	l.mu.Unlock()
}

// Locked returns true if the locker is locked
func (l *Locker) Locked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.isLocked
}

// Check is an HTTP middleware that returns http.StatusLocked if Locked()
// is true, otherwise passes the request down the line
func (l *Locker) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.Locked() {
			protected := true
			url := r.URL.Path
			for _, str := range l.DoNotProtect {
				if strings.Contains(url, str) {
					protected = false
				}
			}
			if protected {
				w.WriteHeader(http.StatusLocked)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Set calls Lock or Unlock based on b.  It never fails; the error return
// fits the generichttp setter shape.
func (l *Locker) Set(b bool) error {
	if b {
		l.Lock()
	} else {
		l.Unlock()
	}
	return nil
}
