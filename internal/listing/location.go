package listing

import (
	"net/url"
	"sync"
)

// Location is the URL the listing state is mirrored into.
type Location interface {
	// Query returns a copy of the current query values.
	Query() url.Values
	// ReplaceQuery swaps the whole query string.
	ReplaceQuery(values url.Values)
}

// URLLocation holds a path and query in memory. Storefront handlers read it back to compute the
// URL pushed to the browser.
type URLLocation struct {
	mu     sync.RWMutex
	path   string
	values url.Values
}

// NewURLLocation starts from the given URL. A nil URL yields "/" with no query.
func NewURLLocation(u *url.URL) *URLLocation {
	loc := &URLLocation{path: "/", values: url.Values{}}
	if u == nil {
		return loc
	}
	if u.Path != "" {
		loc.path = u.Path
	}
	loc.values = u.Query()
	return loc
}

func (l *URLLocation) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneValues(l.values)
}

func (l *URLLocation) ReplaceQuery(values url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = cloneValues(values)
}

// Path returns the location path.
func (l *URLLocation) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.path
}

// String renders path plus encoded query, omitting "?" when the query is empty.
func (l *URLLocation) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if encoded := l.values.Encode(); encoded != "" {
		return l.path + "?" + encoded
	}
	return l.path
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, list := range values {
		out[key] = append([]string(nil), list...)
	}
	return out
}
