package soap

import (
	"net/http"
	"strings"
	"sync"
)

// cookieJar accumulates Set-Cookie values across every step of a remote
// conversation. The legacy service spreads its session across several cookies
// set at different steps; a single missing one invalidates the whole session,
// so values merge by name and are never dropped.
type cookieJar struct {
	mu     sync.Mutex
	values map[string]string
	order  []string
}

func newCookieJar() *cookieJar {
	return &cookieJar{values: make(map[string]string)}
}

// Absorb merges every cookie set by resp into the jar. A repeated name takes
// the newest value but keeps its original position.
func (j *cookieJar) Absorb(resp *http.Response) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, ck := range resp.Cookies() {
		if ck.Name == "" {
			continue
		}
		if _, seen := j.values[ck.Name]; !seen {
			j.order = append(j.order, ck.Name)
		}
		j.values[ck.Name] = ck.Value
	}
}

// Header renders the accumulated cookies as a Cookie header value.
func (j *cookieJar) Header() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	parts := make([]string, 0, len(j.order))
	for _, name := range j.order {
		parts = append(parts, name+"="+j.values[name])
	}
	return strings.Join(parts, "; ")
}

// Restore replaces the jar's contents from a previously serialized header.
func (j *cookieJar) Restore(serialized string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.values = make(map[string]string)
	j.order = nil
	for _, part := range strings.Split(serialized, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}
		if _, seen := j.values[name]; !seen {
			j.order = append(j.order, name)
		}
		j.values[name] = value
	}
}

// Size reports how many distinct cookies the jar holds.
func (j *cookieJar) Size() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.values)
}
