// Package message defines the request and response messages that policy
// functions read and modify, together with an implementation backed by
// net/http.
package message

import (
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"
)

// Common header names.
const (
	HeaderAuthorization   = "Authorization"
	HeaderContentType     = "Content-Type"
	HeaderWWWAuthenticate = "WWW-Authenticate"
)

// DefaultMaxBodyBytes bounds how much of a request body is read.
const DefaultMaxBodyBytes int64 = 10 << 20

// ErrReadOnly is returned when request headers are modified.
var ErrReadOnly = errors.New("message: request headers are read-only")

// Type distinguishes request from response messages.
type Type int

const (
	TypeRequest Type = iota
	TypeResponse
)

func (t Type) String() string {
	switch t {
	case TypeRequest:
		return "request"
	case TypeResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Headers is an ordered multimap of header values. Names are matched
// case-insensitively.
type Headers interface {
	Contains(name string) bool
	// Get returns every value of name, or nil when absent.
	Get(name string) []string
	// First returns the first value of name, or "".
	First(name string) string
	// Nth returns the value at index n of name.
	Nth(name string, n int) (string, bool)
	// Set replaces every value of name.
	Set(name string, values ...string) error
	// Add appends a value to name.
	Add(name, value string) error
	Del(name string) error
	// Names returns the canonical header names in sorted order.
	Names() []string
	// Size returns the number of distinct header names.
	Size() int
}

// Message is a request or response as seen by policy functions.
type Message interface {
	Type() Type
	Headers() Headers
	Body() string
	SetBody(body string)
	IsHTTP() bool
}

// HTTP is a Message carried over HTTP.
type HTTP struct {
	typ     Type
	headers *httpHeaders

	mu     sync.Mutex
	body   *string
	loader func() string
}

// NewRequest wraps r. The request body is read on first access, up to
// maxBody bytes; a read error yields an empty body. A maxBody of zero or
// less uses DefaultMaxBodyBytes.
func NewRequest(r *http.Request, maxBody int64) *HTTP {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	m := &HTTP{
		typ:     TypeRequest,
		headers: &httpHeaders{header: r.Header, readOnly: true},
	}
	if r.Header == nil {
		m.headers.header = http.Header{}
	}
	m.loader = func() string {
		if r.Body == nil || r.Body == http.NoBody {
			return ""
		}
		b, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			return ""
		}
		return string(b)
	}
	return m
}

// NewResponse returns an empty response message.
func NewResponse() *HTTP {
	return &HTTP{
		typ:     TypeResponse,
		headers: &httpHeaders{header: http.Header{}},
	}
}

func (m *HTTP) Type() Type       { return m.typ }
func (m *HTTP) Headers() Headers { return m.headers }
func (m *HTTP) IsHTTP() bool     { return true }

// Header exposes the underlying header map for the transport layer.
func (m *HTTP) Header() http.Header { return m.headers.header }

func (m *HTTP) Body() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.body == nil && m.loader != nil {
		b := m.loader()
		m.body = &b
		m.loader = nil
	}
	if m.body == nil {
		return ""
	}
	return *m.body
}

func (m *HTTP) SetBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = &body
	m.loader = nil
}

type httpHeaders struct {
	header   http.Header
	readOnly bool
}

func (h *httpHeaders) Contains(name string) bool {
	return len(h.header.Values(name)) > 0
}

func (h *httpHeaders) Get(name string) []string {
	v := h.header.Values(name)
	if len(v) == 0 {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

func (h *httpHeaders) First(name string) string {
	return h.header.Get(name)
}

func (h *httpHeaders) Nth(name string, n int) (string, bool) {
	v := h.header.Values(name)
	if n < 0 || n >= len(v) {
		return "", false
	}
	return v[n], true
}

func (h *httpHeaders) Set(name string, values ...string) error {
	if h.readOnly {
		return ErrReadOnly
	}
	h.header.Del(name)
	for _, v := range values {
		h.header.Add(name, v)
	}
	return nil
}

func (h *httpHeaders) Add(name, value string) error {
	if h.readOnly {
		return ErrReadOnly
	}
	h.header.Add(name, value)
	return nil
}

func (h *httpHeaders) Del(name string) error {
	if h.readOnly {
		return ErrReadOnly
	}
	h.header.Del(name)
	return nil
}

func (h *httpHeaders) Names() []string {
	names := make([]string, 0, len(h.header))
	for name := range h.header {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *httpHeaders) Size() int {
	return len(h.header)
}
