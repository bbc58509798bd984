package resolve

import (
	"github.com/tidwall/gjson"

	"mercator-hq/gateway/pkg/message"
)

// Message resolves:
//
//	body            message body
//	headers.*       Headers
//	header.<name>*  values of one header, as a collection
//	ishttp          HTTP flag
//	json.<path>     gjson path into a JSON body
func Message(path string, m message.Message) any {
	if m == nil {
		return nil
	}
	if path == "" {
		return Bind(m, Message)
	}
	switch {
	case Is(path, "body"):
		return leaf("", m.Body())
	case Is(path, "ishttp"):
		return m.IsHTTP()
	}
	if rest, ok := Match(path, "headers"); ok {
		return Headers(rest, m.Headers())
	}
	if rest, ok := Match(path, "header"); ok && rest != "" {
		name, sub := splitName(rest)
		h := m.Headers()
		if h == nil {
			return nil
		}
		return Strings(sub, h.Get(name))
	}
	if rest, ok := Match(path, "json"); ok {
		return JSON(rest, m.Body())
	}
	return nil
}

// Headers resolves size and names. The empty path yields the header names.
func Headers(path string, h message.Headers) any {
	if h == nil {
		return nil
	}
	if Is(path, "size") {
		return h.Size()
	}
	if path == "" {
		return Strings("", h.Names())
	}
	if rest, ok := Match(path, "names"); ok {
		return Strings(rest, h.Names())
	}
	return nil
}

// JSON resolves a gjson path against body. The empty path yields the body
// when it is valid JSON. Objects and arrays resolve to their raw JSON,
// scalars to their string form, missing paths to nil.
func JSON(path string, body string) any {
	if !gjson.Valid(body) {
		return nil
	}
	if path == "" {
		return body
	}
	r := gjson.Get(body, path)
	if !r.Exists() {
		return nil
	}
	if r.IsObject() || r.IsArray() {
		return r.Raw
	}
	return r.String()
}
