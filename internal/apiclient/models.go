package apiclient

import (
	"maps"
	"net/url"
	"strings"
)

const (
	ContentTypeJSON = "application/json; charset=UTF-8"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// BodyKind tells which payload a Body carries.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyForm
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyForm:
		return "form"
	default:
		return "none"
	}
}

// Body is the request payload. Only one kind is ever active, so setting a
// JSON body drops any form fields and vice versa.
type Body struct {
	kind BodyKind
	json string
	form map[string]string
}

// NoBody is the empty payload.
func NoBody() Body { return Body{} }

// JSONBody carries a raw JSON document.
func JSONBody(doc string) Body {
	return Body{kind: BodyJSON, json: doc}
}

// FormBody carries url-encoded form fields. The map is copied.
func FormBody(fields map[string]string) Body {
	return Body{kind: BodyForm, form: maps.Clone(fields)}
}

func (b Body) Kind() BodyKind { return b.kind }

// JSON returns the JSON document, empty unless Kind is BodyJSON.
func (b Body) JSON() string { return b.json }

// Form returns a copy of the form fields, nil unless Kind is BodyForm.
func (b Body) Form() map[string]string { return maps.Clone(b.form) }

// Encode returns the bytes to write and the default content type for them.
// An empty JSON document or an empty form encodes to no payload.
func (b Body) Encode() ([]byte, string) {
	switch b.kind {
	case BodyJSON:
		if b.json == "" {
			return nil, ""
		}
		return []byte(b.json), ContentTypeJSON
	case BodyForm:
		if len(b.form) == 0 {
			return nil, ""
		}
		values := url.Values{}
		for k, v := range b.form {
			values.Set(k, v)
		}
		return []byte(values.Encode()), ContentTypeForm
	default:
		return nil, ""
	}
}

// RequestConfig describes the single HTTP exchange of an update check.
type RequestConfig struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    Body
}

// NormalizeMethod upper-cases method, defaulting to GET.
func NormalizeMethod(method string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	if m == "" {
		return "GET"
	}
	return m
}

// hasHeader reports whether headers contains name, ignoring case.
func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
