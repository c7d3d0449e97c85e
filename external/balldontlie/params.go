package balldontlie

import (
	"net/url"

	"github.com/valyala/bytebufferpool"
)

type param struct {
	key    string
	values []string
	list   bool
}

// Params is an ordered set of query parameters. Order is kept on the wire.
type Params []param

// Set appends a scalar parameter serialized as key=value.
func (p Params) Set(key, value string) Params {
	return append(p, param{key: key, values: []string{value}})
}

// Add appends a list parameter serialized as repeated key[]=value.
func (p Params) Add(key string, values ...string) Params {
	return append(p, param{key: key, values: values, list: true})
}

// Encode renders the query string without the leading "?". Keys and values
// are escaped unless raw is set; the "[]" list suffix is never escaped.
func (p Params) Encode(raw bool) string {
	if len(p) == 0 {
		return ""
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	escape := url.QueryEscape
	if raw {
		escape = func(s string) string { return s }
	}

	for _, item := range p {
		key := escape(item.key)
		if item.list {
			key += "[]"
		}
		for _, value := range item.values {
			if buf.Len() > 0 {
				_ = buf.WriteByte('&')
			}
			_, _ = buf.WriteString(key)
			_ = buf.WriteByte('=')
			_, _ = buf.WriteString(escape(value))
		}
	}
	return buf.String()
}
