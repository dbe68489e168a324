package httpclient

import (
	"net/url"
	"sort"
	"strings"
)

// Params maps query parameter names to values.
type Params map[string]string

// EncodeParams joins key=value pairs with "&". Values are percent-encoded
// as UTF-8 with spaces as "+"; keys are written as given. Keys are emitted
// in sorted order.
func EncodeParams(params Params) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+url.QueryEscape(params[key]))
	}
	return strings.Join(pairs, "&")
}

// WithParams appends the encoded params to path. path is returned unchanged
// when params is empty.
func WithParams(path string, params Params) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + EncodeParams(params)
}
