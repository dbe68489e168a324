package cache

import (
	"net/url"
	"sort"
	"strings"

	"github.com/linked-planet/go-http-client/pkg/httpclient"
)

// DefaultPrefix is used when a Key has no prefix.
const DefaultPrefix = "httpc"

// Key identifies one cached response.
type Key struct {
	// Prefix namespaces the keys of one client (e.g. per base URL).
	Prefix string

	Method string

	// Path is the request path as passed to ExecuteRestCall.
	Path string

	Params httpclient.Params
}

// String generates a deterministic cache key string.
// Format: prefix:METHOD:path?key1=val1&key2=val2
//
// Parameters are sorted by key and both keys and values are query-escaped,
// so distinct parameter sets never share a key.
//
// Example:
//
//	httpc:GET:rest/api/2/search?jql=project+%3D+TEST&startAt=0
func (k Key) String() string {
	prefix := k.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(':')
	b.WriteString(strings.ToUpper(k.Method))
	b.WriteByte(':')
	b.WriteString(strings.Trim(k.Path, "/"))

	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for i, key := range keys {
			if i == 0 {
				b.WriteByte('?')
			} else {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(k.Params[key]))
		}
	}

	return b.String()
}
