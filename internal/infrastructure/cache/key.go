package cache

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// BuildKey derives a cache key from the request method, path and query.
// Query keys are sorted, and repeated values for one key are sorted too, so
// the same logical request always yields the same key regardless of
// parameter order.
//
// Format: "{METHOD} {path}?{k1}={v1}&{k2}={v2}"
func BuildKey(method, path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(path)

	if len(query) == 0 {
		return b.String()
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	sep := byte('?')
	for _, k := range keys {
		values := slices.Clone(query[k])
		slices.Sort(values)
		for _, v := range values {
			b.WriteByte(sep)
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
			sep = '&'
		}
	}

	return b.String()
}

// KeyFromRequest is BuildKey applied to an inbound request.
func KeyFromRequest(r *http.Request) string {
	return BuildKey(r.Method, r.URL.Path, r.URL.Query())
}
