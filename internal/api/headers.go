package api

import (
	"fmt"
	"net/http"
)

// normalizeHeaders accepts the three header shapes callers are allowed
// to pass (http.Header, map[string]string, or ordered [key, value]
// pairs) and flattens them into one http.Header.
func normalizeHeaders(h any) (http.Header, error) {
	out := http.Header{}
	switch v := h.(type) {
	case nil:
	case http.Header:
		for k, vals := range v {
			for _, val := range vals {
				out.Add(k, val)
			}
		}
	case map[string]string:
		for k, val := range v {
			out.Set(k, val)
		}
	case [][2]string:
		for _, pair := range v {
			out.Add(pair[0], pair[1])
		}
	default:
		return nil, fmt.Errorf("unsupported header type %T", h)
	}
	return out, nil
}
