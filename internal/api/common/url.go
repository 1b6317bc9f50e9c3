package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxPathParamLength bounds ids and handles taken from the path
const maxPathParamLength = 255

// PathParam returns the decoded chi URL parameter. Entry ids, collection and
// site handles are single path segments, so the value must be non-empty and
// must not contain whitespace or slashes.
func PathParam(r *http.Request, name string) (string, error) {
	decoded, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", name)
	}

	switch {
	case strings.TrimSpace(decoded) == "":
		return "", fmt.Errorf("%s cannot be empty", name)
	case strings.ContainsAny(decoded, " \t\n\r"):
		return "", fmt.Errorf("%s cannot contain whitespace", name)
	case strings.Contains(decoded, "/"):
		return "", fmt.Errorf("%s cannot contain '/'", name)
	case len(decoded) > maxPathParamLength:
		return "", fmt.Errorf("%s exceeds %d characters", name, maxPathParamLength)
	}
	return decoded, nil
}

// PathParams returns the named parameters in order, stopping at the first
// invalid one.
func PathParams(r *http.Request, names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		v, err := PathParam(r, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
