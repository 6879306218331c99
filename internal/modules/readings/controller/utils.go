package controller

import (
	"net/http"
	"strconv"

	"esp8266-web/internal/modules/readings/repository"
)

const (
	defaultLimit = 10
	maxLimit     = 500
)

// parseListQuery never fails: out-of-range or malformed values fall back to
// their defaults, and bad time bounds are dropped.
func parseListQuery(r *http.Request) repository.Filter {
	q := r.URL.Query()
	f := repository.Filter{Limit: defaultLimit}

	if n, ok := parseInt(q.Get("limit")); ok && n >= 1 && n <= maxLimit {
		f.Limit = int(n)
	}
	if n, ok := parseInt(q.Get("offset")); ok && n >= 0 {
		f.Offset = int(n)
	}
	if n, ok := parseInt(q.Get("from")); ok && n >= 0 {
		f.From = &n
	}
	if n, ok := parseInt(q.Get("to")); ok && n >= 0 {
		f.To = &n
	}
	return f
}

func parseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
