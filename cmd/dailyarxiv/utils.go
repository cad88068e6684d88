package main

import (
	"net/http"
	"time"

	"github.com/pevans/dailyarxiv/fetch"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = fetch.DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// truncate shortens s to n characters with an ellipsis.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
