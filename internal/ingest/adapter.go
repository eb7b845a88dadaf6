// Package ingest pulls articles from external content providers, normalizes
// them into the unified post schema, and persists the merged result through
// the post store.
package ingest

import (
	"context"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"inkboard/internal/models"
)

// SourceAdapter fetches a bounded batch of recent items from one external
// provider and maps each into a well-formed Post. Adapters own their endpoint,
// page size and timeout. Fetch errors cover the whole batch; the orchestrator
// degrades them to an empty contribution.
type SourceAdapter interface {
	Name() models.PostSource
	Fetch(ctx context.Context) ([]models.Post, error)
}

// newHTTPClient builds the shared client used by all adapters. The timeout is
// the adapter's whole-request budget; there is no retry.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// readTimeChars estimates read minutes from raw content length, one minute per
// divisor characters with the given floor. Providers differ in content
// density, so each adapter picks its own divisor.
func readTimeChars(length, divisor, min int) int {
	return int(math.Max(float64(min), math.Ceil(float64(length)/float64(divisor))))
}

// StripHTML removes markup so read time can be estimated over prose.
func StripHTML(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ReadTimeFromHTML estimates read minutes for authored HTML content at
// ~200 words/minute with a floor of 1.
func ReadTimeFromHTML(html string) int {
	words := len(strings.Fields(StripHTML(html)))
	return int(math.Max(1, math.Ceil(float64(words)/200)))
}
