package transcript

import (
	"context"
	"net/url"
	"time"
)

// Element is a node located on a page.
type Element interface {
	Text() string
	Attr(name string) (string, bool)
	Query(selector string) (Element, bool)
	QueryAll(selector string) []Element
}

// PageAccessor is everything the extractor needs from a watch page. A live
// browser, a static HTML snapshot and test fakes all satisfy it.
type PageAccessor interface {
	Location() *url.URL
	// Scripts returns the text of every inline script, in document order.
	Scripts() []string
	Query(selector string) (Element, bool)
	QueryAll(selector string) []Element
	// Fetch performs a GET in the page's context and returns the status
	// and body.
	Fetch(ctx context.Context, rawURL string) (int, string, error)
	Click(ctx context.Context, el Element) error
	Sleep(ctx context.Context, d time.Duration) error
}

// PageLoader opens a page by URL.
type PageLoader interface {
	Load(ctx context.Context, rawURL string) (PageAccessor, error)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
