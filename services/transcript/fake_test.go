package transcript

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeElement struct {
	text     string
	attrs    map[string]string
	children map[string][]*fakeElement
	onClick  func()
}

func (e *fakeElement) Text() string { return e.text }

func (e *fakeElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *fakeElement) Query(selector string) (Element, bool) {
	if kids := e.children[selector]; len(kids) > 0 {
		return kids[0], true
	}
	return nil, false
}

func (e *fakeElement) QueryAll(selector string) []Element {
	return toElements(e.children[selector])
}

// fakePage answers selector queries from a fixed table and records
// interactions.
type fakePage struct {
	location *url.URL
	scripts  []string
	elements map[string][]*fakeElement
	fetch    func(rawURL string) (int, string, error)

	fetched []string
	clicks  int
	slept   []time.Duration
}

func newFakePage(rawURL string) *fakePage {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return &fakePage{location: u, elements: map[string][]*fakeElement{}}
}

func (p *fakePage) Location() *url.URL { return p.location }
func (p *fakePage) Scripts() []string  { return p.scripts }

func (p *fakePage) Query(selector string) (Element, bool) {
	if els := p.elements[selector]; len(els) > 0 {
		return els[0], true
	}
	return nil, false
}

func (p *fakePage) QueryAll(selector string) []Element {
	return toElements(p.elements[selector])
}

func (p *fakePage) Fetch(_ context.Context, rawURL string) (int, string, error) {
	p.fetched = append(p.fetched, rawURL)
	if p.fetch == nil {
		return 0, "", fmt.Errorf("no fetch handler")
	}
	return p.fetch(rawURL)
}

func (p *fakePage) Click(_ context.Context, el Element) error {
	p.clicks++
	if fe, ok := el.(*fakeElement); ok && fe.onClick != nil {
		fe.onClick()
	}
	return nil
}

func (p *fakePage) Sleep(_ context.Context, d time.Duration) error {
	p.slept = append(p.slept, d)
	return nil
}

func toElements(els []*fakeElement) []Element {
	out := make([]Element, len(els))
	for i, e := range els {
		out[i] = e
	}
	return out
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
