package transcript

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nijaru/summora/errors"
	"github.com/nijaru/summora/validation"
)

// ErrStaticPage is returned by HTMLPage.Click: a parsed snapshot has no
// script runtime to react to clicks.
var ErrStaticPage = stderrors.New("static page cannot be interacted with")

// ErrHostNotAllowed is returned when a fetch or redirect targets a host
// outside the page's HostPolicy.
var ErrHostNotAllowed = stderrors.New("host not allowed")

// HostPolicy decides which URLs a page may load or fetch.
type HostPolicy func(u *url.URL) bool

// YouTubeHosts allows http(s) URLs on YouTube hosts only.
func YouTubeHosts(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https") && validation.IsYouTubeHost(u.Hostname())
}

const maxPageBytes = 16 << 20

// HTMLPage is a PageAccessor over a parsed HTML document.
// Fetch only reaches hosts allowed by its policy, YouTubeHosts by default.
type HTMLPage struct {
	doc       *goquery.Document
	location  *url.URL
	client    *http.Client
	userAgent string
	allowed   HostPolicy
}

func NewHTMLPage(doc *goquery.Document, location *url.URL, client *http.Client, userAgent string) *HTMLPage {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTMLPage{
		doc:       doc,
		location:  location,
		client:    restrictRedirects(client, YouTubeHosts),
		userAgent: userAgent,
		allowed:   YouTubeHosts,
	}
}

// restrictRedirects returns a copy of client that refuses redirects to
// hosts outside allowed.
func restrictRedirects(client *http.Client, allowed HostPolicy) *http.Client {
	restricted := *client
	next := client.CheckRedirect
	restricted.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if !allowed(req.URL) {
			return fmt.Errorf("redirect to %s: %w", req.URL.Host, ErrHostNotAllowed)
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= 10 {
			return stderrors.New("stopped after 10 redirects")
		}
		return nil
	}
	return &restricted
}

// ParseHTMLPage builds an HTMLPage from markup already in hand.
func ParseHTMLPage(r io.Reader, location *url.URL, client *http.Client, userAgent string) (*HTMLPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return NewHTMLPage(doc, location, client, userAgent), nil
}

func (p *HTMLPage) Location() *url.URL {
	return p.location
}

func (p *HTMLPage) Scripts() []string {
	var scripts []string
	p.doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		scripts = append(scripts, s.Text())
	})
	return scripts
}

func (p *HTMLPage) Query(selector string) (Element, bool) {
	return first(p.doc.Find(selector))
}

func (p *HTMLPage) QueryAll(selector string) []Element {
	return all(p.doc.Find(selector))
}

func (p *HTMLPage) Fetch(ctx context.Context, rawURL string) (int, string, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return 0, "", err
	}
	if p.location != nil {
		target = p.location.ResolveReference(target)
	}
	if !p.allowed(target) {
		return 0, "", fmt.Errorf("fetch %s: %w", target.Host, ErrHostNotAllowed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, "", err
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

func (p *HTMLPage) Click(context.Context, Element) error {
	return ErrStaticPage
}

func (p *HTMLPage) Sleep(ctx context.Context, d time.Duration) error {
	return sleepContext(ctx, d)
}

type htmlElement struct {
	sel *goquery.Selection
}

func (e htmlElement) Text() string {
	return e.sel.Text()
}

func (e htmlElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e htmlElement) Query(selector string) (Element, bool) {
	return first(e.sel.Find(selector))
}

func (e htmlElement) QueryAll(selector string) []Element {
	return all(e.sel.Find(selector))
}

func first(sel *goquery.Selection) (Element, bool) {
	if sel.Length() == 0 {
		return nil, false
	}
	return htmlElement{sel: sel.First()}, true
}

func all(sel *goquery.Selection) []Element {
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, htmlElement{sel: s})
	})
	return elements
}

// HTTPLoader fetches watch pages over HTTP and parses them with goquery.
// The requested URL, every redirect and every later page fetch must pass
// the loader's HostPolicy.
type HTTPLoader struct {
	client    *http.Client
	userAgent string
	allowed   HostPolicy
}

type LoaderOption func(*HTTPLoader)

// WithHostPolicy replaces the default YouTubeHosts policy.
func WithHostPolicy(allowed HostPolicy) LoaderOption {
	return func(l *HTTPLoader) {
		l.allowed = allowed
	}
}

func NewHTTPLoader(client *http.Client, userAgent string, opts ...LoaderOption) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	l := &HTTPLoader{userAgent: userAgent, allowed: YouTubeHosts}
	for _, opt := range opts {
		opt(l)
	}
	l.client = restrictRedirects(client, l.allowed)
	return l
}

func (l *HTTPLoader) Load(ctx context.Context, rawURL string) (PageAccessor, error) {
	const op = "HTTPLoader.Load"

	location, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.InvalidInput(op, err, "Invalid URL format")
	}
	if !l.allowed(location) {
		return nil, errors.InvalidInput(op, ErrHostNotAllowed, "Only YouTube URLs are supported")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
	if err != nil {
		return nil, errors.InvalidInput(op, err, "Invalid URL format")
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := l.client.Do(req)
	if err != nil {
		if stderrors.Is(err, ErrHostNotAllowed) {
			return nil, errors.InvalidInput(op, err, "Page redirected outside YouTube")
		}
		return nil, errors.Network(op, err, "Network error. Please check your internet connection.")
	}
	defer resp.Body.Close()

	if !l.allowed(resp.Request.URL) {
		return nil, errors.InvalidInput(op, ErrHostNotAllowed, "Page redirected outside YouTube")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Network(op, fmt.Errorf("status %d", resp.StatusCode),
			fmt.Sprintf("Failed to load page: HTTP %d", resp.StatusCode))
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, errors.InvalidInput(op, nil, "URL does not point to an HTML page")
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to parse page")
	}
	return &HTMLPage{
		doc:       doc,
		location:  resp.Request.URL,
		client:    l.client,
		userAgent: l.userAgent,
		allowed:   l.allowed,
	}, nil
}
