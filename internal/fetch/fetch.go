// Package fetch downloads a job posting page and pulls a short preview out of it,
// so a tracked application can be filled in from its job link.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout bounds a preview fetch when the caller's context has no deadline.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is sent with every preview request.
const DefaultUserAgent = "Mozilla/5.0 (compatible; jtrack/1.0)"

// maxBody caps how much of a posting page is read.
const maxBody = 4 << 20

// maxDescription caps the preview description in runes.
const maxDescription = 600

// Preview is what a job posting page says about itself.
type Preview struct {
	URL         string
	Platform    Platform
	Title       string
	Company     string
	Location    string
	Description string
}

// Error is returned when a job link cannot be previewed.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("preview of %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("preview of %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a Previewer.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Previewer fetches and parses job posting pages.
type Previewer struct {
	client    *http.Client
	userAgent string
}

// NewPreviewer creates a Previewer. nil opts means DefaultOptions.
func NewPreviewer(opts *Options) *Previewer {
	if opts == nil {
		opts = DefaultOptions()
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Previewer{client: client, userAgent: ua}
}

// Preview fetches link and extracts its preview.
func (p *Previewer) Preview(ctx context.Context, link string) (*Preview, error) {
	parsed, err := url.Parse(link)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &Error{URL: link, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, &Error{URL: link, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &Error{URL: link, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: link, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &Error{URL: link, Message: "failed to read response body", Cause: err}
	}

	preview, err := Extract(string(body), DetectPlatform(link))
	if err != nil {
		return nil, &Error{URL: link, Message: "failed to parse page", Cause: err}
	}
	preview.URL = link
	return preview, nil
}

// Extract parses a posting page. Meta tags win over page markup for the title
// and company; the description comes from the platform's content selectors.
func Extract(html string, platform Platform) (*Preview, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	out := &Preview{Platform: platform}
	out.Title = firstNonEmpty(
		metaContent(doc, "og:title"),
		textOf(doc, selectors(platform).title...),
		textOf(doc, "h1"),
		textOf(doc, "title"),
	)
	out.Company = firstNonEmpty(
		metaContent(doc, "og:site_name"),
		textOf(doc, selectors(platform).company...),
	)
	out.Location = textOf(doc, selectors(platform).location...)

	doc.Find("nav, footer, header, script, style, noscript, form, .cookie-banner, .cookie-consent, .social-share").Remove()
	if noise := selectors(platform).noise; len(noise) > 0 {
		doc.Find(strings.Join(noise, ", ")).Remove()
	}

	description := ""
	for _, sel := range append(selectors(platform).content, genericContent...) {
		if s := doc.Find(sel); s.Length() > 0 {
			description = cleanWhitespace(s.First().Text())
			if description != "" {
				break
			}
		}
	}
	if description == "" {
		description = firstNonEmpty(metaContent(doc, "og:description"), metaName(doc, "description"))
	}
	out.Description = truncate(description, maxDescription)
	return out, nil
}

func metaContent(doc *goquery.Document, property string) string {
	v, _ := doc.Find(fmt.Sprintf("meta[property='%s']", property)).First().Attr("content")
	return strings.TrimSpace(v)
}

func metaName(doc *goquery.Document, name string) string {
	v, _ := doc.Find(fmt.Sprintf("meta[name='%s']", name)).First().Attr("content")
	return strings.TrimSpace(v)
}

func textOf(doc *goquery.Document, sels ...string) string {
	for _, sel := range sels {
		if s := doc.Find(sel); s.Length() > 0 {
			if text := strings.Join(strings.Fields(s.First().Text()), " "); text != "" {
				return text
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// cleanWhitespace collapses each line and drops blank ones.
func cleanWhitespace(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
