package hn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultBaseURL is the host the client talks to.
const DefaultBaseURL = "https://news.ycombinator.com/"

// ErrMissingActionTarget means no endpoint could be resolved for an
// action (no link in the markup and none on the item page).
var ErrMissingActionTarget = errors.New("no action target")

type ClientOptions struct {
	BaseURL string
	// UserCookie is the value of the host's "user" session cookie.
	UserCookie string
	Timeout    time.Duration
	UserAgent  string
	Logger     *slog.Logger
	// HTTPClient overrides the transport (tests). Its Jar is replaced.
	HTTPClient *http.Client
}

// Client fetches host pages and follows action links with the user's
// session cookie.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

func NewClient(opts ClientOptions) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if c := strings.TrimSpace(opts.UserCookie); c != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: "user", Value: c, Path: "/"}})
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	} else {
		cp := *hc
		hc = &cp
	}
	hc.Jar = jar

	ua := opts.UserAgent
	if ua == "" {
		ua = "hnterm"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{base: base, http: hc, userAgent: ua, logger: logger}, nil
}

// Resolve makes a host-relative href absolute.
func (c *Client) Resolve(href string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, fmt.Errorf("parse href %q: %w", href, err)
	}
	return c.base.ResolveReference(ref), nil
}

func (c *Client) newRequest(ctx context.Context, method, href string, body io.Reader) (*http.Request, error) {
	u, err := c.Resolve(href)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, resp.Status)
	}
	return resp, nil
}

// Page fetches and parses a host page.
func (c *Client) Page(ctx context.Context, path string) (*Page, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	p, err := ParsePage(resp.Body)
	c.logger.Debug("page fetched", "path", path, "dur", time.Since(start), "err", err)
	return p, err
}

// Follow performs a GET on an action link and returns the URL that was
// finally requested after redirects. The body is discarded.
func (c *Client) Follow(ctx context.Context, href string) (*url.URL, error) {
	if strings.TrimSpace(href) == "" {
		return nil, ErrMissingActionTarget
	}
	req, err := c.newRequest(ctx, http.MethodGet, href, nil)
	if err != nil {
		return nil, err
	}
	requested := req.URL
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	c.logger.Debug("action followed", "href", href, "status", resp.StatusCode)
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL, nil
	}
	return requested, nil
}

// Reply posts text as a reply through the host's reply form at replyHref.
func (c *Client) Reply(ctx context.Context, replyHref, text string) error {
	if strings.TrimSpace(replyHref) == "" {
		return ErrMissingActionTarget
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("reply text is empty")
	}
	req, err := c.newRequest(ctx, http.MethodGet, replyHref, nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	action, fields, err := parseCommentForm(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return err
	}
	fields.Set("text", text)

	post, err := c.newRequest(ctx, http.MethodPost, action, strings.NewReader(fields.Encode()))
	if err != nil {
		return err
	}
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	presp, err := c.do(post)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, presp.Body)
	return presp.Body.Close()
}

// parseCommentForm finds the reply form and its hidden inputs
// (parent, goto, hmac).
func parseCommentForm(r io.Reader) (string, url.Values, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", nil, err
	}
	form := find(doc, func(n *html.Node) bool {
		return isElem(n, atom.Form) && find(n, func(x *html.Node) bool {
			return isElem(x, atom.Input) && attr(x, "name") == "hmac"
		}) != nil
	})
	if form == nil {
		return "", nil, ErrMissingActionTarget
	}
	fields := url.Values{}
	for _, in := range findAll(form, func(n *html.Node) bool { return isElem(n, atom.Input) }) {
		name := attr(in, "name")
		if name == "" || strings.EqualFold(attr(in, "type"), "submit") {
			continue
		}
		fields.Set(name, attr(in, "value"))
	}
	action := attr(form, "action")
	if action == "" {
		action = "comment"
	}
	return action, fields, nil
}
