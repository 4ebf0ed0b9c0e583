package page

import (
	"context"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/capture-cli/internal/resilience"
)

// HTTP is a Source that fetches the record page over net/http and converts
// the HTML to visible text. Block-level boundaries become line breaks so the
// lineizer sees the same reading order the page renders. Slots are not
// resolvable without a live DOM, so SlotText always reports a miss; the
// extractors degrade to their line-scan tiers.
type HTTP struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	agent   string
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithRateLimit caps fetches at rps requests per second across retries.
func WithRateLimit(rps float64) HTTPOption {
	return func(h *HTTP) {
		if rps > 0 {
			h.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) HTTPOption {
	return func(h *HTTP) { h.agent = agent }
}

// WithRetry overrides the fetch retry configuration.
func WithRetry(cfg resilience.RetryConfig) HTTPOption {
	return func(h *HTTP) { h.retry = cfg }
}

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// NewHTTP creates an HTTP source for the given page URL.
func NewHTTP(url string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retry: resilience.DefaultRetryConfig(),
		agent: "Mozilla/5.0 (compatible; CaptureBot/1.0)",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) URL() string { return h.url }

// VisibleText fetches the page and strips it to plaintext. Re-fetches on
// every call; the page is the source of truth and is never cached here.
func (h *HTTP) VisibleText(ctx context.Context) (string, error) {
	body, err := resilience.DoVal(ctx, h.retry, h.fetch)
	if err != nil {
		return "", err
	}
	return htmlToText(string(body)), nil
}

// SlotText always reports an absent slot; named widget slots need a live
// rendering context that a plain fetch cannot provide.
func (h *HTTP) SlotText(_ context.Context, _ Slot) (string, error) {
	return "", nil
}

func (h *HTTP) fetch(ctx context.Context) ([]byte, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "page: rate limit")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "page: create request")
	}
	req.Header.Set("User-Agent", h.agent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "page: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "page: read body")
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("page: status %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("page: status %d", resp.StatusCode)
	}

	return body, nil
}

var (
	dropRe  = regexp.MustCompile(`(?is)<(script|style|nav|footer)[^>]*>.*?</(script|style|nav|footer)>`)
	breakRe = regexp.MustCompile(`(?i)<(?:br\s*/?|/p|/div|/li|/tr|/h[1-6]|/th|/td|/section|/article)>`)
	tagRe   = regexp.MustCompile(`<[^>]+>`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// htmlToText strips markup while preserving the page's reading order as
// lines. Block-closing tags become newlines before the remaining tags are
// removed, then horizontal whitespace is collapsed within each line.
func htmlToText(html string) string {
	html = dropRe.ReplaceAllString(html, "")
	html = breakRe.ReplaceAllString(html, "\n")
	html = tagRe.ReplaceAllString(html, " ")
	html = entityReplacer.Replace(html)

	var b strings.Builder
	for _, line := range strings.Split(html, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
