package workflow

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/net/html"

	"github.com/faralocal/examflow/internal/downloadfmt"
)

const (
	downloadRetries      = 3
	downloadBackoff      = 1 * time.Second
	subtitlePollInterval = 1 * time.Second
	subtitlePollAttempts = 10
	subtitleMinLength    = 10
	defaultDownloadExt   = "mp4"

	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// execDownloadFromLink resolves the locator's href, determines the
// target extension and filename, and routes to the subtitle
// sub-protocol for .vtt/.srt or a direct HTTP GET otherwise.
func execDownloadFromLink(d *Dispatcher, scope Scope, step Step, _ bool) (Scope, error) {
	css := buildSelector(step.Tag, step.Class, step.Attr, step.Value)
	index := 0
	if step.ArraySelectOne != nil {
		index = *step.ArraySelectOne
	}
	loc, err := resolveLocator(scope.Root(), css, step.Text, index, step.Timeout)
	if err != nil {
		return scope, err
	}

	href, err := loc.GetAttribute("href")
	if err != nil {
		return scope, wrapDriverErr("get href", err)
	}
	if strings.TrimSpace(href) == "" {
		return scope, newConfigErr("download_from_link", "href")
	}

	absURL, err := absolutizeURL(scope.Page.URL(), href)
	if err != nil {
		return scope, wrapIOErr("resolve download url", err)
	}

	ext := determineExtension(step.Raw, absURL)
	fileIndex := optionalInt(step.Raw, "index")
	if fileIndex == 0 {
		fileIndex = 1
	}

	title, err := scope.Page.Title()
	if err != nil {
		title = "download"
	}
	downloadDir := firstNonEmpty(optionalString(step.Raw, "download_dir"), ".")
	outPath := filepath.Join(downloadDir, downloadfmt.BuildFilename(title, fileIndex, ext))

	if ext == "vtt" || ext == "srt" {
		ok, err := d.downloadSubtitle(scope, absURL, outPath)
		if err != nil {
			return scope, err
		}
		if ok {
			return scope, nil
		}
		d.sink.Warn(step.Title, "subtitle sub-protocol yielded nothing usable, falling back to direct download")
	}

	return scope, d.downloadDirect(absURL, outPath)
}

func absolutizeURL(pageURL, href string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// determineExtension: explicit extension|ext wins, else the URL's
// fileExtension= query parameter, else the final dotted path segment,
// else the default.
func determineExtension(raw map[string]any, rawURL string) string {
	if ext := optionalString(raw, "extension", "ext"); ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultDownloadExt
	}
	if q := u.Query().Get("fileExtension"); q != "" {
		return strings.TrimPrefix(q, ".")
	}
	base := path.Base(u.Path)
	if idx := strings.LastIndex(base, "."); idx >= 0 && idx < len(base)-1 {
		return base[idx+1:]
	}
	return defaultDownloadExt
}

// downloadDirect streams the target via direct HTTP GET with a
// realistic User-Agent, accepting 200/202/206 as success, up to 3
// retries with a 1s backoff.
func (d *Dispatcher) downloadDirect(rawURL, outPath string) error {
	var lastErr error
	for attempt := 0; attempt <= downloadRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(downloadBackoff)
		}
		lastErr = d.downloadOnce(rawURL, outPath)
		if lastErr == nil {
			return nil
		}
	}
	return wrapIOErr("direct download", lastErr)
}

func (d *Dispatcher) downloadOnce(rawURL, outPath string) error {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusPartialContent:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return os.WriteFile(outPath, body, 0o644)
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// downloadSubtitle opens the download URL in a fresh page inside the
// same browser context (preserving cookies/stealth), polls for a
// WEBVTT marker or a <pre> element on a 202 response, and extracts the
// subtitle text via the <pre> -> <body> -> raw fallback chain. It
// always closes the transient page, even on failure.
func (d *Dispatcher) downloadSubtitle(scope Scope, rawURL, outPath string) (bool, error) {
	page, err := scope.Page.Context().NewPage()
	if err != nil {
		return false, wrapDriverErr("open subtitle page", err)
	}
	defer page.Close()

	resp, err := page.Goto(rawURL, playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(linkLoadTimeout.Milliseconds())),
	})
	if err != nil {
		return false, wrapDriverErr("goto subtitle url", err)
	}

	if resp != nil && resp.Status() == http.StatusAccepted {
		for i := 0; i < subtitlePollAttempts; i++ {
			content, err := page.Content()
			if err == nil && (strings.Contains(content, "WEBVTT") || strings.Contains(content, "<pre")) {
				break
			}
			time.Sleep(subtitlePollInterval)
		}
	}

	content, err := page.Content()
	if err != nil {
		return false, wrapDriverErr("read subtitle content", err)
	}

	text := extractSubtitleText(content)
	if len(strings.TrimSpace(text)) < subtitleMinLength {
		return false, nil
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return false, wrapIOErr("write subtitle", err)
	}
	return true, nil
}

func extractSubtitleText(document string) string {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return document
	}
	if pre := findNode(doc, "pre"); pre != nil {
		return renderText(pre)
	}
	if body := findNode(doc, "body"); body != nil {
		return renderText(body)
	}
	return document
}

func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func renderText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
