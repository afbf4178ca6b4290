package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/charmbracelet/log"
)

const scrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ScrapeURL fetches a page and extracts its readable text. Unlike file
// parsing, a fetch failure here is a hard error: the caller asked for this
// exact URL and there is no batch to keep alive.
func ScrapeURL(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || contentType == "" {
		if text, ok := extractReadable(body, rawURL); ok {
			return text, nil
		}
		return HTMLToText(body), nil
	}

	return decodeText(body), nil
}

// extractReadable runs readability over the page; boilerplate-heavy pages
// come out much cleaner than a plain tag strip.
func extractReadable(body []byte, rawURL string) (string, bool) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), pageURL)
	if err != nil {
		log.Debug("Readability extraction failed, falling back to tag strip", "url", rawURL, "err", err)
		return "", false
	}

	var sb strings.Builder
	if err := article.RenderText(&sb); err != nil {
		return "", false
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", false
	}
	return text, true
}
