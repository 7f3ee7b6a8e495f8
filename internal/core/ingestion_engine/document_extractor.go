package ingestion_engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/markdave123-py/themis/internal/core"
	objectclient "github.com/markdave123-py/themis/internal/core/object-client"
)

const mimePDF = "application/pdf"

var _ core.DocumentExtractor = (*URLExtractor)(nil)

// URLExtractor fetches a document over http(s) or from S3 and returns its
// text. PDFs are parsed with ledongthuc/pdf; other formats go through docconv.
type URLExtractor struct {
	httpClient *http.Client
	obj        core.ObjectClient
	maxBytes   int64
}

// NewURLExtractor builds an extractor. obj may be nil, in which case s3://
// sources are rejected.
func NewURLExtractor(obj core.ObjectClient, fetchTimeout time.Duration, maxBytes int64) *URLExtractor {
	return &URLExtractor{
		httpClient: &http.Client{Timeout: fetchTimeout},
		obj:        obj,
		maxBytes:   maxBytes,
	}
}

func (e *URLExtractor) ExtractText(ctx context.Context, sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	var (
		body        []byte
		contentType string
	)
	switch u.Scheme {
	case "http", "https":
		body, contentType, err = e.fetchHTTP(ctx, sourceURL)
	case "s3":
		body, err = e.fetchS3(ctx, sourceURL)
	default:
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if err != nil {
		return "", err
	}

	mimeType := detectMimeType(u.Path, contentType, body)
	log.Debug().Str("url", sourceURL).Str("mime", mimeType).Int("bytes", len(body)).Msg("document fetched")

	switch {
	case mimeType == mimePDF:
		return extractPDFText(body)
	case mimeType == "text/plain":
		return string(body), nil
	default:
		res, err := docconv.Convert(bytes.NewReader(body), mimeType, false)
		if err != nil {
			return "", fmt.Errorf("docconv %s: %w", mimeType, err)
		}
		return res.Body, nil
	}
}

func (e *URLExtractor) fetchHTTP(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch document: unexpected status %s", resp.Status)
	}

	var r io.Reader = resp.Body
	if e.maxBytes > 0 {
		r = io.LimitReader(resp.Body, e.maxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}
	if e.maxBytes > 0 && int64(len(body)) > e.maxBytes {
		return nil, "", fmt.Errorf("document exceeds %d bytes", e.maxBytes)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (e *URLExtractor) fetchS3(ctx context.Context, sourceURL string) ([]byte, error) {
	if e.obj == nil {
		return nil, fmt.Errorf("s3 sources are not configured")
	}
	bucket, key, err := objectclient.ParseS3URL(sourceURL)
	if err != nil {
		return nil, err
	}
	return e.obj.GetFile(ctx, bucket, key)
}

// detectMimeType prefers the PDF signature, then the declared content type,
// then the file extension, then content sniffing.
func detectMimeType(urlPath, contentType string, body []byte) string {
	if bytes.HasPrefix(body, []byte("%PDF-")) {
		return mimePDF
	}
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	if ext := strings.ToLower(path.Ext(urlPath)); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			if base, _, err := mime.ParseMediaType(mt); err == nil {
				return base
			}
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(body))
	return mt
}

// extractPDFText concatenates the plain text of every page, each followed by
// a newline.
func extractPDFText(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}
