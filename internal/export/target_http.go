package export

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

const documentCSP = "default-src 'none'; style-src 'unsafe-inline'; script-src 'unsafe-inline'; img-src data:"

// HTTPTarget delivers sink output over an HTTP response. Clients that ask for
// JSON receive a descriptor instead of the raw payload.
type HTTPTarget struct {
	w      http.ResponseWriter
	r      *http.Request
	asJSON bool
}

// NewHTTPTarget binds a target to one request.
func NewHTTPTarget(w http.ResponseWriter, r *http.Request) *HTTPTarget {
	return &HTTPTarget{w: w, r: r, asJSON: httpx.WantsJSON(r)}
}

// OpenDocument writes the print document as text/html.
func (t *HTTPTarget) OpenDocument(_ context.Context, doc Document) error {
	h := t.w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Security-Policy", documentCSP)
	h.Set("Cache-Control", "no-store")
	t.w.WriteHeader(http.StatusOK)
	if _, err := t.w.Write(doc.HTML); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// TriggerDownload streams the file as an attachment.
func (t *HTTPTarget) TriggerDownload(_ context.Context, file Download) error {
	if t.asJSON {
		httpx.JSON(t.w, http.StatusOK, map[string]any{
			"filename":     file.Filename,
			"content_type": file.ContentType,
			"size":         len(file.Body),
			"href":         DataURI(file.ContentType, file.Body),
		})
		return nil
	}
	h := t.w.Header()
	h.Set("Content-Type", file.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	h.Set("Content-Length", strconv.Itoa(len(file.Body)))
	h.Set("Cache-Control", "no-store")
	t.w.WriteHeader(http.StatusOK)
	if _, err := t.w.Write(file.Body); err != nil {
		return fmt.Errorf("write download %s: %w", file.Filename, err)
	}
	return nil
}

// ComposeEmail redirects the browser to the mailto link.
func (t *HTTPTarget) ComposeEmail(_ context.Context, email Email) error {
	if t.asJSON {
		httpx.JSON(t.w, http.StatusOK, map[string]string{
			"subject": email.Subject,
			"body":    email.Body,
			"mailto":  email.URI,
		})
		return nil
	}
	http.Redirect(t.w, t.r, email.URI, http.StatusSeeOther)
	return nil
}
