package export

import (
	"context"
	"errors"
)

// ErrTargetUnavailable is returned by a Target that cannot show a document,
// for example when a print window could not be opened.
var ErrTargetUnavailable = errors.New("export target unavailable")

// Document is a standalone HTML document meant to be displayed and printed.
type Document struct {
	Title string
	HTML  []byte
}

// Download is a named file handed to the user.
type Download struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Email is a pre-filled message for the user's mail client.
type Email struct {
	Subject string
	Body    string
	URI     string
	// Report is the report kind, when the caller knows it.
	Report string
}

// Target receives the output of a sink.
type Target interface {
	OpenDocument(ctx context.Context, doc Document) error
	TriggerDownload(ctx context.Context, file Download) error
	ComposeEmail(ctx context.Context, email Email) error
}
