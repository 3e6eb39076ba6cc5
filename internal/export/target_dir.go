package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DirTarget writes sink output into a directory. Used by the CLI.
type DirTarget struct {
	Dir    string
	Logger *slog.Logger

	mu      sync.Mutex
	written []string
}

// NewDirTarget creates dir if needed.
func NewDirTarget(dir string, logger *slog.Logger) (*DirTarget, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DirTarget{Dir: dir, Logger: logger}, nil
}

// OpenDocument stores the print document as <title>.html.
func (t *DirTarget) OpenDocument(_ context.Context, doc Document) error {
	return t.write(slug(doc.Title)+".html", doc.HTML)
}

// TriggerDownload stores the file under its own name.
func (t *DirTarget) TriggerDownload(_ context.Context, file Download) error {
	return t.write(filepath.Base(file.Filename), file.Body)
}

// ComposeEmail stores the body as <subject>.txt and logs the mailto link.
func (t *DirTarget) ComposeEmail(_ context.Context, email Email) error {
	if err := t.write(slug(email.Subject)+".txt", []byte(email.Body)); err != nil {
		return err
	}
	t.Logger.Info("email composed", slog.String("subject", email.Subject), slog.Int("mailto_len", len(email.URI)))
	return nil
}

// Written lists the files written so far.
func (t *DirTarget) Written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.written))
	copy(out, t.written)
	return out
}

func (t *DirTarget) write(name string, body []byte) error {
	path := filepath.Join(t.Dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	t.mu.Lock()
	t.written = append(t.written, path)
	t.mu.Unlock()
	t.Logger.Info("export written", slog.String("path", path), slog.Int("bytes", len(body)))
	return nil
}

func slug(title string) string {
	s := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "_")
	if s == "" {
		return "report"
	}
	return s
}
