package export

import (
	"context"
	"sync"
)

// Recorder is an in-memory Target. Set Unavailable to make OpenDocument fail
// the way a blocked print window does.
type Recorder struct {
	Unavailable bool

	mu        sync.Mutex
	Documents []Document
	Downloads []Download
	Emails    []Email
}

func (r *Recorder) OpenDocument(_ context.Context, doc Document) error {
	if r.Unavailable {
		return ErrTargetUnavailable
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Documents = append(r.Documents, doc)
	return nil
}

func (r *Recorder) TriggerDownload(_ context.Context, file Download) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Downloads = append(r.Downloads, file)
	return nil
}

func (r *Recorder) ComposeEmail(_ context.Context, email Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Emails = append(r.Emails, email)
	return nil
}
