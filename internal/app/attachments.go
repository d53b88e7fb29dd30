package app

import (
	"fmt"
	"sync"
)

// MaxAttachments is the backend's per-message image limit.
const MaxAttachments = 2

// ErrTooManyAttachments is returned when adding past the limit. The batch is
// left as it was; the message is meant to be shown to the user, not logged
// and swallowed.
var ErrTooManyAttachments = fmt.Errorf("you can attach up to %d images per message", MaxAttachments)

// Attachment is one image staged for the next send.
type Attachment struct {
	Name string
	Path string
}

// AttachmentBatch stages up to MaxAttachments images for the next message.
// It is cleared on send, on failure, and on UI teardown.
type AttachmentBatch struct {
	mu    sync.Mutex
	items []Attachment
}

func NewAttachmentBatch() *AttachmentBatch {
	return &AttachmentBatch{}
}

// Add stages one image. Adding beyond the limit rejects the new image before
// any mutation and reports ErrTooManyAttachments.
func (b *AttachmentBatch) Add(att Attachment) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= MaxAttachments {
		return ErrTooManyAttachments
	}
	b.items = append(b.items, att)
	return nil
}

// AddAll stages images until the limit is reached. The excess is rejected,
// the first MaxAttachments survive, and the error names the limit.
func (b *AttachmentBatch) AddAll(atts []Attachment) error {
	var err error
	for _, att := range atts {
		if e := b.Add(att); e != nil {
			err = e
		}
	}
	return err
}

// Snapshot returns the staged images and empties the batch in one step; the
// send pipeline calls this so a failure mid-flight cannot resubmit them.
func (b *AttachmentBatch) Snapshot() []Attachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

func (b *AttachmentBatch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
}

func (b *AttachmentBatch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the staged images without consuming them.
func (b *AttachmentBatch) Items() []Attachment {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Attachment, len(b.items))
	copy(out, b.items)
	return out
}
