package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// apologyFallback is shown when the backend gives neither a response nor a
// usable error message.
const apologyFallback = "Sorry, I couldn't generate a response. Please try again."

// ChatBackend is the slice of the backend client the pipeline needs.
type ChatBackend interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (SendMessageResponse, error)
}

// PipelineState tracks where a send is in its lifecycle.
type PipelineState int

const (
	StateIdle PipelineState = iota
	StateComposing
	StateAwaitingResponse
	StateSettling
)

// SendResult reports what one Send did. Failures are folded into the
// assistant message, never returned as an error.
type SendResult struct {
	Sent      bool
	Staged    bool
	Failed    bool
	User      ChatMessage
	Assistant ChatMessage
}

// SendPipeline orchestrates one user turn: optimistic insert, intent
// classification, cosmetic progress, the backend round trip, and
// reconciliation of the result into the stores.
//
// A turn never surfaces an error to the caller; backend failures become a
// displayed assistant message. The progress driver is cancelled on every
// exit path.
type SendPipeline struct {
	Sessions *SessionStore
	Messages *MessageStore
	Batch    *AttachmentBatch
	Progress *ProgressSimulator

	backend    ChatBackend
	classifier IntentClassifier
	log        *Logger

	// ScreenplayType is forwarded with generation requests when set.
	ScreenplayType string

	now  func() time.Time
	hold func(time.Duration)

	mu    sync.Mutex
	state PipelineState
}

func NewSendPipeline(backend ChatBackend, cfg ProgressConfig, log *Logger) *SendPipeline {
	return &SendPipeline{
		Sessions:   NewSessionStore(),
		Messages:   NewMessageStore(),
		Batch:      NewAttachmentBatch(),
		Progress:   NewProgressSimulator(cfg),
		backend:    backend,
		classifier: NewRegexClassifier(),
		log:        log,
		now:        time.Now,
		hold:       time.Sleep,
	}
}

// SetClassifier swaps the intent heuristic.
func (p *SendPipeline) SetClassifier(c IntentClassifier) {
	if c != nil {
		p.classifier = c
	}
}

// State returns the current lifecycle state.
func (p *SendPipeline) State() PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Busy reports whether a send is in flight; the UI disables the send action
// while it is.
func (p *SendPipeline) Busy() bool {
	return p.State() != StateIdle
}

func (p *SendPipeline) enter() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateIdle {
		return false
	}
	p.state = StateComposing
	return true
}

func (p *SendPipeline) transition(s PipelineState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Send runs one full turn for the given input and identity. Empty trimmed
// input, a missing current session, or a missing identity make it a silent
// no-op. A send started while another is in flight is refused the same way.
func (p *SendPipeline) Send(ctx context.Context, input, email string) SendResult {
	input = strings.TrimSpace(input)
	sessionID := p.Sessions.Current()
	if input == "" || sessionID == "" || email == "" {
		return SendResult{}
	}
	if !p.enter() {
		return SendResult{}
	}

	// Optimistic user turn: always succeeds locally, before the network is
	// touched. The attachment snapshot empties the batch so a failure cannot
	// resubmit the same images.
	user := NewChatMessage(RoleUser, input)
	p.Messages.Append(user)
	images := p.Batch.Snapshot()

	staged := p.classifier.IsGeneration(input)
	mode := ProgressLinear
	if staged {
		mode = ProgressStaged
	}
	p.Progress.Start(mode, p.now())
	p.transition(StateAwaitingResponse)

	p.log.Info("sending message", map[string]interface{}{
		"session": sessionID,
		"staged":  staged,
		"images":  len(images),
	})

	req := SendMessageRequest{
		Message:   input,
		SessionID: sessionID,
		Email:     email,
		Images:    images,
	}
	if staged {
		req.ScreenplayType = p.ScreenplayType
	}
	resp, err := p.backend.SendMessage(ctx, req)

	// Settle: stop the driver and force the terminal display state before
	// anything is appended, even if the backend answered before a tick fired.
	p.transition(StateSettling)
	p.Progress.Finish()

	result := SendResult{Sent: true, Staged: staged, User: user}
	var content string
	switch {
	case err != nil:
		result.Failed = true
		content = apologyFallback
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			content = apiErr.Message
		}
		p.log.Error("send failed", map[string]interface{}{
			"session": sessionID,
			"error":   err.Error(),
		})
	default:
		content = resp.Response
		if content == "" {
			content = apologyFallback
		}
		p.Sessions.Reconcile(resp.SessionID, resp.SessionTitle)
	}

	result.Assistant = NewChatMessage(RoleAssistant, content)
	p.Messages.Append(result.Assistant)

	p.hold(p.Progress.SettleHold())
	p.Progress.Idle()
	p.transition(StateIdle)
	return result
}
