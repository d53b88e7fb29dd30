package app

import (
	"context"
	"io"
	"testing"
	"time"
)

type fakeBackend struct {
	fn   func(SendMessageRequest) (SendMessageResponse, error)
	seen []SendMessageRequest
}

func (f *fakeBackend) SendMessage(_ context.Context, req SendMessageRequest) (SendMessageResponse, error) {
	f.seen = append(f.seen, req)
	if f.fn == nil {
		return SendMessageResponse{}, nil
	}
	return f.fn(req)
}

func newTestPipeline(backend ChatBackend) *SendPipeline {
	p := NewSendPipeline(backend, quietConfig(), NewLogger(io.Discard))
	p.hold = func(time.Duration) {}
	return p
}

func TestSendSuccessAppendsUserThenAssistant(t *testing.T) {
	var generatingDuringCall bool
	p := newTestPipeline(nil)
	backend := &fakeBackend{fn: func(req SendMessageRequest) (SendMessageResponse, error) {
		generatingDuringCall = p.Progress.Snapshot().Generating
		return SendMessageResponse{Response: "Here is your script...", SessionID: "s1"}, nil
	}}
	p.backend = backend

	p.Sessions.Select("s1")
	if p.Progress.Snapshot().Generating {
		t.Fatalf("generating before send")
	}

	res := p.Send(context.Background(), "I want a space opera", "u@x.com")
	if !res.Sent || res.Failed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !generatingDuringCall {
		t.Fatalf("generating flag was down while the call was outstanding")
	}
	if p.Progress.Snapshot().Generating {
		t.Fatalf("generating after settle")
	}
	if got := p.Progress.Snapshot().Percent; got != 100 {
		t.Fatalf("progress must end at 100, got %d", got)
	}

	msgs := p.Messages.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected exactly 2 appended messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "I want a space opera" {
		t.Fatalf("unexpected user turn: %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "Here is your script..." {
		t.Fatalf("unexpected assistant turn: %+v", msgs[1])
	}
	if p.State() != StateIdle {
		t.Fatalf("pipeline not idle after settle")
	}
}

func TestSendFailureBecomesAssistantMessage(t *testing.T) {
	backend := &fakeBackend{fn: func(SendMessageRequest) (SendMessageResponse, error) {
		return SendMessageResponse{}, &APIError{Status: 429, Message: "rate limited"}
	}}
	p := newTestPipeline(backend)
	p.Sessions.Select("s1")

	res := p.Send(context.Background(), "I want a space opera", "u@x.com")
	if !res.Sent || !res.Failed {
		t.Fatalf("unexpected result: %+v", res)
	}

	msgs := p.Messages.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "rate limited" {
		t.Fatalf("server message not surfaced: %+v", msgs[1])
	}
	if p.Progress.Snapshot().Generating {
		t.Fatalf("generating still up after failure")
	}
	if p.State() != StateIdle {
		t.Fatalf("pipeline stuck in %v", p.State())
	}
}

func TestSendFailureWithoutServerMessageApologizes(t *testing.T) {
	backend := &fakeBackend{fn: func(SendMessageRequest) (SendMessageResponse, error) {
		return SendMessageResponse{}, context.DeadlineExceeded
	}}
	p := newTestPipeline(backend)
	p.Sessions.Select("s1")

	p.Send(context.Background(), "hello", "u@x.com")
	msgs := p.Messages.Messages()
	if msgs[1].Content != apologyFallback {
		t.Fatalf("expected apology fallback, got %q", msgs[1].Content)
	}
}

func TestSendEmptyResponseApologizes(t *testing.T) {
	p := newTestPipeline(&fakeBackend{})
	p.Sessions.Select("s1")

	p.Send(context.Background(), "hello", "u@x.com")
	if got := p.Messages.Messages()[1].Content; got != apologyFallback {
		t.Fatalf("expected apology fallback, got %q", got)
	}
}

func TestSendGuardsAreSilentNoOps(t *testing.T) {
	backend := &fakeBackend{}
	p := newTestPipeline(backend)

	// No current session.
	if res := p.Send(context.Background(), "hello", "u@x.com"); res.Sent {
		t.Fatalf("send without a session went through")
	}

	p.Sessions.Select("s1")
	// Blank input.
	if res := p.Send(context.Background(), "   \n ", "u@x.com"); res.Sent {
		t.Fatalf("blank input went through")
	}
	// No identity.
	if res := p.Send(context.Background(), "hello", ""); res.Sent {
		t.Fatalf("send without identity went through")
	}

	if len(backend.seen) != 0 {
		t.Fatalf("guarded sends reached the backend")
	}
	if p.Messages.Len() != 0 {
		t.Fatalf("guarded sends mutated the message store")
	}
}

func TestSendReconcilesReturnedSession(t *testing.T) {
	backend := &fakeBackend{fn: func(SendMessageRequest) (SendMessageResponse, error) {
		return SendMessageResponse{Response: "ok", SessionID: "srv-9", SessionTitle: "Space Opera"}, nil
	}}
	p := newTestPipeline(backend)
	id := p.Sessions.CreateProvisional()

	p.Send(context.Background(), "hello", "u@x.com")

	list := p.Sessions.List()
	if len(list) != 2 {
		t.Fatalf("expected provisional + confirmed entries, got %d", len(list))
	}
	if list[0].SessionID != "srv-9" || list[0].Title != "Space Opera" {
		t.Fatalf("confirmed session not prepended: %+v", list[0])
	}
	if list[1].SessionID != id {
		t.Fatalf("provisional session lost")
	}
}

func TestSendForwardsAttachmentsAndClearsBatch(t *testing.T) {
	backend := &fakeBackend{}
	p := newTestPipeline(backend)
	p.Sessions.Select("s1")

	if err := p.Batch.Add(Attachment{Name: "a.png", Path: "/tmp/a.png"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := p.Batch.Add(Attachment{Name: "b.png", Path: "/tmp/b.png"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	p.Send(context.Background(), "storyboard these", "u@x.com")

	if len(backend.seen) != 1 || len(backend.seen[0].Images) != 2 {
		t.Fatalf("attachments not forwarded: %+v", backend.seen)
	}
	if p.Batch.Len() != 0 {
		t.Fatalf("batch not cleared on send")
	}
}

func TestSendClassifiesStagedFlowAndScreenplayType(t *testing.T) {
	backend := &fakeBackend{}
	p := newTestPipeline(backend)
	p.ScreenplayType = "feature"
	p.Sessions.Select("s1")

	res := p.Send(context.Background(), "generate a fantasy script", "u@x.com")
	if !res.Staged {
		t.Fatalf("generation intent not classified as staged")
	}
	if !p.Progress.Snapshot().Staged {
		// Snapshot keeps the last mode after settle.
		t.Fatalf("simulator did not run in staged mode")
	}
	if backend.seen[0].ScreenplayType != "feature" {
		t.Fatalf("screenplay type not forwarded for staged turn")
	}

	res = p.Send(context.Background(), "what genres do you support", "u@x.com")
	if res.Staged {
		t.Fatalf("plain question classified as staged")
	}
	if backend.seen[1].ScreenplayType != "" {
		t.Fatalf("screenplay type forwarded for a plain question")
	}
}

func TestSendWhileBusyIsRefused(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	backend := &fakeBackend{fn: func(SendMessageRequest) (SendMessageResponse, error) {
		close(entered)
		<-release
		return SendMessageResponse{Response: "done"}, nil
	}}
	p := newTestPipeline(backend)
	p.Sessions.Select("s1")

	done := make(chan SendResult, 1)
	go func() { done <- p.Send(context.Background(), "first", "u@x.com") }()
	<-entered

	if res := p.Send(context.Background(), "second", "u@x.com"); res.Sent {
		t.Fatalf("re-entrant send was accepted")
	}
	if !p.Busy() {
		t.Fatalf("pipeline not reporting busy mid-flight")
	}

	close(release)
	if res := <-done; !res.Sent {
		t.Fatalf("first send lost")
	}
	if p.Busy() {
		t.Fatalf("pipeline busy after settle")
	}
}
