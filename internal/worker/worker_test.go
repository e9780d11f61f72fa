package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/afisha-events/backend/pkg/queue"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeJobSource struct {
	retried []*queue.Job
}

func (f *fakeJobSource) Dequeue(ctx context.Context) (*queue.Job, error) { return nil, nil }

func (f *fakeJobSource) Retry(ctx context.Context, job *queue.Job) error {
	job.Attempt++
	f.retried = append(f.retried, job)
	return nil
}

func emailJob(t *testing.T) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.EmailPayload{
		Kind:           queue.EmailEventPublished,
		RecipientEmail: "organizer@example.com",
		Subject:        "subject",
		Body:           "body",
	})
	if err != nil {
		t.Fatal(err)
	}
	return &queue.Job{ID: "job-1", Type: queue.JobTypeEmail, Payload: payload}
}

func TestProcessDeliversEmail(t *testing.T) {
	t.Parallel()

	src := &fakeJobSource{}
	sender := &fakeSender{}
	p := NewEmailProcessor(src, sender, nil)
	p.backoff = time.Millisecond

	p.process(context.Background(), emailJob(t))

	if len(sender.sent) != 1 || sender.sent[0] != "organizer@example.com" {
		t.Errorf("sent = %v, want one email to organizer@example.com", sender.sent)
	}
	if len(src.retried) != 0 {
		t.Errorf("retried = %d jobs, want none on success", len(src.retried))
	}
}

func TestProcessRetriesAfterBackoff(t *testing.T) {
	t.Parallel()

	src := &fakeJobSource{}
	sender := &fakeSender{err: errors.New("smtp down")}
	p := NewEmailProcessor(src, sender, nil)
	p.backoff = 20 * time.Millisecond

	start := time.Now()
	p.process(context.Background(), emailJob(t))
	elapsed := time.Since(start)

	if len(src.retried) != 1 {
		t.Fatalf("retried = %d jobs, want 1", len(src.retried))
	}
	if src.retried[0].Attempt != 1 {
		t.Errorf("attempt = %d, want 1", src.retried[0].Attempt)
	}
	if elapsed < p.backoff {
		t.Errorf("requeued after %v, want at least %v of backoff", elapsed, p.backoff)
	}
}

func TestProcessCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	src := &fakeJobSource{}
	sender := &fakeSender{err: errors.New("smtp down")}
	p := NewEmailProcessor(src, sender, nil)
	p.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.process(ctx, emailJob(t))

	if len(src.retried) != 0 {
		t.Errorf("retried = %d jobs, want none after cancellation", len(src.retried))
	}
}

func TestProcessSkipsMalformedPayload(t *testing.T) {
	t.Parallel()

	src := &fakeJobSource{}
	sender := &fakeSender{}
	p := NewEmailProcessor(src, sender, nil)
	p.backoff = time.Millisecond

	job := &queue.Job{ID: "job-2", Type: queue.JobTypeEmail, Payload: []byte("{not json")}
	p.process(context.Background(), job)

	if len(sender.sent) != 0 {
		t.Errorf("sent = %v, want none for malformed payload", sender.sent)
	}
	if len(src.retried) != 0 {
		t.Errorf("retried = %d jobs, want none for malformed payload", len(src.retried))
	}
}
