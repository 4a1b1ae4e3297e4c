package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	calls    atomic.Int32
	failN    int32
	err      error
	sent     []Job
	block    chan struct{}
	received chan Job
}

func (f *fakeSender) Send(ctx context.Context, job Job) error {
	n := f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if n <= f.failN {
		return f.err
	}
	f.mu.Lock()
	f.sent = append(f.sent, job)
	f.mu.Unlock()
	if f.received != nil {
		f.received <- job
	}
	return nil
}

type fakeDeadLetter struct {
	mu     sync.Mutex
	jobs   []Job
	causes []error
	err    error
}

func (f *fakeDeadLetter) Store(ctx context.Context, job Job, cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	f.causes = append(f.causes, cause)
	return f.err
}

func fastOpts() Options {
	return Options{QueueSize: 4, Workers: 1, MaxRetries: 2, Timeout: time.Second, BackoffBase: time.Millisecond}
}

func TestHandle_DeliversFirstTry(t *testing.T) {
	s := &fakeSender{}
	dl := &fakeDeadLetter{}
	d := NewDispatcher(s, dl, logging.Discard(), fastOpts())

	require.NoError(t, d.Handle(context.Background(), NewJob("alice", 1)))
	assert.EqualValues(t, 1, s.calls.Load())
	assert.Equal(t, Stats{Delivered: 1}, d.Stats())
	assert.Empty(t, dl.jobs)
}

func TestHandle_RetriesThenSucceeds(t *testing.T) {
	s := &fakeSender{failN: 2, err: errors.New("503")}
	d := NewDispatcher(s, &fakeDeadLetter{}, logging.Discard(), fastOpts())

	require.NoError(t, d.Handle(context.Background(), NewJob("alice", 1)))
	assert.EqualValues(t, 3, s.calls.Load())
	assert.EqualValues(t, 1, d.Stats().Delivered)
}

func TestHandle_ExhaustedGoesToDeadLetter(t *testing.T) {
	boom := errors.New("provider down")
	s := &fakeSender{failN: 100, err: boom}
	dl := &fakeDeadLetter{}
	d := NewDispatcher(s, dl, logging.Discard(), fastOpts())

	job := NewJob("alice", 9)
	require.NoError(t, d.Handle(context.Background(), job), "archived jobs count as handled")

	assert.EqualValues(t, 3, s.calls.Load(), "one try plus MaxRetries")
	require.Len(t, dl.jobs, 1)
	assert.Equal(t, job.ID, dl.jobs[0].ID)
	assert.ErrorIs(t, dl.causes[0], boom)
	assert.Equal(t, Stats{Failed: 1, DeadLettered: 1}, d.Stats())
}

func TestHandle_PermanentErrorNotRetried(t *testing.T) {
	s := &fakeSender{failN: 100, err: Permanent(errors.New("bad number"))}
	dl := &fakeDeadLetter{}
	d := NewDispatcher(s, dl, logging.Discard(), fastOpts())

	require.NoError(t, d.Handle(context.Background(), NewJob("alice", 1)))
	assert.EqualValues(t, 1, s.calls.Load())
	assert.Len(t, dl.jobs, 1)
}

func TestHandle_DeadLetterFailureIsReported(t *testing.T) {
	s := &fakeSender{failN: 100, err: errors.New("down")}
	dl := &fakeDeadLetter{err: errors.New("s3 down")}
	d := NewDispatcher(s, dl, logging.Discard(), fastOpts())

	err := d.Handle(context.Background(), NewJob("alice", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 down")
	assert.EqualValues(t, 0, d.Stats().DeadLettered)
}

func TestSubmit_WorkersDeliver(t *testing.T) {
	s := &fakeSender{received: make(chan Job, 2)}
	d := NewDispatcher(s, &fakeDeadLetter{}, logging.Discard(), fastOpts())
	d.Start(context.Background())

	assert.True(t, d.Submit(context.Background(), NewJob("alice", 1)))
	assert.True(t, d.Submit(context.Background(), NewJob("bob", 2)))

	for i := 0; i < 2; i++ {
		select {
		case <-s.received:
		case <-time.After(2 * time.Second):
			t.Fatal("job was not delivered")
		}
	}

	require.NoError(t, d.Close(context.Background()))
	st := d.Stats()
	assert.EqualValues(t, 2, st.Submitted)
	assert.EqualValues(t, 2, st.Delivered)
}

func TestSubmit_FullQueueDropsWithoutBlocking(t *testing.T) {
	s := &fakeSender{block: make(chan struct{})}
	opts := fastOpts()
	opts.QueueSize = 1
	d := NewDispatcher(s, &fakeDeadLetter{}, logging.Discard(), opts)

	// no workers: the queue holds exactly one job
	assert.True(t, d.Submit(context.Background(), NewJob("a", 1)))

	done := make(chan bool)
	go func() { done <- d.Submit(context.Background(), NewJob("a", 2)) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
	assert.EqualValues(t, 1, d.Stats().Dropped)
	close(s.block)
}

func TestClose_DrainsAndRejectsNewJobs(t *testing.T) {
	s := &fakeSender{}
	d := NewDispatcher(s, &fakeDeadLetter{}, logging.Discard(), fastOpts())

	require.True(t, d.Submit(context.Background(), NewJob("a", 1)))
	require.True(t, d.Submit(context.Background(), NewJob("a", 2)))
	d.Start(context.Background())

	require.NoError(t, d.Close(context.Background()))
	assert.EqualValues(t, 2, s.calls.Load(), "queued jobs are drained on close")

	assert.False(t, d.Submit(context.Background(), NewJob("a", 3)))
	assert.NoError(t, d.Close(context.Background()), "second close is a no-op")
}

func TestClose_TimesOut(t *testing.T) {
	s := &fakeSender{block: make(chan struct{})}
	d := NewDispatcher(s, &fakeDeadLetter{}, logging.Discard(), fastOpts())
	d.Start(context.Background())
	require.True(t, d.Submit(context.Background(), NewJob("a", 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(s.block)
}

func TestJob_Body(t *testing.T) {
	j := NewJob("alice", 3)
	assert.Equal(t, "You’ve received a message.ly from alice!", j.Body())
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, int64(3), j.MessageID)
}
