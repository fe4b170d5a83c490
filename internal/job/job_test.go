package job

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/firmdirectory/internal/mailer"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: "default"}, nil
}

type captureSender struct {
	got []mailer.Message
	err error
}

func (c *captureSender) Send(_ context.Context, msg mailer.Message) error {
	c.got = append(c.got, msg)
	return c.err
}

type outcomeRecorder struct {
	sent, failed int
}

func (r *outcomeRecorder) EmailResult(_ string, err error) {
	if err != nil {
		r.failed++
		return
	}
	r.sent++
}

func (r *outcomeRecorder) EmailQueued(string, error) {}

func sampleMessage() mailer.Message {
	return mailer.Message{
		To:       "jo@example.com",
		Subject:  "Thanks",
		Template: mailer.TemplateNominationReceived,
		Data:     map[string]string{"FirmName": "Harbor"},
	}
}

func TestQueueEnqueuesEmailTask(t *testing.T) {
	enq := &fakeEnqueuer{}
	q := NewQueue(enq, zerolog.New(io.Discard))

	require.NoError(t, q.Send(context.Background(), sampleMessage()))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskSendEmail, enq.tasks[0].Type())

	var decoded mailer.Message
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &decoded))
	assert.Equal(t, sampleMessage(), decoded)
}

func TestQueueReportsEnqueueFailure(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("redis unavailable")}
	q := NewQueue(enq, zerolog.New(io.Discard))

	err := q.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unavailable")

	require.Error(t, q.Send(context.Background(), mailer.Message{Subject: "x", Template: "t"}), "recipient is required")
}

func TestWorkerHandleSendEmail(t *testing.T) {
	sender := &captureSender{}
	w := &Worker{sender: sender, logger: zerolog.New(io.Discard)}

	task, err := NewEmailTask(sampleMessage())
	require.NoError(t, err)
	require.NoError(t, w.HandleSendEmail(context.Background(), task))
	require.Len(t, sender.got, 1)
	assert.Equal(t, "jo@example.com", sender.got[0].To)

	sender.err = errors.New("temporary")
	require.Error(t, w.HandleSendEmail(context.Background(), task))

	bad := asynq.NewTask(TaskSendEmail, []byte("{"))
	err = w.HandleSendEmail(context.Background(), bad)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWorkerRecordsDeliveryOutcome(t *testing.T) {
	sender := &captureSender{}
	rec := &outcomeRecorder{}
	w := &Worker{sender: sender, metrics: rec, logger: zerolog.New(io.Discard)}

	task, err := NewEmailTask(sampleMessage())
	require.NoError(t, err)

	require.NoError(t, w.HandleSendEmail(context.Background(), task))
	sender.err = errors.New("provider down")
	require.Error(t, w.HandleSendEmail(context.Background(), task))

	assert.Equal(t, 1, rec.sent)
	assert.Equal(t, 1, rec.failed)

	var _ mailer.Deferrer = NewQueue(&fakeEnqueuer{}, zerolog.New(io.Discard))
	assert.True(t, NewQueue(&fakeEnqueuer{}, zerolog.New(io.Discard)).Deferred())
}

func TestWorkerMuxRoutesEmailTasks(t *testing.T) {
	sender := &captureSender{}
	w := &Worker{sender: sender, logger: zerolog.New(io.Discard)}

	task, err := NewEmailTask(sampleMessage())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Mux().ProcessTask(ctx, task))
	assert.Len(t, sender.got, 1)
}
