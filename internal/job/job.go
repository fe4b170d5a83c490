// Package job delivers notification emails in the background using Asynq.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/firmdirectory/internal/mailer"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TaskSendEmail is the task type stored in Redis.
const TaskSendEmail = "email:send"

// NewEmailTask wraps msg in an asynq task: MaxRetry 3, queue default, 30s timeout.
func NewEmailTask(msg mailer.Message) (*asynq.Task, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(
		TaskSendEmail,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// Enqueuer is the subset of asynq.Client used by Queue.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Queue implements mailer.Sender by enqueueing messages instead of sending them.
type Queue struct {
	client Enqueuer
	logger zerolog.Logger
}

// NewQueue creates a Queue on top of client.
func NewQueue(client Enqueuer, logger zerolog.Logger) *Queue {
	return &Queue{client: client, logger: logger.With().Str("component", "job").Logger()}
}

// Deferred marks Queue as scheduling delivery; the Worker records the outcome.
func (q *Queue) Deferred() bool { return true }

// Send enqueues msg for the worker.
func (q *Queue) Send(ctx context.Context, msg mailer.Message) error {
	task, err := NewEmailTask(msg)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	q.logger.Debug().
		Str("task_id", info.ID).
		Str("template", string(msg.Template)).
		Msg("email enqueued")
	return nil
}

// Worker runs an asynq server that hands email tasks to a mailer.Sender.
type Worker struct {
	server  *asynq.Server
	sender  mailer.Sender
	metrics mailer.Recorder
	logger  zerolog.Logger
}

// NewWorker creates a Worker connected to redisAddr. metrics may be nil.
func NewWorker(redisAddr string, sender mailer.Sender, metrics mailer.Recorder, logger zerolog.Logger) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"default": 1},
		},
	)
	return &Worker{
		server:  server,
		sender:  sender,
		metrics: metrics,
		logger:  logger.With().Str("component", "job").Logger(),
	}
}

// Mux returns the task routing used by the worker.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSendEmail, w.HandleSendEmail)
	return mux
}

// Start begins processing tasks without blocking.
func (w *Worker) Start() error {
	w.logger.Info().Msg("starting email worker")
	return w.server.Start(w.Mux())
}

// Shutdown stops the worker and waits for in-flight tasks.
func (w *Worker) Shutdown() {
	w.logger.Info().Msg("stopping email worker")
	w.server.Shutdown()
}

// HandleSendEmail decodes the task payload and delivers it. Returning an
// error makes asynq retry the task.
func (w *Worker) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var msg mailer.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("decode email payload: %v: %w", err, asynq.SkipRetry)
	}

	err := w.sender.Send(ctx, msg)
	if w.metrics != nil {
		w.metrics.EmailResult(string(msg.Template), err)
	}
	if err != nil {
		w.logger.Error().
			Err(err).
			Str("template", string(msg.Template)).
			Str("to", msg.To).
			Msg("failed to send email")
		return err
	}
	return nil
}
