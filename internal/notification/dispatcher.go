// Package notification sends email off the request path through a bounded
// queue drained by a fixed pool of workers. Delivery is best effort: failures
// are logged and never returned to whoever enqueued the message.
package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/google/uuid"
)

var (
	errMissingRecipient = errors.New("message has no recipient")
	errMissingSubject   = errors.New("message has no subject")
)

type Job struct {
	ID       string
	Message  Message
	QueuedAt time.Time
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("mail worker processing job", "worker_id", w.ID, "job_id", job.ID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("mail worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	MaxWorkers  int
	QueueSize   int
	SendTimeout time.Duration
}

type Dispatcher struct {
	sender      Sender
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	// mu guards closed and orders pending.Add before Shutdown's Wait
	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
}

func NewDispatcher(config Config, sender Sender, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}

	d := &Dispatcher{
		sender:      sender,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, queueSize),
		workerPool: make(chan chan Job, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	d.start()

	return d
}

func (d *Dispatcher) start() {
	d.once.Do(func() {
		for i := 0; i < d.maxWorkers; i++ {
			worker := NewWorker(i, d.workerPool, d.logger)
			worker.Start(d.ctx, &d.wg, d.process)
		}

		d.wg.Add(1)
		go d.dispatch()

		d.logger.Info("mail worker pool started",
			"max_workers", d.maxWorkers,
			"queue_size", cap(d.jobQueue))
	})
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				select {
				case jobChannel <- job:
				case <-d.ctx.Done():
					d.pending.Done()
					return
				}
			case <-d.ctx.Done():
				d.pending.Done()
				return
			}
		case <-d.ctx.Done():
			d.logger.Debug("mail dispatcher shutting down")
			return
		}
	}
}

// Enqueue schedules msg for delivery and returns immediately. The error only
// reports that the message could not be scheduled, never delivery failures.
func (d *Dispatcher) Enqueue(msg Message) error {
	if err := msg.Validate(); err != nil {
		return internal.NewNotificationError(err.Error(), internal.ErrCodeInvalidMessage)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return internal.NewNotificationError("mail dispatcher is shut down", internal.ErrCodeQueueFull)
	}

	job := Job{
		ID:       uuid.NewString(),
		Message:  msg,
		QueuedAt: time.Now(),
	}

	d.pending.Add(1)
	select {
	case d.jobQueue <- job:
		d.logger.Info("mail job queued",
			"job_id", job.ID,
			"subject", msg.Subject,
			"queue_length", len(d.jobQueue))
		return nil
	default:
		d.pending.Done()
		d.logger.Warn("mail job queue full, dropping message",
			"subject", msg.Subject,
			"queue_capacity", cap(d.jobQueue))
		return internal.NewNotificationError("mail queue full", internal.ErrCodeQueueFull)
	}
}

func (d *Dispatcher) process(job Job) {
	defer d.pending.Done()

	ctx, cancel := internal.WithTimeout(d.ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	if err := d.sender.Send(ctx, job.Message); err != nil {
		d.logger.Error("mail delivery failed",
			"job_id", job.ID,
			"to", job.Message.To,
			"subject", job.Message.Subject,
			"error", err)
		return
	}

	d.logger.Info("mail delivered",
		"job_id", job.ID,
		"to", job.Message.To,
		"subject", job.Message.Subject,
		"queued_for_ms", start.Sub(job.QueuedAt).Milliseconds(),
		"duration_ms", time.Since(start).Milliseconds())
}

// Shutdown stops accepting messages, lets queued ones finish until ctx is
// done, then stops the workers.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.logger.Info("shutting down mail dispatcher", "queued", len(d.jobQueue))

	drained := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		d.logger.Warn("mail dispatcher shutdown deadline reached, dropping queued messages",
			"dropped", len(d.jobQueue))
	}

	d.cancel()
	d.wg.Wait()

	for {
		select {
		case <-d.jobQueue:
			d.pending.Done()
			continue
		default:
		}
		break
	}

	d.logger.Info("mail dispatcher shutdown complete")
}
