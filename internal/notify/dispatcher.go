package notify

import (
	"context"
	"sync"
	"time"
)

// sendTimeout bounds a single delivery attempt.
const sendTimeout = 30 * time.Second

// Logger is the minimal logging surface the dispatcher needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Dispatcher delivers messages asynchronously through a bounded queue.
//
// Enqueue never blocks: if the queue is full the message is dropped and
// ErrQueueFull returned, keeping the producer (the tick loop) on time.
//
// Thread Safety:
//   - Enqueue is safe for concurrent use. Stop must be called once.
type Dispatcher struct {
	transport Transport
	queue     chan Message
	logger    Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with the given queue size and
// starts its delivery worker.
func NewDispatcher(transport Transport, queueSize int, logger Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		transport: transport,
		queue:     make(chan Message, queueSize),
		logger:    logger,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Enqueue queues a message for delivery. Returns ErrQueueFull if the
// queue is at capacity, ErrDispatcherClosed after Stop.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		d.logger.Warn("notification dropped, queue full",
			"recipients", len(msg.To),
			"subject", msg.Subject,
		)
		return ErrQueueFull
	}
}

// Stop shuts the dispatcher down, draining messages already queued.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := d.transport.Send(ctx, msg)
		cancel()

		if err != nil {
			d.logger.Error("notification delivery failed",
				"recipients", len(msg.To),
				"subject", msg.Subject,
				"error", err,
			)
			continue
		}
		d.logger.Info("notification delivered",
			"recipients", len(msg.To),
			"subject", msg.Subject,
		)
	}
}
