package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Notification is a message to a user about a ledger event.
type Notification struct {
	TenantId string
	UserId   string
	Kind     string
	Message  string
}

// Sink delivers a notification. The default sink just logs; a real
// deployment plugs in push or email delivery here.
type Sink interface {
	Deliver(n Notification)
}

type logSink struct{}

func (logSink) Deliver(n Notification) {
	zap.L().Info("Notification",
		zap.String("tenant_id", n.TenantId),
		zap.String("user_id", n.UserId),
		zap.String("kind", n.Kind),
		zap.String("message", n.Message))
}

// Dispatcher delivers notifications off the caller's goroutine. Dispatch
// never blocks the financial path: when the buffer is full the notification
// is dropped with a warning.
type Dispatcher struct {
	sink     Sink
	queue    chan Notification
	stopOnce sync.Once
	done     chan struct{}
}

func NewDispatcher(sink Sink, bufferSize int) *Dispatcher {
	if sink == nil {
		sink = logSink{}
	}
	if bufferSize <= 0 {
		bufferSize = 64
	}

	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Notification, bufferSize),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		d.sink.Deliver(n)
	}
}

// Dispatch queues a notification for delivery. Best-effort, non-blocking.
func (d *Dispatcher) Dispatch(n Notification) {
	select {
	case d.queue <- n:
	default:
		zap.L().Warn("Notification queue full, dropping",
			zap.String("user_id", n.UserId),
			zap.String("kind", n.Kind))
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}
