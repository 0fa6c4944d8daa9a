package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

var ErrDispatcherClosed = fmt.Errorf("%w: dispatcher is closed", domain.ErrNotification)

// Dispatcher sends notifications in the background so that the caller never waits for
// the transport. Failures are logged and reported to onFailure.
type Dispatcher struct {
	inner     port.Notifier
	timeout   time.Duration
	logger    *zap.Logger
	onFailure func()

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

// WithFailureHook registers a callback invoked once per failed notification.
func WithFailureHook(fn func()) DispatcherOption {
	return func(d *Dispatcher) {
		d.onFailure = fn
	}
}

func NewDispatcher(inner port.Notifier, timeout time.Duration, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		inner:     inner,
		timeout:   timeout,
		logger:    logger,
		onFailure: func() {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NotifyOrderPlaced schedules the notification and returns immediately.
// The send outlives ctx cancellation but keeps its values (trace span, request id).
func (d *Dispatcher) NotifyOrderPlaced(ctx context.Context, order domain.Order) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.onFailure()
		return ErrDispatcherClosed
	}

	d.wg.Add(1)
	go d.send(context.WithoutCancel(ctx), order)

	return nil
}

func (d *Dispatcher) send(ctx context.Context, order domain.Order) {
	defer d.wg.Done()

	log := d.logger.With(zap.String("order_id", order.ID.String()), zap.String("owner_id", order.OwnerID))

	defer func() {
		if r := recover(); r != nil {
			d.onFailure()
			log.Error("notifier panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.inner.NotifyOrderPlaced(ctx, order); err != nil {
		d.onFailure()
		log.Warn("order notification failed", zap.Error(err))
		return
	}

	log.Debug("order notification sent")
}

// Close stops accepting notifications and waits for the in-flight ones until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("notifications still in flight"), ctx.Err())
	}
}
