package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront-accounts/internal/core/ports"
	"github.com/99minutos/storefront-accounts/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Sender delivers a single notice (e-mail, webhook, log line).
type Sender interface {
	SendPasswordReset(ctx context.Context, notice ports.PasswordResetNotice) error
}

// Dispatcher hands account notices to a fixed set of workers using
// consistent hashing on the recipient e-mail, so notices for one address are
// delivered in the order they were queued.
type Dispatcher struct {
	workers []chan ports.PasswordResetNotice
	sender  Sender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PasswordResetNotice, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PasswordResetNotice, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a notice to the worker responsible for its recipient.
// It never blocks: when that worker's buffer is full the notice is dropped.
func (d *Dispatcher) Enqueue(notice ports.PasswordResetNotice) {
	d.TryEnqueue(notice)
}

// TryEnqueue is Enqueue reporting whether the notice was queued.
func (d *Dispatcher) TryEnqueue(notice ports.PasswordResetNotice) bool {
	idx := d.shardIndex(notice.Email)
	select {
	case d.workers[idx] <- notice:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.NotificationsSentTotal.WithLabelValues("dropped").Inc()
		d.log.Error().
			Str("account_id", notice.AccountID).
			Int("worker_id", idx).
			Msg("notification queue full, password reset notice dropped")
		return false
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PasswordResetNotice) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.sender.SendPasswordReset(ctx, notice); err != nil {
				metrics.NotificationsSentTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("account_id", notice.AccountID).
					Int("worker_id", id).
					Msg("password reset notice delivery failed")
				continue
			}
			metrics.NotificationsSentTotal.WithLabelValues("sent").Inc()
		}
	}
}
