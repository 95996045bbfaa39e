package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/cliptile/logger"
	"github.com/robmorgan/cliptile/tiling"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const (
	statusEnqueued  string = "enqueued"
	statusActive           = "active"
	statusProcessed        = "processed"
	statusFailed           = "failed"
	statusSkipped          = "skipped"
)

// Resizer applies one resize request. *tiling.Engine is the production implementation.
type Resizer interface {
	Resize(req tiling.Request) (tiling.Result, error)
}

// Recorder is told about every request that ran to completion.
type Recorder interface {
	Record(res tiling.Result) error
}

// Item is a queued request and, once processed, its outcome.
type Item struct {
	ID      int64
	Request tiling.Request
	Status  string
	Result  tiling.Result

	// Warnings holds the result's warnings plus any failure of the item itself
	Warnings []string

	StartedAt    time.Time
	FinishedAt   time.Time
	RealDuration time.Duration
}

// Queue runs resize requests one at a time in the order they were enqueued. A request never starts before
// the previous one has finished every primitive call it makes.
type Queue struct {
	resizer   Resizer
	clock     clock.PassiveClock
	deadline  time.Duration
	recorder  Recorder
	currentID int64
	idLock    sync.Mutex

	items     []*Item
	processed []Item
	lock      sync.Mutex
}

// Option customises a Queue.
type Option func(*Queue)

// WithDeadline stops Run from starting new requests once d has passed since Run began.
func WithDeadline(d time.Duration) Option {
	return func(q *Queue) {
		q.deadline = d
	}
}

// WithRecorder passes every completed result to r.
func WithRecorder(r Recorder) Option {
	return func(q *Queue) {
		q.recorder = r
	}
}

// NewQueue builds an empty queue.
func NewQueue(r Resizer, clk clock.PassiveClock, opts ...Option) *Queue {
	q := &Queue{
		resizer:   r,
		clock:     clk,
		currentID: 1,
		items:     make([]*Item, 0),
		processed: make([]Item, 0),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) getNextIDForUse() int64 {
	q.idLock.Lock()
	defer q.idLock.Unlock()

	id := q.currentID
	q.currentID++
	return id
}

// Enqueue puts a request on the queue and assigns it an ID
func (q *Queue) Enqueue(req tiling.Request) *Item {
	q.lock.Lock()
	defer q.lock.Unlock()

	item := &Item{ID: q.getNextIDForUse(), Request: req, Status: statusEnqueued}

	logger := logger.GetProjectLogger()
	logger.WithFields(logrus.Fields{"item_id": item.ID, "track": req.Track, "clip": req.Clip}).Debug("enqueued")

	q.items = append(q.items, item)
	return item
}

// Pending returns how many requests are still waiting.
func (q *Queue) Pending() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.items)
}

func (q *Queue) deQueueNextItem() *Item {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.items) > 0 {
		x := q.items[0]
		q.items = q.items[1:]
		return x
	}
	return nil
}

// Run processes every queued request in order and returns them all, including any left unstarted because
// ctx was cancelled or the deadline passed. A request that has started always runs to the end. A request
// that fails is reported through its warnings; the rest of the batch still runs.
func (q *Queue) Run(ctx context.Context) []Item {
	logger := logger.GetProjectLogger()
	began := q.clock.Now()

	for {
		if reason := q.stopReason(ctx, began); reason != "" {
			for next := q.deQueueNextItem(); next != nil; next = q.deQueueNextItem() {
				next.Status = statusSkipped
				next.Warnings = append(next.Warnings, fmt.Sprintf("not started: %s", reason))
				logger.WithFields(logrus.Fields{"item_id": next.ID, "clip": next.Request.Clip}).Warnf("skipping resize, %s", reason)
				q.processed = append(q.processed, *next)
			}
			break
		}

		next := q.deQueueNextItem()
		if next == nil {
			break
		}
		q.process(next)
		q.processed = append(q.processed, *next)
	}

	out := q.processed
	q.processed = make([]Item, 0)
	return out
}

func (q *Queue) stopReason(ctx context.Context, began time.Time) string {
	select {
	case <-ctx.Done():
		return fmt.Sprintf("batch cancelled: %v", ctx.Err())
	default:
	}
	if q.deadline > 0 && q.clock.Since(began) >= q.deadline {
		return fmt.Sprintf("batch deadline of %v passed", q.deadline)
	}
	return ""
}

func (q *Queue) process(item *Item) {
	logger := logger.GetProjectLogger()

	item.Status = statusActive
	item.StartedAt = q.clock.Now()

	res, err := q.resizer.Resize(item.Request)
	item.Result = res
	item.Warnings = append(item.Warnings, res.Warnings...)

	item.FinishedAt = q.clock.Now()
	item.RealDuration = item.FinishedAt.Sub(item.StartedAt)

	fields := logrus.Fields{"item_id": item.ID, "track": item.Request.Track, "clip": item.Request.Clip}
	if err != nil {
		err = goerrors.WithStackTrace(err)
		item.Status = statusFailed
		item.Warnings = append(item.Warnings, fmt.Sprintf("resize of clip %d failed: %v", item.Request.Clip, err))
		logger.WithFields(fields).Warnf("resize failed: %v", err)
		logger.WithFields(fields).Debug(goerrors.PrintErrorWithStackTrace(err))
		return
	}

	item.Status = statusProcessed
	logger.WithFields(fields).WithField("achieved", res.Achieved).Info("resize processed")

	if q.recorder != nil {
		if err := q.recorder.Record(res); err != nil {
			item.Warnings = append(item.Warnings, fmt.Sprintf("recording result: %v", err))
			logger.WithFields(fields).Warnf("could not record result: %v", err)
		}
	}
}

// Failed reports whether the item's resize returned an error.
func (i Item) Failed() bool {
	return i.Status == statusFailed
}

// Skipped reports whether the item never started.
func (i Item) Skipped() bool {
	return i.Status == statusSkipped
}
