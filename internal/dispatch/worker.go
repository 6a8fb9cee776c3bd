// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package dispatch

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefpost/internal/log"
)

func init() {
	viper.SetDefault("dispatch.workers", 2)
}

// ErrWorkerClosed completes every task, that did not start before the worker was closed.
var ErrWorkerClosed = errors.New("dispatch: worker closed")

// Priority orders queued tasks. Higher priorities run first.
type Priority int

const (
	PriorityLow Priority = iota - 1
	PriorityDefault
	PriorityHigh
)

// Task is a unit of work run by a Worker.
type Task func(ctx context.Context) error

type WorkerOptions struct {
	Workers int
}

func WorkerOptionsFromViper() WorkerOptions {
	return WorkerOptions{
		Workers: viper.GetInt("dispatch.workers"),
	}
}

// Worker runs submitted tasks on a fixed number of goroutines.
type Worker struct {
	lock   sync.Mutex
	wakeUp *sync.Cond
	queue  taskQueue
	seq    uint64
	closed bool

	running sync.WaitGroup
}

// NewWorker starts the goroutines of a worker. At least one goroutine is started.
func NewWorker(opts WorkerOptions) *Worker {
	w := Worker{}
	w.wakeUp = sync.NewCond(&w.lock)

	n := opts.Workers
	if n < 1 {
		n = 1
	}

	w.running.Add(n)

	for i := 0; i < n; i++ {
		go w.work()
	}

	return &w
}

// Submit queues fn. The returned future completes with the error of fn, or with
// ErrWorkerClosed if the worker is closed before fn started.
func (w *Worker) Submit(ctx context.Context, priority Priority, fn Task) *Future {
	future := newFuture()

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.closed {
		future.complete(ErrWorkerClosed)
		return future
	}

	w.seq++
	heap.Push(&w.queue, &queuedTask{
		ctx:      ctx,
		fn:       fn,
		future:   future,
		priority: priority,
		seq:      w.seq,
	})

	w.wakeUp.Signal()
	return future
}

// Close stops accepting tasks, fails all queued tasks and waits for running tasks
// until ctx is done.
func (w *Worker) Close(ctx context.Context) error {
	w.lock.Lock()

	w.closed = true

	for w.queue.Len() > 0 {
		task := heap.Pop(&w.queue).(*queuedTask)
		task.future.complete(ErrWorkerClosed)
	}

	w.wakeUp.Broadcast()
	w.lock.Unlock()

	stopped := make(chan struct{})

	go func() {
		w.running.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) work() {
	defer w.running.Done()

	for {
		task, ok := w.next()
		if !ok {
			return
		}

		task.future.complete(task.run())
	}
}

func (w *Worker) next() (*queuedTask, bool) {
	w.lock.Lock()
	defer w.lock.Unlock()

	for w.queue.Len() == 0 && !w.closed {
		w.wakeUp.Wait()
	}

	if w.queue.Len() == 0 {
		return nil, false
	}

	return heap.Pop(&w.queue).(*queuedTask), true
}

type queuedTask struct {
	ctx      context.Context
	fn       Task
	future   *Future
	priority Priority
	seq      uint64
}

func (t *queuedTask) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(t.ctx).
				Interface("panic", r).
				Msg("task panicked")

			err = fmt.Errorf("dispatch: task panicked: %v", r)
		}
	}()

	return t.fn(t.ctx)
}

// taskQueue is a heap of tasks ordered by priority and submission.
type taskQueue []*queuedTask

func (q taskQueue) Len() int {
	return len(q)
}

func (q taskQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}

	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *taskQueue) Push(x interface{}) {
	*q = append(*q, x.(*queuedTask))
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	task := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return task
}
