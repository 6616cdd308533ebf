// Package queue runs outbound notifications on a small worker pool so a
// slow or unreachable recipient never stalls the conversation flow that
// triggered the notice.
package queue

import (
	"context"
	"log"
	"sync"

	"support-bot-backend/internal/transport"
)

// Job is one notification. Errc, when set, receives the delivery outcome;
// fire-and-forget callers leave it nil and failures are only logged.
type Job struct {
	Recipient int64
	Text      string
	Keyboard  transport.Keyboard
	Errc      chan error
}

type Dispatcher struct {
	jobs      chan Job
	tp        transport.Transport
	wg        sync.WaitGroup
	onFailure func()
	stop      sync.Once
}

func NewDispatcher(tp transport.Transport, queueSize, workers int, onFailure func()) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 4
	}
	d := &Dispatcher{
		jobs:      make(chan Job, queueSize),
		tp:        tp,
		onFailure: onFailure,
	}
	d.startWorkers(workers)
	return d
}

func (d *Dispatcher) startWorkers(workers int) {
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for job := range d.jobs {
				err := d.tp.SendText(context.Background(), job.Recipient, job.Text, job.Keyboard)
				if err != nil {
					log.Printf("notify: delivery to %d failed: %v", job.Recipient, err)
					if d.onFailure != nil {
						d.onFailure()
					}
				}
				if job.Errc != nil {
					job.Errc <- err
				}
			}
		}()
	}
}

func (d *Dispatcher) Enqueue(job Job) {
	d.jobs <- job
}

// Depth is the number of jobs waiting in the channel, exported for gauges.
func (d *Dispatcher) Depth() int {
	return len(d.jobs)
}

// Shutdown drains the queue and stops the workers. Safe to call more than
// once.
func (d *Dispatcher) Shutdown() {
	d.stop.Do(func() { close(d.jobs) })
	d.wg.Wait()
}
