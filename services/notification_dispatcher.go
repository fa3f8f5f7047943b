package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"nusakalaAPI/internal/metrics"
	"nusakalaAPI/internal/notification"
)

var ErrDispatcherStopped = errors.New("push dispatcher stopped")

// PushDispatcher sends pushes from a small worker pool so callers never wait
// on FCM. It satisfies PushProvider itself and wraps the real provider.
type PushDispatcher struct {
	provider PushProvider
	workers  int
	jobQueue chan *dispatchJob
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type dispatchJob struct {
	tokens []notification.DeviceToken
	push   notification.Push
}

func NewPushDispatcher(provider PushProvider, workers int) *PushDispatcher {
	if workers <= 0 {
		workers = 5
	}
	d := &PushDispatcher{
		provider: provider,
		workers:  workers,
		jobQueue: make(chan *dispatchJob, 100),
		stopChan: make(chan struct{}),
	}
	d.startWorkers()
	return d
}

func (d *PushDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *PushDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *PushDispatcher) processJob(job *dispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := d.provider.SendPush(ctx, job.tokens, job.push)
	metrics.ObserveUpstream("fcm", err)
	if err != nil {
		log.Printf("Push %s to %d devices failed: %v", job.push.Type, len(job.tokens), err)
	}
}

// SendPush queues the push. It waits for queue space until ctx ends.
func (d *PushDispatcher) SendPush(ctx context.Context, tokens []notification.DeviceToken, push notification.Push) error {
	if len(tokens) == 0 {
		return nil
	}

	job := &dispatchJob{tokens: tokens, push: push}
	select {
	case <-d.stopChan:
		return ErrDispatcherStopped
	default:
	}

	select {
	case d.jobQueue <- job:
		return nil
	case <-d.stopChan:
		return ErrDispatcherStopped
	case <-ctx.Done():
		log.Printf("Failed to queue push %s: %v", push.Type, ctx.Err())
		return ctx.Err()
	}
}

// Stop lets in-flight sends finish. Queued jobs that were not picked up are
// dropped.
func (d *PushDispatcher) Stop() {
	d.stopOnce.Do(func() {
		log.Println("Stopping push dispatcher...")
		close(d.stopChan)
		d.wg.Wait()
		log.Println("Push dispatcher stopped")
	})
}
