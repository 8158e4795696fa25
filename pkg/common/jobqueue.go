package common

import (
	"fmt"
	"sync"

	"github.com/apex/log"
)

type Job func() error

// JobQueue runs jobs one after another on a single background goroutine.
type JobQueue struct {
	jobsChannel chan Job
	stopChannel chan struct{}
	waitGroup   sync.WaitGroup
	stopOnce    sync.Once
	mutex       sync.Mutex
	stopped     bool
	logger      log.Interface
}

func NewJobQueue(logger log.Interface) *JobQueue {
	worker := &JobQueue{
		jobsChannel: make(chan Job, 128),
		stopChannel: make(chan struct{}),
		logger:      logger,
	}
	worker.waitGroup.Add(1)
	go worker.run()
	return worker
}

// Enqueue schedules the job and returns true, or returns false without scheduling it if the queue is stopped.
func (j *JobQueue) Enqueue(job Job) bool {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	if j.stopped {
		return false
	}
	j.jobsChannel <- job
	return true
}

// Stop waits for the job in progress (if any) and stops the worker. Jobs still in the queue are dropped.
func (j *JobQueue) Stop() {
	j.stopOnce.Do(func() {
		j.mutex.Lock()
		j.stopped = true
		j.mutex.Unlock()
		close(j.stopChannel)
		j.waitGroup.Wait()
	})
}

func (j *JobQueue) run() {
	defer j.waitGroup.Done()
	for {
		select {
		case job := <-j.jobsChannel:
			err := j.runJob(job)
			if err != nil {
				j.logger.WithError(err).Error("failed to process a job")
			}
		case <-j.stopChannel:
			return
		}
	}
}

// A panicking job must not kill the worker: every later job would block forever.
func (j *JobQueue) runJob(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job()
}
