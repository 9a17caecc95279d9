// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manager

import (
	"sync"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of one asynchronous manager call.
type JobStatus int

const (
	JobPending JobStatus = iota
	JobDone
	JobError
)

// Job is a snapshot of one asynchronous manager call's outcome.
type Job struct {
	ID     string
	Status JobStatus
	Result interface{}
	Err    error
}

// JobTable tracks manager calls (PrepareBootstrapTransaction,
// RunFromBootstrapTransaction) by UUID so a caller can kick one off and
// poll for its outcome instead of blocking on it, per spec.md §4.8's
// "in-process asynchronous job table". A job is removed the first time a
// caller observes it in a terminal state.
type JobTable struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

// NewJobTable returns an empty table.
func NewJobTable() *JobTable {
	return &JobTable{jobs: make(map[string]*Job)}
}

// Submit runs fn in its own goroutine and returns the job id immediately.
func (t *JobTable) Submit(fn func() (interface{}, error)) string {
	id := uuid.New().String()

	t.mu.Lock()
	t.jobs[id] = &Job{ID: id, Status: JobPending}
	t.mu.Unlock()

	go func() {
		result, err := fn()

		t.mu.Lock()
		defer t.mu.Unlock()
		job, present := t.jobs[id]
		if !present {
			return
		}
		if nil != err {
			job.Status = JobError
			job.Err = err
			return
		}
		job.Status = JobDone
		job.Result = result
	}()

	return id
}

// Get returns a copy of job id's current state. A terminal job (done or
// error) is evicted from the table once observed here.
func (t *JobTable) Get(id string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, present := t.jobs[id]
	if !present {
		return Job{}, false
	}
	snapshot := *job
	if JobPending != job.Status {
		delete(t.jobs, id)
	}
	return snapshot, true
}
