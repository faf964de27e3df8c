package sched

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is reported by a host queue that cannot take another task.
	ErrQueueFull = errors.New("dispatch queue full")
	// ErrQueueExists is reported when creating a queue ID twice.
	ErrQueueExists = errors.New("dispatch queue already exists")
	// ErrNoQueue is reported when inserting into a queue that was never created.
	ErrNoQueue = errors.New("no such dispatch queue")
	// ErrUnknownPolicy is returned by New for an unregistered policy name.
	ErrUnknownPolicy = errors.New("unknown policy")
)

// InitError aborts policy activation.
type InitError struct {
	Queue DSQID
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init: create dsq %d: %v", e.Queue, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// AdmissionError is returned by Enqueue when the shared queue refuses a task.
// The host treats it as a fatal policy fault.
type AdmissionError struct {
	Task  TaskID
	Queue DSQID
	Err   error
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("enqueue task %d into dsq %d: %v", e.Task, e.Queue, e.Err)
}

func (e *AdmissionError) Unwrap() error { return e.Err }
