package gv

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskState is the lifecycle state of a queued encode. Transitions are
// one-way: queued -> running -> done | failed | cancelled.
type TaskState int32

const (
	// TaskQueued means the job is waiting its turn.
	TaskQueued TaskState = iota
	// TaskRunning means the job's pipeline is executing.
	TaskRunning
	// TaskDone means the output file was finalized.
	TaskDone
	// TaskFailed means the job aborted and its partial output was removed.
	TaskFailed
	// TaskCancelled means cancellation stopped the job at a batch boundary,
	// or before it started running.
	TaskCancelled
)

func (s TaskState) String() string {
	switch s {
	case TaskQueued:
		return "queued"
	case TaskRunning:
		return "running"
	case TaskDone:
		return "done"
	case TaskFailed:
		return "failed"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s TaskState) Terminal() bool {
	return s == TaskDone || s == TaskFailed || s == TaskCancelled
}

// Task is the handle the driver polls for one submitted job.
type Task struct {
	// ID uniquely identifies the task.
	ID string
	// Job is the submitted work, immutable after Submit.
	Job Job

	progress Progress
	err      error
	state    atomic.Int32
}

// State returns the current lifecycle state. Non-blocking; drivers poll it
// from their own update loop.
func (t *Task) State() TaskState {
	return TaskState(t.state.Load())
}

// DoneFrames returns the live count of compressed frames.
func (t *Task) DoneFrames() int {
	return t.progress.DoneFrames()
}

// Elapsed returns live encode wall-clock seconds.
func (t *Task) Elapsed() float64 {
	return t.progress.Elapsed()
}

// FrameCount returns the total number of input frames.
func (t *Task) FrameCount() int {
	return len(t.Job.ImagePaths)
}

// Err returns the failure cause once State is TaskFailed, nil otherwise.
func (t *Task) Err() error {
	if t.State() != TaskFailed {
		return nil
	}
	return t.err
}

// finish stores the terminal state. err must be set before the state store
// so pollers observing the terminal state see the cause.
func (t *Task) finish(state TaskState, err error) {
	t.err = err
	t.state.Store(int32(state))
}

// FinishedJob records a completed encode for the driver's done list.
type FinishedJob struct {
	OutputPath string
	Elapsed    float64
}

// Queue runs encode jobs strictly sequentially on one background goroutine.
// Each job parallelizes internally across the batch; the queue itself never
// overlaps two jobs. A single cancellation flag covers every queued and
// running job.
type Queue struct {
	logger   *zap.Logger
	mu       sync.Mutex
	pending  []*Task
	finished []FinishedJob
	running  bool
	cancel   atomic.Bool
}

// NewQueue creates an idle queue. A nil logger disables logging.
func NewQueue(logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{logger: logger}
}

// Submit enqueues a job and returns its polling handle. Jobs run in
// submission order.
func (q *Queue) Submit(job Job) *Task {
	task := &Task{ID: uuid.NewString(), Job: job}

	q.mu.Lock()
	q.pending = append(q.pending, task)
	start := !q.running
	q.running = true
	q.mu.Unlock()

	q.logger.Info("job queued",
		zap.String("task", task.ID),
		zap.String("output", job.OutputPath),
		zap.Int("frames", len(job.ImagePaths)))

	if start {
		go q.run()
	}

	return task
}

// Cancel requests cancellation of the running job and everything queued
// behind it. Running work stops at its next batch boundary and partial
// outputs are deleted.
func (q *Queue) Cancel() {
	q.cancel.Store(true)
}

// Idle reports whether no job is running or queued.
func (q *Queue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.running
}

// Finished returns the completed encodes in completion order. Failed and
// cancelled jobs never appear.
func (q *Queue) Finished() []FinishedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]FinishedJob(nil), q.finished...)
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		task := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.runTask(task)
	}
}

func (q *Queue) runTask(task *Task) {
	if q.cancel.Load() {
		task.finish(TaskCancelled, nil)
		q.logger.Info("job cancelled before start", zap.String("task", task.ID))
		return
	}

	task.state.Store(int32(TaskRunning))

	err := Encode(task.Job, &task.progress, &q.cancel)
	switch {
	case err == nil:
		task.finish(TaskDone, nil)
		q.mu.Lock()
		q.finished = append(q.finished, FinishedJob{
			OutputPath: task.Job.OutputPath,
			Elapsed:    task.progress.Elapsed(),
		})
		q.mu.Unlock()
		q.logger.Info("job done",
			zap.String("task", task.ID),
			zap.String("output", task.Job.OutputPath),
			zap.Float64("elapsed", task.progress.Elapsed()))

	case errors.Is(err, ErrCancelled):
		task.finish(TaskCancelled, nil)
		if errors.Is(err, ErrRemoveFile) {
			// The partial file could not be unlinked; report it but keep
			// draining the queue.
			q.logger.Error("cancelled job left partial output", zap.String("task", task.ID), zap.Error(err))
		} else {
			q.logger.Info("job cancelled", zap.String("task", task.ID))
		}

	default:
		task.finish(TaskFailed, err)
		q.logger.Error("job failed",
			zap.String("task", task.ID),
			zap.String("output", task.Job.OutputPath),
			zap.Error(err))
	}
}
