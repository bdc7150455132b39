package gv

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitTerminal(t *testing.T, task *Task) {
	t.Helper()

	deadline := time.Now().Add(60 * time.Second)
	for !task.State().Terminal() {
		if time.Now().After(deadline) {
			t.Fatalf("task %s stuck in %v", task.ID, task.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitIdle(t *testing.T, q *Queue) {
	t.Helper()

	deadline := time.Now().Add(60 * time.Second)
	for !q.Idle() {
		if time.Now().After(deadline) {
			t.Fatalf("queue did not drain")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestQueueRunsJobsSequentially(t *testing.T) {
	t.Parallel()

	q := NewQueue(nil)
	outDir := t.TempDir()

	outA := filepath.Join(outDir, "a.gv")
	outB := filepath.Join(outDir, "b.gv")
	taskA := q.Submit(Job{
		ImagePaths: frameDir(t, 5, 4, 4, color.NRGBA{R: 200, A: 255}),
		OutputPath: outA,
		FPS:        30,
		LiteMode:   true,
	})
	taskB := q.Submit(Job{
		ImagePaths: frameDir(t, 5, 4, 4, color.NRGBA{B: 200, A: 255}),
		OutputPath: outB,
		FPS:        30,
		LiteMode:   true,
	})

	waitTerminal(t, taskA)
	waitTerminal(t, taskB)
	waitIdle(t, q)

	if taskA.State() != TaskDone || taskB.State() != TaskDone {
		t.Fatalf("states = %v, %v", taskA.State(), taskB.State())
	}
	if taskA.DoneFrames() != 5 || taskB.DoneFrames() != 5 {
		t.Fatalf("done frames = %d, %d", taskA.DoneFrames(), taskB.DoneFrames())
	}

	for _, out := range []string{outA, outB} {
		f, err := Open(out)
		if err != nil {
			t.Fatalf("Open %s: %v", out, err)
		}
		_ = f.Close()
	}

	finished := q.Finished()
	if len(finished) != 2 {
		t.Fatalf("finished = %d entries, want 2", len(finished))
	}
	if finished[0].OutputPath != outA || finished[1].OutputPath != outB {
		t.Fatalf("finished order = %q, %q", finished[0].OutputPath, finished[1].OutputPath)
	}
}

func TestQueueFailedJobContinues(t *testing.T) {
	t.Parallel()

	q := NewQueue(nil)
	dir := t.TempDir()

	badPath := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(badPath, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	outBad := filepath.Join(dir, "bad.gv")
	outGood := filepath.Join(dir, "good.gv")

	badTask := q.Submit(Job{ImagePaths: []string{badPath}, OutputPath: outBad, FPS: 30})
	goodTask := q.Submit(Job{
		ImagePaths: frameDir(t, 3, 4, 4, color.NRGBA{G: 64, A: 255}),
		OutputPath: outGood,
		FPS:        30,
		LiteMode:   true,
	})

	waitTerminal(t, badTask)
	waitTerminal(t, goodTask)

	if badTask.State() != TaskFailed {
		t.Fatalf("bad task state = %v", badTask.State())
	}
	if !errors.Is(badTask.Err(), ErrDecodeImage) {
		t.Fatalf("bad task err = %v", badTask.Err())
	}
	if _, err := os.Stat(outBad); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output for failed job, stat err %v", err)
	}

	if goodTask.State() != TaskDone {
		t.Fatalf("good task state = %v", goodTask.State())
	}
	if goodTask.Err() != nil {
		t.Fatalf("good task err = %v", goodTask.Err())
	}

	finished := q.Finished()
	if len(finished) != 1 || finished[0].OutputPath != outGood {
		t.Fatalf("finished = %+v", finished)
	}
}

func TestQueueCancel(t *testing.T) {
	t.Parallel()

	q := NewQueue(nil)
	q.Cancel()

	out := filepath.Join(t.TempDir(), "cancelled.gv")
	task := q.Submit(Job{
		ImagePaths: frameDir(t, 40, 4, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255}),
		OutputPath: out,
		FPS:        30,
		LiteMode:   true,
	})

	waitTerminal(t, task)

	if task.State() != TaskCancelled {
		t.Fatalf("state = %v, want cancelled", task.State())
	}
	if task.Err() != nil {
		t.Fatalf("cancelled task err = %v", task.Err())
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output after cancel, stat err %v", err)
	}
	if len(q.Finished()) != 0 {
		t.Fatalf("cancelled job must not reach the finished list")
	}
}

func TestQueueEmptyJobIsDone(t *testing.T) {
	t.Parallel()

	q := NewQueue(nil)
	out := filepath.Join(t.TempDir(), "empty.gv")
	task := q.Submit(Job{OutputPath: out, FPS: 30})

	waitTerminal(t, task)

	if task.State() != TaskDone {
		t.Fatalf("state = %v, want done", task.State())
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no file for empty input, stat err %v", err)
	}
}

func TestTaskStateString(t *testing.T) {
	t.Parallel()

	states := map[TaskState]string{
		TaskQueued:    "queued",
		TaskRunning:   "running",
		TaskDone:      "done",
		TaskFailed:    "failed",
		TaskCancelled: "cancelled",
		TaskState(42): "unknown",
	}
	for state, want := range states {
		if state.String() != want {
			t.Fatalf("%d.String() = %q, want %q", state, state.String(), want)
		}
	}
}
