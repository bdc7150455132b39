package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/woozymasta/gv"
)

func main() {
	var (
		fps     float64
		lite    bool
		alpha   bool
		verbose bool
	)
	flag.Float64Var(&fps, "fps", 30, "playback frame rate written to the header")
	flag.BoolVar(&lite, "lite", false, "lite mode: faster range-fit compression")
	flag.BoolVar(&alpha, "alpha", false, "encode DXT5 with alpha instead of DXT1")
	flag.BoolVar(&verbose, "verbose", false, "structured job lifecycle logging")
	flag.Parse()

	dirs := flag.Args()
	if len(dirs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: gvenc [-fps 30] [-lite] [-alpha] <image-dir> [image-dir...]")
		os.Exit(2)
	}

	if fps < 1 {
		fps = 1
	}
	if fps > 3000 {
		fps = 3000
	}

	var logger *zap.Logger
	if verbose {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()
	}

	queue := gv.NewQueue(logger)

	// Interrupt stops the running job at its next batch boundary and drops
	// the partial output.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		queue.Cancel()
	}()

	tasks := make([]*gv.Task, 0, len(dirs))
	for _, dir := range dirs {
		job, err := gv.JobFromDir(dir, float32(fps), lite, alpha)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		tasks = append(tasks, queue.Submit(job))
	}

	exitCode := 0
	for _, task := range tasks {
		waitTask(task)

		switch task.State() {
		case gv.TaskDone:
			fmt.Printf("%s: %d frames in %.2fs\n", task.Job.OutputPath, task.FrameCount(), task.Elapsed())
		case gv.TaskCancelled:
			fmt.Printf("%s: cancelled\n", task.Job.OutputPath)
			exitCode = 1
		case gv.TaskFailed:
			fmt.Fprintf(os.Stderr, "%s: %v\n", task.Job.OutputPath, task.Err())
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}

// waitTask polls the task handle, printing live progress for the running job.
func waitTask(task *gv.Task) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for !task.State().Terminal() {
		<-ticker.C

		if task.State() != gv.TaskRunning {
			continue
		}

		done := task.DoneFrames()
		total := task.FrameCount()
		elapsed := task.Elapsed()
		line := fmt.Sprintf("%s (%d / %d)", task.Job.OutputPath, done, total)
		if elapsed > 0 && done > 0 {
			rate := float64(done) / elapsed
			line += fmt.Sprintf("  elapsed: %.2fs fps: %.2f estimated: %.2fs",
				elapsed, rate, float64(total-done)/rate)
		}
		fmt.Println(line)
	}
}
