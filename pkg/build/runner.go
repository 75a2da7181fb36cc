// Package build drives vcpkg and cmake for a prepared project.
package build

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Event types emitted by Run.
const (
	EventStart  = "start"
	EventOutput = "output"
	EventFinish = "finish"
)

// Step is one external command.
type Step struct {
	Name    string   // e.g., "configure"
	Dir     string   // Working directory
	Command []string // e.g., ["cmake", "--build", "build/x64_linux"]
}

func (s Step) String() string {
	return strings.Join(s.Command, " ")
}

// StepResult is the outcome of a single step.
type StepResult struct {
	Step     Step
	Output   []byte // Combined stdout and stderr
	Err      error
	Duration time.Duration
}

// Event reports progress of a step.
type Event struct {
	Step       Step
	Type       string
	Result     *StepResult // set on finish
	OutputLine string      // set on output
}

// RunOptions configures child processes.
type RunOptions struct {
	// Env replaces the child environment when non-nil.
	Env []string
}

// Run executes steps in order and streams their events. The first failing
// step ends the run; later steps are not started. The channel is closed when
// the run is over.
func Run(ctx context.Context, steps []Step, opts *RunOptions) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				events <- Event{Step: step, Type: EventFinish, Result: &StepResult{Step: step, Err: err}}
				return
			}
			result := runStep(ctx, step, opts, events)
			events <- Event{Step: step, Type: EventFinish, Result: result}
			if result.Err != nil {
				return
			}
		}
	}()
	return events
}

const waitDelay = 5 * time.Second

func runStep(ctx context.Context, step Step, opts *RunOptions, events chan<- Event) *StepResult {
	events <- Event{Step: step, Type: EventStart}
	start := time.Now()

	if len(step.Command) == 0 {
		return &StepResult{Step: step, Err: fmt.Errorf("step %s has no command", step.Name)}
	}
	cmd := exec.CommandContext(ctx, step.Command[0], step.Command[1:]...)
	cmd.Dir = step.Dir
	// A grandchild holding the pipe open must not block Wait after cancellation.
	cmd.WaitDelay = waitDelay
	if opts != nil && opts.Env != nil {
		cmd.Env = opts.Env
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	var outputBuf bytes.Buffer
	var streamWg sync.WaitGroup
	streamWg.Add(1)
	go func() {
		defer streamWg.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			outputBuf.WriteString(line + "\n")
			events <- Event{Step: step, Type: EventOutput, OutputLine: line}
		}
		// Keep draining so the child never blocks on a full pipe.
		io.Copy(&outputBuf, pr)
	}()

	if err := cmd.Start(); err != nil {
		pw.Close()
		streamWg.Wait()
		return &StepResult{Step: step, Err: fmt.Errorf("failed to start %s: %w", step.Command[0], err), Duration: time.Since(start)}
	}
	err := cmd.Wait()
	pw.Close()
	streamWg.Wait()

	if err != nil {
		err = fmt.Errorf("%s failed: %w", step.Name, err)
	}
	return &StepResult{
		Step:     step,
		Output:   outputBuf.Bytes(),
		Err:      err,
		Duration: time.Since(start),
	}
}

// Collect drains events and returns the finished results in order.
func Collect(events <-chan Event) []StepResult {
	var results []StepResult
	for ev := range events {
		if ev.Type == EventFinish && ev.Result != nil {
			results = append(results, *ev.Result)
		}
	}
	return results
}
