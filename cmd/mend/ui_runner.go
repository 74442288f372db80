package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mend/internal/driver"
	"mend/internal/ui"
)

type outcome[T any] struct {
	result T
	err    error
}

// runWithProgress runs work in the background and draws its progress events
// on stderr until work returns. Events sent after the user closed the view
// are drained so work never blocks.
func runWithProgress[T any](ctx context.Context, title string, files []string, work func(ctx context.Context, sink driver.ProgressSink) (T, error)) (T, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan outcome[T], 1)

	go func() {
		res, err := work(ctx, driver.ChanSink(events))
		outcomeCh <- outcome[T]{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	go func() {
		for range events {
		}
	}()
	out := <-outcomeCh
	if out.err != nil {
		return out.result, out.err
	}
	return out.result, uiErr
}
