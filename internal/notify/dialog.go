package notify

import (
	"context"
	"sync"
)

// Action is the destructive work a dialog guards.
type Action func(ctx context.Context) error

// Prompt is what a front end shows while a dialog is open.
type Prompt struct {
	Title   string
	Message string
}

// Dialog is a single confirm/cancel gate. Opening a new prompt replaces an
// unanswered one.
type Dialog struct {
	mu     sync.Mutex
	open   bool
	prompt Prompt
	action Action
}

// NewDialog returns a closed dialog.
func NewDialog() *Dialog {
	return &Dialog{}
}

// Open shows the prompt and arms action.
func (d *Dialog) Open(title, message string, action Action) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.open = true
	d.prompt = Prompt{Title: title, Message: message}
	d.action = action
}

// Current returns the open prompt.
func (d *Dialog) Current() (Prompt, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.prompt, d.open
}

// IsOpen reports whether a prompt awaits an answer.
func (d *Dialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.open
}

// Confirm closes the dialog and runs the armed action once. Confirming a
// closed dialog is a no-op.
func (d *Dialog) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return nil
	}
	action := d.action
	d.reset()
	d.mu.Unlock()

	if action == nil {
		return nil
	}
	return action(ctx)
}

// Cancel closes the dialog without running anything.
func (d *Dialog) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reset()
}

func (d *Dialog) reset() {
	d.open = false
	d.prompt = Prompt{}
	d.action = nil
}
