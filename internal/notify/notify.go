// Package notify is the user-visible alert surface shared by the controllers.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/Gadeoli/todoapp-mobile/internal/api"
)

// Level classifies a notification
type Level int

const (
	LevelSuccess Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ErrorTitle heads every service failure alert
const ErrorTitle = "Oops! Something went wrong"

// Notification is one alert shown to the user
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier shows notifications to the user
type Notifier interface {
	Notify(n Notification)
}

// Success shows a confirmation message
func Success(n Notifier, message string) {
	n.Notify(Notification{Level: LevelSuccess, Title: "Success!", Message: message})
}

// Warn shows a local validation message
func Warn(n Notifier, title, message string) {
	n.Notify(Notification{Level: LevelWarning, Title: title, Message: message})
}

// Error shows a failure, using the service message when there is one
func Error(n Notifier, err error) {
	n.Notify(Notification{Level: LevelError, Title: ErrorTitle, Message: api.Message(err)})
}

// Console writes notifications as lines of text
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a notifier writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Notify implements Notifier
func (c *Console) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch n.Level {
	case LevelSuccess:
		fmt.Fprintf(c.out, "✓ %s\n", n.Message)
	case LevelWarning:
		fmt.Fprintf(c.out, "! %s: %s\n", n.Title, n.Message)
	default:
		fmt.Fprintf(c.out, "✗ %s: %s\n", n.Title, n.Message)
	}
}

// Discard drops every notification
type Discard struct{}

// Notify implements Notifier
func (Discard) Notify(Notification) {}

// Recorder collects notifications for assertions
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns every notification in arrival order
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Level returns the notifications of one level
func (r *Recorder) Level(level Level) []Notification {
	var out []Notification
	for _, n := range r.All() {
		if n.Level == level {
			out = append(out, n)
		}
	}
	return out
}
