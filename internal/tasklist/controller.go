// Package tasklist holds the task list view state of one window: the tasks
// fetched from the service, the done-tasks filter and the derived visible
// list.
package tasklist

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Gadeoli/todoapp-mobile/internal/api"
	"github.com/Gadeoli/todoapp-mobile/internal/notify"
	"github.com/Gadeoli/todoapp-mobile/internal/prefs"
	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

const (
	InvalidDataTitle        = "Invalid data"
	BlankDescriptionMessage = "Description not provided"
)

var (
	ErrBlankDescription = errors.New("task description is blank")
	ErrBusy             = errors.New("another task operation is in flight")
)

// Service is the part of the task service used by the list
type Service interface {
	ListTasks(ctx context.Context, auth api.Auth, maxDate string) ([]types.Task, error)
	CreateTask(ctx context.Context, auth api.Auth, req api.CreateTaskRequest) (*types.Task, error)
	ToggleTask(ctx context.Context, auth api.Auth, id int64) (*types.Task, error)
	DeleteTask(ctx context.Context, auth api.Auth, id int64) error
}

// Controller is the task list of one window
type Controller struct {
	service   Service
	auth      api.Auth
	store     prefs.Store
	notifier  notify.Notifier
	logger    *log.Logger
	now       func() time.Time
	daysAhead int

	mu       sync.Mutex
	tasks    []types.Task
	visible  []types.Task
	showDone bool
	addOpen  bool
	busy     bool
}

// NewController creates the list for a window of daysAhead days
func NewController(service Service, auth api.Auth, store prefs.Store, notifier notify.Notifier, daysAhead int) *Controller {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Controller{
		service:   service,
		auth:      auth,
		store:     store,
		notifier:  notifier,
		logger:    log.Default(),
		now:       time.Now,
		daysAhead: daysAhead,
		tasks:     []types.Task{},
		visible:   []types.Task{},
		showDone:  DefaultState().ShowDoneTasks,
	}
}

// SetLogger replaces the logger used for persistence warnings
func (c *Controller) SetLogger(logger *log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// SetClock replaces the time source used for the date window
func (c *Controller) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// DaysAhead returns the window size
func (c *Controller) DaysAhead() int {
	return c.daysAhead
}

// Tasks returns a copy of the tasks last fetched
func (c *Controller) Tasks() []types.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Task{}, c.tasks...)
}

// VisibleTasks returns a copy of the filtered tasks
func (c *Controller) VisibleTasks() []types.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Task{}, c.visible...)
}

// ShowDoneTasks reports the filter flag
func (c *Controller) ShowDoneTasks() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showDone
}

// AddOpen reports whether the add-task surface is open
func (c *Controller) AddOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addOpen
}

// OpenAdd opens the add-task surface
func (c *Controller) OpenAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addOpen = true
}

// CloseAdd closes the add-task surface without saving
func (c *Controller) CloseAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addOpen = false
}

// Busy reports whether a service call is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// Initialize restores the filter preference and fetches the tasks. Both run
// concurrently; fetched tasks are applied after the preference so the
// default flag is never persisted over the stored one.
func (c *Controller) Initialize(ctx context.Context) error {
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	applied := make(chan struct{})
	fetched := make(chan error, 1)

	go func() {
		tasks, err := c.fetch(ctx)
		<-applied
		if err != nil {
			notify.Error(c.notifier, err)
			fetched <- err
			return
		}
		c.replace(ctx, tasks)
		fetched <- nil
	}()

	state := c.readState(ctx)
	c.mu.Lock()
	c.showDone = state.ShowDoneTasks
	c.mu.Unlock()
	c.FilterTasks(ctx)
	close(applied)

	return <-fetched
}

func (c *Controller) readState(ctx context.Context) State {
	state := DefaultState()
	if err := prefs.GetJSON(ctx, c.store, prefs.KeyTasksState, &state); err != nil {
		if !errors.Is(err, prefs.ErrNotFound) {
			c.logger.Printf("warning: failed to read %s: %v", prefs.KeyTasksState, err)
		}
		return DefaultState()
	}
	return state
}

// LoadTasks replaces the tasks with those due up to the end of the window.
// On failure the tasks are kept.
func (c *Controller) LoadTasks(ctx context.Context) error {
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()
	return c.load(ctx)
}

func (c *Controller) load(ctx context.Context) error {
	tasks, err := c.fetch(ctx)
	if err != nil {
		notify.Error(c.notifier, err)
		return err
	}
	c.replace(ctx, tasks)
	return nil
}

func (c *Controller) fetch(ctx context.Context) ([]types.Task, error) {
	return c.service.ListTasks(ctx, c.auth, MaxDate(c.now(), c.daysAhead))
}

func (c *Controller) replace(ctx context.Context, tasks []types.Task) {
	c.mu.Lock()
	c.tasks = append([]types.Task{}, tasks...)
	c.mu.Unlock()
	c.FilterTasks(ctx)
}

// FilterTasks recomputes the visible tasks and persists the filter flag.
// Persistence failures are logged only.
func (c *Controller) FilterTasks(ctx context.Context) {
	c.mu.Lock()
	c.visible = Visible(c.tasks, c.showDone)
	state := State{ShowDoneTasks: c.showDone}
	c.mu.Unlock()

	if err := prefs.SetJSON(ctx, c.store, prefs.KeyTasksState, state); err != nil {
		c.logger.Printf("warning: failed to persist %s: %v", prefs.KeyTasksState, err)
	}
}

// ToggleFilter flips the done-tasks filter
func (c *Controller) ToggleFilter(ctx context.Context) {
	c.mu.Lock()
	c.showDone = !c.showDone
	c.mu.Unlock()
	c.FilterTasks(ctx)
}

// ToggleTask asks the service to flip a task's completion, then reloads
func (c *Controller) ToggleTask(ctx context.Context, id int64) error {
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	if _, err := c.service.ToggleTask(ctx, c.auth, id); err != nil {
		notify.Error(c.notifier, err)
		return err
	}
	return c.load(ctx)
}

// AddTask creates a task from draft. A blank description is rejected
// locally. Otherwise the add surface is closed and the list reloaded whether
// or not the creation succeeded.
func (c *Controller) AddTask(ctx context.Context, draft types.Draft) error {
	if strings.TrimSpace(draft.Desc) == "" {
		notify.Warn(c.notifier, InvalidDataTitle, BlankDescriptionMessage)
		return ErrBlankDescription
	}
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	estimateAt := draft.Date
	if estimateAt.IsZero() {
		estimateAt = c.now()
	}

	_, createErr := c.service.CreateTask(ctx, c.auth, api.CreateTaskRequest{
		Desc:       draft.Desc,
		EstimateAt: estimateAt,
	})
	if createErr != nil {
		notify.Error(c.notifier, createErr)
	}

	c.CloseAdd()
	loadErr := c.load(ctx)

	if createErr != nil {
		return createErr
	}
	return loadErr
}

// DeleteTask removes a task on the service, then reloads
func (c *Controller) DeleteTask(ctx context.Context, id int64) error {
	if !c.begin() {
		return ErrBusy
	}
	defer c.end()

	if err := c.service.DeleteTask(ctx, c.auth, id); err != nil {
		notify.Error(c.notifier, err)
		return err
	}
	return c.load(ctx)
}
