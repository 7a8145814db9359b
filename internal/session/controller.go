// Package session holds the credentials form and turns it into a session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Gadeoli/todoapp-mobile/internal/api"
	"github.com/Gadeoli/todoapp-mobile/internal/notify"
	"github.com/Gadeoli/todoapp-mobile/internal/prefs"
	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

// RegisteredMessage confirms a successful sign-up
const RegisteredMessage = "User registered!"

var (
	ErrInvalidForm = errors.New("form is not submittable")
	ErrBusy        = errors.New("a submit is already in flight")
	ErrNoSession   = errors.New("no stored session")
)

// Service is the part of the task service used for authentication
type Service interface {
	Signup(ctx context.Context, req api.SignupRequest) (*types.Registration, error)
	Signin(ctx context.Context, req api.SigninRequest) (*types.Session, error)
}

// Navigator moves the application into the authenticated area
type Navigator interface {
	Authenticated(session *types.Session, auth api.Auth)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(session *types.Session, auth api.Auth)

// Authenticated implements Navigator
func (f NavigatorFunc) Authenticated(session *types.Session, auth api.Auth) {
	f(session, auth)
}

// Result is the outcome of a successful submit: a session after sign-in,
// the (possibly nil) registration after sign-up.
type Result struct {
	Session      *types.Session
	Registration *types.Registration
}

// Controller owns the credentials form and the current request auth
type Controller struct {
	service   Service
	store     prefs.Store
	notifier  notify.Notifier
	navigator Navigator
	logger    *log.Logger

	mu   sync.Mutex
	form Form
	mode Mode
	busy bool
	auth api.Auth
}

// NewController creates a controller in SignIn mode with an empty form
func NewController(service Service, store prefs.Store, notifier notify.Notifier, navigator Navigator) *Controller {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Controller{
		service:   service,
		store:     store,
		notifier:  notifier,
		navigator: navigator,
		logger:    log.Default(),
	}
}

// SetLogger replaces the logger used for persistence warnings
func (c *Controller) SetLogger(logger *log.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Form returns a copy of the current form
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetForm replaces the whole form
func (c *Controller) SetForm(form Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form
}

func (c *Controller) SetName(v string)            { c.update(func(f *Form) { f.Name = v }) }
func (c *Controller) SetEmail(v string)           { c.update(func(f *Form) { f.Email = v }) }
func (c *Controller) SetPassword(v string)        { c.update(func(f *Form) { f.Password = v }) }
func (c *Controller) SetConfirmPassword(v string) { c.update(func(f *Form) { f.ConfirmPassword = v }) }

func (c *Controller) update(fn func(*Form)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.form)
}

// Mode returns the current mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode selects a mode directly
func (c *Controller) SetMode(mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// ToggleMode switches between SignIn and SignUp, keeping the form
func (c *Controller) ToggleMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == SignIn {
		c.mode = SignUp
	} else {
		c.mode = SignIn
	}
	return c.mode
}

// CanSubmit reports whether the submit trigger is enabled
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.busy && Validate(c.form, c.mode)
}

// Busy reports whether a submit is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Auth returns the request auth of the current session
func (c *Controller) Auth() api.Auth {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auth
}

// Submit signs in or registers depending on the mode. Service failures are
// notified once and returned; the form is kept.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Result{}, ErrBusy
	}
	if !Validate(c.form, c.mode) {
		c.mu.Unlock()
		return Result{}, ErrInvalidForm
	}
	c.busy = true
	form, mode := c.form, c.mode
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if mode == SignUp {
		return c.signup(ctx, form)
	}
	return c.signin(ctx, form)
}

func (c *Controller) signup(ctx context.Context, form Form) (Result, error) {
	reg, err := c.service.Signup(ctx, api.SignupRequest{
		Name:            form.Name,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		notify.Error(c.notifier, err)
		return Result{}, err
	}

	notify.Success(c.notifier, RegisteredMessage)

	c.mu.Lock()
	c.form = Form{}
	c.mu.Unlock()

	return Result{Registration: reg}, nil
}

func (c *Controller) signin(ctx context.Context, form Form) (Result, error) {
	session, err := c.service.Signin(ctx, api.SigninRequest{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		notify.Error(c.notifier, err)
		return Result{}, err
	}

	if err := c.store.Set(ctx, prefs.KeyUserData, string(session.Raw)); err != nil {
		c.logger.Printf("warning: failed to persist session: %v", err)
	}

	auth := api.NewAuth(session)
	c.mu.Lock()
	c.auth = auth
	c.mu.Unlock()

	if c.navigator != nil {
		c.navigator.Authenticated(session, auth)
	}
	return Result{Session: session}, nil
}

// Restore loads the session persisted by a previous sign-in
func (c *Controller) Restore(ctx context.Context) (*types.Session, error) {
	raw, err := c.store.Get(ctx, prefs.KeyUserData)
	if errors.Is(err, prefs.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	session, err := types.ParseSession([]byte(raw))
	if err != nil {
		c.logger.Printf("warning: discarding unreadable session: %v", err)
		return nil, ErrNoSession
	}
	if session.Token == "" {
		return nil, ErrNoSession
	}

	c.mu.Lock()
	c.auth = api.NewAuth(session)
	c.mu.Unlock()
	return session, nil
}

// SignOut forgets the current session, in memory and in the store
func (c *Controller) SignOut(ctx context.Context) error {
	c.mu.Lock()
	c.auth = api.Auth{}
	c.mu.Unlock()

	if err := c.store.Delete(ctx, prefs.KeyUserData); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
