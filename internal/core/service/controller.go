package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/telemetry/logger"
	"github.com/complitracker/complitracker-go/pkg/token"
)

// User-facing messages used when the backend supplies none.
const (
	MsgLoginFailed         = "Login failed"
	MsgRegisterFailed      = "Registration failed. Please try again."
	MsgRegistered          = "Registration successful! Please login with your credentials."
	MsgRefreshFailed       = "Session refresh failed"
	MsgForgotFailed        = "Failed to send password reset email"
	MsgResetFailed         = "Failed to reset password"
	MsgSessionUnavailable  = "Session storage unavailable"
	MsgAlreadyLoggedIn     = "Already logged in"
	MsgLoginRequired       = "Please log in first"
	MsgNoRefreshToken      = "No refresh token available"
	MsgMalformedLoginReply = "Login failed: the server returned no token"
)

// TokenStore persists the session token.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
}

// RefreshTokenStore is implemented by stores that also keep a refresh
// token. Clear on the TokenStore must remove it as well.
type RefreshTokenStore interface {
	SaveRefresh(ctx context.Context, token string) error
	LoadRefresh(ctx context.Context) (string, bool, error)
}

// AuthAPI is the remote authentication service.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) domain.Result[domain.LoginResponse]
	Register(ctx context.Context, req domain.RegisterRequest) domain.Result[domain.Empty]
	CurrentUser(ctx context.Context, token string) domain.Result[*domain.User]
	Refresh(ctx context.Context, refreshToken string) domain.Result[domain.TokenPair]
	ForgotPassword(ctx context.Context, email string) domain.Result[domain.Empty]
	ResetPassword(ctx context.Context, resetToken, newPassword string) domain.Result[domain.Empty]
}

// Recorder receives session transitions for metrics.
type Recorder interface {
	SessionTransition(to domain.Status)
}

type nopRecorder struct{}

func (nopRecorder) SessionTransition(domain.Status) {}

// EventKind distinguishes controller events.
type EventKind int

const (
	// EventStateChanged carries the new State.
	EventStateChanged EventKind = iota + 1
	// EventNavigate carries a navigation Intent.
	EventNavigate
)

// Event is delivered to subscribers.
type Event struct {
	Kind   EventKind
	State  domain.State
	Intent domain.Intent
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) ControllerOption {
	return func(c *Controller) {
		c.recorder = r
	}
}

// Controller is the single source of truth for session state.
//
// Operations block on the remote call, never panic, and report failure
// through their boolean result and LastError. They are not de-duplicated:
// overlapping calls apply their transitions in the order they complete.
//
// Subscribers run synchronously, in transition order, after the state lock
// is released. They may read State but must not call operations that
// transition, or they will deadlock.
type Controller struct {
	store     TokenStore
	validator *TokenValidator
	api       AuthAPI
	logger    logger.Logger
	recorder  Recorder
	now       func() time.Time

	mu        sync.Mutex
	state     domain.State
	lastError string

	// emitMu orders event delivery across goroutines.
	emitMu    sync.Mutex
	listeners map[int]func(Event)
	nextID    int
}

// NewController creates a controller in StatusUnknown.
func NewController(store TokenStore, validator *TokenValidator, api AuthAPI, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:     store,
		validator: validator,
		api:       api,
		logger:    logger.Default(),
		recorder:  nopRecorder{},
		now:       time.Now,
		state:     domain.UnknownState(),
		listeners: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.validator == nil {
		c.validator = NewTokenValidator(0)
	}
	return c
}

// State returns the current session state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Token returns the held session token, or "" when not authenticated.
func (c *Controller) Token() string {
	return c.State().Token
}

// LastError returns the message of the most recent failed operation.
// Successful operations reset it.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// Subscribe registers fn for events and returns a function that removes it.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Init reads the stored token and settles the initial state. It reports
// whether the session ended Authenticated. Verification is silent: a
// rejected token leaves LastError untouched.
func (c *Controller) Init(ctx context.Context) bool {
	tok, ok, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("load session token failed", "error", err)
		c.settle(domain.AnonymousState(), nil)
		return false
	}
	if !ok {
		c.logger.Debug("no stored session token")
		c.settle(domain.AnonymousState(), nil)
		return false
	}
	return c.verify(ctx, tok)
}

// Resync re-reads the store after another process changed it. Nothing
// happens when the stored token equals the held one.
func (c *Controller) Resync(ctx context.Context) bool {
	tok, ok, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("resync: load session token failed", "error", err)
		return c.State().IsAuthenticated()
	}

	held := c.State()
	if held.Status != domain.StatusUnknown && token.Equal(tok, held.Token) {
		return held.IsAuthenticated()
	}

	c.logger.Debug("session token changed elsewhere",
		"held", token.Fingerprint(held.Token),
		"stored", token.Fingerprint(tok))

	if !ok {
		c.settle(domain.AnonymousState(), nil)
		return false
	}
	return c.verify(ctx, tok)
}

// verify runs the local expiry check and then asks the backend for the
// user. Any failure clears the store.
func (c *Controller) verify(ctx context.Context, tok string) bool {
	log := c.logger.With("token_fp", token.Fingerprint(tok))

	if _, err := c.validator.Check(tok, c.now()); err != nil {
		log.Debug("stored session token rejected locally", "error", err)
		c.clearStore(ctx)
		c.settle(domain.AnonymousState(), nil)
		return false
	}

	res := c.api.CurrentUser(ctx, tok)
	if !res.OK || res.Value == nil {
		log.Info("session token rejected by backend", "error", res.Err)
		c.clearStore(ctx)
		c.settle(domain.AnonymousState(), nil)
		return false
	}

	log.Debug("session restored", "user_id", res.Value.ID)
	c.settle(domain.AuthenticatedState(res.Value, tok), nil)
	return true
}

// Login exchanges credentials for a session. On success the token is
// stored, the state becomes Authenticated and an IntentDefault is emitted.
// On failure the state and store are left as they were.
func (c *Controller) Login(ctx context.Context, creds domain.Credentials) bool {
	c.mu.Lock()
	if c.state.IsAuthenticated() {
		c.lastError = MsgAlreadyLoggedIn
		c.mu.Unlock()
		return false
	}
	c.lastError = ""
	c.mu.Unlock()

	res := c.api.Login(ctx, creds)
	if !res.OK {
		c.logger.Info("login failed", "error", res.Err)
		c.setError(domain.MessageOf(res.Err, MsgLoginFailed))
		return false
	}

	resp := res.Value
	if resp.Token == "" {
		c.logger.Warn("login response carried no token")
		c.setError(MsgMalformedLoginReply)
		return false
	}

	user := resp.User
	if user == nil {
		ur := c.api.CurrentUser(ctx, resp.Token)
		if !ur.OK || ur.Value == nil {
			c.logger.Warn("login succeeded but user lookup failed", "error", ur.Err)
			c.setError(domain.MessageOf(ur.Err, MsgLoginFailed))
			return false
		}
		user = ur.Value
	}

	if err := c.store.Save(ctx, resp.Token); err != nil {
		c.logger.Error("save session token failed", "error", err)
		c.setError(MsgSessionUnavailable)
		return false
	}
	if rs, ok := c.store.(RefreshTokenStore); ok {
		if err := rs.SaveRefresh(ctx, resp.RefreshToken); err != nil {
			c.logger.Warn("save refresh token failed", "error", err)
		}
	}

	c.logger.Info("logged in",
		"user_id", user.ID,
		"token_fp", token.Fingerprint(resp.Token))
	c.settle(domain.AuthenticatedState(user, resp.Token), &domain.Intent{Kind: domain.IntentDefault})
	return true
}

// Register creates an account. Registration never authenticates: on
// success an IntentLogin with a confirmation message is emitted.
func (c *Controller) Register(ctx context.Context, req domain.RegisterRequest) bool {
	c.setError("")

	res := c.api.Register(ctx, req)
	if !res.OK {
		c.logger.Info("registration failed", "error", res.Err)
		c.setError(domain.MessageOf(res.Err, MsgRegisterFailed))
		return false
	}

	c.logger.Info("registered", "email", req.Email)
	c.emit(Event{Kind: EventNavigate, Intent: domain.Intent{Kind: domain.IntentLogin, Message: MsgRegistered}})
	return true
}

// Logout clears the store and the user and emits IntentLogin. It is
// idempotent; when already Anonymous only the intent is emitted.
func (c *Controller) Logout(ctx context.Context) {
	c.setError("")
	c.clearStore(ctx)
	c.logger.Info("logged out")
	c.settle(domain.AnonymousState(), &domain.Intent{Kind: domain.IntentLogin})
}

// Refresh swaps the session token for a new one using the stored refresh
// token. The user is kept. A rejected refresh ends the session.
func (c *Controller) Refresh(ctx context.Context) bool {
	held := c.State()
	if !held.IsAuthenticated() {
		c.setError(MsgLoginRequired)
		return false
	}

	rs, ok := c.store.(RefreshTokenStore)
	if !ok {
		c.setError(MsgNoRefreshToken)
		return false
	}
	refresh, ok, err := rs.LoadRefresh(ctx)
	if err != nil {
		c.logger.Warn("load refresh token failed", "error", err)
		c.setError(MsgSessionUnavailable)
		return false
	}
	if !ok {
		c.setError(MsgNoRefreshToken)
		return false
	}

	c.setError("")
	res := c.api.Refresh(ctx, refresh)
	if res.OK {
		if _, err := c.validator.Check(res.Value.AccessToken, c.now()); err != nil {
			res = domain.Fail[domain.TokenPair](domain.ErrBadResponse.WithCause(err))
		}
	}
	if !res.OK {
		c.logger.Info("token refresh failed", "error", res.Err)
		c.clearStore(ctx)
		c.setError(domain.MessageOf(res.Err, MsgRefreshFailed))
		c.settle(domain.AnonymousState(), nil)
		return false
	}

	pair := res.Value
	if err := c.store.Save(ctx, pair.AccessToken); err != nil {
		c.logger.Error("save refreshed token failed", "error", err)
		c.setError(MsgSessionUnavailable)
		return false
	}
	if pair.RefreshToken != "" {
		if err := rs.SaveRefresh(ctx, pair.RefreshToken); err != nil {
			c.logger.Warn("save refresh token failed", "error", err)
		}
	}

	c.logger.Debug("session token refreshed", "token_fp", token.Fingerprint(pair.AccessToken))
	c.settle(domain.AuthenticatedState(held.User, pair.AccessToken), nil)
	return true
}

// RequestPasswordReset asks the backend to mail a reset link.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) bool {
	c.setError("")
	res := c.api.ForgotPassword(ctx, email)
	if !res.OK {
		c.setError(domain.MessageOf(res.Err, MsgForgotFailed))
		return false
	}
	return true
}

// ResetPassword sets a new password using a reset token from the mail.
func (c *Controller) ResetPassword(ctx context.Context, resetToken, newPassword string) bool {
	c.setError("")
	res := c.api.ResetPassword(ctx, resetToken, newPassword)
	if !res.OK {
		c.setError(domain.MessageOf(res.Err, MsgResetFailed))
		return false
	}
	return true
}

func (c *Controller) clearStore(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("clear session token failed", "error", err)
	}
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.lastError = msg
	c.mu.Unlock()
}

// settle applies next and emits a state change if it differs from the
// held state, followed by intent if given.
func (c *Controller) settle(next domain.State, intent *domain.Intent) {
	c.mu.Lock()
	changed := !c.state.Equal(next)
	c.state = next
	listeners := c.snapshotListeners()
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	if changed {
		c.recorder.SessionTransition(next.Status)
		deliver(listeners, Event{Kind: EventStateChanged, State: next})
	}
	if intent != nil {
		deliver(listeners, Event{Kind: EventNavigate, State: next, Intent: *intent})
	}
}

func (c *Controller) emit(ev Event) {
	c.mu.Lock()
	ev.State = c.state
	listeners := c.snapshotListeners()
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	deliver(listeners, ev)
}

// snapshotListeners must be called with mu held.
func (c *Controller) snapshotListeners() []func(Event) {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		out = append(out, c.listeners[id])
	}
	return out
}

func deliver(listeners []func(Event), ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
