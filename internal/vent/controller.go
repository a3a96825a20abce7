// Package vent is the venting session state machine: identity, history,
// pagination, moderation gating and the one-shot nudges.
package vent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/serenify-vent/internal/api"
	"github.com/AnshRaj112/serenify-vent/internal/models"
	"github.com/AnshRaj112/serenify-vent/internal/store"
)

const (
	SignInPromptDelay = 500 * time.Millisecond
	WarningTimeout    = 5 * time.Second
)

// API is the part of the backend the controller talks to. *api.Client implements it.
type API interface {
	CreateVent(ctx context.Context, req api.CreateVentRequest) (*api.CreateVentResponse, error)
	ListVents(ctx context.Context, p api.ListVentsParams) (*api.ListVentsResponse, error)
	SubmitFeedback(ctx context.Context, req api.SubmitFeedbackRequest) (*api.SubmitFeedbackResponse, error)
	Signin(ctx context.Context, req api.SigninRequest) (*api.AuthResponse, error)
	Signup(ctx context.Context, req api.SignupRequest) (*api.AuthResponse, error)
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSent
	OutcomeWarned
	OutcomeBlocked
	// OutcomeAwaitingAuthChoice: the message is held until ContinueAsGuest or Authenticate.
	OutcomeAwaitingAuthChoice
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeWarned:
		return "warned"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeAwaitingAuthChoice:
		return "awaiting_auth_choice"
	default:
		return "none"
	}
}

// SendResult describes what happened to one message.
type SendResult struct {
	Outcome Outcome
	Vent    models.Vent // set for OutcomeSent
	Message string      // server text for warnings and blocks
}

type Options struct {
	Presenter  Presenter
	Clock      Clock
	Logger     *zerolog.Logger
	Thresholds Thresholds
	// PageSize returns how many vents to fetch per page. Defaults to MinPageSize.
	PageSize func() int
}

// Controller owns one venting session at a time. It is safe for concurrent
// use; the lock is never held across network or storage calls.
type Controller struct {
	api   API
	store store.SessionStore
	view  Presenter
	clock Clock
	log   zerolog.Logger
	th    Thresholds
	page  func() int

	mu      sync.Mutex
	session *session
	epoch   uint64

	// saveMu orders guest history writes and clears. Taken before mu.
	saveMu sync.Mutex
}

func NewController(client API, st store.SessionStore, opts Options) *Controller {
	c := &Controller{
		api:   client,
		store: st,
		view:  opts.Presenter,
		clock: opts.Clock,
		log:   zerolog.Nop(),
		th:    opts.Thresholds,
		page:  opts.PageSize,
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if c.view == nil {
		c.view = NopPresenter{}
	}
	if c.clock == nil {
		c.clock = systemClock{}
	}
	if c.th == (Thresholds{}) {
		c.th = DefaultThresholds
	}
	if c.page == nil {
		c.page = func() int { return MinPageSize }
	}
	c.session = newSession(0, Guest())
	return c
}

// events collects presenter calls made while the lock is held.
type events []func(Presenter)

func (e *events) add(f func(Presenter)) { *e = append(*e, f) }

func (c *Controller) flush(evs events) {
	for _, f := range evs {
		f(c.view)
	}
}

// replaceSession must be called with c.mu held.
func (c *Controller) replaceSession(id Identity, evs *events) *session {
	c.session.stopTimers()
	c.epoch++
	s := newSession(c.epoch, id)
	c.session = s
	evs.add(func(p Presenter) { p.IdentityChanged(id) })
	history := s.history
	evs.add(func(p Presenter) { p.HistoryReplaced(history) })
	evs.add(func(p Presenter) { p.ModerationChanged(Moderation{}) })
	evs.add(func(p Presenter) { p.InputChanged("") })
	return s
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.snapshot()
}

// Start resolves the identity and loads the matching history: from the
// server when signed in, from the session store for guests.
func (c *Controller) Start(ctx context.Context) error {
	user, err := c.store.LoadIdentity(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("⚠️ could not read stored identity, continuing as guest")
		user = nil
	}

	if user.Valid() {
		var evs events
		c.mu.Lock()
		c.replaceSession(Authenticated(*user), &evs)
		c.mu.Unlock()
		c.flush(evs)

		c.log.Info().Str("user_id", user.ID).Msg("✅ signed in from stored identity")
		if err := c.LoadInitial(ctx); err != nil && !errors.Is(err, ErrSessionReplaced) {
			return err
		}
		return nil
	}

	history, err := c.store.LoadGuestHistory(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("⚠️ could not read guest history")
		history = []models.Vent{}
	}

	var evs events
	c.mu.Lock()
	s := c.replaceSession(Guest(), &evs)
	s.history = history
	// A guest who already has messages in this session chose to continue before.
	s.guestChoiceMade = len(history) > 0
	evs.add(func(p Presenter) { p.HistoryReplaced(history) })
	c.scheduleSignInPrompt(s)
	c.mu.Unlock()
	c.flush(evs)
	return nil
}

// scheduleSignInPrompt must be called with c.mu held.
func (c *Controller) scheduleSignInPrompt(s *session) {
	epoch := s.epoch
	s.signInTimer = c.clock.AfterFunc(SignInPromptDelay, func() {
		c.mu.Lock()
		if c.session.epoch != epoch || c.session.signInTimer == nil {
			c.mu.Unlock()
			return
		}
		c.session.signInTimer = nil
		c.mu.Unlock()
		c.view.Nudge(nudges[NudgeSignIn])
	})
}

// DismissSignInPrompt cancels the pending sign-in prompt, or closes it if shown.
func (c *Controller) DismissSignInPrompt() {
	c.mu.Lock()
	if t := c.session.signInTimer; t != nil {
		t.Stop()
		c.session.signInTimer = nil
	}
	c.mu.Unlock()
	c.view.NudgeDismissed(NudgeSignIn)
}

// LoadInitial replaces history with the newest page.
func (c *Controller) LoadInitial(ctx context.Context) error {
	return c.loadHistory(ctx, true)
}

// LoadMore prepends the next older page.
func (c *Controller) LoadMore(ctx context.Context) error {
	return c.loadHistory(ctx, false)
}

func (c *Controller) loadHistory(ctx context.Context, initial bool) error {
	c.mu.Lock()
	s := c.session
	switch {
	case s.identity.IsGuest():
		c.mu.Unlock()
		return ErrNotAuthenticated
	case s.loading:
		c.mu.Unlock()
		return ErrLoadInProgress
	case !initial && !s.hasMore:
		c.mu.Unlock()
		return ErrNoMoreHistory
	}
	skip := s.skip
	if initial {
		skip = 0
	}
	params := api.ListVentsParams{UserID: s.identity.userID(), Limit: c.page(), Skip: skip}
	s.loading = true
	epoch := s.epoch
	c.mu.Unlock()

	resp, err := c.api.ListVents(ctx, params)

	var evs events
	c.mu.Lock()
	if c.session.epoch != epoch {
		c.mu.Unlock()
		return ErrSessionReplaced
	}
	s.loading = false
	if err != nil {
		c.mu.Unlock()
		c.log.Error().Err(err).Int("skip", params.Skip).Msg("❌ failed to load vents")
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if !resp.Success {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTransport, resp.Message)
	}

	page := oldestFirst(resp.Vents)
	if initial {
		s.history = page
		evs.add(func(p Presenter) { p.HistoryReplaced(page) })
	} else {
		history, added := prependPage(page, s.history)
		s.history = history
		evs.add(func(p Presenter) { p.HistoryPrepended(history, added) })
	}
	s.hasMore = resp.HasMore
	s.skip = params.Skip + len(resp.Vents)
	c.mu.Unlock()

	c.flush(evs)
	return nil
}

// Send submits text for moderation and, when accepted, appends it to history.
// A guest's first message is held until ContinueAsGuest or Authenticate.
func (c *Controller) Send(ctx context.Context, text string) (SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return SendResult{}, ErrEmptyMessage
	}

	c.mu.Lock()
	s := c.session
	if s.moderation.State == Blocked {
		c.mu.Unlock()
		return SendResult{}, ErrBlocked
	}
	if s.identity.IsGuest() && !s.guestChoiceMade {
		s.held = text
		s.input = text
		c.mu.Unlock()
		c.view.InputChanged(text)
		c.view.Nudge(nudges[NudgeAuthChoice])
		return SendResult{Outcome: OutcomeAwaitingAuthChoice}, nil
	}
	c.mu.Unlock()

	return c.dispatch(ctx, text)
}

// ContinueAsGuest records the guest's choice and sends the held message, if any.
func (c *Controller) ContinueAsGuest(ctx context.Context) (SendResult, error) {
	c.mu.Lock()
	s := c.session
	if !s.identity.IsGuest() {
		c.mu.Unlock()
		return SendResult{}, ErrNotGuest
	}
	s.guestChoiceMade = true
	text := s.held
	s.held = ""
	c.mu.Unlock()
	c.view.NudgeDismissed(NudgeAuthChoice)

	if text == "" {
		return SendResult{}, nil
	}
	return c.dispatch(ctx, text)
}

func (c *Controller) dispatch(ctx context.Context, text string) (SendResult, error) {
	var evs events
	c.mu.Lock()
	s := c.session
	if s.moderation.State == Blocked {
		c.mu.Unlock()
		return SendResult{}, ErrBlocked
	}
	for _, kind := range s.heuristics.track(c.th, c.clock.Now(), text) {
		n := nudges[kind]
		evs.add(func(p Presenter) { p.Nudge(n) })
	}
	s.input = ""
	evs.add(func(p Presenter) { p.InputChanged("") })
	identity := s.identity
	epoch := s.epoch
	c.mu.Unlock()
	c.flush(evs)

	resp, err := c.api.CreateVent(ctx, api.CreateVentRequest{Message: text, UserID: identity.userID()})

	evs = nil
	c.mu.Lock()
	if c.session.epoch != epoch {
		c.mu.Unlock()
		return SendResult{}, ErrSessionReplaced
	}

	var (
		result SendResult
		outErr error
		saved  bool
	)
	switch {
	case err != nil:
		if apiErr, ok := api.AsError(err); ok {
			if apiErr.Forbidden() || apiErr.Blocked {
				result = c.block(s, apiErr.Message, &evs)
				break
			}
			if apiErr.Warning {
				result = c.warn(s, apiErr.Message, text, &evs)
				break
			}
		}
		c.restoreInput(s, text, &evs)
		c.log.Error().Err(err).Msg("❌ failed to send vent")
		outErr = fmt.Errorf("%w: %w", ErrTransport, err)
	case resp.Blocked:
		result = c.block(s, resp.Message, &evs)
	case resp.Warning:
		result = c.warn(s, resp.Message, text, &evs)
	case resp.Success:
		v := c.acceptedVent(identity, resp, text)
		s.history = appendVent(s.history, v)
		if !identity.IsGuest() && resp.Vent != nil {
			// newest-first offsets shift by one on the server
			s.skip++
		}
		saved = identity.IsGuest()
		history := s.history
		evs.add(func(p Presenter) { p.HistoryAppended(history, v) })
		if s.moderation.State == Warned {
			c.clearWarning(s, &evs)
		}
		result = SendResult{Outcome: OutcomeSent, Vent: v}
	default:
		c.restoreInput(s, text, &evs)
		outErr = fmt.Errorf("%w: %s", ErrTransport, resp.Message)
	}
	c.mu.Unlock()
	c.flush(evs)

	if saved {
		c.saveGuestHistory(ctx, epoch)
	}
	return result, outErr
}

// saveGuestHistory writes the session's history as it stands when the write
// starts, so the last write always carries every accepted message. Nothing is
// written once the session has been replaced or closed.
func (c *Controller) saveGuestHistory(ctx context.Context, epoch uint64) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if c.session.epoch != epoch || !c.session.identity.IsGuest() {
		c.mu.Unlock()
		return
	}
	history := c.session.history
	c.mu.Unlock()

	if err := c.store.SaveGuestHistory(ctx, history); err != nil {
		c.log.Warn().Err(err).Msg("⚠️ failed to save guest history")
	}
}

func (c *Controller) acceptedVent(id Identity, resp *api.CreateVentResponse, text string) models.Vent {
	if !id.IsGuest() && resp.Vent != nil {
		return *resp.Vent
	}
	v := models.Vent{
		ID:        newGuestID(c.clock.Now()),
		CreatedAt: guestVentTime(c.clock.Now()),
		Message:   text,
	}
	if !id.IsGuest() {
		v.UserID = id.User.ID
	}
	return v
}

func newGuestID(now time.Time) string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("guest_%d", now.UnixMilli())
	}
	return "guest_" + id.String()
}

// block, warn, clearWarning and restoreInput must be called with c.mu held.

func (c *Controller) block(s *session, reason string, evs *events) SendResult {
	if s.warningTimer != nil {
		s.warningTimer.Stop()
		s.warningTimer = nil
	}
	s.moderation = Moderation{State: Blocked, Message: reason}
	s.input = ""
	s.held = ""
	m := s.moderation
	evs.add(func(p Presenter) { p.ModerationChanged(m) })
	evs.add(func(p Presenter) { p.InputChanged("") })
	c.log.Warn().Str("reason", reason).Msg("🚫 session blocked by moderation")
	return SendResult{Outcome: OutcomeBlocked, Message: reason}
}

func (c *Controller) warn(s *session, reason, text string, evs *events) SendResult {
	if s.warningTimer != nil {
		s.warningTimer.Stop()
	}
	s.moderation = Moderation{State: Warned, Message: reason}
	s.warningSeq++
	seq, epoch := s.warningSeq, s.epoch
	s.warningTimer = c.clock.AfterFunc(WarningTimeout, func() {
		var evs events
		c.mu.Lock()
		cur := c.session
		if cur.epoch != epoch || cur.warningSeq != seq || cur.moderation.State != Warned {
			c.mu.Unlock()
			return
		}
		c.clearWarning(cur, &evs)
		c.mu.Unlock()
		c.flush(evs)
	})
	m := s.moderation
	evs.add(func(p Presenter) { p.ModerationChanged(m) })
	c.restoreInput(s, text, evs)
	return SendResult{Outcome: OutcomeWarned, Message: reason}
}

func (c *Controller) clearWarning(s *session, evs *events) {
	if s.warningTimer != nil {
		s.warningTimer.Stop()
		s.warningTimer = nil
	}
	s.moderation = Moderation{}
	evs.add(func(p Presenter) { p.ModerationChanged(Moderation{}) })
}

func (c *Controller) restoreInput(s *session, text string, evs *events) {
	s.input = text
	evs.add(func(p Presenter) { p.InputChanged(text) })
}

// Authenticate switches to user, loads their history and sends any message
// held while the guest was choosing.
func (c *Controller) Authenticate(ctx context.Context, user models.User) (SendResult, error) {
	if !user.Valid() {
		return SendResult{}, ErrInvalidUser
	}
	if err := c.store.SaveIdentity(ctx, &user); err != nil {
		return SendResult{}, fmt.Errorf("save identity: %w", err)
	}

	var evs events
	c.saveMu.Lock()
	if err := c.store.ClearGuestHistory(ctx); err != nil {
		c.log.Warn().Err(err).Msg("⚠️ failed to clear guest history")
	}
	c.mu.Lock()
	held := c.session.held
	s := c.replaceSession(Authenticated(user), &evs)
	s.input = held
	c.mu.Unlock()
	c.saveMu.Unlock()
	c.flush(evs)
	if held != "" {
		c.view.InputChanged(held)
	}

	c.log.Info().Str("user_id", user.ID).Msg("✅ signed in")
	if err := c.LoadInitial(ctx); err != nil {
		return SendResult{}, err
	}
	if held == "" {
		return SendResult{}, nil
	}
	return c.dispatch(ctx, held)
}

// Logout forgets the identity and any guest messages and starts a fresh
// guest session.
func (c *Controller) Logout(ctx context.Context) error {
	var errs []error
	if err := c.store.ClearIdentity(ctx); err != nil {
		errs = append(errs, err)
	}

	var evs events
	c.saveMu.Lock()
	if err := c.store.ClearGuestHistory(ctx); err != nil {
		errs = append(errs, err)
	}
	c.mu.Lock()
	c.replaceSession(Guest(), &evs)
	c.mu.Unlock()
	c.saveMu.Unlock()
	c.flush(evs)

	c.log.Info().Msg("👋 logged out")
	return errors.Join(errs...)
}

// Close ends the session. Guest messages are cleared from the store;
// responses still in flight are ignored.
func (c *Controller) Close(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	guest := c.session.identity.IsGuest()
	c.session.stopTimers()
	c.epoch++
	c.session = newSession(c.epoch, c.session.identity)
	c.mu.Unlock()

	if guest {
		if err := c.store.ClearGuestHistory(ctx); err != nil {
			return fmt.Errorf("clear guest history: %w", err)
		}
	}
	return nil
}
