package vent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AnshRaj112/serenify-vent/internal/api"
	"github.com/AnshRaj112/serenify-vent/internal/models"
)

type fakeAPI struct {
	mu          sync.Mutex
	creates     []api.CreateVentRequest
	lists       []api.ListVentsParams
	feedbacks   []string
	nextID      int
	createFn    func(req api.CreateVentRequest) (*api.CreateVentResponse, error)
	listFn      func(p api.ListVentsParams) (*api.ListVentsResponse, error)
	feedbackFn  func(req api.SubmitFeedbackRequest) (*api.SubmitFeedbackResponse, error)
	signinUser  *models.User
	signupCalls int
}

func (f *fakeAPI) CreateVent(_ context.Context, req api.CreateVentRequest) (*api.CreateVentResponse, error) {
	f.mu.Lock()
	f.creates = append(f.creates, req)
	f.nextID++
	id := f.nextID
	fn := f.createFn
	f.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	if req.UserID == "" {
		return &api.CreateVentResponse{Success: true, Message: "Vent received"}, nil
	}
	return &api.CreateVentResponse{
		Success: true,
		Message: "Vent created successfully",
		Vent: &models.Vent{
			ID:        fmt.Sprintf("srv-%d", id),
			CreatedAt: time.Date(2026, 10, 1, 12, 0, id, 0, time.UTC),
			UserID:    req.UserID,
			Message:   req.Message,
		},
	}, nil
}

func (f *fakeAPI) ListVents(_ context.Context, p api.ListVentsParams) (*api.ListVentsResponse, error) {
	f.mu.Lock()
	f.lists = append(f.lists, p)
	fn := f.listFn
	f.mu.Unlock()

	if fn != nil {
		return fn(p)
	}
	return &api.ListVentsResponse{Success: true, Vents: []models.Vent{}}, nil
}

func (f *fakeAPI) SubmitFeedback(_ context.Context, req api.SubmitFeedbackRequest) (*api.SubmitFeedbackResponse, error) {
	f.mu.Lock()
	f.feedbacks = append(f.feedbacks, req.Feedback)
	fn := f.feedbackFn
	f.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return &api.SubmitFeedbackResponse{Success: true, Message: "Thank you for your feedback!"}, nil
}

func (f *fakeAPI) Signin(_ context.Context, req api.SigninRequest) (*api.AuthResponse, error) {
	if f.signinUser == nil || f.signinUser.Username != req.Username {
		return nil, &api.Error{Status: 401, Message: "Invalid username or password"}
	}
	u := *f.signinUser
	return &api.AuthResponse{Success: true, Message: "Sign in successful", User: &u}, nil
}

func (f *fakeAPI) Signup(_ context.Context, req api.SignupRequest) (*api.AuthResponse, error) {
	f.mu.Lock()
	f.signupCalls++
	f.mu.Unlock()
	u := models.User{ID: "new-" + req.Username, Username: req.Username}
	return &api.AuthResponse{Success: true, Message: "Account created successfully", User: &u}, nil
}

func (f *fakeAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists)
}

func (f *fakeAPI) lastCreate() api.CreateVentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates[len(f.creates)-1]
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due timers on the caller's goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()
	for _, f := range due {
		f()
	}
}

type recorder struct {
	mu         sync.Mutex
	nudges     []NudgeKind
	dismissed  []NudgeKind
	moderation []Moderation
	prepended  []int
	replaced   int
	appended   []models.Vent
	inputs     []string
	identities []Identity
}

func (r *recorder) IdentityChanged(id Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identities = append(r.identities, id)
}

func (r *recorder) HistoryReplaced([]models.Vent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaced++
}

func (r *recorder) HistoryAppended(_ []models.Vent, v models.Vent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, v)
}

func (r *recorder) HistoryPrepended(_ []models.Vent, added int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prepended = append(r.prepended, added)
}

func (r *recorder) ModerationChanged(m Moderation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderation = append(r.moderation, m)
}

func (r *recorder) InputChanged(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, text)
}

func (r *recorder) Nudge(n Nudge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nudges = append(r.nudges, n.Kind)
}

func (r *recorder) NudgeDismissed(kind NudgeKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dismissed = append(r.dismissed, kind)
}

func (r *recorder) count(kind NudgeKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.nudges {
		if k == kind {
			n++
		}
	}
	return n
}

func (r *recorder) lastInput() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.inputs) == 0 {
		return ""
	}
	return r.inputs[len(r.inputs)-1]
}

// serverPage builds a newest-first page with ids hi..lo.
func serverPage(hi, lo int) []models.Vent {
	var out []models.Vent
	for i := hi; i >= lo; i-- {
		out = append(out, models.Vent{
			ID:        fmt.Sprint(i),
			Message:   fmt.Sprintf("vent %d", i),
			UserID:    "u1",
			CreatedAt: time.Date(2026, 9, 1, 0, i, 0, 0, time.UTC),
		})
	}
	return out
}

func ids(vents []models.Vent) []string {
	out := make([]string, len(vents))
	for i, v := range vents {
		out[i] = v.ID
	}
	return out
}
