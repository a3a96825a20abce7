package vent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-vent/internal/api"
	"github.com/AnshRaj112/serenify-vent/internal/models"
	"github.com/AnshRaj112/serenify-vent/internal/store"
)

var testUser = models.User{ID: "u1", Username: "calm_river"}

type harness struct {
	c     *Controller
	api   *fakeAPI
	clock *fakeClock
	view  *recorder
	store *store.Store
}

func newHarness(t *testing.T, st *store.Store) *harness {
	t.Helper()
	if st == nil {
		st = store.NewMemory("session-1")
	}
	h := &harness{api: &fakeAPI{}, clock: newFakeClock(), view: &recorder{}, store: st}
	h.c = NewController(h.api, st, Options{Presenter: h.view, Clock: h.clock})
	return h
}

func startGuest(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, nil)
	require.NoError(t, h.c.Start(context.Background()))
	return h
}

func startSignedIn(t *testing.T) *harness {
	t.Helper()
	st := store.NewMemory("session-1")
	u := testUser
	require.NoError(t, st.SaveIdentity(context.Background(), &u))
	h := newHarness(t, st)
	require.NoError(t, h.c.Start(context.Background()))
	return h
}

// continueAsGuest gets a guest past the first-send auth choice.
func continueAsGuest(t *testing.T, h *harness) {
	t.Helper()
	_, err := h.c.ContinueAsGuest(context.Background())
	require.NoError(t, err)
}

func TestStart_GuestWithoutStoredState(t *testing.T) {
	h := startGuest(t)

	snap := h.c.Snapshot()
	assert.True(t, snap.Identity.IsGuest())
	assert.Empty(t, snap.History)
	assert.Equal(t, 0, h.api.listCount(), "guests never fetch history")

	h.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, h.view.count(NudgeSignIn))
	h.clock.Advance(time.Millisecond)
	assert.Equal(t, 1, h.view.count(NudgeSignIn))
}

func TestStart_DismissedSignInPromptNeverShows(t *testing.T) {
	h := startGuest(t)

	h.c.DismissSignInPrompt()
	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.view.count(NudgeSignIn))
}

func TestStart_GuestHistoryReloadsInSameSession(t *testing.T) {
	backend := store.NewMemoryBackend()
	first := newHarness(t, store.New(backend, "tab-1"))
	ctx := context.Background()
	require.NoError(t, first.c.Start(ctx))
	continueAsGuest(t, first)

	_, err := first.c.Send(ctx, "v1")
	require.NoError(t, err)
	_, err = first.c.Send(ctx, "v2")
	require.NoError(t, err)
	want := first.c.Snapshot().History
	require.Len(t, want, 2)

	reloaded := newHarness(t, store.New(backend, "tab-1"))
	require.NoError(t, reloaded.c.Start(ctx))
	assert.Equal(t, want, reloaded.c.Snapshot().History)

	// Already chose to continue as guest in this session.
	res, err := reloaded.c.Send(ctx, "v3")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)

	other := newHarness(t, store.New(backend, "tab-2"))
	require.NoError(t, other.c.Start(ctx))
	assert.Empty(t, other.c.Snapshot().History)
}

func TestStart_CorruptStoredStateIsTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"not json", `{"id":"x"}`, "42"} {
		backend := store.NewMemoryBackend()
		require.NoError(t, backend.Set(ctx, store.IdentityKey, []byte("{broken"), 0))
		require.NoError(t, backend.Set(ctx, store.GuestHistoryKeyPrefix+"s", []byte(raw), 0))

		h := newHarness(t, store.New(backend, "s"))
		require.NoError(t, h.c.Start(ctx), raw)
		snap := h.c.Snapshot()
		assert.True(t, snap.Identity.IsGuest(), raw)
		assert.Empty(t, snap.History, raw)

		_, err := backend.Get(ctx, store.IdentityKey)
		assert.ErrorIs(t, err, store.ErrNotFound, "malformed identity is cleared")
	}
}

func TestStart_SignedInLoadsNewestPageOldestFirst(t *testing.T) {
	st := store.NewMemory("s")
	u := testUser
	require.NoError(t, st.SaveIdentity(context.Background(), &u))
	h := newHarness(t, st)
	h.api.listFn = func(p api.ListVentsParams) (*api.ListVentsResponse, error) {
		return &api.ListVentsResponse{Success: true, Vents: serverPage(3, 1), HasMore: true, Total: 40}, nil
	}

	require.NoError(t, h.c.Start(context.Background()))

	snap := h.c.Snapshot()
	assert.False(t, snap.Identity.IsGuest())
	assert.Equal(t, []string{"1", "2", "3"}, ids(snap.History))
	assert.True(t, snap.HasMore)
	assert.Equal(t, 3, snap.Skip)
	assert.Equal(t, api.ListVentsParams{UserID: "u1", Limit: MinPageSize, Skip: 0}, h.api.lists[0])

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.view.count(NudgeSignIn), "signed-in users are not prompted")
}

func TestLoadMore_PrependsOlderPages(t *testing.T) {
	st := store.NewMemory("s")
	u := testUser
	require.NoError(t, st.SaveIdentity(context.Background(), &u))
	h := newHarness(t, st)
	h.c.page = func() int { return 3 }
	h.api.listFn = func(p api.ListVentsParams) (*api.ListVentsResponse, error) {
		switch p.Skip {
		case 0:
			return &api.ListVentsResponse{Success: true, Vents: serverPage(7, 5), HasMore: true}, nil
		case 3:
			return &api.ListVentsResponse{Success: true, Vents: serverPage(4, 2), HasMore: true}, nil
		default:
			return &api.ListVentsResponse{Success: true, Vents: serverPage(1, 1), HasMore: false}, nil
		}
	}
	ctx := context.Background()
	require.NoError(t, h.c.Start(ctx))

	require.NoError(t, h.c.LoadMore(ctx))
	require.NoError(t, h.c.LoadMore(ctx))

	snap := h.c.Snapshot()
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7"}, ids(snap.History))
	assert.False(t, snap.HasMore)
	assert.Equal(t, 7, snap.Skip)
	assert.Equal(t, []int{3, 1}, h.view.prepended)

	err := h.c.LoadMore(ctx)
	assert.ErrorIs(t, err, ErrNoMoreHistory)
	assert.Equal(t, 3, h.api.listCount(), "no request once has_more is false")
	assert.False(t, h.c.Snapshot().HasMore)
}

func TestLoadMore_NoConcurrentRequests(t *testing.T) {
	h := startSignedIn(t)
	h.c.mu.Lock()
	h.c.session.hasMore = true
	h.c.mu.Unlock()

	started := make(chan struct{})
	release := make(chan struct{})
	h.api.listFn = func(p api.ListVentsParams) (*api.ListVentsResponse, error) {
		close(started)
		<-release
		return &api.ListVentsResponse{Success: true, Vents: serverPage(2, 1)}, nil
	}

	done := make(chan error, 1)
	go func() { done <- h.c.LoadMore(context.Background()) }()
	<-started

	assert.ErrorIs(t, h.c.LoadMore(context.Background()), ErrLoadInProgress)
	assert.ErrorIs(t, h.c.LoadInitial(context.Background()), ErrLoadInProgress)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 2, h.api.listCount(), "initial load plus one load-more")
}

func TestLoadMore_DropsVentsAlreadyInHistory(t *testing.T) {
	h := startSignedIn(t)
	h.c.mu.Lock()
	h.c.session.history = oldestFirst(serverPage(5, 4))
	h.c.session.hasMore = true
	h.c.mu.Unlock()
	h.api.listFn = func(p api.ListVentsParams) (*api.ListVentsResponse, error) {
		return &api.ListVentsResponse{Success: true, Vents: serverPage(4, 2), HasMore: false}, nil
	}

	require.NoError(t, h.c.LoadMore(context.Background()))
	assert.Equal(t, []string{"2", "3", "4", "5"}, ids(h.c.Snapshot().History))
	assert.Equal(t, []int{2}, h.view.prepended)
}

func TestLoadHistory_GuestAndFailures(t *testing.T) {
	g := startGuest(t)
	assert.ErrorIs(t, g.c.LoadInitial(context.Background()), ErrNotAuthenticated)

	h := startSignedIn(t)
	h.c.mu.Lock()
	h.c.session.hasMore = true
	h.c.mu.Unlock()
	h.api.listFn = func(api.ListVentsParams) (*api.ListVentsResponse, error) {
		return nil, &api.Error{Status: 500, Message: "Internal Server Error"}
	}
	err := h.c.LoadMore(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.False(t, h.c.Snapshot().Loading, "guard is released after a failure")
}

func TestSend_EmptyMessageNeverReachesNetwork(t *testing.T) {
	h := startSignedIn(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := h.c.Send(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Equal(t, 0, h.api.createCount())
	assert.Equal(t, 0, h.c.Snapshot().Attempts)
}

func TestSend_SignedInHello(t *testing.T) {
	h := startSignedIn(t)

	res, err := h.c.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)

	snap := h.c.Snapshot()
	require.Len(t, snap.History, 1)
	assert.Equal(t, "hello", snap.History[0].Message)
	assert.Equal(t, "srv-1", snap.History[0].ID)
	assert.Equal(t, Normal, snap.Moderation.State)
	assert.Empty(t, snap.Input)
	assert.Equal(t, 1, snap.Skip, "own send shifts the server offsets")
	assert.Equal(t, "u1", h.api.lastCreate().UserID)
}

func TestSend_GuestFirstMessageWaitsForChoice(t *testing.T) {
	h := startGuest(t)
	ctx := context.Background()

	res, err := h.c.Send(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAwaitingAuthChoice, res.Outcome)
	assert.Equal(t, 0, h.api.createCount())
	assert.Equal(t, 1, h.view.count(NudgeAuthChoice))
	assert.Equal(t, "first", h.c.Snapshot().Input)

	res, err = h.c.ContinueAsGuest(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.True(t, strings.HasPrefix(res.Vent.ID, "guest_"))
	assert.Empty(t, res.Vent.UserID)
	assert.Equal(t, "", h.api.lastCreate().UserID, "guest messages are scored without a user id")

	res, err = h.c.Send(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, 1, h.view.count(NudgeAuthChoice), "prompted once")

	stored, err := h.store.LoadGuestHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, []string{stored[0].Message, stored[1].Message})
}

func TestSend_GuestAuthenticatesThenHeldMessageIsSent(t *testing.T) {
	h := startGuest(t)
	ctx := context.Background()
	h.api.listFn = func(api.ListVentsParams) (*api.ListVentsResponse, error) {
		return &api.ListVentsResponse{Success: true, Vents: serverPage(2, 1)}, nil
	}

	_, err := h.c.Send(ctx, "keep this")
	require.NoError(t, err)

	res, err := h.c.Authenticate(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)

	snap := h.c.Snapshot()
	assert.False(t, snap.Identity.IsGuest())
	assert.Equal(t, []string{"1", "2", res.Vent.ID}, ids(snap.History))
	assert.Equal(t, "u1", h.api.lastCreate().UserID)

	stored, err := h.store.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.ID)
}

func TestSend_WarningRestoresInputAndExpires(t *testing.T) {
	h := startSignedIn(t)
	h.api.createFn = func(req api.CreateVentRequest) (*api.CreateVentResponse, error) {
		return &api.CreateVentResponse{Warning: true, Message: "Please keep it kind"}, nil
	}

	res, err := h.c.Send(context.Background(), "rude words")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarned, res.Outcome)

	snap := h.c.Snapshot()
	assert.Equal(t, Moderation{State: Warned, Message: "Please keep it kind"}, snap.Moderation)
	assert.Equal(t, "rude words", snap.Input)
	assert.Equal(t, "rude words", h.view.lastInput())
	assert.Empty(t, snap.History)

	h.clock.Advance(WarningTimeout - time.Millisecond)
	assert.Equal(t, Warned, h.c.Snapshot().Moderation.State)
	h.clock.Advance(time.Millisecond)
	assert.Equal(t, Normal, h.c.Snapshot().Moderation.State)
}

func TestSend_SuccessSupersedesWarning(t *testing.T) {
	h := startSignedIn(t)
	h.api.createFn = func(req api.CreateVentRequest) (*api.CreateVentResponse, error) {
		return &api.CreateVentResponse{Warning: true, Message: "careful"}, nil
	}
	_, err := h.c.Send(context.Background(), "first draft")
	require.NoError(t, err)

	h.api.createFn = nil
	res, err := h.c.Send(context.Background(), "second draft")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, Normal, h.c.Snapshot().Moderation.State)

	// The old expiry must not fire into a later warning.
	h.api.createFn = func(req api.CreateVentRequest) (*api.CreateVentResponse, error) {
		return &api.CreateVentResponse{Warning: true, Message: "again"}, nil
	}
	h.clock.Advance(3 * time.Second)
	_, err = h.c.Send(context.Background(), "third draft")
	require.NoError(t, err)
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, Warned, h.c.Snapshot().Moderation.State)
}

func TestSend_BlockedIsTerminal(t *testing.T) {
	h := startSignedIn(t)
	h.api.createFn = func(req api.CreateVentRequest) (*api.CreateVentResponse, error) {
		return &api.CreateVentResponse{Blocked: true, Message: "restricted"}, nil
	}

	res, err := h.c.Send(context.Background(), "something")
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, res.Outcome)
	assert.Equal(t, "restricted", res.Message)

	snap := h.c.Snapshot()
	assert.Equal(t, Moderation{State: Blocked, Message: "restricted"}, snap.Moderation)
	assert.Empty(t, snap.Input)
	assert.Empty(t, snap.History)
	attempts := snap.Attempts

	for i := 0; i < 3; i++ {
		_, err := h.c.Send(context.Background(), "let me talk")
		assert.ErrorIs(t, err, ErrBlocked)
	}
	assert.Equal(t, 1, h.api.createCount())
	assert.Empty(t, h.c.Snapshot().History)
	assert.Equal(t, attempts, h.c.Snapshot().Attempts, "rejected sends are not tracked")

	h.clock.Advance(time.Minute)
	assert.Equal(t, Blocked, h.c.Snapshot().Moderation.State)
}

func TestSend_ForbiddenOrBlockedErrorBodyBlocks(t *testing.T) {
	for _, apiErr := range []*api.Error{
		{Status: 403, Message: "Your IP has been blocked"},
		{Status: 429, Message: "Too many violations", Blocked: true},
	} {
		h := startSignedIn(t)
		h.api.createFn = func(api.CreateVentRequest) (*api.CreateVentResponse, error) { return nil, apiErr }

		res, err := h.c.Send(context.Background(), "hi")
		require.NoError(t, err)
		assert.Equal(t, OutcomeBlocked, res.Outcome)
		assert.Equal(t, Moderation{State: Blocked, Message: apiErr.Message}, h.c.Snapshot().Moderation)
	}
}

func TestSend_WarningErrorBodyWarns(t *testing.T) {
	h := startSignedIn(t)
	h.api.createFn = func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
		return nil, &api.Error{Status: 400, Message: "Please keep it kind", Warning: true}
	}

	res, err := h.c.Send(context.Background(), "rude words")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarned, res.Outcome)
	assert.Equal(t, Moderation{State: Warned, Message: "Please keep it kind"}, h.c.Snapshot().Moderation)
	assert.Equal(t, "rude words", h.c.Snapshot().Input)

	h.clock.Advance(WarningTimeout)
	assert.Equal(t, Normal, h.c.Snapshot().Moderation.State)
}

func TestSend_TransportFailurePreservesInput(t *testing.T) {
	h := startSignedIn(t)
	h.api.createFn = func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
		return nil, errors.New("connection refused")
	}

	_, err := h.c.Send(context.Background(), "don't lose me")
	assert.ErrorIs(t, err, ErrTransport)

	snap := h.c.Snapshot()
	assert.Equal(t, "don't lose me", snap.Input)
	assert.Equal(t, Normal, snap.Moderation.State)
	assert.Empty(t, snap.History)

	h.api.createFn = func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
		return nil, &api.Error{Status: 502, Message: "Bad Gateway"}
	}
	_, err = h.c.Send(context.Background(), "again")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 502, apiErr.Status)
}

func TestSend_AppendXorModerationFlag(t *testing.T) {
	responses := map[string]func(api.CreateVentRequest) (*api.CreateVentResponse, error){
		"success": nil,
		"warning": func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
			return &api.CreateVentResponse{Warning: true, Message: "w"}, nil
		},
		"blocked": func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
			return &api.CreateVentResponse{Blocked: true, Message: "b"}, nil
		},
		"forbidden": func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
			return nil, &api.Error{Status: 403, Message: "f"}
		},
	}
	for name, fn := range responses {
		t.Run(name, func(t *testing.T) {
			h := startSignedIn(t)
			h.api.createFn = fn

			_, err := h.c.Send(context.Background(), "text")
			require.NoError(t, err)

			snap := h.c.Snapshot()
			appended := len(snap.History) == 1
			flagged := snap.Moderation.State != Normal
			assert.True(t, appended != flagged, "appended=%v flagged=%v", appended, flagged)
		})
	}
}

func TestSend_StaleResponseAfterLogoutIsIgnored(t *testing.T) {
	h := startSignedIn(t)
	started := make(chan struct{})
	release := make(chan struct{})
	h.api.createFn = func(req api.CreateVentRequest) (*api.CreateVentResponse, error) {
		close(started)
		<-release
		return &api.CreateVentResponse{Blocked: true, Message: "restricted"}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.c.Send(context.Background(), "slow")
		done <- err
	}()
	<-started
	require.NoError(t, h.c.Logout(context.Background()))
	close(release)

	assert.ErrorIs(t, <-done, ErrSessionReplaced)
	snap := h.c.Snapshot()
	assert.True(t, snap.Identity.IsGuest())
	assert.Equal(t, Normal, snap.Moderation.State)
}

func TestEncouragement_FiresOnceForBursts(t *testing.T) {
	h := startSignedIn(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := h.c.Send(ctx, "short one")
		require.NoError(t, err)
		h.clock.Advance(2 * time.Second)
		if i == 3 {
			assert.Equal(t, 0, h.view.count(NudgeEncouragement), "four sends are not a burst")
		}
	}
	assert.Equal(t, 1, h.view.count(NudgeEncouragement))

	_, err := h.c.Send(ctx, "seventh")
	require.NoError(t, err)
	assert.Equal(t, 1, h.view.count(NudgeEncouragement))
}

func TestEncouragement_WindowIsRolling(t *testing.T) {
	h := startSignedIn(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := h.c.Send(ctx, "msg")
		require.NoError(t, err)
	}
	h.clock.Advance(31 * time.Second)
	_, err := h.c.Send(ctx, "msg")
	require.NoError(t, err)
	assert.Equal(t, 0, h.view.count(NudgeEncouragement))
}

func TestEncouragement_LongMessage(t *testing.T) {
	h := startSignedIn(t)
	ctx := context.Background()

	_, err := h.c.Send(ctx, strings.Repeat("é", 500))
	require.NoError(t, err)
	assert.Equal(t, 0, h.view.count(NudgeEncouragement), "500 characters is not over the limit")

	_, err = h.c.Send(ctx, strings.Repeat("a", 501))
	require.NoError(t, err)
	assert.Equal(t, 1, h.view.count(NudgeEncouragement))

	_, err = h.c.Send(ctx, "ten chars!")
	require.NoError(t, err)
	assert.Equal(t, 1, h.view.count(NudgeEncouragement))
}

func TestEncouragement_EvaluatedEvenWhenSendFails(t *testing.T) {
	h := startSignedIn(t)
	h.api.createFn = func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
		return nil, errors.New("offline")
	}

	_, err := h.c.Send(context.Background(), strings.Repeat("x", 600))
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, h.view.count(NudgeEncouragement))
}

func TestFeedbackNudge_TenthAttemptRegardlessOfOutcome(t *testing.T) {
	for name, tenth := range map[string]func(api.CreateVentRequest) (*api.CreateVentResponse, error){
		"warned": func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
			return &api.CreateVentResponse{Warning: true, Message: "w"}, nil
		},
		"blocked": func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
			return &api.CreateVentResponse{Blocked: true, Message: "b"}, nil
		},
		"failed": func(api.CreateVentRequest) (*api.CreateVentResponse, error) {
			return nil, errors.New("offline")
		},
	} {
		t.Run(name, func(t *testing.T) {
			h := startSignedIn(t)
			ctx := context.Background()
			for i := 0; i < 9; i++ {
				_, err := h.c.Send(ctx, "msg")
				require.NoError(t, err)
				h.clock.Advance(time.Minute)
			}
			assert.Equal(t, 0, h.view.count(NudgeFeedback))

			h.api.createFn = tenth
			_, _ = h.c.Send(ctx, "tenth")
			assert.Equal(t, 1, h.view.count(NudgeFeedback))

			h.api.createFn = nil
			h.clock.Advance(WarningTimeout)
			for i := 0; i < 5; i++ {
				_, _ = h.c.Send(ctx, "more")
			}
			assert.Equal(t, 1, h.view.count(NudgeFeedback))
		})
	}
}

func TestLogout_StartsFreshGuestSession(t *testing.T) {
	h := startSignedIn(t)
	ctx := context.Background()
	_, err := h.c.Send(ctx, strings.Repeat("a", 501))
	require.NoError(t, err)

	require.NoError(t, h.c.Logout(ctx))

	snap := h.c.Snapshot()
	assert.True(t, snap.Identity.IsGuest())
	assert.Empty(t, snap.History)
	assert.Equal(t, 0, snap.Attempts)

	user, err := h.store.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	// nudges reset with the new session
	continueAsGuest(t, h)
	_, err = h.c.Send(ctx, strings.Repeat("b", 501))
	require.NoError(t, err)
	assert.Equal(t, 2, h.view.count(NudgeEncouragement))
}

func TestClose_ClearsGuestHistory(t *testing.T) {
	h := startGuest(t)
	ctx := context.Background()
	continueAsGuest(t, h)
	_, err := h.c.Send(ctx, "temporary")
	require.NoError(t, err)

	require.NoError(t, h.c.Close(ctx))

	stored, err := h.store.LoadGuestHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.view.count(NudgeSignIn), "timers stop on close")
}

func TestAuthenticate_RejectsInvalidUser(t *testing.T) {
	h := startGuest(t)
	_, err := h.c.Authenticate(context.Background(), models.User{Username: "no id"})
	assert.ErrorIs(t, err, ErrInvalidUser)
	assert.True(t, h.c.Snapshot().Identity.IsGuest())
}

func TestContinueAsGuest_WhenSignedIn(t *testing.T) {
	h := startSignedIn(t)
	_, err := h.c.ContinueAsGuest(context.Background())
	assert.ErrorIs(t, err, ErrNotGuest)
}
