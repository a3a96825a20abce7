package vent

import (
	"time"

	"github.com/AnshRaj112/serenify-vent/internal/models"
)

// Identity is either a signed-in user or a guest.
type Identity struct {
	User *models.User
}

func Guest() Identity { return Identity{} }

func Authenticated(user models.User) Identity { return Identity{User: &user} }

func (i Identity) IsGuest() bool { return i.User == nil }

func (i Identity) userID() string {
	if i.User == nil {
		return ""
	}
	return i.User.ID
}

type ModerationState int

const (
	Normal ModerationState = iota
	Warned
	Blocked
)

func (s ModerationState) String() string {
	switch s {
	case Warned:
		return "warned"
	case Blocked:
		return "blocked"
	default:
		return "normal"
	}
}

// Moderation is the gate state plus the server's reason text.
type Moderation struct {
	State   ModerationState
	Message string
}

// session is replaced wholesale on logout and identity change, so moderation
// state and the one-shot nudges never carry over to another identity.
type session struct {
	epoch    uint64
	identity Identity

	history []models.Vent // oldest first
	skip    int
	hasMore bool
	loading bool

	moderation   Moderation
	warningSeq   uint64
	warningTimer Timer
	signInTimer  Timer

	input           string
	held            string // guest's first message, waiting for the auth choice
	guestChoiceMade bool

	heuristics heuristics
}

func newSession(epoch uint64, id Identity) *session {
	return &session{epoch: epoch, identity: id, history: []models.Vent{}}
}

func (s *session) stopTimers() {
	if s.warningTimer != nil {
		s.warningTimer.Stop()
		s.warningTimer = nil
	}
	if s.signInTimer != nil {
		s.signInTimer.Stop()
		s.signInTimer = nil
	}
}

// Snapshot is a read-only copy of the session for presenters and tests.
type Snapshot struct {
	Identity   Identity
	History    []models.Vent
	HasMore    bool
	Skip       int
	Loading    bool
	Moderation Moderation
	Input      string
	Attempts   int
}

func (s *session) snapshot() Snapshot {
	return Snapshot{
		Identity:   s.identity,
		History:    s.history,
		HasMore:    s.hasMore,
		Skip:       s.skip,
		Loading:    s.loading,
		Moderation: s.moderation,
		Input:      s.input,
		Attempts:   s.heuristics.attempts,
	}
}

func appendVent(history []models.Vent, v models.Vent) []models.Vent {
	out := make([]models.Vent, 0, len(history)+1)
	out = append(out, history...)
	return append(out, v)
}

// prependPage puts older vents above history, dropping any already present.
func prependPage(page, history []models.Vent) ([]models.Vent, int) {
	seen := make(map[string]struct{}, len(history))
	for _, v := range history {
		seen[v.ID] = struct{}{}
	}
	out := make([]models.Vent, 0, len(page)+len(history))
	for _, v := range page {
		if _, dup := seen[v.ID]; dup {
			continue
		}
		out = append(out, v)
	}
	added := len(out)
	return append(out, history...), added
}

// oldestFirst reverses a newest-first server page into a fresh slice.
func oldestFirst(page []models.Vent) []models.Vent {
	out := make([]models.Vent, len(page))
	for i, v := range page {
		out[len(page)-1-i] = v
	}
	return out
}

func guestVentTime(now time.Time) time.Time {
	return now.UTC().Truncate(time.Millisecond)
}
