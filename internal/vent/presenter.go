package vent

import "github.com/AnshRaj112/serenify-vent/internal/models"

type NudgeKind int

const (
	// NudgeSignIn invites a new guest to sign in so messages are kept.
	NudgeSignIn NudgeKind = iota
	// NudgeAuthChoice asks a guest to sign in, sign up or continue as guest
	// before their first message is sent.
	NudgeAuthChoice
	NudgeEncouragement
	NudgeFeedback
)

// Nudge is a one-off prompt the presenter should surface.
type Nudge struct {
	Kind    NudgeKind
	Title   string
	Message string
}

var nudges = map[NudgeKind]Nudge{
	NudgeSignIn: {
		Kind:    NudgeSignIn,
		Title:   "Save Your Messages Permanently",
		Message: "Want to save your vent messages permanently? Sign in or create an account to keep your messages safe. You can continue as a guest, but your messages will be cleared when you close this window.",
	},
	NudgeAuthChoice: {
		Kind:    NudgeAuthChoice,
		Title:   "Sign In to Save Your Messages",
		Message: "To save your vent messages permanently, please sign in or create an account. You can continue as a guest, but your messages will be cleared when you close this window.",
	},
	NudgeEncouragement: {
		Kind:    NudgeEncouragement,
		Title:   "You're Not Alone",
		Message: "It sounds like a lot is on your mind right now. Take a slow breath. If it would help, one of our therapists is here to listen.",
	},
	NudgeFeedback: {
		Kind:    NudgeFeedback,
		Title:   "How Are We Doing?",
		Message: "You've been venting with Serenify for a while. We'd love to hear how it's going, share your feedback any time.",
	},
}

// Presenter renders controller state. Calls are made without the controller
// lock held and may come from timer goroutines. History slices are never
// mutated after they are handed over.
type Presenter interface {
	IdentityChanged(id Identity)
	HistoryReplaced(history []models.Vent)
	HistoryAppended(history []models.Vent, vent models.Vent)
	// HistoryPrepended reports added older entries at the head; the
	// presenter keeps the reader's position.
	HistoryPrepended(history []models.Vent, added int)
	ModerationChanged(m Moderation)
	InputChanged(text string)
	Nudge(n Nudge)
	NudgeDismissed(kind NudgeKind)
}

// NopPresenter ignores every update.
type NopPresenter struct{}

func (NopPresenter) IdentityChanged(Identity)                   {}
func (NopPresenter) HistoryReplaced([]models.Vent)              {}
func (NopPresenter) HistoryAppended([]models.Vent, models.Vent) {}
func (NopPresenter) HistoryPrepended([]models.Vent, int)        {}
func (NopPresenter) ModerationChanged(Moderation)               {}
func (NopPresenter) InputChanged(string)                        {}
func (NopPresenter) Nudge(Nudge)                                {}
func (NopPresenter) NudgeDismissed(NudgeKind)                   {}
