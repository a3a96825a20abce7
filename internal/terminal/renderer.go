// Package terminal is the line-oriented front end for a vent session.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/AnshRaj112/serenify-vent/internal/models"
	"github.com/AnshRaj112/serenify-vent/internal/vent"
)

const timeLayout = "Jan 2 15:04"

// Renderer prints controller updates. A terminal cannot insert lines above
// what was already printed, so older pages are printed as a labelled block.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

func (r *Renderer) println(a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, a...)
}

func (r *Renderer) IdentityChanged(id vent.Identity) {
	if id.IsGuest() {
		r.println("👤 Venting as a guest. Your messages are cleared when you close this session.")
		return
	}
	r.println(fmt.Sprintf("👋 Welcome, %s", id.User.DisplayName()))
}

func (r *Renderer) HistoryReplaced(history []models.Vent) {
	if len(history) == 0 {
		return
	}
	r.println(formatBlock(history))
}

func (r *Renderer) HistoryAppended(_ []models.Vent, v models.Vent) {
	r.println(formatVent(v))
}

func (r *Renderer) HistoryPrepended(history []models.Vent, added int) {
	if added == 0 {
		r.println("↑ no older messages")
		return
	}
	r.println(fmt.Sprintf("↑ %d older message(s)\n%s\n↑ end of older messages", added, formatBlock(history[:added])))
}

func (r *Renderer) ModerationChanged(m vent.Moderation) {
	switch m.State {
	case vent.Warned:
		r.println("⚠️  " + m.Message)
	case vent.Blocked:
		r.println("🚫 " + m.Message)
	}
}

func (r *Renderer) InputChanged(text string) {
	if text == "" {
		return
	}
	r.println("✏️  Your message was kept: " + text)
}

func (r *Renderer) Nudge(n vent.Nudge) {
	var b strings.Builder
	fmt.Fprintf(&b, "💬 %s\n   %s", n.Title, n.Message)
	switch n.Kind {
	case vent.NudgeSignIn:
		b.WriteString("\n   /signin, /signup, or /dismiss to keep going as a guest")
	case vent.NudgeAuthChoice:
		b.WriteString("\n   /signin, /signup, or /guest to send as a guest")
	case vent.NudgeFeedback:
		b.WriteString("\n   /feedback <your thoughts>")
	}
	r.println(b.String())
}

func (r *Renderer) NudgeDismissed(vent.NudgeKind) {}

func formatVent(v models.Vent) string {
	return fmt.Sprintf("[%s] %s", v.CreatedAt.Local().Format(timeLayout), v.Message)
}

func formatBlock(vents []models.Vent) string {
	lines := make([]string, len(vents))
	for i, v := range vents {
		lines[i] = formatVent(v)
	}
	return strings.Join(lines, "\n")
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// SyncWriter serialises writes so the REPL and timer-driven renderer output
// can share one stream.
func SyncWriter(w io.Writer) io.Writer {
	return &lockedWriter{w: w}
}
