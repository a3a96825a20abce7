package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/AnshRaj112/serenify-vent/internal/api"
	"github.com/AnshRaj112/serenify-vent/internal/vent"
	"github.com/AnshRaj112/serenify-vent/pkg/utils"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// Controller is the command surface the REPL drives. *vent.Controller satisfies it.
type Controller interface {
	Snapshot() vent.Snapshot
	Send(ctx context.Context, text string) (vent.SendResult, error)
	ContinueAsGuest(ctx context.Context) (vent.SendResult, error)
	LoadMore(ctx context.Context) error
	Signin(ctx context.Context, username, password string) (vent.SendResult, error)
	Signup(ctx context.Context, username, password, recoveryEmail string) (vent.SendResult, error)
	Logout(ctx context.Context) error
	DismissSignInPrompt()
	SubmitFeedback(ctx context.Context, text string) (string, error)
}

const helpText = `Type a message and press Enter to vent.
Commands:
  /more              load older messages
  /signin            sign in to keep your messages
  /signup            create an anonymous account
  /guest             continue as a guest
  /dismiss           close the sign-in prompt
  /feedback [text]   tell us how we're doing
  /logout            sign out
  /exit | /quit      leave`

// REPL reads lines from in. Lines starting with "/" are commands; anything
// else is sent as a vent message.
type REPL struct {
	ctrl    Controller
	scanner *bufio.Scanner
	out     io.Writer
}

func NewREPL(ctrl Controller, in io.Reader, out io.Writer) *REPL {
	return &REPL{ctrl: ctrl, scanner: bufio.NewScanner(in), out: out}
}

func (r *REPL) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

func (r *REPL) prompt() string {
	snap := r.ctrl.Snapshot()
	who := "guest"
	if !snap.Identity.IsGuest() {
		who = snap.Identity.User.DisplayName()
	}
	if snap.Moderation.State == vent.Blocked {
		who += ", blocked"
	}
	return fmt.Sprintf("vent (%s) > ", who)
}

// Run loops until EOF, /exit, or ctx is done.
func (r *REPL) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(r.out, r.prompt())
		if !r.scanner.Scan() {
			r.println()
			return
		}
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(strings.TrimSpace(line), "/") {
			r.send(ctx, line)
			continue
		}

		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]
		switch cmd {
		case "/help":
			r.println(helpText)

		case "/more":
			r.loadMore(ctx)

		case "/guest":
			_, err := r.ctrl.ContinueAsGuest(ctx)
			r.report(err)

		case "/dismiss":
			r.ctrl.DismissSignInPrompt()

		case "/signin":
			r.signin(ctx, args)

		case "/signup":
			r.signup(ctx, args)

		case "/feedback":
			r.feedback(ctx, strings.Join(args, " "))

		case "/logout":
			if err := r.ctrl.Logout(ctx); err != nil {
				r.println("❌ Logout incomplete:", err)
			}

		case "/exit", "/quit":
			r.println("Take care 💙")
			return

		default:
			r.println("Unknown command:", cmd, "(try /help)")
		}
	}
}

func (r *REPL) send(ctx context.Context, text string) {
	_, err := r.ctrl.Send(ctx, text)
	r.report(err)
}

func (r *REPL) report(err error) {
	var verr *utils.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, vent.ErrBlocked):
		r.println("🚫 Sending is disabled for this session.")
	case errors.Is(err, vent.ErrEmptyMessage):
	case errors.Is(err, vent.ErrSessionReplaced):
	case errors.Is(err, vent.ErrTransport):
		r.println("❌ Failed to send message. Please try again.")
	case errors.As(err, &verr):
		r.println("❌", verr.Message)
	default:
		r.println("❌", message(err))
	}
}

func (r *REPL) loadMore(ctx context.Context) {
	err := r.ctrl.LoadMore(ctx)
	switch {
	case err == nil:
	case errors.Is(err, vent.ErrNotAuthenticated):
		r.println("Sign in to see your earlier messages.")
	case errors.Is(err, vent.ErrNoMoreHistory):
		r.println("↑ You've reached your first message.")
	case errors.Is(err, vent.ErrLoadInProgress):
		r.println("Still loading...")
	default:
		r.println("❌ Could not load older messages. Please try again.")
	}
}

func (r *REPL) signin(ctx context.Context, args []string) {
	username, ok := r.argOrLine(args, "Username")
	if !ok {
		return
	}
	password, err := r.password()
	if err != nil {
		r.println("❌", err)
		return
	}
	_, err = r.ctrl.Signin(ctx, username, password)
	r.report(err)
}

func (r *REPL) signup(ctx context.Context, args []string) {
	username, ok := r.argOrLine(args, "Choose a username (3-20 letters, numbers or underscores)")
	if !ok {
		return
	}
	password, err := r.password()
	if err != nil {
		r.println("❌", err)
		return
	}
	email, _ := r.line("Recovery email (optional, press Enter to skip)")
	_, err = r.ctrl.Signup(ctx, username, password, email)
	r.report(err)
}

func (r *REPL) feedback(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		var ok bool
		if text, ok = r.line("Your feedback"); !ok {
			return
		}
	}
	reply, err := r.ctrl.SubmitFeedback(ctx, text)
	switch {
	case err == nil:
		r.println("✅", reply)
	case errors.Is(err, vent.ErrFeedbackTooShort):
		r.println("❌ Feedback must be at least 10 characters long")
	case errors.Is(err, vent.ErrTransport):
		r.println("❌ Failed to submit feedback. Please try again.")
	default:
		r.println("❌", message(err))
	}
}

func (r *REPL) argOrLine(args []string, prompt string) (string, bool) {
	if len(args) > 0 {
		return args[0], true
	}
	return r.line(prompt)
}

func (r *REPL) line(prompt string) (string, bool) {
	fmt.Fprint(r.out, prompt+"\n> ")
	if !r.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.scanner.Text()), true
}

// password reads without echo on a terminal, and as a plain line when input is piped.
func (r *REPL) password() (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		pw, ok := r.line("Password")
		if !ok {
			return "", io.EOF
		}
		return pw, nil
	}
	fmt.Fprint(r.out, "Password: ")
	pw, err := readPassword(fd)
	fmt.Fprintln(r.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func message(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
