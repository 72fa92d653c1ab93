package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tahcohcat/tgrelay/internal/llm"
	"github.com/tahcohcat/tgrelay/internal/logger"
	"github.com/tahcohcat/tgrelay/internal/pipeline"
)

// Pipeline runs the formalize, prove and explain stages for one message.
type Pipeline interface {
	Run(ctx context.Context, userText string, progress func(string)) (*pipeline.Result, error)
}

// Sender delivers a reply back to the chat transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// MessageEditor is implemented by transports that can update and remove a
// message after sending it. Progress updates then edit one message in place
// instead of flooding the chat.
type MessageEditor interface {
	SendTracked(ctx context.Context, chatID int64, text string) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

const (
	// FallbackReply is what users see when the pipeline failed. Internal
	// error detail never reaches the chat.
	FallbackReply = "Sorry, something went wrong while answering. Please try again later."

	emptyMessageReply = "Please send me a text message with your reasoning problem."

	startReply = "Hi! I'm a logic proof bot.\n\n" +
		"Send me a reasoning problem in natural language and I will:\n" +
		"🔷 formalize it into predicate logic clauses\n" +
		"🔷 search for a proof with a resolution engine\n" +
		"🔷 explain the outcome in plain language\n\n" +
		"For example:\n" +
		"\"Socrates is a human. All humans are mortal. Prove that Socrates is mortal.\"\n\n" +
		"Available commands:\n" +
		"/start — short introduction\n" +
		"/help — usage help"

	helpReply = "Send a reasoning problem as plain text and I'll run it through the proof pipeline.\n" +
		"If the primary model is unavailable I fall back to an alternate one automatically.\n" +
		"No conversation history is kept: every message is handled on its own."
)

// Handler routes one inbound chat message through the proof pipeline and
// sends the outcome back. It keeps no state between messages, so a transport
// may call it from any number of goroutines.
type Handler struct {
	pipeline Pipeline
	logger   *logger.Log
}

func NewHandler(p Pipeline) *Handler {
	return &Handler{
		pipeline: p,
		logger:   logger.New(),
	}
}

// HandleCommand answers the bot commands registered with the transport and
// reports whether the command was recognized. Unrecognized commands are left
// to the caller, which treats them as ordinary questions.
func (h *Handler) HandleCommand(ctx context.Context, s Sender, chatID int64, command string) bool {
	switch command {
	case "start":
		h.send(ctx, s, chatID, startReply)
		return true
	case "help":
		h.send(ctx, s, chatID, helpReply)
		return true
	default:
		return false
	}
}

// HandleMessage runs a single user message through the pipeline. On total
// failure the chat gets a fixed apology; the full attempt log only goes to
// the process log.
func (h *Handler) HandleMessage(ctx context.Context, s Sender, chatID int64, text string) {
	if strings.TrimSpace(text) == "" {
		h.send(ctx, s, chatID, emptyMessageReply)
		return
	}

	reporter := newProgressReporter(ctx, s, chatID, h.logger)
	result, err := h.pipeline.Run(ctx, text, reporter.update)
	reporter.clear()

	if err != nil {
		if ctx.Err() != nil {
			// Shutdown in progress: emit nothing rather than a partial reply
			return
		}

		var exhausted *llm.ExhaustedError
		if errors.As(err, &exhausted) {
			for _, attempt := range exhausted.Attempts {
				h.logger.Model(attempt.Model, fmt.Sprintf("attempt failed: %s (%v)", attempt.Kind, attempt.Err))
			}
			h.logger.Error(fmt.Sprintf("all models exhausted for chat %d", chatID))
		} else {
			h.logger.WithError(err).Error(fmt.Sprintf("pipeline failed for chat %d", chatID))
		}

		h.send(ctx, s, chatID, FallbackReply)
		return
	}

	h.send(ctx, s, chatID, formatResult(result))
}

func (h *Handler) send(ctx context.Context, s Sender, chatID int64, text string) {
	if err := s.SendMessage(ctx, chatID, text); err != nil {
		h.logger.WithError(err).Error(fmt.Sprintf("failed to send reply to chat %d", chatID))
	}
}

// formatResult renders the pipeline outcome as the three sections users see:
// the clause list, the proof verdict with its step log, and the explanation.
func formatResult(r *pipeline.Result) string {
	var b strings.Builder

	b.WriteString("🔷 Formalization:\n")
	for i, clause := range r.Clauses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, clause)
	}
	fmt.Fprintf(&b, "Total clauses: %d\n\n", len(r.Clauses))

	b.WriteString("🔷 Resolution proof:\n")
	if r.ProofFound {
		b.WriteString("✅ Contradiction found! The statement is proven.\n")
	} else {
		b.WriteString("❌ No contradiction found. The statement could not be proven.\n")
	}
	b.WriteString("\nProof steps:\n")
	b.WriteString(strings.Join(r.ProofLog, "\n"))

	b.WriteString("\n\n🔷 Explanation:\n")
	b.WriteString(r.Explanation)

	return b.String()
}

// progressReporter shows pipeline progress in the chat. On transports that
// can edit messages a single status message is updated in place and removed
// before the final reply; other transports receive each update as a plain
// message.
type progressReporter struct {
	ctx       context.Context
	sender    Sender
	editor    MessageEditor
	chatID    int64
	messageID int
	logger    *logger.Log
}

func newProgressReporter(ctx context.Context, s Sender, chatID int64, log *logger.Log) *progressReporter {
	editor, _ := s.(MessageEditor)
	return &progressReporter{
		ctx:    ctx,
		sender: s,
		editor: editor,
		chatID: chatID,
		logger: log,
	}
}

func (r *progressReporter) update(text string) {
	if r.editor == nil {
		if err := r.sender.SendMessage(r.ctx, r.chatID, text); err != nil {
			r.logger.WithError(err).Debug("failed to send progress update")
		}
		return
	}

	if r.messageID == 0 {
		id, err := r.editor.SendTracked(r.ctx, r.chatID, text)
		if err != nil {
			r.logger.WithError(err).Debug("failed to send progress message")
			return
		}
		r.messageID = id
		return
	}

	if err := r.editor.EditMessage(r.ctx, r.chatID, r.messageID, text); err != nil {
		// Stale or deleted status message: start a fresh one
		if id, err := r.editor.SendTracked(r.ctx, r.chatID, text); err == nil {
			r.messageID = id
		}
	}
}

// clear removes the status message so the final reply stands alone.
func (r *progressReporter) clear() {
	if r.editor == nil || r.messageID == 0 {
		return
	}
	if err := r.editor.DeleteMessage(r.ctx, r.chatID, r.messageID); err != nil {
		r.logger.WithError(err).Debug("failed to delete progress message")
	}
	r.messageID = 0
}
