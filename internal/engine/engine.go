package engine

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
	"github.com/Veraticus/majordomo/internal/session"
)

// helpReply is sent whenever the classifier cannot map a message to a
// known action.
const helpReply = `I can help you with a few things:
  - record income and expenses ("lunch cost 30")
  - track subscriptions ("subscribe to Netflix, 45 per month")
  - manage todos ("remind me to call the bank tomorrow at 3pm")
  - show your daily report ("how am I doing today")`

// lockShards bounds the per-user lock table. Users sharing a shard contend
// but never interleave their own turns.
const lockShards = 64

// Engine orchestrates the per-message pipeline: session context in,
// reply text out. Messages from the same user are processed serially so
// clarification state never races.
type Engine struct {
	sessions   *session.Store
	classifier service.Classifier
	validator  Validator
	dispatcher *Dispatcher
	now        func() time.Time

	locks [lockShards]sync.Mutex
}

// New creates the pipeline engine.
func New(sessions *session.Store, classifier service.Classifier, validator Validator, dispatcher *Dispatcher) *Engine {
	return &Engine{
		sessions:   sessions,
		classifier: classifier,
		validator:  validator,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// HandleMessage runs one inbound message through the pipeline and returns
// the reply to send back. It never returns an empty reply: failures are
// translated to user-facing text and the underlying error is logged here.
func (e *Engine) HandleMessage(ctx context.Context, msg model.InboundMessage) string {
	lock := e.userLock(msg.UserID)
	lock.Lock()
	defer lock.Unlock()

	reply, err := e.process(ctx, msg)
	if err != nil {
		common.LogError(err, "message pipeline failed", common.Fields{
			"user_id":    msg.UserID,
			"message_id": msg.MessageID,
		})
		return common.UserMessage(err)
	}
	return reply
}

func (e *Engine) process(ctx context.Context, msg model.InboundMessage) (string, error) {
	asOf := e.now()
	snapshot := e.sessions.Get(msg.UserID)
	pending := e.sessions.TakePending(msg.UserID)

	req := service.ClassifyRequest{
		Utterance:   msg.Text,
		RecentTurns: turnTexts(snapshot.Turns),
		AsOf:        asOf,
	}
	if pending != nil {
		req.PendingQuestion = pending.Question
		req.PendingDraft = &pending.Draft
	}

	draft, err := e.classifier.Classify(ctx, req)
	if err != nil {
		// The pending question is restored so the user's answer to a
		// retried message still lands in the right slot.
		if pending != nil {
			e.sessions.SetPending(msg.UserID, *pending)
		}
		return "", err
	}

	if pending != nil {
		switch {
		case draft.Type == pending.Draft.Type:
			draft.Fields = mergeFields(pending.Draft.Fields, draft.Fields)
		case draft.Type == model.ActionUnknown:
			// A reply the classifier could not make sense of does not
			// abandon the open question; keep it and ask again.
			e.sessions.SetPending(msg.UserID, *pending)
			e.sessions.AppendTurn(msg.UserID, session.Turn{
				At:         asOf,
				Text:       msg.Text,
				ActionType: draft.Type,
			})
			return pending.Question, nil
		default:
			slog.Debug("pending clarification discarded by new command",
				"user_id", msg.UserID,
				"pending", pending.Draft.Type,
				"new", draft.Type,
			)
		}
	}

	e.sessions.AppendTurn(msg.UserID, session.Turn{
		At:         asOf,
		Text:       msg.Text,
		ActionType: draft.Type,
	})

	if draft.Type == model.ActionUnknown {
		return helpReply, nil
	}

	validation, err := e.validator.Validate(ctx, draft, msg.UserID, msg.MessageID, asOf)
	if err != nil {
		return "", err
	}

	switch validation.Status {
	case model.ValidationNeedsClarification:
		e.sessions.SetPending(msg.UserID, session.Pending{
			AskedAt:      asOf,
			Question:     validation.Prompt,
			MissingField: validation.MissingField,
			Draft:        draft,
		})
		return validation.Prompt, nil
	case model.ValidationRejected:
		return validation.Reason, nil
	}

	conf, err := e.dispatcher.Dispatch(ctx, validation.Action)
	if err != nil {
		return "", err
	}
	return conf.Text, nil
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &e.locks[h.Sum32()%lockShards]
}

// mergeFields overlays the clarification answer onto the stalled draft.
// Fields the new classification filled in win; everything else is carried
// over from the draft that asked the question.
func mergeFields(base, overlay model.DraftFields) model.DraftFields {
	merged := base
	if overlay.Amount != "" {
		merged.Amount = overlay.Amount
	}
	if overlay.Currency != "" {
		merged.Currency = overlay.Currency
	}
	if overlay.Category != "" {
		merged.Category = overlay.Category
	}
	if overlay.Note != "" {
		merged.Note = overlay.Note
	}
	if overlay.Date != "" {
		merged.Date = overlay.Date
	}
	if overlay.Name != "" {
		merged.Name = overlay.Name
	}
	if overlay.Cost != "" {
		merged.Cost = overlay.Cost
	}
	if overlay.Cycle != "" {
		merged.Cycle = overlay.Cycle
	}
	if overlay.Title != "" {
		merged.Title = overlay.Title
	}
	if overlay.Priority != "" {
		merged.Priority = overlay.Priority
	}
	if overlay.Due != "" {
		merged.Due = overlay.Due
	}
	if overlay.Status != "" {
		merged.Status = overlay.Status
	}
	return merged
}

func turnTexts(turns []session.Turn) []string {
	texts := make([]string, 0, len(turns))
	for _, t := range turns {
		texts = append(texts, t.Text)
	}
	return texts
}
