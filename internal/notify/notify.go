// Package notify delivers editing notifications to the users they concern.
// Delivery is best effort: a sink never reports failure to its caller.
package notify

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/debemdeboas/editorial/internal/model"
	"github.com/rs/zerolog"
)

var notifyLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	notifyLogger = l
}

type Kind string

const (
	KindSubmitted      Kind = "submitted"
	KindReviewed       Kind = "reviewed"
	KindConfirmed      Kind = "confirmed"
	KindReplaced       Kind = "replaced"
	KindReviewUndone   Kind = "review_undone"
	KindReset          Kind = "reset"
	KindPublished      Kind = "published"
	KindCommentAdded   Kind = "comment_added"
	KindEditorAssigned Kind = "editor_assigned"
)

type Notification struct {
	Kind         Kind               `json:"kind"`
	EditableID   model.EditableID   `json:"editable_id"`
	RevisionID   model.RevisionID   `json:"revision_id"`
	RevisionType model.RevisionType `json:"revision_type"`
	Author       model.UserID       `json:"author"`
	SentAt       time.Time          `json:"sent_at"`
}

type Sink interface {
	Notify(ctx context.Context, kind Kind, rev *model.Revision, recipients []model.UserID)
}

func newNotification(kind Kind, rev *model.Revision) Notification {
	return Notification{
		Kind:         kind,
		EditableID:   rev.EditableID,
		RevisionID:   rev.ID,
		RevisionType: rev.Type,
		Author:       rev.UserID,
		SentAt:       time.Now().UTC(),
	}
}

// Client is one open notification stream of a user.
type Client struct {
	Msg    chan string
	UserID model.UserID
}

// Broadcaster pushes notifications to connected clients. Slow clients miss
// messages instead of blocking the sender.
type Broadcaster struct { // implements Sink
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[*Client]bool),
	}
}

func (b *Broadcaster) Add(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = true
}

func (b *Broadcaster) Delete(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client.Msg)
	}
}

func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) Notify(_ context.Context, kind Kind, rev *model.Revision, recipients []model.UserID) {
	data, err := json.Marshal(newNotification(kind, rev))
	if err != nil {
		notifyLogger.Error().Err(err).Msg("Error encoding notification")
		return
	}
	msg := string(data)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		if slices.Contains(recipients, client.UserID) {
			select {
			case client.Msg <- msg:
			default:
			}
		}
	}
}

type LogSink struct{} // implements Sink

func (LogSink) Notify(_ context.Context, kind Kind, rev *model.Revision, recipients []model.UserID) {
	notifyLogger.Info().
		Str("kind", string(kind)).
		Str("editable_id", string(rev.EditableID)).
		Str("revision_id", string(rev.ID)).
		Strs("recipients", userStrings(recipients)).
		Msg("Notification")
}

func userStrings(ids []model.UserID) []string {
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = string(id)
	}
	return res
}

// Multi fans a notification out to every sink.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, kind Kind, rev *model.Revision, recipients []model.UserID) {
	for _, s := range m {
		s.Notify(ctx, kind, rev, recipients)
	}
}
