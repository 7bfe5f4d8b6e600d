package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driving"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Ensure MessageTracker implements the interface.
var _ driving.MessageService = (*MessageTracker)(nil)

// CommandPrefix marks chat messages that are commands to the bot.
// Commands are never indexed.
const CommandPrefix = "!"

// MessageTracker indexes chat messages of opted-in authors and of the
// bot itself.
type MessageTracker struct {
	store driven.OptInStore
	sink  driven.MessageSink
	self  domain.AuthorID

	mu      sync.RWMutex
	optedIn map[domain.AuthorID]struct{}
}

// NewMessageTracker loads the persisted opt-in set.
// A zero self disables the bot's own messages being indexed.
func NewMessageTracker(store driven.OptInStore, sink driven.MessageSink, self domain.AuthorID) (*MessageTracker, error) {
	authors, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load opt-in set: %w", err)
	}

	optedIn := make(map[domain.AuthorID]struct{}, len(authors))
	for _, a := range authors {
		optedIn[a] = struct{}{}
	}

	return &MessageTracker{
		store:   store,
		sink:    sink,
		self:    self,
		optedIn: optedIn,
	}, nil
}

// Observe indexes body if author is tracked.
func (t *MessageTracker) Observe(author domain.AuthorID, body string) bool {
	if strings.HasPrefix(body, CommandPrefix) {
		return false
	}
	if !t.tracked(author) {
		return false
	}
	t.sink.AddMessage(domain.NewMessage(author, body))
	return true
}

// OptIn adds author to the opt-in set.
func (t *MessageTracker) OptIn(author domain.AuthorID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.optedIn[author]; ok {
		return nil
	}
	t.optedIn[author] = struct{}{}
	if err := t.persistLocked(); err != nil {
		delete(t.optedIn, author)
		return err
	}
	return nil
}

// OptOut removes author from the opt-in set and invalidates every
// message of that author. The invalidation is emitted even when the set
// could not be persisted or the author was not opted in.
func (t *MessageTracker) OptOut(author domain.AuthorID) error {
	t.mu.Lock()
	var err error
	if _, ok := t.optedIn[author]; ok {
		delete(t.optedIn, author)
		err = t.persistLocked()
	}
	t.mu.Unlock()

	t.sink.InvalidateAuthor(author)
	return err
}

// IsOptedIn reports whether author is in the opt-in set.
func (t *MessageTracker) IsOptedIn(author domain.AuthorID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.optedIn[author]
	return ok
}

// OptedIn returns the opt-in set in ascending order.
func (t *MessageTracker) OptedIn() []domain.AuthorID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sortedLocked()
}

func (t *MessageTracker) tracked(author domain.AuthorID) bool {
	if t.self != 0 && author == t.self {
		return true
	}
	return t.IsOptedIn(author)
}

func (t *MessageTracker) sortedLocked() []domain.AuthorID {
	authors := make([]domain.AuthorID, 0, len(t.optedIn))
	for a := range t.optedIn {
		authors = append(authors, a)
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i] < authors[j] })
	return authors
}

func (t *MessageTracker) persistLocked() error {
	if err := t.store.Save(t.sortedLocked()); err != nil {
		logger.Error("failed to persist opt-in set: %v", err)
		return fmt.Errorf("save opt-in set: %w", err)
	}
	return nil
}
