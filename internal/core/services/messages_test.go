package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manglemix/ruyi-bot-3/internal/adapters/driven/search/memory"
	storagememory "github.com/manglemix/ruyi-bot-3/internal/adapters/driven/storage/memory"
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// recordingMessageSink implements driven.MessageSink for testing.
type recordingMessageSink struct {
	added       []domain.Message
	invalidated []domain.AuthorID
}

func (s *recordingMessageSink) AddMessage(msg domain.Message) {
	s.added = append(s.added, msg)
}

func (s *recordingMessageSink) InvalidateAuthor(author domain.AuthorID) {
	s.invalidated = append(s.invalidated, author)
}

func TestMessageTracker_Observe(t *testing.T) {
	sink := &recordingMessageSink{}
	tracker, err := NewMessageTracker(storagememory.NewOptInStore(42), sink, 99)
	require.NoError(t, err)

	assert.True(t, tracker.Observe(42, "hello"))
	assert.False(t, tracker.Observe(7, "not opted in"))
	assert.True(t, tracker.Observe(99, "the bot itself"))
	assert.False(t, tracker.Observe(42, "!files 0"))

	require.Len(t, sink.added, 2)
	assert.Equal(t, domain.NewMessage(42, "hello"), sink.added[0])
	assert.Equal(t, domain.AuthorID(99), sink.added[1].AuthorID)
}

func TestMessageTracker_ZeroSelfIsNotTracked(t *testing.T) {
	sink := &recordingMessageSink{}
	tracker, err := NewMessageTracker(storagememory.NewOptInStore(), sink, 0)
	require.NoError(t, err)

	assert.False(t, tracker.Observe(0, "anonymous"))
	assert.Empty(t, sink.added)
}

func TestMessageTracker_OptInPersists(t *testing.T) {
	store := storagememory.NewOptInStore(5)
	tracker, err := NewMessageTracker(store, &recordingMessageSink{}, 0)
	require.NoError(t, err)

	require.NoError(t, tracker.OptIn(3))
	require.NoError(t, tracker.OptIn(3))

	assert.True(t, tracker.IsOptedIn(3))
	assert.Equal(t, 1, store.Saves())
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.AuthorID{3, 5}, saved)
	assert.Equal(t, []domain.AuthorID{3, 5}, tracker.OptedIn())
}

func TestMessageTracker_OptOut(t *testing.T) {
	store := storagememory.NewOptInStore(42)
	sink := &recordingMessageSink{}
	tracker, err := NewMessageTracker(store, sink, 0)
	require.NoError(t, err)

	require.NoError(t, tracker.OptOut(42))

	assert.False(t, tracker.IsOptedIn(42))
	assert.Equal(t, []domain.AuthorID{42}, sink.invalidated)
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)

	// Opting out again still invalidates but does not rewrite the set.
	require.NoError(t, tracker.OptOut(42))
	assert.Equal(t, []domain.AuthorID{42, 42}, sink.invalidated)
	assert.Equal(t, 1, store.Saves())
}

func TestMessageTracker_OptOutSaveFailureStillInvalidates(t *testing.T) {
	store := storagememory.NewOptInStore(42)
	store.FailSaves(errors.New("disk full"))
	sink := &recordingMessageSink{}
	tracker, err := NewMessageTracker(store, sink, 0)
	require.NoError(t, err)

	err = tracker.OptOut(42)

	assert.Error(t, err)
	assert.Equal(t, []domain.AuthorID{42}, sink.invalidated)
	assert.False(t, tracker.IsOptedIn(42))
}

func TestMessageTracker_AuthorOptOutScenario(t *testing.T) {
	backend := memory.New()
	channels := NewChannels()
	dispatcher := NewDispatcher(backend, channels, testSearchSettings())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(context.Background()) }()

	tracker, err := NewMessageTracker(storagememory.NewOptInStore(42), channels, 0)
	require.NoError(t, err)

	tracker.Observe(42, "first")
	tracker.Observe(42, "second")
	tracker.Observe(7, "bystander")
	require.NoError(t, tracker.OptIn(7))
	tracker.Observe(7, "bystander")
	require.Eventually(t, func() bool { return len(backend.Messages("messages")) == 3 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, tracker.OptOut(42))
	assert.False(t, tracker.Observe(42, "after opting out"))

	channels.Close()
	require.NoError(t, <-done)

	msgs := backend.Messages("messages")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs, domain.NewMessage(7, "bystander").ID)
	for _, call := range backend.Calls() {
		if call.Op == memory.OpUpsertMessage {
			assert.NotEqual(t, domain.NewMessage(42, "after opting out").ID, call.Key)
		}
	}
}

func TestMessageTracker_OptInSaveFailureRollsBack(t *testing.T) {
	store := storagememory.NewOptInStore()
	store.FailSaves(errors.New("disk full"))
	sink := &recordingMessageSink{}
	tracker, err := NewMessageTracker(store, sink, 0)
	require.NoError(t, err)

	err = tracker.OptIn(42)

	assert.Error(t, err)
	assert.False(t, tracker.IsOptedIn(42))
	assert.Empty(t, tracker.OptedIn())
	assert.False(t, tracker.Observe(42, "not tracked"))
	assert.Empty(t, sink.added)
}

func TestMessageTracker_OptOutAppliesAfterQueuedMessages(t *testing.T) {
	backend := memory.New()
	channels := NewChannels()
	tracker, err := NewMessageTracker(storagememory.NewOptInStore(42, 7), channels, 0)
	require.NoError(t, err)

	// Everything is queued before the dispatcher starts.
	tracker.Observe(42, "one")
	tracker.Observe(42, "two")
	tracker.Observe(7, "bystander")
	require.NoError(t, tracker.OptOut(42))
	assert.False(t, tracker.Observe(42, "three"))
	channels.Close()

	require.NoError(t, NewDispatcher(backend, channels, testSearchSettings()).Run(context.Background()))

	msgs := backend.Messages("messages")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs, domain.NewMessage(7, "bystander").ID)
}
