package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyplanner/internal/model"
)

type fakeStore struct {
	saved []model.ChatMessage
	err   error
}

func (f *fakeStore) Create(_ context.Context, message *model.ChatMessage) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *message)
	return nil
}

func TestChatPersistWorker_HandleDecodesAndResetsID(t *testing.T) {
	store := &fakeStore{}
	w := NewChatPersistWorker(nil, store, "q", nil)

	err := w.handle(context.Background(), []byte(`{"id":42,"role":"user","content":"when is my exam?"}`))
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.Zero(t, store.saved[0].ID)
	assert.Equal(t, model.ChatRoleUser, store.saved[0].Role)
	assert.Equal(t, "when is my exam?", store.saved[0].Content)
}

func TestChatPersistWorker_HandleRejectsBadPayload(t *testing.T) {
	w := NewChatPersistWorker(nil, &fakeStore{}, "q", nil)
	assert.Error(t, w.handle(context.Background(), []byte(`not json`)))
}

func TestChatPersistWorker_HandlePropagatesStoreError(t *testing.T) {
	w := NewChatPersistWorker(nil, &fakeStore{err: errors.New("db down")}, "q", nil)
	err := w.handle(context.Background(), []byte(`{"role":"assistant","content":"hi"}`))
	assert.EqualError(t, err, "db down")
}

func TestChatPersistWorker_CloseWithoutStart(t *testing.T) {
	w := NewChatPersistWorker(nil, &fakeStore{}, "q", nil)
	assert.NotPanics(t, w.Close)
}
