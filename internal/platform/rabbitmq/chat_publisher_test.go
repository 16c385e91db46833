package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyplanner/internal/model"
)

type fakeChannel struct {
	declared   []string
	durable    bool
	declareErr error
	publishErr error
	published  []amqp.Publishing
	keys       []string
	closed     bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.declared = append(c.declared, name)
	c.durable = durable
	return amqp.Queue{Name: name}, c.declareErr
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

// channelOpener hands out the queued channels in order.
type channelOpener struct {
	channels []*fakeChannel
	err      error
	opens    int
}

func (o *channelOpener) open() (publishChannel, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	ch := o.channels[0]
	o.channels = o.channels[1:]
	return ch, nil
}

func chatMessage(content string) model.ChatMessage {
	return model.ChatMessage{
		Role:      model.ChatRoleUser,
		Content:   content,
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestChatPublisher_PublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	opener := &channelOpener{channels: []*fakeChannel{ch}}
	p := newChatPublisher(opener.open, "chat.persist")

	require.NoError(t, p.Record(context.Background(), chatMessage("what is paging?")))
	require.NoError(t, p.Record(context.Background(), chatMessage("and segmentation?")))

	assert.Equal(t, 1, opener.opens)
	assert.Equal(t, []string{"chat.persist"}, ch.declared)
	assert.True(t, ch.durable)
	assert.Equal(t, []string{"chat.persist", "chat.persist"}, ch.keys)
	require.Len(t, ch.published, 2)

	first := ch.published[0]
	assert.Equal(t, "application/json", first.ContentType)
	assert.Equal(t, amqp.Persistent, first.DeliveryMode)
	var decoded model.ChatMessage
	require.NoError(t, json.Unmarshal(first.Body, &decoded))
	assert.Equal(t, "what is paging?", decoded.Content)
	assert.Equal(t, model.ChatRoleUser, decoded.Role)
}

func TestChatPublisher_ReopensAfterPublishFailure(t *testing.T) {
	broken := &fakeChannel{publishErr: errors.New("channel/connection is not open")}
	healthy := &fakeChannel{}
	opener := &channelOpener{channels: []*fakeChannel{broken, healthy}}
	p := newChatPublisher(opener.open, "chat.persist")

	err := p.Record(context.Background(), chatMessage("one"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish chat message failed")
	assert.True(t, broken.closed)

	require.NoError(t, p.Record(context.Background(), chatMessage("two")))
	assert.Equal(t, 2, opener.opens)
	require.Len(t, healthy.published, 1)
}

func TestChatPublisher_ReopensClosedChannel(t *testing.T) {
	first := &fakeChannel{}
	second := &fakeChannel{}
	opener := &channelOpener{channels: []*fakeChannel{first, second}}
	p := newChatPublisher(opener.open, "chat.persist")

	require.NoError(t, p.Record(context.Background(), chatMessage("one")))
	first.closed = true
	require.NoError(t, p.Record(context.Background(), chatMessage("two")))

	assert.Equal(t, 2, opener.opens)
	assert.Len(t, first.published, 1)
	assert.Len(t, second.published, 1)
}

func TestChatPublisher_OpenAndDeclareErrors(t *testing.T) {
	opener := &channelOpener{err: errors.New("connection closed")}
	p := newChatPublisher(opener.open, "chat.persist")
	err := p.Record(context.Background(), chatMessage("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open rabbitmq channel failed")

	ch := &fakeChannel{declareErr: errors.New("access refused")}
	p = newChatPublisher((&channelOpener{channels: []*fakeChannel{ch}}).open, "chat.persist")
	err = p.Record(context.Background(), chatMessage("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declare queue chat.persist failed")
	assert.True(t, ch.closed)
	assert.Empty(t, ch.published)
}

func TestChatPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newChatPublisher((&channelOpener{channels: []*fakeChannel{ch}}).open, "chat.persist")
	require.NoError(t, p.Close())

	require.NoError(t, p.Record(context.Background(), chatMessage("x")))
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
