package mqtt

import (
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// stubClient is a paho.Client that records publishes instead of talking to a broker.
type stubClient struct {
	mu         sync.Mutex
	open       bool
	published  []string
	subscribed []string
	// onPublish runs after each publish is recorded, outside the lock.
	onPublish func()
}

func (c *stubClient) IsConnected() bool { return c.IsConnectionOpen() }
func (c *stubClient) IsConnectionOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
func (c *stubClient) setOpen(open bool) {
	c.mu.Lock()
	c.open = open
	c.mu.Unlock()
}
func (c *stubClient) Connect() paho.Token { return doneToken{} }
func (c *stubClient) Disconnect(uint)     { c.setOpen(false) }
func (c *stubClient) Publish(_ string, _ byte, _ bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.published = append(c.published, string(payload.([]byte)))
	hook := c.onPublish
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return doneToken{}
}
func (c *stubClient) Subscribe(topic string, _ byte, _ paho.MessageHandler) paho.Token {
	c.mu.Lock()
	c.subscribed = append(c.subscribed, topic)
	c.mu.Unlock()
	return doneToken{}
}
func (c *stubClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return doneToken{}
}
func (c *stubClient) Unsubscribe(...string) paho.Token        { return doneToken{} }
func (c *stubClient) AddRoute(string, paho.MessageHandler)    {}
func (c *stubClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

func (c *stubClient) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.published...)
}

func newStubPublisher(c *stubClient, size int) *RealPublisher {
	return &RealPublisher{
		client: c,
		name:   "desk",
		topics: NewTopics("home/button/desk"),
		log:    quietLog(),
		buf:    newRingBuffer(size, quietLog()),
		subs:   make(map[string]paho.MessageHandler),
	}
}

func msg(s string) bufferedMsg {
	return bufferedMsg{topic: "t", payload: []byte(s)}
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	c := &stubClient{}
	p := newStubPublisher(c, 8)

	require.NoError(t, p.publish(msg("a")))
	require.NoError(t, p.publish(msg("b")))

	assert.Empty(t, c.sent())
	assert.Equal(t, 2, p.Buffered())
}

func TestRealPublisherReplaysOnConnect(t *testing.T) {
	c := &stubClient{}
	p := newStubPublisher(c, 8)
	require.NoError(t, p.SubscribeLevel(func(bool) {}))
	require.NoError(t, p.publish(msg("a")))
	require.NoError(t, p.publish(msg("b")))

	c.setOpen(true)
	p.onConnect(c)

	assert.Equal(t, []string{"a", "b"}, c.sent())
	assert.Equal(t, []string{"home/button/desk/level"}, c.subscribed)
	assert.Equal(t, 0, p.Buffered())

	require.NoError(t, p.publish(msg("c")))
	assert.Equal(t, []string{"a", "b", "c"}, c.sent())
}

func TestRealPublisherKeepsOrderDuringReplay(t *testing.T) {
	c := &stubClient{}
	p := newStubPublisher(c, 8)
	require.NoError(t, p.publish(msg("old-1")))
	require.NoError(t, p.publish(msg("old-2")))

	// A new event arrives from the poll loop while the first buffered
	// message is still being replayed.
	var once sync.Once
	c.onPublish = func() {
		once.Do(func() {
			require.NoError(t, p.publish(msg("new")))
		})
	}

	c.setOpen(true)
	p.onConnect(c)

	assert.Equal(t, []string{"old-1", "old-2", "new"}, c.sent())
	assert.Equal(t, 0, p.Buffered())
	assert.False(t, p.replaying)
}
