package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/button-sensor/internal/logic"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// DefaultBufferSize is how many messages are held while the broker is unreachable.
	DefaultBufferSize = 256
)

// Options configures a RealPublisher.
type Options struct {
	Broker   string
	ClientID string // defaults to button-sensor-<name>-<random>
	Name     string // button name carried in payloads
	Topics   Topics
	// BufferSize bounds the offline buffer. Defaults to DefaultBufferSize.
	BufferSize int
	Logger     *logrus.Entry
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are buffered and replayed in order on reconnect.
type RealPublisher struct {
	client paho.Client
	name   string
	topics Topics
	log    *logrus.Entry

	mu        sync.Mutex
	buf       *ringBuffer
	replaying bool // publishes queue behind the buffer until it is drained
	subs      map[string]paho.MessageHandler
}

// NewRealPublisher creates a publisher connected to the given broker. If the
// broker is not reachable within the connect timeout the publisher is still
// returned; the client keeps retrying in the background.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.ClientID == "" {
		o.ClientID = fmt.Sprintf("button-sensor-%s-%s", o.Name, uuid.NewString()[:8])
	}

	p := &RealPublisher{
		name:   o.Name,
		topics: o.Topics,
		log:    o.Logger,
		buf:    newRingBuffer(o.BufferSize, o.Logger),
		subs:   make(map[string]paho.MessageHandler),
	}

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetBinaryWill(o.Topics.System, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.log.WithError(err).Warn("connection lost")
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		p.log.WithField("broker", o.Broker).Warn("broker not reachable yet, buffering events")
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect restores subscriptions and replays buffered messages. It runs on
// the paho client goroutine after every (re)connect. Messages published while
// the replay is in progress are queued behind it so they reach the broker in
// order.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	p.replaying = true
	buffered := p.buf.len()
	subs := make(map[string]paho.MessageHandler, len(p.subs))
	for topic, h := range p.subs {
		subs[topic] = h
	}
	p.mu.Unlock()

	p.log.WithField("buffered", buffered).Info("connected")

	for topic, h := range subs {
		if token := c.Subscribe(topic, 1, h); token.WaitTimeout(publishTimeout) && token.Error() != nil {
			p.log.WithError(token.Error()).WithField("topic", topic).Warn("resubscribe failed")
		}
	}
	p.replay()
}

// replay sends buffered messages until the buffer stays empty, then lets
// publish send directly again.
func (p *RealPublisher) replay() {
	for {
		p.mu.Lock()
		pending := p.buf.drainAll()
		if len(pending) == 0 {
			p.replaying = false
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		for _, m := range pending {
			if err := p.send(m); err != nil {
				p.log.WithError(err).WithField("topic", m.topic).Warn("replay failed")
			}
		}
	}
}

// Publish sends a button event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(p.name, event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(bufferedMsg{topic: p.topics.Events, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	return p.publish(bufferedMsg{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) publish(m bufferedMsg) error {
	p.mu.Lock()
	if p.replaying || !p.client.IsConnectionOpen() {
		p.buf.push(m)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return p.send(m)
}

func (p *RealPublisher) send(m bufferedMsg) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// SubscribeLevel delivers levels published to the level topic to fn.
// Payloads that are not a known level are logged and ignored. The
// subscription is restored after reconnects.
func (p *RealPublisher) SubscribeLevel(fn func(pressed bool)) error {
	topic := p.topics.Level
	handler := func(_ paho.Client, m paho.Message) {
		level, err := ParseLevel(m.Payload())
		if err != nil {
			p.log.WithError(err).WithField("topic", m.Topic()).Warn("ignoring level command")
			return
		}
		fn(level)
	}

	p.mu.Lock()
	p.subs[topic] = handler
	p.mu.Unlock()

	if !p.client.IsConnectionOpen() {
		// onConnect subscribes once the broker is reachable
		return nil
	}
	token := p.client.Subscribe(topic, 1, handler)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribe %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
