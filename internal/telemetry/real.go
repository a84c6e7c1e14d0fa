package telemetry

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// backlogLimit bounds how many messages are held while the broker is
// unreachable.
const backlogLimit = 256

// RealPublisher publishes to an actual MQTT broker. Messages sent while
// disconnected are buffered and replayed on reconnect.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	buf *backlog
}

// NewRealPublisher creates a publisher connected to the given broker.
// The connection retries in the background; publishing before the first
// connect lands in the replay buffer.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{buf: newBacklog(backlogLimit)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.replay)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	// Don't block startup on the broker: the board must come up even with
	// the network down. Only a synchronously rejected connect is an error.
	if token.WaitTimeout(time.Millisecond) {
		if err := token.Error(); err != nil {
			return nil, fmt.Errorf("connect to broker: %w", err)
		}
	}
	return p, nil
}

// Publish sends a board event at QoS 0.
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(TopicEvents, payload, 0, false)
}

// PublishSystem sends a lifecycle event at QoS 1: shutdown messages in
// particular should survive a flaky link.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(TopicSystem, payload, 1, event.Retained)
}

func (p *RealPublisher) send(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buf.add(outbound{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// replay flushes the backlog after a (re)connect.
func (p *RealPublisher) replay(client paho.Client) {
	p.mu.Lock()
	msgs := p.buf.takeAll()
	p.mu.Unlock()

	for _, m := range msgs {
		client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
