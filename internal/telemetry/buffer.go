package telemetry

import "log"

// outbound is a serialized MQTT message waiting for the broker to come
// back.
type outbound struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog queues messages published while the broker is unreachable, up
// to a fixed limit. When full the oldest message gives way: the board's
// recent state matters more than stale history. Callers synchronize.
type backlog struct {
	limit   int
	pending []outbound
	dropped int
}

func newBacklog(limit int) *backlog {
	return &backlog{limit: limit}
}

func (b *backlog) add(m outbound) {
	if len(b.pending) == b.limit {
		if b.dropped == 0 {
			log.Printf("telemetry: backlog full (%d messages), dropping oldest", b.limit)
		}
		b.dropped++
		copy(b.pending, b.pending[1:])
		b.pending = b.pending[:b.limit-1]
	}
	b.pending = append(b.pending, m)
}

// takeAll hands over the queued messages oldest-first and resets the
// backlog for the next outage.
func (b *backlog) takeAll() []outbound {
	if len(b.pending) == 0 {
		return nil
	}
	out := b.pending
	b.pending = nil
	b.dropped = 0
	return out
}

func (b *backlog) size() int { return len(b.pending) }
