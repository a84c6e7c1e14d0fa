package telemetry

// FakePublisher records everything published to it.
type FakePublisher struct {
	// Events is every board event published, in order.
	Events []Event

	// SystemEvents is every lifecycle event published, in order.
	SystemEvents []SystemEvent

	// Closed tracks if Close was called.
	Closed bool

	// PublishError, if set, is returned by both publish methods.
	PublishError error
}

// Publish records the event.
func (f *FakePublisher) Publish(event Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Events = append(f.Events, event)
	return nil
}

// PublishSystem records the event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
