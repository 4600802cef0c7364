package notify

import (
	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/pkg/errors"
)

// Notifier emits the run completion event once all table loads are committed.
// Failures never emit anything; the non-zero exit is the failure signal.
type Notifier interface {
	Success(title string, text string) error
	Close() error
}

// NewDatadogNotifier connects to the local Datadog agent's dogstatsd socket.
// addr is host:port, e.g. "127.0.0.1:8125".
func NewDatadogNotifier(addr string, tags []string) (Notifier, error) {
	client, err := statsd.New(addr, statsd.WithTags(tags))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create statsd client for %v", addr)
	}
	return &datadogNotifier{client: client}, nil
}

type datadogNotifier struct {
	client *statsd.Client
}

func (n *datadogNotifier) Success(title string, text string) error {
	e := statsd.NewEvent(title, text)
	e.AlertType = statsd.Success
	if err := n.client.Event(e); err != nil {
		return errors.Wrap(err, "unable to send Datadog event")
	}
	return nil
}

func (n *datadogNotifier) Close() error {
	return n.client.Close()
}

// NoopNotifier is used when no agent address is configured and in tests.
type NoopNotifier struct {
	Events []string // titles of events sent, recorded for tests.
}

func (n *NoopNotifier) Success(title string, text string) error {
	n.Events = append(n.Events, title)
	return nil
}

func (n *NoopNotifier) Close() error {
	return nil
}
