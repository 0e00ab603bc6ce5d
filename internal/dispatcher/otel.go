package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/interborough/transit/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments are the dispatcher's meters, taken from the global provider.
type instruments struct {
	depth     metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
}

// newInstruments creates the counters and a gauge that reports the depth
// of every buffer depths returns.
func newInstruments(depths func() map[string]int) (instruments, error) {
	var in instruments
	m := meter()

	var err error
	in.depth, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Events waiting in each buffered command's queue"),
	)
	if err != nil {
		return in, fmt.Errorf("creating queue size gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for cmd, n := range depths() {
			o.ObserveInt64(in.depth, int64(n), metric.WithAttributes(attribute.String("command", cmd)))
		}
		return nil
	}, in.depth)
	if err != nil {
		return in, fmt.Errorf("registering queue callback: %w", err)
	}

	if in.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Buffered events handed to their handler"),
	); err != nil {
		return in, fmt.Errorf("creating processed counter: %w", err)
	}
	if in.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Events refused because their queue was full"),
	); err != nil {
		return in, fmt.Errorf("creating dropped counter: %w", err)
	}
	return in, nil
}

func (in instruments) handled(command string) {
	in.processed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", command)))
}

func (in instruments) refused(command string) {
	in.dropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", command)))
}
