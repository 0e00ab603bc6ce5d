package scene

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/interborough/transit/internal/scene"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
