package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"esp8266-web/pkg/types"
)

func TestObserveReading(t *testing.T) {
	before := testutil.ToFloat64(ReadingsIngested.WithLabelValues(SourceMQTT))

	ObserveReading(SourceMQTT, types.Reading{ID: 1, TempCo: 21.5, TempRoom: 22.1, Humidity: 45})

	after := testutil.ToFloat64(ReadingsIngested.WithLabelValues(SourceMQTT))
	if after != before+1 {
		t.Errorf("ingested(mqtt) = %v; want %v", after, before+1)
	}
	if n := testutil.CollectAndCount(TempHistogram); n != 2 {
		t.Errorf("temperature series = %d; want 2 (co, room)", n)
	}
}
