package types

// Reading is one stored sensor sample as served by GET /data.
type Reading struct {
	ID        int64   `json:"id" yaml:"id" validate:"gt=0"`
	Timestamp int64   `json:"timestamp" yaml:"timestamp" validate:"gte=0"` // Unix seconds
	TempCo    float64 `json:"tempCo" yaml:"tempCo"`
	TempRoom  float64 `json:"tempRoom" yaml:"tempRoom"`
	Humidity  float64 `json:"humidity" yaml:"humidity" validate:"gte=0,lte=100"`
}

// ReadingPayload is what a device sends, over POST /data or MQTT.
// A nil Timestamp is replaced by the server's clock.
type ReadingPayload struct {
	TempCo    float64 `json:"tempCo"`
	TempRoom  float64 `json:"tempRoom"`
	Humidity  float64 `json:"humidity" validate:"gte=0,lte=100"`
	Timestamp *int64  `json:"timestamp,omitempty" validate:"omitempty,gte=0"`
}

// Query bounds a GET /data request. Nil fields are not sent.
type Query struct {
	From   *int64
	To     *int64
	Limit  *int64
	Offset *int64
}

// Int64 returns a pointer to v, for filling Query fields.
func Int64(v int64) *int64 {
	return &v
}
