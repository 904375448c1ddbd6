package influxdb

import (
	"encoding/json"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordPublish records one publisher firing as a telemetry point.
//
// The write is non-blocking; points are batched and sent asynchronously.
// Numeric register values land in the "value" field; everything else is
// stored as its JSON text in "value_text" so non-scalar registers are
// still queryable.
//
// Parameters:
//   - unit: Name of the owning unit
//   - publisherID: Publisher id within the unit
//   - topic: Topic the payload was published to
//   - registerKey: Register the value was read from
//   - value: The register value at publish time
func (c *Client) RecordPublish(unit, publisherID, topic, registerKey string, value any) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"unit":      unit,
		"publisher": publisherID,
		"topic":     topic,
		"register":  registerKey,
	}

	fields := publishFields(value)
	if fields == nil {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint("fleet_publish", tags, fields, time.Now()))
}

// publishFields maps a register value onto point fields. Numbers go to
// "value", booleans to "value_bool", anything else to its JSON text in
// "value_text". A value that cannot be marshalled yields nil.
func publishFields(value any) map[string]any {
	fields := map[string]any{}
	switch v := value.(type) {
	case float64:
		fields["value"] = v
	case float32:
		fields["value"] = float64(v)
	case int:
		fields["value"] = float64(v)
	case int64:
		fields["value"] = float64(v)
	case uint64:
		fields["value"] = float64(v)
	case bool:
		fields["value_bool"] = v
	default:
		text, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		fields["value_text"] = string(text)
	}
	return fields
}
