// Package influxdb records fleet publish telemetry in InfluxDB.
//
// The simulator itself is stateless; this package exists for observing a
// running fleet. When enabled, every publisher firing is written as a
// "fleet_publish" point tagged with unit, publisher, topic and register,
// using the non-blocking batched write API so telemetry never slows the
// publish path.
//
// The fleet package consumes this client through its Recorder interface;
// a disabled or absent recorder is a no-op.
package influxdb
