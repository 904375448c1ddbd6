// Package mqtt provides the MQTT transport for the fleet simulator.
//
// This package wraps the Eclipse Paho MQTT client with:
//
//   - Connection management with auto-reconnect and exponential backoff
//   - Mutual TLS with CA and client certificates
//   - Subscription tracking with automatic restoration on reconnect
//   - Panic recovery around message handlers
//   - Last Will and Testament on fleetsim/system/status for crash detection
//
// The fleet package consumes this client through its Link interface; no
// domain code touches paho types directly.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.Subscribe("cmd/engine/rpm", func(topic string, payload []byte) error {
//	    // handle message
//	    return nil
//	})
//	client.Publish("tele/engine/rpm", []byte("4500"))
package mqtt
