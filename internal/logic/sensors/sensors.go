// Package sensors provides the built-in example logic modules.
//
// These mirror a simple temperature sensor: a control loop that produces
// readings while the sensor is on, and a request handler that answers
// status requests through a notification publisher.
package sensors

import (
	"math/rand/v2"

	"github.com/nerrad567/fleetsim/internal/logic"
)

// Module references registered by this package.
const (
	RefTemperature = "sensors.temperature"
	RefInfo        = "sensors.info"
)

// Temperature band produced by the simulated sensor while it is on.
const (
	minTemperature = 19.0
	maxTemperature = 21.5
)

// Register adds the built-in sensor modules to the registry.
//
// Returns:
//   - error: If a reference is already taken
func Register(registry *logic.Registry) error {
	if err := registry.RegisterControlLoop(RefTemperature, TemperatureLoop); err != nil {
		return err
	}
	return registry.RegisterRequestHandler(RefInfo, InfoHandler)
}

// TemperatureLoop simulates one tick of a temperature sensor.
//
// While the status register is "ON" it writes a fresh randomized reading to
// the temperature register. While "OFF" it leaves the reading untouched.
// Any other status value is treated as corruption and the sensor resets
// itself to "ON".
func TemperatureLoop(regs logic.Registers) {
	switch regs.GetOr("status", "ON") {
	case "ON":
		regs.Set("temperature", minTemperature+rand.Float64()*(maxTemperature-minTemperature))
	case "OFF":
		// Sensor is off; hold the last reading.
	default:
		regs.Set("status", "ON")
	}
}

// InfoHandler answers a status request.
//
// The request payload is recorded in the last_request register and the bound
// notification publisher is triggered, so whichever register it reads is
// published in response.
func InfoHandler(regs logic.Registers, payload string, notify func()) {
	regs.Set("last_request", payload)
	notify()
}
