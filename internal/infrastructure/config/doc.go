// Package config provides configuration loading for the fleet simulator.
//
// Two files drive a simulation run:
//
//   - config.yaml: process-wide settings (link type, MQTT broker, scheduler
//     policy, telemetry, logging), loaded via Load.
//   - units.yaml: the fleet definition (units with their registers,
//     publishers, subscribers, and control loops), loaded via LoadUnits.
//
// # Loading order
//
// Load applies hardcoded defaults first, then the YAML file, then
// FLEETSIM_* environment variable overrides, and finally validates the
// result. A config that fails validation never reaches the container.
//
// # Units file
//
// The units file is validated structurally here (unique names and ids,
// required fields per mode, notifier references). Resolution of logic
// module references happens later, when the fleet is built.
package config
