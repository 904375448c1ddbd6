// Package logic holds the registry of pluggable business-logic modules.
//
// Units reference control loops and request handlers by string in the units
// file (e.g. "sensors.temperature"). Those references resolve against a
// Registry populated at startup; an unresolved reference aborts fleet
// construction.
//
// Two module contracts exist:
//
//   - ControlLoopFunc: periodic logic mutating a unit's registers
//   - RequestHandlerFunc: per-message request processing with an optional
//     notify callback that fires a bound notification publisher
//
// Built-in example modules live in the sensors subpackage; embedding
// programs register their own modules on the same Registry before building
// the container.
package logic
