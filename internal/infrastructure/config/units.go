package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Publisher and subscriber modes accepted in the units file.
const (
	PublisherModePeriodic     = "periodic"
	PublisherModeNotification = "notification"

	SubscriberModeDataWrite = "data_write"
	SubscriberModeRequest   = "request"
)

// UnitsFile is the root structure of the fleet definition file.
type UnitsFile struct {
	Units []UnitDescriptor `yaml:"units"`
}

// UnitDescriptor describes one simulated unit: its initial registers,
// publishers, subscribers, and optional control loop.
type UnitDescriptor struct {
	Name        string                 `yaml:"name"`
	Registers   map[string]any         `yaml:"registers"`
	Publishers  []PublisherDescriptor  `yaml:"publishers"`
	Subscribers []SubscriberDescriptor `yaml:"subscribers"`
	ControlLoop *ControlLoopDescriptor `yaml:"control_loop"`
}

// PublisherDescriptor describes one publisher owned by a unit.
type PublisherDescriptor struct {
	ID    string `yaml:"id"`
	Topic string `yaml:"topic"`
	// Read is the register key whose value is published.
	Read string `yaml:"read"`
	// Mode is "periodic" (scheduler-driven) or "notification" (triggered
	// on demand by a request subscriber). Defaults to "periodic".
	Mode string `yaml:"mode"`
	// IntervalMS is the publish interval for periodic publishers.
	IntervalMS int `yaml:"interval_ms"`
}

// SubscriberDescriptor describes one subscriber owned by a unit.
type SubscriberDescriptor struct {
	ID    string `yaml:"id"`
	Topic string `yaml:"topic"`
	// Write is the register key overwritten by data_write subscribers.
	Write string `yaml:"write"`
	// Mode is "data_write" (payload overwrites a register) or "request"
	// (payload is handed to a registered request handler). Defaults to
	// "data_write".
	Mode string `yaml:"mode"`
	// Handler is the logic registry reference of the request handler
	// (request mode only).
	Handler string `yaml:"handler"`
	// Notifier is the id of a notification publisher on the same unit,
	// fired after the handler calls notify (request mode only, optional).
	Notifier string `yaml:"notifier"`
}

// ControlLoopDescriptor describes a unit's periodic control loop.
type ControlLoopDescriptor struct {
	// Module is the logic registry reference of the control loop.
	Module string `yaml:"module"`
	// IntervalMS is the loop interval.
	IntervalMS int `yaml:"interval_ms"`
}

// LoadUnits reads and validates the fleet definition file.
//
// The file lists every unit in the fleet. Example:
//
//	units:
//	  - name: engine
//	    registers:
//	      rpm: 0
//	    publishers:
//	      - id: p1
//	        topic: tele/engine/rpm
//	        read: rpm
//	        interval_ms: 100
//	    subscribers:
//	      - id: s1
//	        topic: cmd/engine/rpm
//	        write: rpm
//	    control_loop:
//	      module: sensors.temperature
//	      interval_ms: 50
//
// Parameters:
//   - path: Path to the units YAML file
//
// Returns:
//   - []UnitDescriptor: Parsed unit descriptors
//   - error: If the file cannot be read, parsed, or validation fails
func LoadUnits(path string) ([]UnitDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading units file: %w", err)
	}

	var file UnitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing units file: %w", err)
	}

	if err := validateUnits(file.Units); err != nil {
		return nil, fmt.Errorf("validating units file: %w", err)
	}

	return file.Units, nil
}

// validateUnits checks structural constraints the fleet builder relies on:
// unique unit names, unique publisher/subscriber ids within a unit, required
// fields per mode, and notifier references that resolve to a notification
// publisher on the same unit.
func validateUnits(units []UnitDescriptor) error { //nolint:gocognit // one flat pass over every descriptor field
	var errs []string

	seenNames := make(map[string]bool, len(units))
	for _, u := range units {
		if u.Name == "" {
			errs = append(errs, "unit name is required")
			continue
		}
		if seenNames[u.Name] {
			errs = append(errs, fmt.Sprintf("unit %q: duplicate unit name", u.Name))
			continue
		}
		seenNames[u.Name] = true

		pubModes := make(map[string]string, len(u.Publishers))
		for _, p := range u.Publishers {
			if p.ID == "" {
				errs = append(errs, fmt.Sprintf("unit %q: publisher id is required", u.Name))
				continue
			}
			if _, dup := pubModes[p.ID]; dup {
				errs = append(errs, fmt.Sprintf("unit %q: duplicate publisher id %q", u.Name, p.ID))
				continue
			}
			mode := p.Mode
			if mode == "" {
				mode = PublisherModePeriodic
			}
			pubModes[p.ID] = mode

			if p.Topic == "" {
				errs = append(errs, fmt.Sprintf("unit %q: publisher %q: topic is required", u.Name, p.ID))
			}
			if p.Read == "" {
				errs = append(errs, fmt.Sprintf("unit %q: publisher %q: read is required", u.Name, p.ID))
			}
			switch mode {
			case PublisherModePeriodic:
				if p.IntervalMS <= 0 {
					errs = append(errs, fmt.Sprintf("unit %q: publisher %q: interval_ms must be positive", u.Name, p.ID))
				}
			case PublisherModeNotification:
				if p.IntervalMS != 0 {
					errs = append(errs, fmt.Sprintf("unit %q: publisher %q: interval_ms is not valid for notification mode", u.Name, p.ID))
				}
			default:
				errs = append(errs, fmt.Sprintf("unit %q: publisher %q: mode %q is not supported (periodic, notification)", u.Name, p.ID, p.Mode))
			}
		}

		subIDs := make(map[string]bool, len(u.Subscribers))
		for _, s := range u.Subscribers {
			if s.ID == "" {
				errs = append(errs, fmt.Sprintf("unit %q: subscriber id is required", u.Name))
				continue
			}
			if subIDs[s.ID] {
				errs = append(errs, fmt.Sprintf("unit %q: duplicate subscriber id %q", u.Name, s.ID))
				continue
			}
			subIDs[s.ID] = true

			if s.Topic == "" {
				errs = append(errs, fmt.Sprintf("unit %q: subscriber %q: topic is required", u.Name, s.ID))
			}
			mode := s.Mode
			if mode == "" {
				mode = SubscriberModeDataWrite
			}
			switch mode {
			case SubscriberModeDataWrite:
				if s.Write == "" {
					errs = append(errs, fmt.Sprintf("unit %q: subscriber %q: write is required", u.Name, s.ID))
				}
			case SubscriberModeRequest:
				if s.Handler == "" {
					errs = append(errs, fmt.Sprintf("unit %q: subscriber %q: handler is required", u.Name, s.ID))
				}
				if s.Notifier != "" {
					m, ok := pubModes[s.Notifier]
					if !ok {
						errs = append(errs, fmt.Sprintf("unit %q: subscriber %q: notifier %q does not match any publisher", u.Name, s.ID, s.Notifier))
					} else if m != PublisherModeNotification {
						errs = append(errs, fmt.Sprintf("unit %q: subscriber %q: notifier %q is not a notification publisher", u.Name, s.ID, s.Notifier))
					}
				}
			default:
				errs = append(errs, fmt.Sprintf("unit %q: subscriber %q: mode %q is not supported (data_write, request)", u.Name, s.ID, s.Mode))
			}
		}

		if u.ControlLoop != nil {
			if u.ControlLoop.Module == "" {
				errs = append(errs, fmt.Sprintf("unit %q: control_loop.module is required", u.Name))
			}
			if u.ControlLoop.IntervalMS <= 0 {
				errs = append(errs, fmt.Sprintf("unit %q: control_loop.interval_ms must be positive", u.Name))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
