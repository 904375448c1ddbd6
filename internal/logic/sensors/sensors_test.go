package sensors

import (
	"testing"

	"github.com/nerrad567/fleetsim/internal/logic"
)

// mapRegisters is a plain map behind the Registers interface.
type mapRegisters map[string]any

func (m mapRegisters) Get(key string) any { return m[key] }

func (m mapRegisters) GetOr(key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func (m mapRegisters) Set(key string, value any) { m[key] = value }

// =============================================================================
// Registration Tests
// =============================================================================

func TestRegister(t *testing.T) {
	registry := logic.NewRegistry()
	if err := Register(registry); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := registry.ResolveControlLoop(RefTemperature); err != nil {
		t.Errorf("ResolveControlLoop(%s) error = %v", RefTemperature, err)
	}
	if _, err := registry.ResolveRequestHandler(RefInfo); err != nil {
		t.Errorf("ResolveRequestHandler(%s) error = %v", RefInfo, err)
	}

	// Re-registering the same references must fail.
	if err := Register(registry); err == nil {
		t.Error("second Register() expected error")
	}
}

// =============================================================================
// Temperature Loop Tests
// =============================================================================

func TestTemperatureLoopOn(t *testing.T) {
	regs := mapRegisters{"status": "ON"}

	TemperatureLoop(regs)

	temp, ok := regs.Get("temperature").(float64)
	if !ok {
		t.Fatalf("temperature = %v (%T), want float64", regs.Get("temperature"), regs.Get("temperature"))
	}
	if temp < minTemperature || temp > maxTemperature {
		t.Errorf("temperature = %v, want within [%v, %v]", temp, minTemperature, maxTemperature)
	}
}

func TestTemperatureLoopOff(t *testing.T) {
	regs := mapRegisters{"status": "OFF", "temperature": 20.5}

	TemperatureLoop(regs)

	// Off holds the last reading.
	if got := regs.Get("temperature"); got != 20.5 {
		t.Errorf("temperature = %v, want 20.5", got)
	}
}

func TestTemperatureLoopCorruptStatus(t *testing.T) {
	regs := mapRegisters{"status": "BANANA", "temperature": 20.5}

	TemperatureLoop(regs)

	// A corrupt status resets the sensor; the reading updates next tick.
	if got := regs.Get("status"); got != "ON" {
		t.Errorf("status = %v, want ON", got)
	}
	if got := regs.Get("temperature"); got != 20.5 {
		t.Errorf("temperature = %v, want 20.5 (unchanged this tick)", got)
	}
}

func TestTemperatureLoopMissingStatus(t *testing.T) {
	regs := mapRegisters{}

	// A missing status defaults to ON and produces a reading.
	TemperatureLoop(regs)

	if _, ok := regs.Get("temperature").(float64); !ok {
		t.Errorf("temperature = %v, want a float64 reading", regs.Get("temperature"))
	}
}

// =============================================================================
// Info Handler Tests
// =============================================================================

func TestInfoHandler(t *testing.T) {
	regs := mapRegisters{}

	var notified int
	InfoHandler(regs, "status please", func() { notified++ })

	if got := regs.Get("last_request"); got != "status please" {
		t.Errorf("last_request = %v, want status please", got)
	}
	if notified != 1 {
		t.Errorf("notify called %d times, want 1", notified)
	}
}
