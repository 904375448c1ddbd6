package fleet

import (
	"errors"
	"testing"

	"github.com/nerrad567/fleetsim/internal/infrastructure/config"
	"github.com/nerrad567/fleetsim/internal/logic"
	"github.com/nerrad567/fleetsim/internal/scheduler"
)

func testDeps(link Link) UnitDeps {
	return UnitDeps{
		Link:      link,
		Scheduler: scheduler.New(),
		Registry:  logic.NewRegistry(),
		Overlap:   scheduler.OverlapSkip,
	}
}

func engineDescriptor() config.UnitDescriptor {
	return config.UnitDescriptor{
		Name:      "engine-01",
		Registers: map[string]any{"rpm": 0, "status": "ON"},
		Publishers: []config.PublisherDescriptor{
			periodicDesc("rpm-telemetry", "tele/engine-01/rpm", "rpm", 100),
			{
				ID:    "status-reply",
				Topic: "tele/engine-01/status",
				Read:  "status",
				Mode:  config.PublisherModeNotification,
			},
		},
		Subscribers: []config.SubscriberDescriptor{
			dataWriteDesc("rpm-setpoint", "cmd/engine-01/rpm", "rpm"),
		},
	}
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewUnit(t *testing.T) {
	deps := testDeps(NewLoopbackLink())

	u, err := NewUnit(engineDescriptor(), deps)
	if err != nil {
		t.Fatalf("NewUnit() error = %v", err)
	}

	if u.State() != StateReady {
		t.Errorf("State() = %v, want ready", u.State())
	}
	if u.Name() != "engine-01" {
		t.Errorf("Name() = %q, want engine-01", u.Name())
	}
	if got := u.Registers().Get("status"); got != "ON" {
		t.Errorf("Registers().Get(status) = %v, want ON", got)
	}
	if u.Publisher("rpm-telemetry") == nil {
		t.Error("Publisher(rpm-telemetry) = nil")
	}
	if u.Subscriber("rpm-setpoint") == nil {
		t.Error("Subscriber(rpm-setpoint) = nil")
	}

	// Only the periodic publisher is scheduled; the notification one and the
	// subscriber are event-driven.
	if got := deps.Scheduler.JobCount(); got != 1 {
		t.Errorf("JobCount() = %d, want 1", got)
	}
}

func TestNewUnitWithControlLoop(t *testing.T) {
	deps := testDeps(NewLoopbackLink())
	if err := deps.Registry.RegisterControlLoop("test.loop", func(logic.Registers) {}); err != nil {
		t.Fatalf("RegisterControlLoop() error = %v", err)
	}

	desc := engineDescriptor()
	desc.ControlLoop = &config.ControlLoopDescriptor{
		Module:     "test.loop",
		IntervalMS: 50,
	}

	u, err := NewUnit(desc, deps)
	if err != nil {
		t.Fatalf("NewUnit() error = %v", err)
	}
	if u.State() != StateReady {
		t.Errorf("State() = %v, want ready", u.State())
	}

	// Periodic publisher + control loop.
	if got := deps.Scheduler.JobCount(); got != 2 {
		t.Errorf("JobCount() = %d, want 2", got)
	}
}

func TestNewUnitUnknownControlLoop(t *testing.T) {
	deps := testDeps(NewLoopbackLink())

	desc := engineDescriptor()
	desc.ControlLoop = &config.ControlLoopDescriptor{
		Module:     "missing.loop",
		IntervalMS: 50,
	}

	_, err := NewUnit(desc, deps)
	if !errors.Is(err, logic.ErrUnknownReference) {
		t.Errorf("NewUnit() error = %v, want ErrUnknownReference", err)
	}
}

func TestNewUnitUnknownHandler(t *testing.T) {
	deps := testDeps(NewLoopbackLink())

	desc := engineDescriptor()
	desc.Subscribers = append(desc.Subscribers, config.SubscriberDescriptor{
		ID:      "info-request",
		Topic:   "req/engine-01/info",
		Mode:    config.SubscriberModeRequest,
		Handler: "missing.handler",
	})

	_, err := NewUnit(desc, deps)
	if !errors.Is(err, logic.ErrUnknownReference) {
		t.Errorf("NewUnit() error = %v, want ErrUnknownReference", err)
	}
}

func TestNewUnitBadNotifier(t *testing.T) {
	deps := testDeps(NewLoopbackLink())
	if err := deps.Registry.RegisterRequestHandler("test.echo", func(logic.Registers, string, func()) {}); err != nil {
		t.Fatalf("RegisterRequestHandler() error = %v", err)
	}

	desc := engineDescriptor()
	desc.Subscribers = append(desc.Subscribers, config.SubscriberDescriptor{
		ID:       "info-request",
		Topic:    "req/engine-01/info",
		Mode:     config.SubscriberModeRequest,
		Handler:  "test.echo",
		Notifier: "rpm-telemetry", // periodic, not notification
	})

	_, err := NewUnit(desc, deps)
	if !errors.Is(err, ErrNotifierNotNotification) {
		t.Errorf("NewUnit() error = %v, want ErrNotifierNotNotification", err)
	}
}

func TestNewUnitInvalidInterval(t *testing.T) {
	deps := testDeps(NewLoopbackLink())

	desc := engineDescriptor()
	desc.Publishers[0].IntervalMS = 0

	_, err := NewUnit(desc, deps)
	if !errors.Is(err, scheduler.ErrInvalidInterval) {
		t.Errorf("NewUnit() error = %v, want ErrInvalidInterval", err)
	}
}
