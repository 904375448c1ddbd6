package fleet

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/fleetsim/internal/infrastructure/config"
	"github.com/nerrad567/fleetsim/internal/logic"
	"github.com/nerrad567/fleetsim/internal/scheduler"
)

func loopbackConfig() *config.Config {
	return &config.Config{
		Link:      config.LinkConfig{Type: config.LinkTypeLoopback},
		Scheduler: config.SchedulerConfig{OverlapPolicy: config.OverlapSkip},
	}
}

// =============================================================================
// Build Tests
// =============================================================================

func TestContainerBuild(t *testing.T) {
	descriptors := []config.UnitDescriptor{
		engineDescriptor(),
		{
			Name:      "engine-02",
			Registers: map[string]any{"rpm": 0},
			Publishers: []config.PublisherDescriptor{
				periodicDesc("rpm-telemetry", "tele/engine-02/rpm", "rpm", 100),
			},
		},
	}

	c, err := Build(loopbackConfig(), descriptors, logic.NewRegistry(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer c.Shutdown()

	want := []string{"engine-01", "engine-02"}
	if got := c.UnitNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("UnitNames() = %v, want %v", got, want)
	}
	if c.Unit("engine-01") == nil {
		t.Error("Unit(engine-01) = nil")
	}
	if c.Unit("absent") != nil {
		t.Error("Unit(absent) != nil")
	}
}

func TestContainerBuildNilRegistry(t *testing.T) {
	_, err := Build(loopbackConfig(), nil, nil, BuildOptions{})
	if !errors.Is(err, ErrNilRegistry) {
		t.Errorf("Build() error = %v, want ErrNilRegistry", err)
	}
}

func TestContainerBuildDuplicateUnit(t *testing.T) {
	descriptors := []config.UnitDescriptor{
		engineDescriptor(),
		engineDescriptor(),
	}

	_, err := Build(loopbackConfig(), descriptors, logic.NewRegistry(), BuildOptions{})
	if !errors.Is(err, ErrDuplicateUnit) {
		t.Errorf("Build() error = %v, want ErrDuplicateUnit", err)
	}
}

func TestContainerBuildBadOverlapPolicy(t *testing.T) {
	cfg := loopbackConfig()
	cfg.Scheduler.OverlapPolicy = "sometimes"

	_, err := Build(cfg, nil, logic.NewRegistry(), BuildOptions{})
	if !errors.Is(err, scheduler.ErrUnknownPolicy) {
		t.Errorf("Build() error = %v, want ErrUnknownPolicy", err)
	}
}

func TestContainerBuildUnknownLinkType(t *testing.T) {
	cfg := loopbackConfig()
	cfg.Link.Type = "carrier-pigeon"

	_, err := Build(cfg, nil, logic.NewRegistry(), BuildOptions{})
	if !errors.Is(err, ErrUnknownLinkType) {
		t.Errorf("Build() error = %v, want ErrUnknownLinkType", err)
	}
}

func TestContainerBuildUnitFailureReleasesLink(t *testing.T) {
	descriptors := []config.UnitDescriptor{
		{
			Name: "broken",
			Subscribers: []config.SubscriberDescriptor{
				{
					ID:      "info-request",
					Topic:   "req/broken/info",
					Mode:    config.SubscriberModeRequest,
					Handler: "missing.handler",
				},
			},
		},
	}

	_, err := Build(loopbackConfig(), descriptors, logic.NewRegistry(), BuildOptions{})
	if !errors.Is(err, logic.ErrUnknownReference) {
		t.Errorf("Build() error = %v, want ErrUnknownReference", err)
	}
}

// =============================================================================
// Run / Shutdown Tests
// =============================================================================

func TestContainerRunEndToEnd(t *testing.T) {
	link := NewLoopbackLink()

	desc := engineDescriptor()
	desc.Publishers[0].IntervalMS = 20

	var mu sync.Mutex
	var telemetry []string
	if err := link.Subscribe("tele/engine-01/rpm", func(payload []byte) {
		mu.Lock()
		telemetry = append(telemetry, string(payload))
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	c, err := Build(loopbackConfig(), []config.UnitDescriptor{desc}, logic.NewRegistry(), BuildOptions{Link: link})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer c.Shutdown()

	if err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// A command on the setpoint topic lands in the unit's register store.
	if err := link.Publish("cmd/engine-01/rpm", []byte("4500")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	store := c.Unit("engine-01").Registers()
	if got := store.Get("rpm"); got != float64(4500) {
		t.Errorf("Get(rpm) = %v, want 4500", got)
	}

	// Within an interval or two the telemetry publisher carries the new value.
	if !waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range telemetry {
			if p == "4500" {
				return true
			}
		}
		return false
	}) {
		mu.Lock()
		defer mu.Unlock()
		t.Errorf("telemetry = %v, want a publish carrying 4500", telemetry)
	}
}

func TestContainerPeriodicTelemetry(t *testing.T) {
	link := NewLoopbackLink()

	desc := engineDescriptor()
	desc.Publishers[0].IntervalMS = 20

	var mu sync.Mutex
	var got []string
	if err := link.Subscribe("tele/engine-01/rpm", func(payload []byte) {
		mu.Lock()
		got = append(got, string(payload))
		mu.Unlock()
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	c, err := Build(loopbackConfig(), []config.UnitDescriptor{desc}, logic.NewRegistry(), BuildOptions{Link: link})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	c.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	if len(got) < 3 {
		t.Errorf("received %d telemetry messages in 150ms at 20ms, want >= 3", len(got))
	}
	for i, p := range got {
		if p != "0" {
			t.Errorf("payload[%d] = %q, want 0", i, p)
		}
	}
}

func TestContainerUnitsIsolated(t *testing.T) {
	link := NewLoopbackLink()

	second := engineDescriptor()
	second.Name = "engine-02"
	second.Publishers = []config.PublisherDescriptor{
		periodicDesc("rpm-telemetry", "tele/engine-02/rpm", "rpm", 100),
	}
	second.Subscribers = []config.SubscriberDescriptor{
		dataWriteDesc("rpm-setpoint", "cmd/engine-02/rpm", "rpm"),
	}

	c, err := Build(loopbackConfig(), []config.UnitDescriptor{engineDescriptor(), second}, logic.NewRegistry(), BuildOptions{Link: link})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer c.Shutdown()
	if err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := link.Publish("cmd/engine-01/rpm", []byte("1000")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// The write reaches only engine-01's store.
	if got := c.Unit("engine-01").Registers().Get("rpm"); got != float64(1000) {
		t.Errorf("engine-01 rpm = %v, want 1000", got)
	}
	if got := c.Unit("engine-02").Registers().Get("rpm"); got != 0 {
		t.Errorf("engine-02 rpm = %v, want 0", got)
	}
}

func TestContainerShutdownIdempotent(t *testing.T) {
	c, err := Build(loopbackConfig(), []config.UnitDescriptor{engineDescriptor()}, logic.NewRegistry(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	c.Shutdown()
	c.Shutdown()
}

func TestContainerRunAfterShutdown(t *testing.T) {
	c, err := Build(loopbackConfig(), []config.UnitDescriptor{engineDescriptor()}, logic.NewRegistry(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	c.Shutdown()
	if err := c.Run(); !errors.Is(err, ErrNotRunnable) {
		t.Errorf("Run() after Shutdown error = %v, want ErrNotRunnable", err)
	}
}

func TestContainerRunTwice(t *testing.T) {
	c, err := Build(loopbackConfig(), []config.UnitDescriptor{engineDescriptor()}, logic.NewRegistry(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer c.Shutdown()

	if err := c.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := c.Run(); !errors.Is(err, ErrNotRunnable) {
		t.Errorf("second Run() error = %v, want ErrNotRunnable", err)
	}
}
