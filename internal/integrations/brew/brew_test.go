package brew

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/kill"
)

func TestServiceForKnownCommands(t *testing.T) {
	cases := []struct {
		command string
		want    string
	}{
		{"redis-server", "redis"},
		{"Redis-Server", "redis"},
		{"postgres", "postgresql"},
		{"mysqld", "mysql"},
		{"mongod", "mongodb-community"},
		{"node", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ServiceFor(tc.command); got != tc.want {
			t.Errorf("ServiceFor(%q) = %q, want %q", tc.command, got, tc.want)
		}
	}
}

func TestManagedServiceRequiresRunningService(t *testing.T) {
	running := map[string]struct{}{"redis": {}}
	if got := ManagedService("redis-server", 6379, running); got != "redis" {
		t.Fatalf("running redis: %q", got)
	}
	// mongod maps to a known service, but nothing started it; the listener
	// was launched by hand and is fair game.
	if got := ManagedService("mongod", 27017, running); got != "" {
		t.Fatalf("stopped service claimed listener: %q", got)
	}
	if got := ManagedService("node", 3000, running); got != "" {
		t.Fatalf("unknown command claimed: %q", got)
	}
}

func TestManagedServiceMatchesVersionedFormula(t *testing.T) {
	running := map[string]struct{}{"postgresql@16": {}}
	if got := ManagedService("postgres", 5432, running); got != "postgresql@16" {
		t.Fatalf("versioned formula: %q", got)
	}
}

func TestRefreshPublishesRunningServices(t *testing.T) {
	events := bus.New()
	b := &Integration{run: func(ctx context.Context, args ...string) ([]byte, error) {
		return []byte("Name Status User File\nredis started srp file\n"), nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Refresh(ctx, events)
		close(done)
	}()

	select {
	case ev := <-events.Events():
		if ev.Type != bus.EventTypeServices {
			t.Fatalf("event type: %s", ev.Type)
		}
		if _, ok := ev.Services["redis"]; !ok {
			t.Fatalf("services: %v", ev.Services)
		}
	case <-time.After(time.Second):
		t.Fatal("no services event published")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestParseServicesList(t *testing.T) {
	out := []byte(`Name              Status  User File
mysql             none
postgresql@16     started srp  ~/Library/LaunchAgents/homebrew.mxcl.postgresql@16.plist
redis             started srp  ~/Library/LaunchAgents/homebrew.mxcl.redis.plist
unbound           error   root
`)
	got := parseServicesList(out)
	want := []string{"postgresql@16", "redis"}
	if len(got) != len(want) {
		t.Fatalf("running services: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("running services: %v, want %v", got, want)
		}
	}
}

func TestStopServiceFeedback(t *testing.T) {
	var calls []string
	b := &Integration{run: func(ctx context.Context, args ...string) ([]byte, error) {
		calls = append(calls, strings.Join(args, " "))
		return nil, nil
	}}
	fb := b.StopService(context.Background(), "redis")
	if fb.Severity != kill.SeverityInfo {
		t.Fatalf("severity: %v, message %q", fb.Severity, fb.Message)
	}
	if len(calls) != 1 || calls[0] != "services stop redis" {
		t.Fatalf("calls: %v", calls)
	}
}

func TestStopServiceFailure(t *testing.T) {
	b := &Integration{run: func(ctx context.Context, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}}
	fb := b.StopService(context.Background(), "redis")
	if fb.Severity != kill.SeverityError {
		t.Fatalf("severity: %v, message %q", fb.Severity, fb.Message)
	}
}
