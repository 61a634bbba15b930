package ports

import "testing"

func TestParseLsofPort(t *testing.T) {
	tests := []struct {
		name string
		want uint16
		ok   bool
	}{
		{name: "*:3000", want: 3000, ok: true},
		{name: "127.0.0.1:5173", want: 5173, ok: true},
		{name: "[::1]:8000", want: 8000, ok: true},
		{name: "127.0.0.1:abcd"},
		{name: "127.0.0.1->192.168.0.1:1234"},
		{name: "garbage"},
		{name: "127.0.0.1:"},
	}
	for _, tt := range tests {
		got, ok := parseLsofPort(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseLsofPort(%q) = (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseLsofOutput(t *testing.T) {
	out := "p111\n" +
		"cnode\n" +
		"n*:3000\n" +
		"n*:3001\n" +
		"n127.0.0.1:9999\n" +
		"p222\n" +
		"cpostgres\n" +
		"n127.0.0.1:5432\n" +
		"n127.0.0.1:5432\n" +
		"p333\n" +
		"n[::1]:8000\n"

	ranges := []Range{{3000, 3010}, {5432, 5432}, {8000, 8000}}
	snap := parseLsofOutput(out, ranges)

	want := Snapshot{
		{Port: 3000, Pid: 111, Command: "node"},
		{Port: 3001, Pid: 111, Command: "node"},
		{Port: 5432, Pid: 222, Command: "postgres"},
		{Port: 8000, Pid: 333, Command: "pid 333"},
	}
	if len(snap) != len(want) {
		t.Fatalf("expected %d records, got %d: %v", len(want), len(snap), snap)
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("record %d: got %+v, want %+v", i, snap[i], want[i])
		}
	}
}

func TestParseLsofOutputIgnoresOutOfRange(t *testing.T) {
	out := "p1\ncnode\nn*:9999\n"
	if snap := parseLsofOutput(out, []Range{{3000, 3010}}); len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap)
	}
}
