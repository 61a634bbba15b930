package ports

import (
	"math/rand"
	"testing"
)

func TestNormalizeDeduplicatesAndSorts(t *testing.T) {
	records := []Record{
		{Port: 8080, Pid: 40, Command: "java"},
		{Port: 3000, Pid: 102, Command: "node"},
		{Port: 3000, Pid: 7, Command: "node"},
		{Port: 3000, Pid: 102, Command: "node"},
		{Port: 5432, Pid: 55, Command: "postgres"},
		{Port: 8080, Pid: 40, Command: "java"},
	}

	snap := Normalize(records)

	want := Snapshot{
		{Port: 3000, Pid: 7, Command: "node"},
		{Port: 3000, Pid: 102, Command: "node"},
		{Port: 5432, Pid: 55, Command: "postgres"},
		{Port: 8080, Pid: 40, Command: "java"},
	}
	if len(snap) != len(want) {
		t.Fatalf("expected %d records, got %d: %v", len(want), len(snap), snap)
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("record %d: got %+v, want %+v", i, snap[i], want[i])
		}
	}
}

func TestSnapshotEqualIsOrderIndependent(t *testing.T) {
	base := Snapshot{
		{Port: 3000, Pid: 111, Command: "node"},
		{Port: 5173, Pid: 112, Command: "vite"},
		{Port: 8000, Pid: 113, Command: "python"},
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append(Snapshot(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if !base.Equal(shuffled) {
			t.Fatalf("shuffle %d: snapshots with identical records compared unequal", i)
		}
	}

	changed := append(Snapshot(nil), base...)
	changed[1].Pid = 999
	if base.Equal(changed) {
		t.Fatal("snapshots with differing records compared equal")
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		spec    string
		want    Range
		wantErr bool
	}{
		{spec: "3000", want: Range{3000, 3000}},
		{spec: "3000-3010", want: Range{3000, 3010}},
		{spec: " 8080 - 8090 ", want: Range{8080, 8090}},
		{spec: "65535", want: Range{65535, 65535}},
		{spec: "", wantErr: true},
		{spec: "3010-3000", wantErr: true},
		{spec: "70000", wantErr: true},
		{spec: "abc", wantErr: true},
		{spec: "3000-", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRange(tt.spec)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRange(%q): expected error, got %v", tt.spec, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRange(%q): %v", tt.spec, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRange(%q) = %v, want %v", tt.spec, got, tt.want)
		}
	}
}

func TestInRangesHandlesOverlap(t *testing.T) {
	ranges := []Range{{3000, 3010}, {3005, 3020}, {5432, 5432}}
	for _, port := range []uint16{3000, 3007, 3015, 5432} {
		if !InRanges(port, ranges) {
			t.Errorf("port %d should be in ranges", port)
		}
	}
	for _, port := range []uint16{2999, 3021, 5431} {
		if InRanges(port, ranges) {
			t.Errorf("port %d should not be in ranges", port)
		}
	}
}

func TestRangeString(t *testing.T) {
	if got := (Range{3000, 3000}).String(); got != "3000" {
		t.Errorf("single-port range rendered as %q", got)
	}
	if got := (Range{3000, 3010}).String(); got != "3000-3010" {
		t.Errorf("range rendered as %q", got)
	}
}
