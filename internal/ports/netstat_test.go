package ports

import "testing"

const netstatSample = `
Active Connections

  Proto  Local Address          Foreign Address        State           PID
  TCP    0.0.0.0:3000           0.0.0.0:0              LISTENING       1234
  TCP    [::]:3000              [::]:0                 LISTENING       1234
  TCP    127.0.0.1:5432         0.0.0.0:0              LISTENING       4321
  TCP    0.0.0.0:135            0.0.0.0:0              LISTENING       888
  TCP    127.0.0.1:3001         127.0.0.1:54000        ESTABLISHED     1234
  TCP    0.0.0.0:445            0.0.0.0:0              LISTENING       0
  UDP    0.0.0.0:5353           *:*                                    999
`

func TestParseNetstatOutput(t *testing.T) {
	ranges := []Range{{3000, 3010}, {5432, 5432}, {445, 445}}
	listeners := parseNetstatOutput(netstatSample, ranges)

	want := []netstatListener{
		{port: 3000, pid: 1234},
		{port: 3000, pid: 1234},
		{port: 5432, pid: 4321},
	}
	if len(listeners) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(listeners), listeners)
	}
	for i := range want {
		if listeners[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, listeners[i], want[i])
		}
	}
}

func TestParseNetstatOutputNilRangesMatchesAll(t *testing.T) {
	listeners := parseNetstatOutput(netstatSample, nil)
	if len(listeners) != 4 {
		t.Fatalf("expected 4 rows with nil ranges, got %d: %v", len(listeners), listeners)
	}
}
