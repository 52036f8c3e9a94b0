package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRecorderTextfile(t *testing.T) {
	r := New()
	r.ObserveCommand("applied", "", 10*time.Millisecond)
	r.ObserveCommand("applied", "", 20*time.Millisecond)
	r.ObserveCommand("failed", "timeout", time.Second)
	r.ApplyFinished(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "allyscheduler.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`allyscheduler_commands_total{reason="",status="applied"} 2`,
		`allyscheduler_commands_total{reason="timeout",status="failed"} 1`,
		`allyscheduler_publish_duration_seconds_count 3`,
		`allyscheduler_last_apply_timestamp_seconds `,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveCommand("applied", "", time.Millisecond)
	r.ApplyFinished(time.Now())
}
