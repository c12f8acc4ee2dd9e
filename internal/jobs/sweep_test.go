package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewSweepJobDefaults(t *testing.T) {
	j := NewSweepJob(t.TempDir(), 0, 0, zap.NewNop().Sugar())
	if j.maxAge != time.Hour {
		t.Errorf("maxAge = %v, want 1h", j.maxAge)
	}
	if j.interval != time.Hour {
		t.Errorf("interval = %v, want 1h", j.interval)
	}
}

func TestSweepJobRunOnce(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "mensagem_1.mp3")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	j := NewSweepJob(dir, time.Hour, time.Hour, zap.NewNop().Sugar())
	j.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	res := j.RunOnce()
	if res.Removed != 1 {
		t.Errorf("Removed = %d, want 1", res.Removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale audio file should be gone, stat err = %v", err)
	}
}

func TestSweepJobTicks(t *testing.T) {
	dir := t.TempDir()
	j := NewSweepJob(dir, time.Hour, 10*time.Millisecond, zap.NewNop().Sugar())
	j.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	j.Start()
	defer j.Stop()

	stale := filepath.Join(dir, "mensagem_late.mp3")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(stale); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("background sweep did not remove the stale audio file")
}

func TestSweepJobStopTwice(t *testing.T) {
	j := NewSweepJob(t.TempDir(), time.Hour, time.Hour, zap.NewNop().Sugar())
	j.Start()
	j.Stop()
	j.Stop()
}
