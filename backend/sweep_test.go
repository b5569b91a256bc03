package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildSweepTasks(t *testing.T) {
	config := DefaultConfig()
	config.SweepMinTotal = 11
	config.SweepMaxTotal = 12
	config.SweepBothPlayers = true
	tasks := buildSweepTasks(config)
	if len(tasks) != 24 {
		t.Fatalf("expected 2 totals x 6 faces x 2 players = 24 tasks, got %d", len(tasks))
	}

	config.SweepBothPlayers = false
	tasks = buildSweepTasks(config)
	if len(tasks) != 12 {
		t.Fatalf("expected 12 single-player tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.player != PlayerTwo {
			t.Fatalf("single-player sweep must use PlayerTwo, got %d", task.player)
		}
		if task.total < 11 || task.total > 12 || task.face < minFace || task.face > maxFace {
			t.Fatalf("task out of range: %+v", task)
		}
	}
}

func TestSweepStartRequiresResultsLog(t *testing.T) {
	manager := &sweepManager{}
	if _, err := manager.Start(DefaultConfig()); err == nil {
		t.Fatal("expected an error without a results log")
	}
}

func TestSweepRunsToCompletion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.log")
	results := NewResultsLog(path)
	defer results.Close()

	manager := &sweepManager{}
	manager.SetResultsLog(results)

	config := DefaultConfig()
	config.SweepMinTotal = 11
	config.SweepMaxTotal = 11
	config.SweepBothPlayers = false
	config.SweepWorkers = 2

	jobID, err := manager.Start(config)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if jobID == "" {
		t.Fatal("expected a job id")
	}
	manager.Wait()

	status := manager.Status()
	if status.Running {
		t.Fatal("job still running after Wait")
	}
	if status.JobID != jobID || status.Total != 6 || status.Completed != 6 {
		t.Fatalf("unexpected final status %+v", status)
	}
	if status.Progress != 1 {
		t.Fatalf("expected progress 1, got %f", status.Progress)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 result lines, got %d: %q", len(lines), data)
	}
	// Total 11 is a mover win for every face, and worker order does not
	// change that. Only the line order is nondeterministic.
	seen := map[string]bool{}
	for _, line := range lines {
		parts := strings.Fields(line)
		if len(parts) != 4 {
			t.Fatalf("malformed line %q", line)
		}
		if parts[1] != "player:-1" || parts[2] != "total:11" || parts[3] != "eval:1" {
			t.Fatalf("unexpected line %q", line)
		}
		if seen[parts[0]] {
			t.Fatalf("duplicate face in %q", line)
		}
		seen[parts[0]] = true
	}
	for face := minFace; face <= maxFace; face++ {
		key := "face:" + string(rune('0'+face))
		if !seen[key] {
			t.Fatalf("missing result for %s", key)
		}
	}

	// A finished manager accepts a new job.
	jobID2, err := manager.Start(config)
	if err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if jobID2 == jobID {
		t.Fatal("expected a fresh job id")
	}
	manager.Wait()
}

func TestSweepStopBeforeStart(t *testing.T) {
	manager := &sweepManager{}
	manager.RequestStop()
	status := manager.Status()
	if !status.Stopped || status.Running {
		t.Fatalf("unexpected status %+v", status)
	}
}
