package main

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// sweepTask is one starting configuration of the outer enumeration.
type sweepTask struct {
	total  int
	face   int
	player PlayerID
}

type sweepStatus struct {
	JobID     string  `json:"job_id"`
	Running   bool    `json:"running"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Stopped   bool    `json:"stopped"`
	StartedAt string  `json:"started_at,omitempty"`
	ElapsedMs int64   `json:"elapsed_ms"`
	Progress  float64 `json:"progress"`
}

// sweepManager runs the enumeration over all starting totals, faces, and
// first players in the background. Every task is evaluated with a fresh
// engine, so each result comes from a cleared table and is reproducible in
// isolation; that independence is also what makes the workers safe — no
// pruning state is shared between them.
type sweepManager struct {
	mu        sync.Mutex
	jobID     string
	running   bool
	stop      atomic.Bool
	total     int
	completed atomic.Int64
	started   time.Time
	finished  time.Time
	done      chan struct{}
	results   *ResultsLog
	hub       *SweepHub
}

var sweepRunner = &sweepManager{}

func (m *sweepManager) SetResultsLog(results *ResultsLog) {
	m.mu.Lock()
	m.results = results
	m.mu.Unlock()
}

func (m *sweepManager) SetHub(hub *SweepHub) {
	m.mu.Lock()
	m.hub = hub
	m.mu.Unlock()
}

func buildSweepTasks(config Config) []sweepTask {
	players := []PlayerID{PlayerTwo}
	if config.SweepBothPlayers {
		players = []PlayerID{PlayerOne, PlayerTwo}
	}
	tasks := []sweepTask{}
	for total := config.SweepMinTotal; total <= config.SweepMaxTotal; total++ {
		for face := minFace; face <= maxFace; face++ {
			for _, player := range players {
				tasks = append(tasks, sweepTask{total: total, face: face, player: player})
			}
		}
	}
	return tasks
}

// Start launches a sweep job and returns its id, or an error when a job is
// already in flight.
func (m *sweepManager) Start(config Config) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return "", fmt.Errorf("sweep already running (job %s)", m.jobID)
	}
	if m.results == nil {
		return "", fmt.Errorf("sweep has no results log")
	}
	tasks := buildSweepTasks(config)
	workers := config.SweepWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	m.jobID = uuid.NewString()
	m.running = true
	m.stop.Store(false)
	m.total = len(tasks)
	m.completed.Store(0)
	m.started = time.Now()
	m.finished = time.Time{}
	m.done = make(chan struct{})

	taskCh := make(chan sweepTask)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go m.worker(&wg, taskCh, config)
	}
	go func() {
		for _, task := range tasks {
			if m.stop.Load() {
				break
			}
			taskCh <- task
		}
		close(taskCh)
		wg.Wait()
		m.finish()
	}()

	log.Printf("[sweep] job %s started: %d configurations, %d workers", m.jobID, len(tasks), workers)
	return m.jobID, nil
}

func (m *sweepManager) worker(wg *sync.WaitGroup, tasks <-chan sweepTask, config Config) {
	defer wg.Done()
	for task := range tasks {
		if m.stop.Load() {
			continue
		}
		settings := GameSettings{
			StartTotal:  task.total,
			StartFace:   task.face,
			FirstPlayer: task.player,
		}
		eval, _, _ := EvaluateStart(settings, config)
		if err := m.results.Append(task.face, task.player, task.total, eval); err != nil {
			log.Printf("[sweep] failed to append result for total=%d face=%d: %v", task.total, task.face, err)
		}
		completed := m.completed.Add(1)
		if completed%64 == 0 {
			m.publishProgress()
		}
	}
}

func (m *sweepManager) finish() {
	m.mu.Lock()
	m.running = false
	m.finished = time.Now()
	done := m.done
	results := m.results
	m.mu.Unlock()
	if results != nil {
		if err := results.Flush(); err != nil {
			log.Printf("[sweep] results flush failed: %v", err)
		}
	}
	m.publishProgress()
	log.Printf("[sweep] job %s finished: %d/%d configurations in %s",
		m.jobID, m.completed.Load(), m.total, time.Since(m.started))
	if done != nil {
		close(done)
	}
}

func (m *sweepManager) RequestStop() {
	m.stop.Store(true)
}

// Wait blocks until the current job (if any) drains.
func (m *sweepManager) Wait() {
	m.mu.Lock()
	done := m.done
	running := m.running
	m.mu.Unlock()
	if running && done != nil {
		<-done
	}
}

func (m *sweepManager) Status() sweepStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := sweepStatus{
		JobID:     m.jobID,
		Running:   m.running,
		Total:     m.total,
		Completed: int(m.completed.Load()),
		Stopped:   m.stop.Load(),
	}
	if !m.started.IsZero() {
		status.StartedAt = m.started.Format(time.RFC3339)
		end := m.finished
		if end.IsZero() {
			end = time.Now()
		}
		status.ElapsedMs = end.Sub(m.started).Milliseconds()
	}
	if status.Total > 0 {
		status.Progress = float64(status.Completed) / float64(status.Total)
	}
	return status
}

func (m *sweepManager) publishProgress() {
	m.mu.Lock()
	hub := m.hub
	m.mu.Unlock()
	if hub != nil {
		hub.Publish(m.Status())
	}
}
