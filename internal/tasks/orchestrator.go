// Package tasks runs batches of service restarts on a small background
// worker pool and exposes pollable per-task progress.
package tasks

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"guardian/internal/docker"
	"guardian/internal/events"
)

// Task states. A task is immutable once terminal.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RestartTask is the pollable progress record for one restart batch.
type RestartTask struct {
	TaskID            string   `json:"taskId"`
	Status            string   `json:"status"`
	Message           string   `json:"message"`
	Progress          int      `json:"progress"` // 0..100
	ServicesRestarted []string `json:"servicesRestarted"`
	ServicesFailed    []string `json:"servicesFailed"`
}

// Orchestrator schedules restart batches. Submissions never block; the
// caller polls Status until the task is terminal. Tasks are never evicted —
// volume is operator-driven and bounded by process lifetime.
type Orchestrator struct {
	controller docker.Controller
	bus        *events.Bus

	// workers bounds how many tasks run at once. Each task's services are
	// restarted strictly sequentially; they may share infrastructure.
	workers chan struct{}

	mu    sync.Mutex
	tasks map[string]*RestartTask
}

// NewOrchestrator creates an orchestrator with the given worker pool size.
// bus may be nil in tests.
func NewOrchestrator(controller docker.Controller, bus *events.Bus, workers int) *Orchestrator {
	if workers < 2 {
		workers = 2
	}
	return &Orchestrator{
		controller: controller,
		bus:        bus,
		workers:    make(chan struct{}, workers),
		tasks:      make(map[string]*RestartTask),
	}
}

// Submit records a pending task for the ordered service list and returns
// its id immediately. The work runs on the pool in the background.
func (o *Orchestrator) Submit(services []string) string {
	taskID := uuid.NewString()

	o.mu.Lock()
	o.tasks[taskID] = &RestartTask{
		TaskID:  taskID,
		Status:  StatusPending,
		Message: "Restart queued",
	}
	o.mu.Unlock()

	o.publish(events.Event{Type: events.RestartQueued, TaskID: taskID,
		Message: fmt.Sprintf("Restart queued for %d services", len(services))})

	go func() {
		o.workers <- struct{}{}
		defer func() { <-o.workers }()

		defer func() {
			if r := recover(); r != nil {
				log.Printf("tasks: restart task %s panicked: %v", taskID, r)
				o.update(taskID, func(t *RestartTask) {
					t.Status = StatusFailed
					t.Message = fmt.Sprintf("Error: %v", r)
					t.Progress = 100
				})
			}
		}()

		o.run(taskID, services)
	}()

	return taskID
}

// Status returns a snapshot of the task, or false for an unknown id.
func (o *Orchestrator) Status(taskID string) (RestartTask, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	task, ok := o.tasks[taskID]
	if !ok {
		return RestartTask{}, false
	}
	snapshot := *task
	snapshot.ServicesRestarted = append([]string(nil), task.ServicesRestarted...)
	snapshot.ServicesFailed = append([]string(nil), task.ServicesFailed...)
	return snapshot, ok
}

// run restarts each service in order, best effort: a failed service does
// not stop the rest of the batch.
func (o *Orchestrator) run(taskID string, services []string) {
	log.Printf("🔄 Starting service restart task %s", taskID)

	o.update(taskID, func(t *RestartTask) {
		t.Status = StatusRunning
		t.Message = "Restarting services..."
	})

	var restarted, failed []string
	total := len(services)

	for i, service := range services {
		log.Printf("tasks: restarting service %d/%d: %s", i+1, total, service)

		progress := i * 100 / total
		o.update(taskID, func(t *RestartTask) {
			t.Message = fmt.Sprintf("Restarting %s...", service)
			t.Progress = progress
			t.ServicesRestarted = append([]string(nil), restarted...)
			t.ServicesFailed = append([]string(nil), failed...)
		})

		if o.controller.Restart(service) {
			restarted = append(restarted, service)
		} else {
			failed = append(failed, service)
		}
	}

	status := StatusCompleted
	message := "All services restarted successfully"
	if len(failed) > 0 {
		status = StatusFailed
		message = "Completed with errors: " + strings.Join(failed, ", ")
	}

	o.update(taskID, func(t *RestartTask) {
		t.Status = status
		t.Message = message
		t.Progress = 100
		t.ServicesRestarted = restarted
		t.ServicesFailed = failed
	})

	if status == StatusCompleted {
		o.publish(events.Event{Type: events.RestartCompleted, TaskID: taskID, Message: message})
	} else {
		o.publish(events.Event{Type: events.RestartFailed, TaskID: taskID,
			Severity: events.SeverityWarning, Message: message})
	}
	log.Printf("✓ Service restart task %s finished: %s", taskID, status)
}

// update mutates a task under the lock. Only the task's own worker calls
// this after submission, so terminal records never change again.
func (o *Orchestrator) update(taskID string, fn func(*RestartTask)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if task, ok := o.tasks[taskID]; ok {
		fn(task)
	}
}

func (o *Orchestrator) publish(e events.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}
