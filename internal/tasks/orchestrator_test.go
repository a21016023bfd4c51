package tasks

import (
	"sort"
	"sync"
	"testing"
	"time"
)

// fakeController records restart calls and fails the services it is told to.
type fakeController struct {
	mu      sync.Mutex
	calls   []string
	failing map[string]bool
	block   chan struct{} // when set, Restart waits until closed
}

func (f *fakeController) Restart(service string) bool {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.calls = append(f.calls, service)
	f.mu.Unlock()
	return !f.failing[service]
}

func (f *fakeController) restarted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// waitTerminal polls until the task reaches a terminal state.
func waitTerminal(t *testing.T, o *Orchestrator, taskID string) RestartTask {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, ok := o.Status(taskID)
		if !ok {
			t.Fatalf("task %s not found", taskID)
		}
		if task.Status == StatusCompleted || task.Status == StatusFailed {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal state", taskID)
	return RestartTask{}
}

func TestEmptyBatchCompletesWithoutRestarting(t *testing.T) {
	ctrl := &fakeController{}
	o := NewOrchestrator(ctrl, nil, 2)

	task := waitTerminal(t, o, o.Submit(nil))

	if task.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", task.Status)
	}
	if task.Progress != 100 {
		t.Errorf("expected progress 100, got %d", task.Progress)
	}
	if len(ctrl.restarted()) != 0 {
		t.Errorf("controller should not have been invoked, got %v", ctrl.restarted())
	}
}

func TestAllServicesSucceed(t *testing.T) {
	ctrl := &fakeController{}
	o := NewOrchestrator(ctrl, nil, 2)

	task := waitTerminal(t, o, o.Submit([]string{"pihole", "cloudflared"}))

	if task.Status != StatusCompleted {
		t.Errorf("expected completed, got %s: %s", task.Status, task.Message)
	}
	if len(task.ServicesRestarted) != 2 || len(task.ServicesFailed) != 0 {
		t.Errorf("unexpected lists: restarted=%v failed=%v",
			task.ServicesRestarted, task.ServicesFailed)
	}
	if got := ctrl.restarted(); got[0] != "pihole" || got[1] != "cloudflared" {
		t.Errorf("services restarted out of order: %v", got)
	}
}

func TestFailedServiceDoesNotStopBatch(t *testing.T) {
	ctrl := &fakeController{failing: map[string]bool{"pihole": true}}
	o := NewOrchestrator(ctrl, nil, 2)

	task := waitTerminal(t, o, o.Submit([]string{"pihole", "wireguard"}))

	if task.Status != StatusFailed {
		t.Errorf("expected failed, got %s", task.Status)
	}
	if task.Progress != 100 {
		t.Errorf("expected progress 100, got %d", task.Progress)
	}
	if len(task.ServicesRestarted) != 1 || task.ServicesRestarted[0] != "wireguard" {
		t.Errorf("expected wireguard restarted, got %v", task.ServicesRestarted)
	}
	if len(task.ServicesFailed) != 1 || task.ServicesFailed[0] != "pihole" {
		t.Errorf("expected pihole failed, got %v", task.ServicesFailed)
	}
	if len(ctrl.restarted()) != 2 {
		t.Errorf("both services should have been attempted, got %v", ctrl.restarted())
	}
}

func TestFailureMessageNamesServices(t *testing.T) {
	ctrl := &fakeController{failing: map[string]bool{"npm": true, "pihole": true}}
	o := NewOrchestrator(ctrl, nil, 2)

	task := waitTerminal(t, o, o.Submit([]string{"npm", "pihole"}))

	if task.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", task.Status)
	}
	if task.Message != "Completed with errors: npm, pihole" {
		t.Errorf("unexpected failure message: %q", task.Message)
	}
}

type panickingController struct{}

func (panickingController) Restart(string) bool { panic("controller exploded") }

func TestWorkerPanicBecomesFailedTask(t *testing.T) {
	o := NewOrchestrator(panickingController{}, nil, 2)

	task := waitTerminal(t, o, o.Submit([]string{"pihole"}))

	if task.Status != StatusFailed {
		t.Errorf("expected failed, got %s", task.Status)
	}
	if task.Progress != 100 {
		t.Errorf("expected progress 100, got %d", task.Progress)
	}
	if task.Message != "Error: controller exploded" {
		t.Errorf("unexpected message: %q", task.Message)
	}
}

func TestUnknownTaskID(t *testing.T) {
	o := NewOrchestrator(&fakeController{}, nil, 2)

	if _, ok := o.Status("no-such-task"); ok {
		t.Error("unknown task id should report not found")
	}
}

func TestSubmitReturnsDistinctIDsAndDoesNotBlock(t *testing.T) {
	block := make(chan struct{})
	ctrl := &fakeController{block: block}
	o := NewOrchestrator(ctrl, nil, 2)

	// Saturate the pool, then keep submitting. Submit must return anyway.
	seen := make(map[string]bool)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			id := o.Submit([]string{"pihole"})
			if seen[id] {
				t.Errorf("duplicate task id %s", id)
			}
			seen[id] = true
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked while the pool was saturated")
	}

	close(block)
	for id := range seen {
		waitTerminal(t, o, id)
	}
}

func TestConcurrentTasksAllFinish(t *testing.T) {
	ctrl := &fakeController{}
	o := NewOrchestrator(ctrl, nil, 2)

	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, o.Submit([]string{"pihole", "cloudflared"}))
	}

	for _, id := range ids {
		task := waitTerminal(t, o, id)
		if task.Status != StatusCompleted {
			t.Errorf("task %s: expected completed, got %s", id, task.Status)
		}
	}

	got := ctrl.restarted()
	sort.Strings(got)
	if len(got) != 8 {
		t.Errorf("expected 8 restarts total, got %d", len(got))
	}
}

func TestStatusReturnsSnapshotCopies(t *testing.T) {
	ctrl := &fakeController{}
	o := NewOrchestrator(ctrl, nil, 2)

	id := o.Submit([]string{"pihole"})
	task := waitTerminal(t, o, id)

	task.ServicesRestarted = append(task.ServicesRestarted, "mutated")
	again, _ := o.Status(id)
	for _, s := range again.ServicesRestarted {
		if s == "mutated" {
			t.Error("Status exposed internal slice state")
		}
	}
}
