// Package notify pushes operator notifications (failed restarts, factory
// resets, repeated bad logins) to configured Shoutrrr targets.
package notify

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/nicholas-fedor/shoutrrr"

	"guardian/internal/events"
)

// Sender abstracts message dispatch so the dispatcher can be tested
// without hitting real services.
type Sender interface {
	Send(shoutrrrURL, message string) error
}

// ShoutrrrSender dispatches via the Shoutrrr library.
type ShoutrrrSender struct{}

func (ShoutrrrSender) Send(url, message string) error {
	return shoutrrr.Send(url, message)
}

// Dispatcher subscribes to the event bus and forwards qualifying events to
// every enabled notification service.
type Dispatcher struct {
	db     *sql.DB
	bus    *events.Bus
	sender Sender

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher wired to the given bus and database.
func NewDispatcher(db *sql.DB, bus *events.Bus, sender Sender) *Dispatcher {
	if sender == nil {
		sender = ShoutrrrSender{}
	}
	return &Dispatcher{
		db:     db,
		bus:    bus,
		sender: sender,
		stopCh: make(chan struct{}),
	}
}

// Start subscribes to all events and begins dispatching on a background
// goroutine so slow providers never stall a publisher.
func (d *Dispatcher) Start() {
	ch := make(chan events.Event, 256)

	d.bus.Subscribe(func(e events.Event) {
		select {
		case ch <- e:
		default:
			log.Printf("notify: event queue full, dropping %s event", e.Type)
		}
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case e := <-ch:
				d.handle(e)
			case <-d.stopCh:
				// Drain remaining events
				for {
					select {
					case e := <-ch:
						d.handle(e)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop signals the dispatcher goroutine to finish and waits for it.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
}

// handle sends one event to every enabled service whose severity floor it
// meets.
func (d *Dispatcher) handle(e events.Event) {
	services, err := ListEnabledServices(d.db)
	if err != nil {
		log.Printf("notify: list services: %v", err)
		return
	}

	for _, svc := range services {
		if e.Severity < svc.MinSeverity {
			continue
		}
		message := formatMessage(e)
		if err := d.sender.Send(svc.ShoutrrrURL, message); err != nil {
			log.Printf("notify: send to %s: %v", svc.Name, err)
		}
	}
}

func formatMessage(e events.Event) string {
	prefix := "Guardian Hub"
	switch e.Severity {
	case events.SeverityWarning:
		prefix = "⚠️ Guardian Hub"
	case events.SeverityCritical:
		prefix = "🚨 Guardian Hub"
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}
