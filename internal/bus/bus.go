// Package bus holds the process-wide event publisher. Long running operations (such as a taxonomy import) report
// their progress here; when no publisher has been set, events are silently dropped.
package bus

import "github.com/wagoodman/go-partybus"

var publisher partybus.Publisher

// Set installs the publisher that all subsequent events are forwarded to.
func Set(p partybus.Publisher) {
	publisher = p
}

// Publish forwards the event to the configured publisher (if any).
func Publish(e partybus.Event) {
	if publisher == nil {
		return
	}
	publisher.Publish(e)
}
