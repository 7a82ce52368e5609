// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - StateEvent: one contact's send state changed
//   - SendEvent: one transport call finished
//   - BulkEvent: a bulk run started or finished
package events
