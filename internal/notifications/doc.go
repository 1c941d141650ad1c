// Package notifications sends ntfy push notifications for pipeline events.
// With no topic configured every notification is a silent no-op, so callers
// never guard their calls.
package notifications
