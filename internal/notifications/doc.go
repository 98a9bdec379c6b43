// Package notifications delivers download lifecycle notifications through
// ntfy. Configuration decides which events notify; with no topic configured
// every call is a silent noop.
package notifications
