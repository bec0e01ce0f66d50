// Package core holds the interfaces shared between the signaling core
// and its transport adapters.
package core

// Frame is a raw wire payload (JSON text for the WS adapter).
type Frame []byte

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block: a full outbound buffer is an error, not a stall.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
