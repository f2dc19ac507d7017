package ports

import (
	"context"
	"io"

	"stringcalc/domain/instrument"
)

// EventEmitter delivers named events to the remote peer.
type EventEmitter interface {
	Emit(ctx context.Context, event string, args ...interface{}) error
}

// EventHandler receives the raw JSON arguments of one inbound event.
type EventHandler func(args [][]byte)

// AnyHandler receives every inbound event, by name.
type AnyHandler func(event string, args [][]byte)

// EventTransport is a bidirectional named-event channel with an explicit
// lifecycle.
type EventTransport interface {
	EventEmitter
	On(event string, handler EventHandler)
	OnAny(handler AnyHandler)
	Connect(ctx context.Context) error
	Close() error
}

// ReconcileObserver is told about every row a reconcile pass touches.
type ReconcileObserver interface {
	RowCreated(key instrument.RowKey)
	RowUpdated(key instrument.RowKey)
	RowSkipped(key instrument.RowKey, err error)
}

// SnapshotExporter writes a table snapshot in some file format.
type SnapshotExporter interface {
	ContentType() string
	Export(w io.Writer, headers []string, snapshot instrument.TableSnapshot) error
}
