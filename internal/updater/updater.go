// Package updater drives the calculator page: it collects the instrument
// form and sends it to the peer, and reconciles the string rows the peer
// pushes back into the table.
package updater

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"stringcalc/domain/instrument"
	"stringcalc/internal"
	"stringcalc/internal/collector"
	"stringcalc/internal/dom"
	"stringcalc/internal/table"
	"stringcalc/ports"
)

// Recorder receives telemetry about sends, receives and reconciled rows.
type Recorder interface {
	ports.ReconcileObserver
	EventSent(event string)
	EventReceived(event string)
	SendFailed(err error)
}

// Notice describes one applied update, for page viewers.
type Notice struct {
	Created []instrument.RowKey `json:"created"`
	Updated []instrument.RowKey `json:"updated"`
	Skipped []instrument.RowKey `json:"skipped"`
	Summary table.Summary       `json:"summary"`
	At      time.Time           `json:"at"`
}

// Options configures an Updater.
type Options struct {
	TableID        string
	Recorder       Recorder
	ReceiveTimeout time.Duration
	Logger         *internal.Logger
}

// Updater wires the page loop, the collector, the reconciler and the peer
// transport together.
type Updater struct {
	loop       *Loop
	collector  *collector.Collector
	reconciler *table.Reconciler
	transport  ports.EventTransport
	recorder   Recorder
	opts       Options

	listenersMu sync.RWMutex
	listeners   []func(Notice)
}

// New creates an Updater for doc and registers its handlers on transport.
// The transport's lifecycle stays with the caller.
func New(doc *dom.Document, transport ports.EventTransport, opts Options) *Updater {
	if opts.TableID == "" {
		opts.TableID = instrument.StringTable
	}
	if opts.ReceiveTimeout <= 0 {
		opts.ReceiveTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = internal.NewDefaultLogger("Updater")
	}

	var observer ports.ReconcileObserver
	if opts.Recorder != nil {
		observer = opts.Recorder
	}

	u := &Updater{
		loop:       NewLoop(doc),
		collector:  collector.New(opts.TableID),
		reconciler: table.NewReconciler(doc, opts.TableID, observer),
		transport:  transport,
		recorder:   opts.Recorder,
		opts:       opts,
	}

	transport.OnAny(func(event string, _ [][]byte) {
		u.opts.Logger.Info("got %s", event)
		if u.recorder != nil {
			u.recorder.EventReceived(event)
		}
	})
	transport.On(instrument.EventTableResponse, u.handleTableResponse)
	return u
}

// Run processes page work until ctx ends.
func (u *Updater) Run(ctx context.Context) error {
	return u.loop.Run(ctx)
}

// Subscribe registers fn to be told about every applied update.
func (u *Updater) Subscribe(fn func(Notice)) {
	u.listenersMu.Lock()
	defer u.listenersMu.Unlock()
	u.listeners = append(u.listeners, fn)
}

// UpdateInstrument collects the instrument form and the table and sends
// them to the peer as one instrument_updater event.
func (u *Updater) UpdateInstrument(ctx context.Context) (collector.Result, error) {
	var res collector.Result
	var sendErr error
	err := u.loop.Do(ctx, "update_instrument", func(doc *dom.Document) error {
		res, sendErr = u.collector.Send(ctx, doc, u.transport)
		return nil
	})
	if err != nil {
		return res, err
	}
	if u.recorder != nil {
		if sendErr != nil {
			u.recorder.SendFailed(sendErr)
		} else {
			u.recorder.EventSent(instrument.EventInstrumentUpdate)
		}
	}
	return res, sendErr
}

// Receive decodes a responce payload and reconciles it into the table.
func (u *Updater) Receive(ctx context.Context, payload []byte) (*table.Result, error) {
	update, err := instrument.DecodeUpdate(payload)
	if err != nil {
		return nil, err
	}

	u.opts.Logger.Debug("applying rows %v", update.Keys())

	var result *table.Result
	var snapshot instrument.TableSnapshot
	var applyErr error
	err = u.loop.Do(ctx, "reconcile", func(doc *dom.Document) error {
		result, applyErr = u.reconciler.Apply(update)
		snapshot, _ = table.Serialize(doc, u.opts.TableID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notify(Notice{
		Created: result.Created,
		Updated: result.Updated,
		Skipped: result.Skipped(),
		Summary: table.Summarize(snapshot),
		At:      time.Now(),
	})
	return result, applyErr
}

func (u *Updater) handleTableResponse(args [][]byte) {
	if len(args) == 0 {
		u.opts.Logger.Warn("%s without payload", instrument.EventTableResponse)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), u.opts.ReceiveTimeout)
	defer cancel()

	result, err := u.Receive(ctx, args[0])
	if err != nil {
		u.opts.Logger.Warn("%s not applied: %v", instrument.EventTableResponse, err)
		return
	}
	u.opts.Logger.Info("table reconciled: %d applied (%d created), %d skipped",
		result.Applied(), len(result.Created), len(result.Errors))
}

func (u *Updater) notify(n Notice) {
	u.listenersMu.RLock()
	listeners := append(([]func(Notice))(nil), u.listeners...)
	u.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(n)
	}
}

// SetFields sets the live value of each named form control, as a user
// typing into the page would. Ids that do not name a control are returned,
// sorted, and skipped.
func (u *Updater) SetFields(ctx context.Context, fields map[string]string) ([]string, error) {
	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var missing []string
	err := u.loop.Do(ctx, "set_fields", func(doc *dom.Document) error {
		for _, id := range ids {
			n := doc.GetElementByID(id)
			if n == nil || doc.SetValue(n, fields[id]) != nil {
				missing = append(missing, id)
			}
		}
		return nil
	})
	if len(missing) > 0 {
		u.opts.Logger.Debug("ignored fields without a control: %v", missing)
	}
	return missing, err
}

// Snapshot serializes the table.
func (u *Updater) Snapshot(ctx context.Context) (instrument.TableSnapshot, error) {
	var snapshot instrument.TableSnapshot
	err := u.loop.Do(ctx, "snapshot", func(doc *dom.Document) error {
		var err error
		snapshot, err = table.Serialize(doc, u.opts.TableID)
		return err
	})
	return snapshot, err
}

// Export writes the header row and the snapshot with exporter.
func (u *Updater) Export(ctx context.Context, exporter ports.SnapshotExporter, w io.Writer) error {
	var headers []string
	var snapshot instrument.TableSnapshot
	err := u.loop.Do(ctx, "export", func(doc *dom.Document) error {
		var err error
		if headers, err = table.Headers(doc, u.opts.TableID); err != nil {
			return err
		}
		snapshot, err = table.Serialize(doc, u.opts.TableID)
		return err
	})
	if err != nil {
		return err
	}
	return exporter.Export(w, headers, snapshot)
}

// Summary aggregates the table's numeric columns.
func (u *Updater) Summary(ctx context.Context) (table.Summary, error) {
	snapshot, err := u.Snapshot(ctx)
	if err != nil {
		return table.Summary{}, err
	}
	return table.Summarize(snapshot), nil
}

// Keys lists the reconciled row keys in table order.
func (u *Updater) Keys(ctx context.Context) ([]instrument.RowKey, error) {
	var keys []instrument.RowKey
	err := u.loop.Do(ctx, "keys", func(*dom.Document) error {
		keys = u.reconciler.Keys()
		return nil
	})
	return keys, err
}

// Render writes the current page with live values.
func (u *Updater) Render(ctx context.Context, w io.Writer) error {
	var buf bytes.Buffer
	err := u.loop.Do(ctx, "render", func(doc *dom.Document) error {
		return doc.Render(&buf)
	})
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}
