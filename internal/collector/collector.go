// Package collector gathers the outbound instrument state from the page.
package collector

import (
	"context"
	"log"

	"stringcalc/domain/core"
	"stringcalc/domain/instrument"
	"stringcalc/internal/dom"
	"stringcalc/internal/errors"
	"stringcalc/internal/table"
	"stringcalc/ports"
)

// Result is one collection pass.
type Result struct {
	Info    instrument.InstrumentInfo `json:"info"`
	Table   instrument.TableSnapshot  `json:"table"`
	Missing []string                  `json:"missing,omitempty"`
}

// Complete reports whether every required element resolved.
func (r Result) Complete() bool {
	return len(r.Missing) == 0
}

// Collector reads the instrument form fields and the string table.
type Collector struct {
	tableID string
}

// New creates a Collector for the table with the given id.
func New(tableID string) *Collector {
	return &Collector{tableID: tableID}
}

// Collect reads the form fields and serializes the table. Every element
// that cannot be resolved is listed in Missing; the other fields are still
// filled in.
func (c *Collector) Collect(doc *dom.Document) Result {
	var res Result
	for _, id := range instrument.InfoFieldIDs() {
		n := doc.GetElementByID(id)
		if n == nil || !dom.IsInput(n) {
			res.Missing = append(res.Missing, id)
			continue
		}
		res.Info.Set(id, doc.Value(n))
	}

	snapshot, err := table.Serialize(doc, c.tableID)
	if err != nil {
		res.Missing = append(res.Missing, c.tableID)
		snapshot = instrument.TableSnapshot{}
	}
	res.Table = snapshot
	return res
}

// Send collects and emits one instrument_updater event carrying the form
// fields and the table. Nothing is sent unless every element resolved.
func (c *Collector) Send(ctx context.Context, doc *dom.Document, emitter ports.EventEmitter) (Result, error) {
	res := c.Collect(doc)
	if !res.Complete() {
		log.Printf("[Collector] not sending %s, missing elements: %v", instrument.EventInstrumentUpdate, res.Missing)
		return res, errors.MissingElement(res.Missing...)
	}

	if err := emitter.Emit(ctx, instrument.EventInstrumentUpdate, res.Info, res.Table); err != nil {
		log.Printf("[Collector] emit %s failed: %v", instrument.EventInstrumentUpdate, err)
		if !core.IsTransportError(err) {
			err = core.NewTransportError("emit", err)
		}
		return res, errors.TransportError(err)
	}
	return res, nil
}
