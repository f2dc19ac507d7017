package table

import (
	"fmt"
	"log"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"stringcalc/domain/core"
	"stringcalc/domain/instrument"
	"stringcalc/internal/dom"
	"stringcalc/internal/errors"
	"stringcalc/ports"
)

// RowError records a row that a reconcile pass skipped.
type RowError struct {
	Key instrument.RowKey
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %s: %v", e.Key, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result reports what one reconcile pass did.
type Result struct {
	Created []instrument.RowKey `json:"created"`
	Updated []instrument.RowKey `json:"updated"`
	Errors  []RowError          `json:"-"`
}

// Applied is the number of rows written.
func (r *Result) Applied() int {
	return len(r.Created) + len(r.Updated)
}

// Skipped lists the keys of rows that were not written.
func (r *Result) Skipped() []instrument.RowKey {
	keys := make([]instrument.RowKey, len(r.Errors))
	for i, e := range r.Errors {
		keys[i] = e.Key
	}
	return keys
}

// Reconciler merges keyed row updates into a table. It keeps its own index
// of row key to row element; the document is written as a consequence of an
// index change. Rows missing from an update are never removed, rows already
// present keep their position, and new rows are appended in update order.
type Reconciler struct {
	doc      *dom.Document
	tableID  string
	index    map[instrument.RowKey]*html.Node
	observer ports.ReconcileObserver
}

// NewReconciler creates a reconciler for the table with the given id. Rows
// already in the table that carry an id are indexed. The observer may be nil.
func NewReconciler(doc *dom.Document, tableID string, observer ports.ReconcileObserver) *Reconciler {
	r := &Reconciler{
		doc:      doc,
		tableID:  tableID,
		index:    make(map[instrument.RowKey]*html.Node),
		observer: observer,
	}
	if table, err := lookupTable(doc, tableID); err == nil {
		for _, row := range dom.Rows(table) {
			if id := dom.ID(row); id != "" {
				r.index[instrument.RowKey(id)] = row
			}
		}
	}
	return r
}

// Apply reconciles every entry of the update in order. A failing row is
// recorded and skipped; later rows are still applied. The error is non-nil
// only when the table itself cannot be found, in which case nothing is
// written.
func (r *Reconciler) Apply(update instrument.Update) (*Result, error) {
	result := &Result{}

	table, err := lookupTable(r.doc, r.tableID)
	if err != nil {
		log.Printf("[Reconciler] table %q unavailable, skipping %d rows: %v", r.tableID, len(update), err)
		for _, e := range update {
			r.skip(result, e.Key, err)
		}
		return result, err
	}

	for _, e := range update {
		created, err := r.applyRow(table, e)
		switch {
		case err != nil:
			log.Printf("[Reconciler] skipping row %s: %v", e.Key, err)
			r.skip(result, e.Key, err)
		case created:
			result.Created = append(result.Created, e.Key)
			if r.observer != nil {
				r.observer.RowCreated(e.Key)
			}
		default:
			result.Updated = append(result.Updated, e.Key)
			if r.observer != nil {
				r.observer.RowUpdated(e.Key)
			}
		}
	}
	return result, nil
}

func (r *Reconciler) skip(result *Result, key instrument.RowKey, err error) {
	result.Errors = append(result.Errors, RowError{Key: key, Err: err})
	if r.observer != nil {
		r.observer.RowSkipped(key, err)
	}
}

// applyRow builds the new cells on a detached row first, so a row is only
// ever replaced as a whole.
func (r *Reconciler) applyRow(table *html.Node, e instrument.Entry) (bool, error) {
	if e.Key == "" {
		return false, errors.EmptyRowKey()
	}

	scratch := dom.CreateElement(atom.Tr)
	if err := PopulateRow(scratch, e.Key, e.Data); err != nil {
		return false, err
	}

	row, err := r.find(table, e.Key)
	if err != nil {
		return false, err
	}

	if row != nil {
		r.doc.ClearChildren(row)
		moveChildren(scratch, row)
		return false, nil
	}

	dom.SetAttr(scratch, "id", string(e.Key))
	dom.AppendRow(table, scratch)
	r.index[e.Key] = scratch
	return true, nil
}

// find resolves a key to its row: the index first, then a live lookup for
// rows added to the page behind the reconciler's back.
func (r *Reconciler) find(table *html.Node, key instrument.RowKey) (*html.Node, error) {
	if row, ok := r.index[key]; ok {
		if isRowOf(table, row) && dom.ID(row) == string(key) {
			return row, nil
		}
		delete(r.index, key)
	}

	n := r.doc.GetElementByID(string(key))
	if n == nil {
		return nil, nil
	}
	if !isRowOf(table, n) {
		return nil, fmt.Errorf("%w: %q is a <%s> outside the table", core.ErrIDConflict, key, n.Data)
	}
	r.index[key] = n
	return n, nil
}

// Keys returns the indexed row keys in table order.
func (r *Reconciler) Keys() []instrument.RowKey {
	table, err := lookupTable(r.doc, r.tableID)
	if err != nil {
		return nil
	}
	var keys []instrument.RowKey
	for _, row := range dom.Rows(table) {
		key := instrument.RowKey(dom.ID(row))
		if n, ok := r.index[key]; ok && n == row {
			keys = append(keys, key)
		}
	}
	return keys
}

func isRowOf(table, row *html.Node) bool {
	if !dom.IsElement(row, atom.Tr) {
		return false
	}
	p := row.Parent
	if p == table {
		return true
	}
	return p != nil && p.Parent == table &&
		(dom.IsElement(p, atom.Tbody) || dom.IsElement(p, atom.Thead) || dom.IsElement(p, atom.Tfoot))
}

func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}
