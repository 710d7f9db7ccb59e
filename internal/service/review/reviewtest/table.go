// Package reviewtest provides an in-memory record store table for tests.
package reviewtest

import (
	"context"
	"sync"

	"github.com/ifuryst/reelcheck/internal/models"
	"github.com/ifuryst/reelcheck/internal/service/airtable"
)

// Table serves records from memory. List answers a formula from ByFormula
// when an entry exists, otherwise returns every record (or nothing for an
// unknown formula when Strict is set).
type Table struct {
	mu        sync.Mutex
	Records   []models.Record
	ByFormula map[string][]models.Record
	Strict    bool
	Err       error
	GetErr    error

	Formulas []string
	Updates  map[string]map[string]any
}

func NewTable(records ...models.Record) *Table {
	return &Table{Records: records}
}

func (t *Table) List(_ context.Context, opts airtable.ListOptions) ([]models.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Formulas = append(t.Formulas, opts.Formula)
	if t.Err != nil {
		return nil, t.Err
	}
	if recs, ok := t.ByFormula[opts.Formula]; ok {
		return clip(recs, opts.MaxRecords), nil
	}
	if opts.Formula != "" && t.Strict {
		return nil, nil
	}
	return clip(t.Records, opts.MaxRecords), nil
}

func (t *Table) Get(_ context.Context, id string) (*models.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.GetErr != nil {
		return nil, t.GetErr
	}
	for i := range t.Records {
		if t.Records[i].ID == id {
			rec := t.Records[i]
			return &rec, nil
		}
	}
	return nil, airtable.ErrRecordNotFound
}

func (t *Table) Update(_ context.Context, id string, fields map[string]any) (*models.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Err != nil {
		return nil, t.Err
	}
	if t.Updates == nil {
		t.Updates = make(map[string]map[string]any)
	}
	if t.Updates[id] == nil {
		t.Updates[id] = make(map[string]any)
	}
	for k, v := range fields {
		t.Updates[id][k] = v
	}

	for i := range t.Records {
		if t.Records[i].ID == id {
			if t.Records[i].Fields == nil {
				t.Records[i].Fields = models.Fields{}
			}
			for k, v := range fields {
				t.Records[i].Fields[k] = v
			}
			rec := t.Records[i]
			return &rec, nil
		}
	}
	return nil, airtable.ErrRecordNotFound
}

// Record is a shorthand constructor.
func Record(id string, fields models.Fields) models.Record {
	return models.Record{ID: id, Fields: fields}
}

func clip(recs []models.Record, max int) []models.Record {
	if max > 0 && len(recs) > max {
		return recs[:max]
	}
	return recs
}
