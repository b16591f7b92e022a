// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps the record of past generations: a bounded session
// ledger held in memory, exports of that ledger, and an unbounded SQLite log.
package history

import (
	"fmt"
	"sync"

	"github.com/pdiddy/research-summary/pkg/types"
)

// DefaultSessionLimit is the number of records a session ledger keeps.
const DefaultSessionLimit = 10

// Ledger is the session history, most recent first. Appends are serialized;
// when the ledger is full the oldest record is evicted.
type Ledger struct {
	mu      sync.Mutex
	limit   int
	records []types.GenerationRecord
}

// NewLedger returns an empty ledger holding at most limit records. A limit
// of zero or less means DefaultSessionLimit.
func NewLedger(limit int) *Ledger {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	return &Ledger{limit: limit}
}

// Append records rec as the most recent entry.
func (l *Ledger) Append(rec types.GenerationRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]types.GenerationRecord, 0, min(len(l.records)+1, l.limit))
	records = append(records, rec)
	records = append(records, l.records...)
	if len(records) > l.limit {
		records = records[:l.limit]
	}
	l.records = records
}

// Load replaces the ledger contents with recs, which must be ordered most
// recent first. Only the first limit records are kept.
func (l *Ledger) Load(recs []types.GenerationRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := min(len(recs), l.limit)
	l.records = append([]types.GenerationRecord(nil), recs[:n]...)
}

// Records returns a copy of the retained records, most recent first.
func (l *Ledger) Records() []types.GenerationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]types.GenerationRecord(nil), l.records...)
}

// Entries returns the display view of the retained records.
func (l *Ledger) Entries() []Entry {
	recs := l.Records()
	entries := make([]Entry, len(recs))
	for i, r := range recs {
		entries[i] = NewEntry(r)
	}
	return entries
}

// Len returns the number of retained records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Limit returns the ledger capacity.
func (l *Ledger) Limit() int { return l.limit }

// Entry is the tabular view of one record, as shown in the history panel
// and written by WriteCSV.
type Entry struct {
	Date     string `json:"date"`
	Output   string `json:"output"`
	Controls string `json:"controls"`
}

// NewEntry builds the view of rec. Date is the UTC creation date.
func NewEntry(rec types.GenerationRecord) Entry {
	return Entry{
		Date:   rec.CreatedAt.UTC().Format("2006-01-02"),
		Output: rec.GeneratedText,
		Controls: fmt.Sprintf("Voice: %s\nTone: %s\nData used: %d publications",
			rec.Request.Voice, rec.Request.Tone, len(rec.Selection.Publications)),
	}
}
