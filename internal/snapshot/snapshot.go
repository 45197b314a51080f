// Package snapshot persists {event log, sessions, total-task counter,
// process epoch start} to a single on-disk JSON file, and restores it at
// startup.
package snapshot

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/a2a402/gateway/internal/eventlog"
	"github.com/a2a402/gateway/internal/session"
)

// Document is the on-disk shape, matching spec.md §6.4.
type Document struct {
	PaymentLog   []eventlog.Event `json:"paymentLog"`
	SIWXSessions session.Snapshot `json:"siwxSessions"`
	TotalTasks   uint64           `json:"totalTasks"`
	StartedAt    time.Time        `json:"startedAt"`
	SavedAt      time.Time        `json:"savedAt"`
}

// State is the minimal set of stores a snapshot reads from and writes to.
type State struct {
	Log        *eventlog.Log
	Sessions   *session.Store
	TotalTasks func() uint64
	EpochStart time.Time
}

// Save serialises st to path. Errors are returned for the caller to log and
// continue — a snapshot-write failure must never crash the process (spec §7).
func Save(path string, st State) error {
	doc := Document{
		PaymentLog:   st.Log.All(),
		SIWXSessions: st.Sessions.ExportSnapshot(),
		TotalTasks:   st.TotalTasks(),
		StartedAt:    st.EpochStart,
		SavedAt:      time.Now(),
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads path and returns the parsed document. It tolerates an absent
// file, an empty file, and malformed JSON, returning a fresh document with
// the current wall-clock epoch in every such case (never an error the
// caller must handle). A read failure other than an absent file, and
// malformed JSON, are logged; an absent or empty file is not.
func Load(path string) Document {
	fresh := Document{
		SIWXSessions: session.Snapshot{},
		StartedAt:    time.Now(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("snapshot load failed, starting fresh", "path", path, "err", err)
		}
		return fresh
	}
	if len(data) == 0 {
		return fresh
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("snapshot file malformed, starting fresh", "path", path, "err", err)
		return fresh
	}
	if doc.SIWXSessions == nil {
		doc.SIWXSessions = session.Snapshot{}
	}
	if doc.StartedAt.IsZero() {
		doc.StartedAt = time.Now()
	}
	return doc
}

// Restore applies a loaded Document onto freshly-constructed stores. Call
// once at startup, before the HTTP server accepts traffic.
func Restore(doc Document, log *eventlog.Log, sessions *session.Store) {
	log.LoadSnapshot(doc.PaymentLog)
	sessions.LoadSnapshot(doc.SIWXSessions)
}
