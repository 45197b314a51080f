package engine

import "errors"

// ErrMissingTextPart is returned when a message carries no text part to
// parse a skill request from.
var ErrMissingTextPart = errors.New("message has no text part")

// ErrTaskNotFound is returned when a message references a taskId the store
// has no record of (already evicted, or never existed).
var ErrTaskNotFound = errors.New("task not found")

// ErrUnknownSkill is returned if a parsed skill id falls outside the
// catalogue — defensive only, since every catalog.Lookup case parser.Parse
// can produce is itself a catalogue entry.
var ErrUnknownSkill = errors.New("unknown skill")
