package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID       = "run_id"
	KeyTemplate    = "template"
	KeyLayout      = "layout"
	KeyPath        = "path"
	KeyContentType = "content_type"
	KeyDataset     = "dataset"
	KeyKind        = "kind"
	KeyOutcome     = "outcome"
	KeyDurationMS  = "duration_ms"
	KeyRoot        = "root"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Template(name string) slog.Attr    { return slog.String(KeyTemplate, name) }
func Layout(name string) slog.Attr      { return slog.String(KeyLayout, name) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func ContentType(ct string) slog.Attr   { return slog.String(KeyContentType, ct) }
func Dataset(name string) slog.Attr     { return slog.String(KeyDataset, name) }
func Kind(k string) slog.Attr           { return slog.String(KeyKind, k) }
func Outcome(o string) slog.Attr        { return slog.String(KeyOutcome, o) }
func Root(dir string) slog.Attr         { return slog.String(KeyRoot, dir) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Duration(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
