package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPost       = "post"
	KeyPath       = "path"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCategory   = "category"
	KeyAuthor     = "author"
	KeyBranch     = "branch"
	KeyRemote     = "remote"
	KeyCommit     = "commit"
	KeyBuildID    = "build_id"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Post(name string) slog.Attr      { return slog.String(KeyPost, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Author(a string) slog.Attr       { return slog.String(KeyAuthor, a) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Remote(r string) slog.Attr       { return slog.String(KeyRemote, r) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
