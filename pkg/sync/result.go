package sync

import (
	"github.com/drivesync/drivesync/pkg/errors"
)

// Action labels what the reconciler did, or would have done under dry-run,
// for a single local file.
type Action string

const (
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionSkip            Action = "skip"
	ActionCreateNew       Action = "create_new"
	ActionDryRunCreate    Action = "dry_run_create"
	ActionDryRunUpdate    Action = "dry_run_update"
	ActionDryRunCreateNew Action = "dry_run_create_new"
)

// ConflictPolicy governs the decision when a name-matching remote object
// already exists.
type ConflictPolicy string

const (
	// PolicyOverwrite updates the existing object's content in place.
	PolicyOverwrite ConflictPolicy = "overwrite"
	// PolicySkip leaves the existing object untouched.
	PolicySkip ConflictPolicy = "skip"
	// PolicyNew uploads a fresh object alongside the existing one.
	PolicyNew ConflictPolicy = "new"
)

// ParseConflictPolicy validates a policy string from config or flags.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case PolicyOverwrite, PolicySkip, PolicyNew:
		return ConflictPolicy(s), nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput,
			"unknown conflict policy %q (want overwrite, skip, or new)", s)
	}
}

// Result records the outcome for one processed local file. Either Action
// is set (success) or Error is set (the file's reconciliation failed and
// the pass continued).
type Result struct {
	Path     string `json:"path" yaml:"path"`
	Action   Action `json:"action,omitempty" yaml:"action,omitempty"`
	RemoteID string `json:"remoteId,omitempty" yaml:"remote_id,omitempty"`
	// AmbiguousMatches counts extra remote objects sharing the name
	// beyond the first match the reconciler acted on.
	AmbiguousMatches int    `json:"ambiguousMatches,omitempty" yaml:"ambiguous_matches,omitempty"`
	Error            string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether this entry records a per-file failure.
func (r Result) Failed() bool {
	return r.Error != ""
}
