package main

// User-facing command descriptions and flag help.
const (
	MsgRootShort = "Sync local folders to Google Drive"
	MsgRootLong  = `drivesync reconciles a local file tree against Google Drive using an
upsert-by-name strategy: files that don't exist remotely are created,
name matches are updated, skipped, or duplicated depending on the
conflict policy. Dry-run mode shows exactly what would happen without
touching the remote store.`

	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun    = "Preview changes without calling any mutating Drive API"
	MsgFlagConfig    = "Directory containing drivesync.toml (default: current directory)"
	MsgFlagLogFormat = "Log output format: console or json (overrides config)"
	MsgFlagOutput    = "Result output format: text, json, or yaml"
	MsgFlagParent    = "Drive folder id files are reconciled under (default: config drive.parent_id)"

	MsgSyncShort = "Upsert every file under a local directory to Drive"
	MsgSyncLong  = `Walks the local directory recursively in deterministic order and
reconciles each regular file against the target Drive folder. A failure
for one file is recorded and the pass continues; the exit status is
nonzero only when the pass itself cannot run.

Subdirectory structure is not mirrored: all files land flat under the
target folder.`

	MsgLsShort       = "List objects under a Drive folder"
	MsgUploadShort   = "Upload a single file to Drive"
	MsgDownloadShort = "Download a Drive file to a local path"
	MsgMkdirShort    = "Create a folder on Drive"
	MsgRmShort       = "Delete a Drive object by id"
	MsgInfoShort     = "Show metadata for a Drive object"
	MsgVersionShort  = "Print version information"
)
