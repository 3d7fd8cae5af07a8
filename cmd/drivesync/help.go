package main

import (
	"embed"

	"github.com/spf13/cobra"

	"github.com/drivesync/drivesync/pkg/cli/topics"
)

//go:embed help/*.md
var helpFS embed.FS

// installHelpTopics wires the embedded help pages into the help system.
// Help must keep working even if the embedded docs are somehow broken,
// so failures are ignored.
func installHelpTopics(rootCmd *cobra.Command) {
	m, err := topics.Load(helpFS, "help")
	if err != nil {
		return
	}
	m.SetRenderer(topics.NewGlamourRenderer())
	m.Install(rootCmd)
}
