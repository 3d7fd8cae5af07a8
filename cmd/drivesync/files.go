package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/drivesync/drivesync/pkg/gdrive"
	"github.com/drivesync/drivesync/pkg/remote"
)

func newLsCmd(state *appState) *cobra.Command {
	var (
		name        string
		onlyFolders bool
	)
	cmd := &cobra.Command{
		Use:   "ls [parent-id]",
		Short: MsgLsShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID := state.cfg.Drive.ParentID
			if len(args) == 1 {
				parentID = args[0]
			}
			store, err := newStore(cmd, state)
			if err != nil {
				return err
			}
			objects, err := store.List(cmd.Context(), remote.Query{
				Name:        name,
				ParentID:    parentID,
				OnlyFolders: onlyFolders,
			})
			if err != nil {
				return err
			}
			for _, obj := range objects {
				kind := "file"
				if obj.IsFolder() {
					kind = "folder"
				}
				cmd.Printf("%-44s  %-6s  %s\n", obj.ID, kind, obj.Name)
			}
			cmd.Printf("%d object(s)\n", len(objects))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Only list objects with this exact name")
	cmd.Flags().BoolVar(&onlyFolders, "folders", false, "Only list folders")
	return cmd
}

func newUploadCmd(state *appState) *cobra.Command {
	var (
		parentID string
		mimeType string
	)
	cmd := &cobra.Command{
		Use:   "upload <local-path>",
		Short: MsgUploadShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parentID == "" {
				parentID = state.cfg.Drive.ParentID
			}
			if state.dryRun {
				cmd.Printf("[dry-run] would upload %s to folder %q\n", args[0], parentID)
				return nil
			}
			store, err := newStore(cmd, state)
			if err != nil {
				return err
			}
			obj, err := store.Upload(cmd.Context(), args[0], parentID, mimeType)
			if err != nil {
				return err
			}
			cmd.Printf("Uploaded %s as %s\n", obj.Name, obj.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", MsgFlagParent)
	cmd.Flags().StringVar(&mimeType, "mime-type", "",
		"Content type for the uploaded file (detected when empty)")
	return cmd
}

func newDownloadCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "download <file-id> <local-path>",
		Short: MsgDownloadShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bar := &progressBar{title: "Downloading"}
			defer bar.stop()

			store, err := newStore(cmd, state, gdrive.WithProgress(bar.update))
			if err != nil {
				return err
			}
			if err := store.Download(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			bar.stop()
			cmd.Printf("Downloaded %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newMkdirCmd(state *appState) *cobra.Command {
	var parentID string
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: MsgMkdirShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parentID == "" {
				parentID = state.cfg.Drive.ParentID
			}
			if state.dryRun {
				cmd.Printf("[dry-run] would ensure folder %q under %q\n", args[0], parentID)
				return nil
			}
			store, err := newStore(cmd, state)
			if err != nil {
				return err
			}
			id, err := remote.EnsureFolder(cmd.Context(), store, args[0], parentID)
			if err != nil {
				return err
			}
			cmd.Printf("Folder %q has id %s\n", args[0], id)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", MsgFlagParent)
	return cmd
}

func newRmCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file-id>",
		Short: MsgRmShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if state.dryRun {
				cmd.Printf("[dry-run] would delete %s\n", args[0])
				return nil
			}
			store, err := newStore(cmd, state)
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newInfoCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file-id>",
		Short: MsgInfoShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStore(cmd, state)
			if err != nil {
				return err
			}
			obj, err := store.GetMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("id:          %s\n", obj.ID)
			cmd.Printf("name:        %s\n", obj.Name)
			cmd.Printf("mime type:   %s\n", obj.MimeType)
			cmd.Printf("size:        %d\n", obj.Size)
			if !obj.ModifiedTime.IsZero() {
				cmd.Printf("modified:    %s\n", obj.ModifiedTime.Format("2006-01-02 15:04:05"))
			}
			for _, p := range obj.Parents {
				cmd.Printf("parent:      %s\n", p)
			}
			return nil
		},
	}
}

// progressBar adapts the transfer progress callback to a pterm progress
// bar. The bar starts lazily on the first callback, once the transfer
// size is known, and only when stdout is a terminal. Transfers with an
// unknown size (total <= 0) show no bar.
type progressBar struct {
	title   string
	printer *pterm.ProgressbarPrinter
	written int64
}

func (p *progressBar) update(id string, written, total int64) {
	if total <= 0 {
		return
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return
	}
	if p.printer == nil {
		bar, err := pterm.DefaultProgressbar.WithTotal(int(total)).WithTitle(p.title).Start()
		if err != nil {
			return
		}
		p.printer = bar
	}
	p.printer.Add(int(written - p.written))
	p.written = written
}

func (p *progressBar) stop() {
	if p.printer == nil {
		return
	}
	_, _ = p.printer.Stop()
	p.printer = nil
}
