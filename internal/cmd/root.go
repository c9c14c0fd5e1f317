package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/stageforge/restage/version"
)

// NewRootCmd creates and returns the root cobra command for the restage CLI.
// It sets up all subcommands, command groups, and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "restage",
		Short: "restage - pack and unpack STAGE.DIR game asset containers",
		Long: `restage converts between STAGE.DIR container archives and editable
directory trees.

A container holds one sector-aligned blob per stage. Unpacking extracts every
asset into <tree>/<STAGE>/ next to a regenerated data.cnf section list, and
packing reassembles the archive from those directories byte for byte.

Use subcommands to perform different operations:
  - pack: Build a container archive from a stage directory tree
  - unpack: Extract a container archive into a directory tree
  - list: Show the stage table and entries without extracting
  - validate: Check a container archive for structural corruption
  - dict: Build a name dictionary from a list of asset filenames
  - seed: Generate a synthetic stage tree for testing
  - mount: Browse a container archive as a read-only filesystem`,
		Version: version.GetFullVersion(),
	}

	rootCmd.PersistentFlags().CountP("verbose", "v", "increase verbosity (-v progress, -vv per-entry detail)")

	groupArchive := "archive"
	groupUtilities := "utilities"
	groupFilesystem := "filesystem"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupArchive,
		Title: "Archive Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	packCmd := NewPackCmd()
	unpackCmd := NewUnpackCmd()
	listCmd := NewListCmd()
	validateCmd := NewValidateCmd()
	dictCmd := NewDictCmd()
	seedCmd := NewSeedCmd()
	mountCmd := NewMountCmd()

	packCmd.GroupID = groupArchive
	unpackCmd.GroupID = groupArchive
	listCmd.GroupID = groupArchive
	validateCmd.GroupID = groupArchive
	dictCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	mountCmd.GroupID = groupFilesystem

	// Add subcommands
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(unpackCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(dictCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(mountCmd)

	return rootCmd
}

// cmdLogger builds the logger for a command run from the counted --verbose
// flag: warnings only by default, per-stage progress at -v, per-entry detail
// at -vv and above.
func cmdLogger(cmd *cobra.Command) *slog.Logger {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	return newLogger(verbosity)
}

func newLogger(verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
