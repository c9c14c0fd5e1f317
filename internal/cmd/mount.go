package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	_ "bazil.org/fuse/fs/fstestutil"
	"github.com/spf13/cobra"
	"github.com/stageforge/restage/stagefs"
	"github.com/stageforge/restage/version"
)

// NewMountCmd creates and returns the mount subcommand for the restage CLI.
// It serves a container archive as a read-only FUSE filesystem.
func NewMountCmd() *cobra.Command {
	var dictPath string

	cmd := &cobra.Command{
		Use:   "mount ARCHIVE MOUNTPOINT",
		Short: "Browse a container archive as a read-only filesystem",
		Long: `Mount a STAGE.DIR container archive as a read-only FUSE filesystem.

ARCHIVE is the path to the container file.
MOUNTPOINT is the directory where the filesystem will be mounted.

The mounted tree shows one directory per stage holding its resolved asset
names and regenerated data.cnf, with the stage list at the root. Reads are
served straight from the archive without extracting anything.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runMount(args[0], args[1], dictPath)
		},
	}

	cmd.Flags().StringVarP(&dictPath, "dict", "d", "dict.txt", "Name dictionary file")

	return cmd
}

func runMount(archivePath, mountpoint, dictPath string) {
	// Print version info on startup
	fmt.Printf("restage %s starting...\n", version.GetFullVersion())

	filesystem, err := stagefs.New(archivePath, loadOptionalDict(dictPath))
	if err != nil {
		log.Fatalf("Failed to index archive: %v", err)
	}

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("restage"),
		fuse.Subtype("stagefs"),
		fuse.ReadOnly(),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, shutting down...")

		fuse.Unmount(mountpoint)
		c.Close()
		filesystem.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()

	log.Printf("restage %s mounted %s at %s (%d stages)",
		version.GetVersion(), archivePath, mountpoint, len(filesystem.Stages()))
	err = fs.Serve(c, filesystem)
	if err != nil {
		log.Fatal(err)
	}
}
