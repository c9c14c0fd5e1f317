package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stageforge/restage/stagedir"
)

// NewPackCmd creates and returns the pack subcommand for the restage CLI.
// It assembles a container archive from an unpacked stage directory tree.
func NewPackCmd() *cobra.Command {
	var (
		treePath   string
		outputPath string
		listPath   string
	)

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build a container archive from a stage directory tree",
		Long: `Build a STAGE.DIR container archive from a directory of unpacked stages.

Every stage named in the stage list must be a subdirectory of the tree root
holding a data.cnf section list and the asset files it names. Stages are
packed in list order and the archive is sector-aligned throughout, so packing
an unmodified unpack output reproduces the source archive byte for byte.`,
		Run: func(cmd *cobra.Command, args []string) {
			runPack(cmd, treePath, outputPath, listPath)
		},
	}

	cmd.Flags().StringVarP(&treePath, "tree", "C", ".", "Stage tree root directory")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "NEW_STAGE.DIR", "Archive file to write")
	cmd.Flags().StringVarP(&listPath, "list", "l", "", "Stage list file (default <tree>/stage_list.txt)")

	return cmd
}

func runPack(cmd *cobra.Command, treePath, outputPath, listPath string) {
	if listPath == "" {
		listPath = filepath.Join(treePath, stagedir.StageListName)
	}

	stages, err := stagedir.ReadStageList(listPath)
	if err != nil {
		log.Fatalf("Failed to read stage list: %v", err)
	}
	if len(stages) == 0 {
		log.Fatalf("Stage list %s names no stages", listPath)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		log.Fatalf("Failed to create archive: %v", err)
	}
	defer out.Close()

	packer := &stagedir.Packer{Root: treePath, Log: cmdLogger(cmd)}
	if err := packer.Pack(out, stages); err != nil {
		log.Fatalf("Failed to pack archive: %v", err)
	}

	info, err := out.Stat()
	if err != nil {
		log.Fatalf("Failed to stat archive: %v", err)
	}
	fmt.Printf("Packed %d stages into %s (%d bytes)\n", len(stages), outputPath, info.Size())
}
