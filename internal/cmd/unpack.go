package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/stageforge/restage/stagedir"
)

// NewUnpackCmd creates and returns the unpack subcommand for the restage CLI.
// It extracts a container archive into an editable stage directory tree.
func NewUnpackCmd() *cobra.Command {
	var (
		inputPath string
		treePath  string
		stageName string
		dictPath  string
	)

	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "Extract a container archive into a stage directory tree",
		Long: `Extract a STAGE.DIR container archive into a directory tree.

Each stage becomes a subdirectory holding its asset files and a regenerated
data.cnf section list, and the stage list is written to the tree root so the
tree can be repacked as-is. Named entries are resolved through the dictionary;
without one, any stage that stores name codes fails to extract.`,
		Run: func(cmd *cobra.Command, args []string) {
			runUnpack(cmd, inputPath, treePath, stageName, dictPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "STAGE.DIR", "Archive file to read")
	cmd.Flags().StringVarP(&treePath, "tree", "C", ".", "Directory to extract into")
	cmd.Flags().StringVarP(&stageName, "stage", "s", "", "Extract only the named stage")
	cmd.Flags().StringVarP(&dictPath, "dict", "d", "dict.txt", "Name dictionary file")

	return cmd
}

func runUnpack(cmd *cobra.Command, inputPath, treePath, stageName, dictPath string) {
	in, err := os.Open(inputPath)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer in.Close()

	unpacker := &stagedir.Unpacker{
		Root: treePath,
		Dict: loadOptionalDict(dictPath),
		Only: stageName,
		Log:  cmdLogger(cmd),
	}
	if err := unpacker.Unpack(in); err != nil {
		log.Fatalf("Failed to unpack archive: %v", err)
	}

	fmt.Printf("Unpacked %s into %s\n", inputPath, treePath)
}

// loadOptionalDict loads the name dictionary when the file exists. Archives
// whose entries are all anonymous need no dictionary, so a missing file is
// not an error.
func loadOptionalDict(path string) *stagedir.Dictionary {
	dict, err := stagedir.LoadDictionary(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}
	return dict
}
