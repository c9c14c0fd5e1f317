package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stageforge/restage/stagedir"
)

// NewDictCmd creates and returns the dict subcommand for the restage CLI.
// It builds a name dictionary from a plain list of asset filenames.
func NewDictCmd() *cobra.Command {
	var (
		namesPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Build a name dictionary from a list of asset filenames",
		Long: `Build a checksum dictionary mapping name codes back to asset filenames.

The container format stores a 16-bit checksum of each asset name instead of
the name itself, so unpacking needs a dictionary built from the original
filenames. The input is a text file with one filename per line; the output
maps each "code.tag" key to its filename and is read by unpack, list, and
mount.`,
		Run: func(cmd *cobra.Command, args []string) {
			runDict(namesPath, outputPath)
		},
	}

	cmd.Flags().StringVarP(&namesPath, "names", "n", "", "File listing asset filenames, one per line (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "dict.txt", "Dictionary file to write")

	cmd.MarkFlagRequired("names")

	return cmd
}

func runDict(namesPath, outputPath string) {
	f, err := os.Open(namesPath)
	if err != nil {
		log.Fatalf("Failed to open name list: %v", err)
	}
	defer f.Close()

	dict := stagedir.NewDictionary()
	added := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		if err := dict.Add(name); err != nil {
			log.Printf("Warning: skipping %q: %v", name, err)
			continue
		}
		added++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read name list: %v", err)
	}

	if err := dict.Save(outputPath); err != nil {
		log.Fatalf("Failed to write dictionary: %v", err)
	}

	fmt.Printf("Wrote %d entries to %s from %d names\n", dict.Len(), outputPath, added)
	if dict.Len() < added {
		fmt.Printf("Note: %d names collided on the same code and were overwritten\n", added-dict.Len())
	}
}
