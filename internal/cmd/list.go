package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/stageforge/restage/stagedir"
)

// NewListCmd creates and returns the list subcommand for the restage CLI.
// It prints the stage table and per-stage entries without extracting.
func NewListCmd() *cobra.Command {
	var (
		inputPath string
		dictPath  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the stage table and entries of a container archive",
		Long: `Show the stage table of a STAGE.DIR container archive and the entries of
every stage without extracting anything.

Named entries are resolved through the dictionary when one is available;
unresolved codes are shown as their raw "code.tag" keys.`,
		Run: func(cmd *cobra.Command, args []string) {
			runList(inputPath, dictPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "STAGE.DIR", "Archive file to read")
	cmd.Flags().StringVarP(&dictPath, "dict", "d", "dict.txt", "Name dictionary file")

	return cmd
}

func runList(inputPath, dictPath string) {
	dict := loadOptionalDict(dictPath)

	in, err := os.Open(inputPath)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer in.Close()

	sr, err := stagedir.NewSectorReader(in)
	if err != nil {
		log.Fatalf("Failed to read archive: %v", err)
	}
	table, err := stagedir.ReadTable(sr)
	if err != nil {
		log.Fatalf("Failed to read stage table: %v", err)
	}

	fmt.Printf("%s: %d stages\n", inputPath, len(table))
	for _, t := range table {
		if err := sr.Seek(int64(t.Sector) * stagedir.SectorSize); err != nil {
			log.Fatalf("Failed to seek to stage %s: %v", t.Name, err)
		}
		st, err := stagedir.ParseStage(sr, t.Name, dict)
		if err != nil {
			log.Fatalf("Failed to parse stage %s: %v", t.Name, err)
		}
		fmt.Printf("\n%s  (sector %d, %d sectors, %d entries)\n",
			st.Name, t.Sector, st.TotalSectors, len(st.Entries))
		for _, e := range st.Entries {
			fmt.Printf("  %-10s %-14s %8d bytes at %d\n",
				e.Section.Directive(), e.Name, e.Size, e.Offset)
		}
	}
}
