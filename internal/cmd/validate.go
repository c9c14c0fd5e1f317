package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stageforge/restage/stagedir"
)

// NewValidateCmd creates and returns the validate subcommand for the restage
// CLI. It provides archive structure checking without writing anything.
func NewValidateCmd() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a container archive for structural corruption",
		Long: `Check a STAGE.DIR container archive for structural problems.

This command verifies the archive length, the stage table, the chaining of
stage offsets, each stage's sub-header and entry records, and the cache-run
offset arithmetic. It reads the archive without extracting and needs no
dictionary: unresolved name codes are not a structural problem.`,
		Run: func(cmd *cobra.Command, args []string) {
			runValidate(inputPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "STAGE.DIR", "Archive file to check")

	return cmd
}

func runValidate(inputPath string) {
	stages, problems := validateArchive(inputPath)

	if len(problems) > 0 {
		fmt.Printf("Archive %s has %d problems:\n", inputPath, len(problems))
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
	}

	fmt.Printf("\nValidation complete:\n")
	fmt.Printf("  Stages checked: %d\n", stages)
	fmt.Printf("  Problems found: %d\n", len(problems))

	if len(problems) > 0 {
		os.Exit(1)
	}
}

// validateArchive runs every structural check on one archive and returns the
// number of stages visited plus one description per problem found.
func validateArchive(archivePath string) (int, []string) {
	var problems []string

	f, err := os.Open(archivePath)
	if err != nil {
		return 0, []string{fmt.Sprintf("Failed to open archive: %v", err)}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, []string{fmt.Sprintf("Failed to stat archive: %v", err)}
	}
	if info.Size()%stagedir.SectorSize != 0 {
		problems = append(problems,
			fmt.Sprintf("Archive length %d is not a multiple of %d", info.Size(), stagedir.SectorSize))
	}
	fileSectors := info.Size() / stagedir.SectorSize

	sr, err := stagedir.NewSectorReader(f)
	if err != nil {
		return 0, append(problems, fmt.Sprintf("Failed to read archive: %v", err))
	}
	table, err := stagedir.ReadTable(sr)
	if err != nil {
		return 0, append(problems, fmt.Sprintf("Failed to read stage table: %v", err))
	}

	// Stages are packed back to back, so each recorded offset must continue
	// where the previous stage ended. The chain starts at the first sector
	// past the table and is given up once a stage fails to parse.
	expect := (4 + 12*int64(len(table)) + stagedir.SectorSize - 1) / stagedir.SectorSize
	checked := 0
	for _, t := range table {
		checked++
		if t.Sector == 0 {
			problems = append(problems,
				fmt.Sprintf("Stage %s offset points into the stage table", t.Name))
			expect = -1
			continue
		}
		if int64(t.Sector) >= fileSectors {
			problems = append(problems,
				fmt.Sprintf("Stage %s begins at sector %d beyond the archive (%d sectors)",
					t.Name, t.Sector, fileSectors))
			expect = -1
			continue
		}
		if expect >= 0 && int64(t.Sector) != expect {
			problems = append(problems,
				fmt.Sprintf("Stage %s begins at sector %d, expected %d", t.Name, t.Sector, expect))
		}

		if err := sr.Seek(int64(t.Sector) * stagedir.SectorSize); err != nil {
			return checked, append(problems, fmt.Sprintf("Failed to seek to stage %s: %v", t.Name, err))
		}
		st, err := stagedir.ParseStage(sr, t.Name, nil)
		if err != nil {
			problems = append(problems, fmt.Sprintf("Stage %s: %v", t.Name, err))
			expect = -1
			continue
		}

		if st.HeaderSectors < 1 {
			problems = append(problems,
				fmt.Sprintf("Stage %s header claims %d sectors", t.Name, st.HeaderSectors))
		}
		if st.TotalSectors < st.HeaderSectors {
			problems = append(problems,
				fmt.Sprintf("Stage %s total %d sectors is smaller than its header %d",
					t.Name, st.TotalSectors, st.HeaderSectors))
		}

		end := (int64(t.Sector) + int64(st.TotalSectors)) * stagedir.SectorSize
		for _, e := range st.Entries {
			if e.Offset+int64(e.Size) > end {
				problems = append(problems,
					fmt.Sprintf("Entry %s of stage %s extends past the stage end", e.Name, t.Name))
			}
		}

		expect = int64(t.Sector) + int64(st.TotalSectors)
	}

	if expect >= 0 && len(table) > 0 && expect != fileSectors {
		problems = append(problems,
			fmt.Sprintf("Stages end at sector %d but the archive has %d sectors", expect, fileSectors))
	}

	return checked, problems
}
