package cmd

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stageforge/restage/stagedir"
	"github.com/taigrr/colorhash"
)

// NewSeedCmd creates and returns the seed subcommand for the restage CLI.
// It generates a packable stage tree with randomized asset files.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath    string
		stageCount    int
		filesPerStage int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic stage tree for testing",
		Long: `Generate a packable stage directory tree with randomized asset files.

Creates the requested number of STGnn stage directories, each holding asset
files distributed across the sections of a data.cnf list, plus the stage list
and a matching name dictionary at the tree root. The result round-trips
through pack and unpack, which makes it a convenient corpus for exercising
the codec without shipping real game data.`,
		Run: func(cmd *cobra.Command, args []string) {
			runSeed(cmd, outputPath, stageCount, filesPerStage)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path of the tree root to create (required)")
	cmd.Flags().IntVarP(&stageCount, "stages", "s", 4, "Number of stages to generate")
	cmd.Flags().IntVarP(&filesPerStage, "files", "f", 12, "Number of asset files per stage")

	cmd.MarkFlagRequired("output")

	return cmd
}

func runSeed(cmd *cobra.Command, outputPath string, stageCount, filesPerStage int) {
	logger := cmdLogger(cmd)

	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	// Content pool: a handful of UUIDs repeated to size, the way real assets
	// share palettes and headers.
	uuidPool := make([]string, 50)
	for i := range uuidPool {
		uuidPool[i] = uuid.New().String()
	}

	dict := stagedir.NewDictionary()
	stages := make([]string, 0, stageCount)
	filesCreated := 0

	for s := 1; s <= stageCount; s++ {
		stageName := fmt.Sprintf("STG%02d", s)
		logger.Info("seeding stage", "stage", stageName)

		stageDir := filepath.Join(outputPath, stageName)
		if err := os.MkdirAll(stageDir, 0o755); err != nil {
			log.Fatalf("Failed to create stage directory: %v", err)
		}

		bySection := make(map[stagedir.Section][]string)
		created := 0
		for created < filesPerStage {
			num, _ := rand.Int(rand.Reader, big.NewInt(0xFFFFFFFF))
			base := fmt.Sprintf("%08x", num.Int64())
			section, ext := classifyAsset(base)
			name := base + "." + ext

			// Regenerate on a name code collision: colliding names would
			// overwrite each other in the dictionary and on unpack.
			code, err := stagedir.NameCode(base)
			if err != nil {
				continue
			}
			if _, err := dict.Lookup(code, ext[0]); err == nil {
				continue
			}

			size, _ := rand.Int(rand.Reader, big.NewInt(4096))
			data := seedContent(uuidPool, int(size.Int64())+1)
			if err := os.WriteFile(filepath.Join(stageDir, name), data, 0o644); err != nil {
				log.Printf("Warning: failed to write %s: %v", name, err)
				continue
			}
			if err := dict.Add(name); err != nil {
				log.Printf("Warning: failed to index %s: %v", name, err)
			}
			logger.Debug("seeded", "name", name, "section", section.String(), "bytes", len(data))

			bySection[section] = append(bySection[section], name)
			created++
			filesCreated++
		}

		if err := writeSeedConfig(stageDir, bySection); err != nil {
			log.Fatalf("Failed to write config for %s: %v", stageName, err)
		}
		stages = append(stages, stageName)
	}

	if err := stagedir.WriteStageList(filepath.Join(outputPath, stagedir.StageListName), stages); err != nil {
		log.Fatalf("Failed to write stage list: %v", err)
	}
	if err := dict.Save(filepath.Join(outputPath, "dict.txt")); err != nil {
		log.Fatalf("Failed to write dictionary: %v", err)
	}

	fmt.Printf("Created %d stages with %d files in %s\n", len(stages), filesCreated, outputPath)
	fmt.Printf("Dictionary entries: %d\n", dict.Len())
}

// classifyAsset derives a section and extension for a generated asset from
// the color hash of its base name, weighting the cache section heaviest the
// way real stage lists do. The .bin extension only ever lands in the nocache
// section: its stored tag is forced there on pack, and any other placement
// produces a tree that no longer repacks cleanly.
func classifyAsset(base string) (stagedir.Section, string) {
	bucket := int(colorhash.HashString(base)) & 0x7fffffff
	var section stagedir.Section
	var exts []string
	switch pick := bucket % 100; {
	case pick < 20:
		section = stagedir.SectionResident
		exts = []string{"kmd", "dar"}
	case pick < 45:
		section = stagedir.SectionNoCache
		exts = []string{"tim", "bin", "dar"}
	case pick < 80:
		section = stagedir.SectionCache
		exts = []string{"pcx", "tim", "kmd"}
	default:
		section = stagedir.SectionSound
		exts = []string{"vab", "seq"}
	}
	return section, exts[bucket/100%len(exts)]
}

// seedContent fills size bytes by repeating one pooled UUID line.
func seedContent(pool []string, size int) []byte {
	idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	line := pool[idx.Int64()] + "\n"
	return bytes.Repeat([]byte(line), size/len(line)+1)[:size]
}

// writeSeedConfig writes a data.cnf listing each non-empty section in pack
// order.
func writeSeedConfig(dir string, bySection map[stagedir.Section][]string) error {
	var sb strings.Builder
	for _, section := range []stagedir.Section{
		stagedir.SectionResident,
		stagedir.SectionNoCache,
		stagedir.SectionCache,
		stagedir.SectionSound,
	} {
		names := bySection[section]
		if len(names) == 0 {
			continue
		}
		sb.WriteString(section.Directive() + "\n")
		for _, name := range names {
			sb.WriteString(name + "\n")
		}
	}
	return os.WriteFile(filepath.Join(dir, stagedir.ConfigFileName), []byte(sb.String()), 0o644)
}
