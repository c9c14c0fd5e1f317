// Package main provides the restage command-line interface.
//
// restage converts between STAGE.DIR container archives and editable
// directory trees of game asset files. It packs stage directories into
// sector-aligned containers, extracts them back with dictionary-based name
// recovery, and can serve a packed archive as a read-only FUSE filesystem.
//
// The main binary supports multiple subcommands:
//   - pack: Build a container archive from a stage directory tree
//   - unpack: Extract a container archive into a directory tree
//   - list: Show the stage table and entries without extracting
//   - validate: Check a container archive for structural corruption
//   - dict: Build a name dictionary from a list of asset filenames
//   - seed: Generate a synthetic stage tree for testing
//   - mount: Browse a container archive as a read-only filesystem
package main
