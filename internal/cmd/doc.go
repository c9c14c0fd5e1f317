// Package cmd provides the command-line interface implementation for restage.
//
// This package contains all the subcommand implementations for the restage CLI
// tool. It uses the Cobra library for command structure and Fang for styled
// execution.
//
// The package is organized into the following commands:
//   - root: Main command coordinator and entry point
//   - pack: Container archive assembly from stage directory trees
//   - unpack: Container archive extraction
//   - list: Stage table and entry inspection
//   - validate: Archive structure checking
//   - dict: Name dictionary construction from filename lists
//   - seed: Synthetic stage tree generation
//   - mount: Read-only FUSE browsing of packed archives
//
// Each command is implemented as a separate file with its own constructor
// function that returns a *cobra.Command. The root command coordinates all
// subcommands and carries the shared counted verbosity flag, which each
// command maps onto the slog logger it hands the codec.
//
// The package leverages the stagedir package for codec operations and the
// stagefs package for the filesystem implementation.
package cmd
