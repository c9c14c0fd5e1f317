// Package stagedir implements the stage directory container codec used by
// classic PlayStation-era game builds to ship all stage assets in a single
// STAGE.DIR file.
//
// A container is a stage table followed by the stages themselves, all laid
// out on 2048-byte sector boundaries. Each stage carries a one-sector entry
// table describing its assets and how the engine loads them, then the raw
// payload bytes. The codec converts losslessly in both directions between
// that packed form and a directory tree of loose files.
//
// Key Components:
//
// Sector Buffers:
//   - SectorWriter and SectorReader wrap seekable files with the
//     little-endian fixed-width primitives the format is built from
//   - Alignment padding/skipping to the 2048-byte sector grid
//
// Name Checksums and the Dictionary:
//   - Filenames are stored as a 16-bit rolling checksum of the name's
//     EUC-JP bytes plus a one-letter extension tag (NameCode)
//   - Dictionary maps those pairs back to real filenames during unpack;
//     anonymous .dar entries instead get synthesized names
//
// Section Classification:
//   - Every asset belongs to one of four sections (resident, nocache,
//     cache, sound) fixing its runtime caching behavior
//   - The per-stage config list (data.cnf) declares sections in a strict
//     forward-only order, validated at pack time
//
// Cache Runs:
//   - Consecutive cache-section assets are concatenated without per-file
//     padding; their records store cumulative run offsets and the run is
//     closed by a trailer record carrying the total
//   - Sizes are recovered on unpack by differencing consecutive offsets
//
// Packer and Unpacker orchestrate whole containers: the stage table is
// back-patched with sector offsets after all stages are written, and
// unpacking regenerates both the stage list and each stage's config list so
// a pack of the extracted tree reproduces the archive.
package stagedir
