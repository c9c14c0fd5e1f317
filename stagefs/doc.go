// Package stagefs serves a packed stage directory archive as a read-only
// FUSE filesystem.
//
// The mounted tree mirrors what unpacking the archive would produce: one
// directory per stage holding that stage's assets under their resolved
// names, plus the regenerated data.cnf config list, with stage_list.txt at
// the root. Asset contents are read straight out of the archive on demand
// using the offsets recorded in a parse-once index; nothing is extracted
// to disk.
//
// The index is built by New() from the archive's stage table and each
// stage's entry table, optionally resolving entry names through a
// dictionary. After that the filesystem is immutable, so concurrent FUSE
// requests need no locking beyond the pread-style reads on the archive
// handle.
package stagefs
