// Package cache keeps work between bundle runs: lexed token streams in
// memory (TokenCache) and finished bundle outputs on disk (DiskCache).
// Disk entries are validated against the hashes of every input file.
package cache
