// Package czdb is a read-only query engine for the encrypted CZDB
// IP-geolocation database format.
//
// A CZDB file is a single binary blob produced by an external tool and
// never mutated by this package: a fixed prologue, an AES-encrypted
// parameter block, a 256-entry first-octet table, a sorted range-index,
// and a record section holding the location strings themselves.
//
//	offset 0    prologue (ip version, reserved, index_start_offset, index_end_offset)
//	offset 13   encrypted parameter block (N bytes, AES-128-ECB/PKCS#7)
//	...         256 x 8-byte first-octet table
//	index_start_offset   sorted range-index (K entries of width E)
//	index_end_offset     record section (concatenated "|"-delimited geo strings)
//
// Three backends open the same file with identical query semantics:
// OpenDisk (positional file reads, lowest memory), OpenMmap (memory-mapped,
// zero-copy), and OpenMemory (fully resident, zero-copy plus a
// deduplicated string pool). Call Search, SearchMany, or (memory backend
// only) SearchManyScan on the returned Handle.
package czdb
