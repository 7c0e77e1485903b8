// Package sockaddr encodes and decodes the fixed 19-byte socket address
// record used at the sandbox ABI boundary.
//
// Record layout:
//
//	byte  0      address family tag
//	bytes 1-2    port, big-endian u16
//	bytes 3-18   address payload, left-justified
//	             (4 bytes for INET, tail zero-filled; 16 bytes for INET6)
//
// The record is always exactly RecordSize bytes regardless of family. DNS
// resolution returns these records as a fixed-stride array, so the width
// never varies and the unused INET tail must be zeroed rather than left
// stale.
package sockaddr
