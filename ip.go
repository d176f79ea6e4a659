package czdb

import (
	"bytes"
	"net/netip"
)

// version identifies the address width a database was built for.
type version int

const (
	v4 version = iota + 1
	v6
)

// width returns the address width in bytes for v: 4 for v4, 16 for v6.
// This is not int(v) — v6's tag value (6) is not its byte width (16).
func (v version) width() int {
	switch v {
	case v4:
		return 4
	case v6:
		return 16
	default:
		return 0
	}
}

// tagToVersion maps the prologue's single ip-version byte to a version.
func tagToVersion(tag byte) (version, bool) {
	switch tag {
	case '4':
		return v4, true
	case '6':
		return v6, true
	default:
		return 0, false
	}
}

// addrBytes returns ip as a fixed-width big-endian byte slice matching
// width (4 or 16), or false if ip's version disagrees with width — the
// IpVersionMismatch case spec.md §4.5/§7 requires callers to detect.
// ip is unmapped first so a 4-in-6 address is judged by its true
// (IPv4) version rather than silently treated as IPv6.
func addrBytes(ip netip.Addr, width int) ([]byte, bool) {
	ip = ip.Unmap()
	switch width {
	case 4:
		if !ip.Is4() {
			return nil, false
		}
		a := ip.As4()
		return a[:], true
	case 16:
		if !ip.Is6() {
			return nil, false
		}
		a := ip.As16()
		return a[:], true
	default:
		return nil, false
	}
}

// compareAddr compares two fixed-width big-endian unsigned integers.
// Equal-length big-endian byte comparison is equivalent to numeric
// comparison, so a plain bytes.Compare suffices.
func compareAddr(a, b []byte) int {
	return bytes.Compare(a, b)
}
