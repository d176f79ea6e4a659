// Two-level index: the 256-entry first-octet table partitions the sorted
// range-index by the leading byte of start_ip; within a partition, an
// inclusive binary search finds the entry containing the query address.
//
// Grounded on the real CZDB reader's searchHeader/searchIndex pair and on
// the teacher's scan.go, whose scan function performs the same kind of
// inclusive, overflow-free binary search over a sorted on-disk section.
package czdb

// rangeEntry is one decoded sorted-range-index record.
type rangeEntry struct {
	startIP   []byte
	endIP     []byte
	recordPtr uint32
	recordLen uint8
}

// readEntry decodes the entry at index i (0-based) from the range-index.
func readEntry(p byteProvider, l *Layout, i int64) (rangeEntry, error) {
	offset := l.indexStartOffset + i*l.entryWidth
	buf := make([]byte, l.entryWidth)
	if err := p.readExact(offset, buf); err != nil {
		return rangeEntry{}, err
	}
	return decodeEntry(buf, l.addrWidth), nil
}

func decodeEntry(buf []byte, w int) rangeEntry {
	var e rangeEntry
	e.startIP = append([]byte(nil), buf[0:w]...)
	e.endIP = append([]byte(nil), buf[w:2*w]...)
	e.recordPtr = leUint32(buf[2*w : 2*w+4])
	e.recordLen = buf[2*w+4]
	return e
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// lookup finds the range-index entry containing ip, if any. It implements
// spec.md §4.4: extract the leading octet, consult the first-octet table
// for an inclusive [lo, hi] bucket, then binary-search that bucket with
// the predicate -1/+1/0 on start_ip/end_ip. The search window is always
// treated inclusively on both ends so the last entry of a bucket is never
// skipped (the historical off-by-one bug spec.md §4.4 calls out; see the
// P7 tests in scan_test.go).
func lookup(p byteProvider, l *Layout, ip []byte) (rangeEntry, bool, error) {
	e, _, found, err := lookupIndexed(p, l, ip)
	return e, found, err
}

// lookupIndexed is lookup plus the winning entry's absolute index in the
// range-index, which the memory backend needs to consult its string pool
// without re-decoding the entry.
func lookupIndexed(p byteProvider, l *Layout, ip []byte) (rangeEntry, int64, bool, error) {
	slot := l.table[ip[0]]
	if slot.empty {
		return rangeEntry{}, 0, false, nil
	}

	lo, hi := int64(slot.lo), int64(slot.hi)
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e, err := readEntry(p, l, mid)
		if err != nil {
			return rangeEntry{}, 0, false, err
		}
		switch {
		case compareAddr(ip, e.startIP) < 0:
			hi = mid - 1
		case compareAddr(ip, e.endIP) > 0:
			lo = mid + 1
		default:
			return e, mid, true, nil
		}
	}
	return rangeEntry{}, 0, false, nil
}
