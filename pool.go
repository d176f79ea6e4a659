// String pool for the memory backend: a deduplicated interning table
// indexed by (record_ptr, record_len) -> decoded text, built once at
// OpenMemory and frozen (spec.md §4.5, §9). Range-index entries hold a
// pool index in lieu of (ptr, len), eliminating UTF-8 decoding from the
// hot path.
package czdb

type recordKey struct {
	ptr uint32
	ln  uint8
}

type stringPool struct {
	texts   []string // deduplicated decoded record text
	valid   []bool   // whether texts[i] was valid UTF-8 at build time
	byEntry []int    // per range-entry index into texts/valid
}

func buildStringPool(p byteProvider, l *Layout) (*stringPool, error) {
	pool := &stringPool{byEntry: make([]int, l.totalEntries)}
	seen := make(map[recordKey]int)

	for i := int64(0); i < l.totalEntries; i++ {
		e, err := readEntry(p, l, i)
		if err != nil {
			return nil, err
		}
		key := recordKey{ptr: e.recordPtr, ln: e.recordLen}
		idx, ok := seen[key]
		if !ok {
			raw := make([]byte, e.recordLen)
			if err := p.readExact(l.recordSectionOrigin+int64(e.recordPtr), raw); err != nil {
				return nil, err
			}
			rec, decErr := decodeRecord(raw)
			idx = len(pool.texts)
			pool.texts = append(pool.texts, rec.Text)
			pool.valid = append(pool.valid, decErr == nil)
			seen[key] = idx
		}
		pool.byEntry[i] = idx
	}
	return pool, nil
}

// lookup returns the record for pool index idx, or CorruptRecord if that
// entry's bytes were not valid UTF-8 at build time.
func (s *stringPool) lookup(idx int) (Record, error) {
	if !s.valid[idx] {
		return Record{}, newErr(KindCorruptRecord, "czdb.stringPool.lookup", nil)
	}
	return Record{Text: s.texts[idx]}, nil
}
