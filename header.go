// Header parser: reads the fixed prologue, decrypts the parameter block,
// reads the 256-entry first-octet table, and validates everything into an
// immutable Layout. Grounded on the teacher's header.go, which reads a
// fixed region at a known offset and returns either a populated struct or
// a corruption error — the same shape, applied to a binary rather than
// JSON header.
package czdb

import "encoding/binary"

// parseHeader reads and validates the full header region (prologue,
// parameter block, first-octet table) and returns a Layout, or a
// structural error. It also runs the full I1-I4 validation pass over the
// range-index before returning, per spec.md §3's "rejected at load time"
// requirement.
func parseHeader(p byteProvider, key string) (*Layout, error) {
	const op = "czdb.parseHeader"

	fileSize := p.size()
	if fileSize < prologueSize+paramBlockSize+octetTableSize {
		return nil, newErr(KindTruncated, op, nil)
	}

	prologue := make([]byte, prologueSize)
	if err := p.readExact(0, prologue); err != nil {
		return nil, err
	}

	ver, ok := tagToVersion(prologue[0])
	if !ok {
		return nil, newErr(KindCorruptHeader, op, nil)
	}
	indexStart := int64(binary.LittleEndian.Uint32(prologue[5:9]))
	indexEnd := int64(binary.LittleEndian.Uint32(prologue[9:13]))

	rawKey, err := decodeKey(key)
	if err != nil {
		return nil, err
	}

	cipherText := make([]byte, paramBlockSize)
	if err := p.readExact(prologueSize, cipherText); err != nil {
		return nil, err
	}
	pb, err := decryptParamBlock(rawKey, cipherText)
	if err != nil {
		return nil, err
	}
	if int64(pb.expectedFileSize) != fileSize {
		return nil, newErr(KindExpiredOrMismatched, op, nil)
	}

	addrWidth := ver.width()
	entryWidth := entryWidthFor(addrWidth)

	if !(0 <= indexStart && indexStart <= indexEnd && indexEnd <= fileSize) {
		return nil, newErr(KindCorruptHeader, op, nil)
	}
	if (indexEnd-indexStart)%entryWidth != 0 {
		return nil, newErr(KindCorruptHeader, op, nil)
	}
	totalEntries := (indexEnd - indexStart) / entryWidth
	if totalEntries < 1 {
		return nil, newErr(KindCorruptHeader, op, nil)
	}

	tableOffset := int64(prologueSize + paramBlockSize)
	tableBuf := make([]byte, octetTableSize)
	if err := p.readExact(tableOffset, tableBuf); err != nil {
		return nil, err
	}

	l := &Layout{
		ipVersion:           ver,
		addrWidth:           addrWidth,
		entryWidth:          entryWidth,
		indexStartOffset:    indexStart,
		indexEndOffset:      indexEnd,
		totalEntries:        totalEntries,
		recordSectionOrigin: indexEnd,
		fileSize:            fileSize,
	}

	var lastLo int64 = -1
	for i := 0; i < 256; i++ {
		start := binary.LittleEndian.Uint32(tableBuf[i*8 : i*8+4])
		end := binary.LittleEndian.Uint32(tableBuf[i*8+4 : i*8+8])
		if start == emptySlotMark && end == emptySlotMark {
			l.table[i] = octetSlot{empty: true}
			continue
		}
		if int64(start) > int64(end) || int64(end) >= totalEntries {
			return nil, newErr(KindCorruptHeader, op, nil)
		}
		if int64(start) < lastLo {
			return nil, newErr(KindCorruptHeader, op, nil)
		}
		lastLo = int64(start)
		l.table[i] = octetSlot{lo: start, hi: end}
	}

	if err := l.validateStructure(func(i int64) (rangeEntry, error) {
		return readEntry(p, l, i)
	}); err != nil {
		return nil, err
	}

	return l, nil
}
