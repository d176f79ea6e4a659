// Handle lifecycle and the query engine: OpenDisk/OpenMmap/OpenMemory,
// Close, Search, SearchMany, SearchManyScan. Grounded on the teacher's
// db.go for the "build everything once at Open, release deterministically
// at Close" shape; the teacher's write-path methods (Get/Set/Delete/
// History/Compact/Rehash) have no counterpart here since this engine has
// no writer (spec.md's Non-goals).
//
// Search returns (nil, nil) for "no data" rather than a NotFound-style
// sentinel error, unlike the teacher's Get/Exists — this mirrors spec.md
// §4.5's Option<String> return more directly than an error value would,
// since "no record for this IP" is an expected, non-exceptional outcome.
package czdb

import (
	"net/netip"
	"sort"
)

type backendKind int

const (
	diskBackend backendKind = iota
	mmapBackend
	memoryBackend
)

// Handle owns a byte provider and an immutable decoded Layout. It is
// safely shared for concurrent reads once constructed for the mmap and
// memory backends; the disk backend is not internally synchronised
// (see SPEC_FULL.md §5).
type Handle struct {
	provider byteProvider
	layout   *Layout
	pool     *stringPool // non-nil only for the memory backend
	kind     backendKind
	path     string
}

// OpenDisk opens path for positional (pread-style) read access. The
// lowest-memory backend; it is not internally synchronised.
func OpenDisk(path, key string) (*Handle, error) {
	p, err := openDiskProvider(path)
	if err != nil {
		return nil, err
	}
	return finishOpen(p, path, key, diskBackend)
}

// OpenMmap maps path into the process address space once. Reads become
// zero-copy slice references into the mapping; the mapping's lifetime is
// tied to the Handle.
func OpenMmap(path, key string) (*Handle, error) {
	p, err := openMmapProvider(path)
	if err != nil {
		return nil, err
	}
	return finishOpen(p, path, key, mmapBackend)
}

// OpenMemory loads path entirely into a heap-owned buffer and builds the
// deduplicated string pool described in spec.md §4.5.
func OpenMemory(path, key string) (*Handle, error) {
	p, err := openMemoryProvider(path)
	if err != nil {
		return nil, err
	}
	h, err := finishOpen(p, path, key, memoryBackend)
	if err != nil {
		return nil, err
	}
	pool, err := buildStringPool(h.provider, h.layout)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.pool = pool
	return h, nil
}

func finishOpen(p byteProvider, path, key string, kind backendKind) (*Handle, error) {
	layout, err := parseHeader(p, key)
	if err != nil {
		p.close()
		return nil, err
	}
	return &Handle{provider: p, layout: layout, kind: kind, path: path}, nil
}

// Close releases the handle's file descriptor, mapping, or buffer.
// Scoped acquisition/release is guaranteed on every Open* exit path.
func (h *Handle) Close() error {
	return h.provider.close()
}

// Search classifies ip against the database's ip_version, locates its
// leading-octet bucket, binary-searches the bucket, and returns the
// matching record. (nil, nil) means no range entry contains ip.
func (h *Handle) Search(ip netip.Addr) (*Record, error) {
	ipBytes, ok := addrBytes(ip, h.layout.addrWidth)
	if !ok {
		return nil, newErrPath(KindIPVersionMismatch, "czdb.Handle.Search", h.path, nil)
	}

	if h.pool != nil {
		_, idx, found, err := lookupIndexed(h.provider, h.layout, ipBytes)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		rec, err := h.pool.lookup(h.pool.byEntry[idx])
		if err != nil {
			return nil, err
		}
		return &rec, nil
	}

	e, found, err := lookup(h.provider, h.layout, ipBytes)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	rec, err := h.readRecord(e)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (h *Handle) readRecord(e rangeEntry) (Record, error) {
	raw := make([]byte, e.recordLen)
	if err := h.provider.readExact(h.layout.recordSectionOrigin+int64(e.recordPtr), raw); err != nil {
		return Record{}, err
	}
	return decodeRecord(raw)
}

// SearchMany is the small-batch form: the obvious per-IP loop, retained
// as a distinct entry point so a caller (or a future version) can add
// per-batch warmup without changing call sites (spec.md §4.5). On the
// memory backend, batches at or above the N >= M/log2(M) crossover are
// transparently delegated to SearchManyScan.
func (h *Handle) SearchMany(ips []netip.Addr) ([]*Record, error) {
	if h.pool != nil && len(ips) >= scanCrossover(h.layout.totalEntries) {
		return h.SearchManyScan(ips)
	}

	out := make([]*Record, len(ips))
	for i, ip := range ips {
		rec, err := h.Search(ip)
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

// scanCrossover computes the large-batch threshold N >= M/log2(M) from
// spec.md §4.5; any constant within an order of magnitude is acceptable.
// log2(M) here is rounded up to a whole number (see log2), and the
// quotient is truncated to an int.
func scanCrossover(totalEntries int64) int {
	if totalEntries < 2 {
		return 1
	}
	logM := log2(totalEntries)
	if logM < 1 {
		logM = 1
	}
	n := float64(totalEntries) / logM
	if n < 1 {
		return 1
	}
	return int(n)
}

func log2(n int64) float64 {
	x := float64(n)
	l := 0.0
	for x > 1 {
		x /= 2
		l++
	}
	return l
}

// SearchManyScan is the large-batch form (memory backend only): sort the
// inputs, walk the sorted sequence and the range-index with one linear
// merge pass, then scatter results back through the sort permutation
// (spec.md §4.5). Used automatically by SearchMany when N crosses the
// threshold; exposed directly so callers who already know
// their batch is large can skip the threshold check.
func (h *Handle) SearchManyScan(ips []netip.Addr) ([]*Record, error) {
	if h.pool == nil {
		return nil, newErrPath(KindIO, "czdb.Handle.SearchManyScan", h.path, nil)
	}

	n := len(ips)
	out := make([]*Record, n)
	if n == 0 {
		return out, nil
	}

	type keyed struct {
		bytes []byte
		perm  int
	}
	keys := make([]keyed, n)
	for i, ip := range ips {
		b, ok := addrBytes(ip, h.layout.addrWidth)
		if !ok {
			return nil, newErrPath(KindIPVersionMismatch, "czdb.Handle.SearchManyScan", h.path, nil)
		}
		keys[i] = keyed{bytes: b, perm: i}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return compareAddr(keys[i].bytes, keys[j].bytes) < 0
	})

	var cursor int64
	for _, k := range keys {
		for cursor < h.layout.totalEntries {
			e, err := readEntry(h.provider, h.layout, cursor)
			if err != nil {
				return nil, err
			}
			if compareAddr(e.endIP, k.bytes) < 0 {
				cursor++
				continue
			}
			break
		}
		if cursor >= h.layout.totalEntries {
			out[k.perm] = nil
			continue
		}
		e, err := readEntry(h.provider, h.layout, cursor)
		if err != nil {
			return nil, err
		}
		if compareAddr(k.bytes, e.startIP) < 0 {
			out[k.perm] = nil
			continue
		}
		rec, err := h.pool.lookup(h.pool.byEntry[cursor])
		if err != nil {
			return nil, err
		}
		r := rec
		out[k.perm] = &r
	}
	return out, nil
}
