// Command czdbquery is a thin demonstration CLI for the czdb package. It
// is an external collaborator, not part of the engine spec.md covers: a
// single lookup against -ip, or a batch lookup from -file (optionally
// gzip-compressed), de-duplicating repeated IPs with xxh3 before handing
// the unique set to SearchMany.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net/netip"
	"os"
	"strings"

	"github.com/jpl-au/czdb"
	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/xxh3"
)

func main() {
	dbPath := flag.String("db", "", "path to the .czdb database file")
	key := flag.String("key", "", "base64-encoded decryption key")
	backend := flag.String("backend", "disk", "backend: disk, mmap, or memory")
	ip := flag.String("ip", "", "single IP address to look up")
	file := flag.String("file", "", "path to a newline-separated batch of IPs (.gz accepted)")
	flag.Parse()

	if *dbPath == "" || *key == "" {
		log.Fatal("czdbquery: -db and -key are required")
	}

	h, err := openBackend(*dbPath, *key, *backend)
	if err != nil {
		log.Fatalf("czdbquery: open: %v", err)
	}
	defer h.Close()

	switch {
	case *ip != "":
		runSingle(h, *ip)
	case *file != "":
		runBatch(h, *file)
	default:
		log.Fatal("czdbquery: one of -ip or -file is required")
	}
}

func openBackend(path, key, backend string) (*czdb.Handle, error) {
	switch backend {
	case "disk":
		return czdb.OpenDisk(path, key)
	case "mmap":
		return czdb.OpenMmap(path, key)
	case "memory":
		return czdb.OpenMemory(path, key)
	default:
		return nil, fmt.Errorf("czdbquery: unknown backend %q", backend)
	}
}

func runSingle(h *czdb.Handle, raw string) {
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		log.Fatalf("czdbquery: parse ip: %v", err)
	}
	rec, err := h.Search(addr)
	if err != nil {
		log.Fatalf("czdbquery: search: %v", err)
	}
	if rec == nil {
		fmt.Println("no data")
		return
	}
	fmt.Println(rec.Text)
}

// runBatch reads a newline-separated list of IPs (transparently
// decompressing .gz input), de-duplicates it with xxh3, and resolves the
// unique set through SearchMany before printing results in the original
// input order. SearchMany works on every backend (a per-IP loop) and
// transparently upgrades to the sorted linear scan once the memory
// backend's pool is present and the batch crosses the crossover
// threshold — SearchManyScan itself requires the memory backend and
// would fail on -backend disk/mmap, which default to disk.
func runBatch(h *czdb.Handle, path string) {
	lines, err := readLines(path)
	if err != nil {
		log.Fatalf("czdbquery: read %s: %v", path, err)
	}

	addrs := make([]netip.Addr, 0, len(lines))
	order := make([]int, 0, len(lines)) // index into addrs for each input line, or -1
	seen := make(map[uint64]int)        // xxh3 hash -> index into addrs

	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			order = append(order, -1)
			continue
		}
		addr, err := netip.ParseAddr(ln)
		if err != nil {
			order = append(order, -1)
			continue
		}
		h64 := xxh3.HashString(addr.String())
		idx, ok := seen[h64]
		if !ok {
			idx = len(addrs)
			addrs = append(addrs, addr)
			seen[h64] = idx
		}
		order = append(order, idx)
	}

	results, err := h.SearchMany(addrs)
	if err != nil {
		log.Fatalf("czdbquery: search_many: %v", err)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, idx := range order {
		if idx < 0 {
			fmt.Fprintln(w, "no data")
			continue
		}
		rec := results[idx]
		if rec == nil {
			fmt.Fprintln(w, "no data")
			continue
		}
		fmt.Fprintln(w, rec.Text)
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r *bufio.Scanner
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = bufio.NewScanner(gz)
	} else {
		r = bufio.NewScanner(f)
	}

	var lines []string
	for r.Scan() {
		lines = append(lines, r.Text())
	}
	return lines, r.Err()
}
