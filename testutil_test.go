// Fixture construction shared by this package's tests: builds a valid
// in-memory CZDB image (prologue, encrypted parameter block, first-octet
// table, sorted range-index, record section) for a given set of already
// sorted, non-overlapping range entries. Mirrors the teacher's own
// table-driven, t.TempDir()-based test style (see db_test.go).
package czdb

import (
	"crypto/aes"
	"encoding/base64"
	"encoding/binary"
	"net/netip"
	"os"
	"testing"
)

type fixtureEntry struct {
	start, end netip.Addr
	text       string
}

const testKeyB64 = "MTIzNDU2Nzg5MDEyMzQ1Ng==" // base64("1234567890123456")

func testKeyRaw(t *testing.T) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(testKeyB64)
	if err != nil {
		t.Fatalf("decode test key: %v", err)
	}
	return raw
}

// buildFixture assembles a complete CZDB byte image. sizeDelta is added to
// the encoded expected-file-size field, to let tests provoke
// ExpiredOrMismatched deliberately (pass 0 for a valid file).
func buildFixture(t *testing.T, tag byte, width int, entries []fixtureEntry, sizeDelta int) []byte {
	t.Helper()

	entryWidth := int(entryWidthFor(width))

	// Record section.
	var records []byte
	ptrs := make([]uint32, len(entries))
	lens := make([]uint8, len(entries))
	for i, e := range entries {
		ptrs[i] = uint32(len(records))
		lens[i] = uint8(len(e.text))
		records = append(records, []byte(e.text)...)
	}

	// Sorted range-index.
	index := make([]byte, 0, entryWidth*len(entries))
	for i, e := range entries {
		buf := make([]byte, entryWidth)
		sb, ok := addrBytes(e.start, width)
		if !ok {
			t.Fatalf("fixture entry %d: start addr wrong width", i)
		}
		eb, ok := addrBytes(e.end, width)
		if !ok {
			t.Fatalf("fixture entry %d: end addr wrong width", i)
		}
		copy(buf[0:width], sb)
		copy(buf[width:2*width], eb)
		binary.LittleEndian.PutUint32(buf[2*width:2*width+4], ptrs[i])
		buf[2*width+4] = lens[i]
		index = append(index, buf...)
	}

	// First-octet table: entries are assumed sorted ascending, so all
	// entries sharing a leading octet are contiguous.
	var table [256 * 8]byte
	for i := range 256 {
		binary.LittleEndian.PutUint32(table[i*8:i*8+4], emptySlotMark)
		binary.LittleEndian.PutUint32(table[i*8+4:i*8+8], emptySlotMark)
	}
	i := 0
	for i < len(entries) {
		sb, _ := addrBytes(entries[i].start, width)
		octet := sb[0]
		j := i
		for j < len(entries) {
			ob, _ := addrBytes(entries[j].start, width)
			if ob[0] != octet {
				break
			}
			j++
		}
		binary.LittleEndian.PutUint32(table[int(octet)*8:int(octet)*8+4], uint32(i))
		binary.LittleEndian.PutUint32(table[int(octet)*8+4:int(octet)*8+8], uint32(j-1))
		i = j
	}

	indexStart := prologueSize + paramBlockSize + octetTableSize
	indexEnd := indexStart + len(index)
	fileSize := indexEnd + len(records)

	// Prologue.
	prologue := make([]byte, prologueSize)
	prologue[0] = tag
	binary.LittleEndian.PutUint32(prologue[5:9], uint32(indexStart))
	binary.LittleEndian.PutUint32(prologue[9:13], uint32(indexEnd))

	// Encrypted parameter block.
	plain := make([]byte, 16)
	copy(plain[0:3], []byte("ABC"))
	copy(plain[3:8], []byte("26010"))
	binary.LittleEndian.PutUint32(plain[8:12], 0)
	binary.LittleEndian.PutUint32(plain[12:16], uint32(fileSize+sizeDelta))
	padded := pkcs7Pad(plain, 16)

	block, err := aes.NewCipher(testKeyRaw(t))
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	cipherText := make([]byte, len(padded))
	for off := 0; off < len(padded); off += 16 {
		block.Encrypt(cipherText[off:off+16], padded[off:off+16])
	}

	out := make([]byte, 0, fileSize)
	out = append(out, prologue...)
	out = append(out, cipherText...)
	out = append(out, table[:]...)
	out = append(out, index...)
	out = append(out, records...)
	return out
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	if pad == 0 {
		pad = blockSize
	}
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func writeFixtureFile(t *testing.T, data []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := dir + string(os.PathSeparator) + "test.czdb"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func addr(t *testing.T, s string) netip.Addr {
	t.Helper()
	a, err := netip.ParseAddr(s)
	if err != nil {
		t.Fatalf("parse addr %q: %v", s, err)
	}
	return a
}

// addrFromBytes rebuilds a netip.Addr from a fixed-width big-endian byte
// slice (4 or 16 bytes), the inverse of addrBytes.
func addrFromBytes(t *testing.T, b []byte) netip.Addr {
	t.Helper()
	switch len(b) {
	case 4:
		return netip.AddrFrom4([4]byte(b))
	case 16:
		return netip.AddrFrom16([16]byte(b))
	default:
		t.Fatalf("addrFromBytes: unexpected length %d", len(b))
		return netip.Addr{}
	}
}

// ipv4Fixture is spec.md §8's three-entry synthetic database:
// A = 1.0.0.0-1.0.0.255 -> "CN|Beijing"
// B = 8.8.8.0-8.8.8.255 -> "US|California"
// C = 8.8.9.0-8.8.9.255 -> "US|Oregon"
func ipv4Fixture(t *testing.T) []fixtureEntry {
	t.Helper()
	return []fixtureEntry{
		{addr(t, "1.0.0.0"), addr(t, "1.0.0.255"), "CN|Beijing"},
		{addr(t, "8.8.8.0"), addr(t, "8.8.8.255"), "US|California"},
		{addr(t, "8.8.9.0"), addr(t, "8.8.9.255"), "US|Oregon"},
	}
}

// ipv6Fixture is an IPv6 analogue of the same three ranges, exercising
// W=16 throughout the pipeline.
// Leading hextets are chosen so the first address byte mirrors the IPv4
// fixture's bucket structure: A alone in bucket 1, B and C sharing
// bucket 8 (so P7's last-entry-of-bucket test still applies).
func ipv6Fixture(t *testing.T) []fixtureEntry {
	t.Helper()
	return []fixtureEntry{
		{addr(t, "100::0"), addr(t, "100::ff"), "CN|Beijing"},
		{addr(t, "800::0"), addr(t, "800::ff"), "US|California"},
		{addr(t, "801::0"), addr(t, "801::ff"), "US|Oregon"},
	}
}
