// Record decoding: the record section is concatenated UTF-8 geo text,
// "|"-delimited fields, referenced by (record_ptr, record_len) from the
// owning range entry. Grounded on the teacher's Record/Result types and
// its unescape helper in record.go, which likewise treats the hot-path
// bytes as raw and only slices/validates them, never does a heavier
// parse than the format requires.
package czdb

import (
	"strings"
	"unicode/utf8"
)

// Record is the opaque geo text associated with a matched range entry.
type Record struct {
	Text string
}

// Fields splits Text on the format's "|" field separator (country,
// province, city, ISP, ...). The engine does not interpret the fields
// beyond this split; see SPEC_FULL.md §4.5.
func (r Record) Fields() []string {
	return strings.Split(r.Text, "|")
}

// decodeRecord validates raw as UTF-8 text and wraps it in a Record.
// Malformed bytes are a per-query CorruptRecord, not a handle-poisoning
// failure (spec.md §4.5's failure semantics).
func decodeRecord(raw []byte) (Record, error) {
	if !utf8.Valid(raw) {
		return Record{}, newErr(KindCorruptRecord, "czdb.decodeRecord", nil)
	}
	return Record{Text: string(raw)}, nil
}
