package czdb

import "fmt"

// Kind classifies the failure modes this package can surface. Structural
// failures (Truncated, InvalidKey, ExpiredOrMismatched, CorruptHeader) are
// returned from Open* and abort construction. Per-query failures (Io,
// CorruptRecord, IpVersionMismatch) are returned from a single Search call
// and leave the handle valid for further queries.
type Kind int

const (
	// KindIO marks an underlying read failure. SearchManyScan also returns
	// it when called on a handle without the memory backend's string pool.
	KindIO Kind = iota + 1
	// KindTruncated marks a file shorter than the fixed prologue requires.
	KindTruncated
	// KindInvalidKey marks a bad base64 key, wrong key length, or a failed
	// PKCS#7 unpad after AES-ECB decryption (treated as conclusive proof of
	// the wrong key; see crypto.go).
	KindInvalidKey
	// KindExpiredOrMismatched marks a parameter block that decrypted and
	// unpadded cleanly but whose expected file size disagrees with the
	// byte provider's observed length.
	KindExpiredOrMismatched
	// KindCorruptHeader marks a structural layout invariant (I1-I4) failing
	// at Open.
	KindCorruptHeader
	// KindCorruptRecord marks record bytes that are not valid UTF-8 text.
	KindCorruptRecord
	// KindIPVersionMismatch marks a query IP whose version disagrees with
	// the database's ip_version.
	KindIPVersionMismatch
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindTruncated:
		return "truncated"
	case KindInvalidKey:
		return "invalid key"
	case KindExpiredOrMismatched:
		return "expired or mismatched"
	case KindCorruptHeader:
		return "corrupt header"
	case KindCorruptRecord:
		return "corrupt record"
	case KindIPVersionMismatch:
		return "ip version mismatch"
	default:
		return "unknown"
	}
}

// Error is the structured error type returned by this package. Several
// kinds carry context (Path, Offset) that a bare sentinel cannot, so this
// package uses one typed error rather than the teacher's per-failure
// sentinel variables.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "czdb.OpenDisk"
	Path   string // database file path, when known
	Offset int64  // byte offset involved, when known; zero if not applicable
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	s := e.Op
	if s != "" {
		s += ": "
	}
	s += e.Kind.String()
	if e.Path != "" {
		s += fmt.Sprintf(" (path=%s", e.Path)
		if e.Offset != 0 {
			s += fmt.Sprintf(", offset=%d", e.Offset)
		}
		s += ")"
	} else if e.Offset != 0 {
		s += fmt.Sprintf(" (offset=%d)", e.Offset)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, &czdb.Error{Kind: czdb.KindInvalidKey}) without
// needing to match Op/Path/Offset/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

func newErrPath(kind Kind, op, path string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: cause}
}

func newErrOffset(kind Kind, op string, offset int64, cause error) *Error {
	return &Error{Kind: kind, Op: op, Offset: offset, Err: cause}
}
