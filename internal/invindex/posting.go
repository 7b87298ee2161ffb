package invindex

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// binaryFormatMarker tags a posting-list value as the varint-encoded
// (doc_id, tf) format. It is not a valid leading byte of the legacy
// ASCII comma-separated encoding (which only ever starts with a
// decimal digit), so the two formats can share one KV key layout
// without ambiguity.
const binaryFormatMarker = 0xFF

// Entry is one (doc_id, term_frequency) pair within a posting list.
type Entry struct {
	DocID int64
	TF    uint64
}

// Posting is the ordered set of entries for one term.
type Posting []Entry

// Contains reports whether docID already has an entry.
func (p Posting) Contains(docID int64) (Entry, bool) {
	for _, e := range p {
		if e.DocID == docID {
			return e, true
		}
	}
	return Entry{}, false
}

// DocIDs returns just the doc ids, for callers that only need
// membership (e.g. rendering the legacy wire format).
func (p Posting) DocIDs() []int64 {
	ids := make([]int64, len(p))
	for i, e := range p {
		ids[i] = e.DocID
	}
	return ids
}

// Upsert returns a new Posting with (docID, tf) added or updated.
// Idempotent: calling it twice with the same (docID, tf) produces
// byte-identical output, so a re-indexed document never grows its own
// posting entry.
func (p Posting) Upsert(docID int64, tf uint64) (Posting, bool) {
	for i, e := range p {
		if e.DocID == docID {
			if e.TF == tf {
				return p, false
			}
			out := make(Posting, len(p))
			copy(out, p)
			out[i].TF = tf
			return out, true
		}
	}
	out := make(Posting, len(p), len(p)+1)
	copy(out, p)
	return append(out, Entry{DocID: docID, TF: tf}), true
}

// Encode renders a posting in the binary varint format.
func Encode(p Posting) []byte {
	buf := make([]byte, 1, 1+len(p)*10)
	buf[0] = binaryFormatMarker
	var tmp [binary.MaxVarintLen64]byte
	for _, e := range p {
		n := binary.PutVarint(tmp[:], e.DocID)
		buf = append(buf, tmp[:n]...)
		n = binary.PutUvarint(tmp[:], e.TF)
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

// EncodeLegacy renders the pre-term-frequency comma-separated-decimal
// doc-id wire format (no term frequency, no trailing delimiter), for
// producing fixtures that exercise Decode's legacy-format detection.
func EncodeLegacy(p Posting) []byte {
	ids := make([]string, len(p))
	for i, e := range p {
		ids[i] = strconv.FormatInt(e.DocID, 10)
	}
	return []byte(strings.Join(ids, ","))
}

// Decode parses a stored value, auto-detecting the binary format
// (marker byte 0xFF) versus the legacy comma-separated ASCII format.
func Decode(data []byte) (Posting, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == binaryFormatMarker {
		return decodeBinary(data[1:])
	}
	return decodeLegacy(data)
}

func decodeBinary(data []byte) (Posting, error) {
	var p Posting
	for len(data) > 0 {
		docID, n := binary.Varint(data)
		if n <= 0 {
			return nil, fmt.Errorf("invindex: truncated doc id varint")
		}
		data = data[n:]
		tf, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("invindex: truncated tf varint")
		}
		data = data[n:]
		p = append(p, Entry{DocID: docID, TF: tf})
	}
	return p, nil
}

func decodeLegacy(data []byte) (Posting, error) {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	p := make(Posting, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invindex: malformed legacy posting entry %q: %w", part, err)
		}
		p = append(p, Entry{DocID: id, TF: 1})
	}
	return p, nil
}
