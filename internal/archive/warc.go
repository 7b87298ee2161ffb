package archive

import (
	"time"

	"github.com/google/uuid"
	"github.com/zenless-lab/gwarc"
)

// record is the WARC response record shape written by WriteRecord. It
// maps onto gwarc.WARCRecord's tag-driven Marshal, plus the trailing
// CRLFCRLF the WARC spec requires after the payload.
type record struct {
	Version     gwarc.WARCVariant
	RecordID    string            `warc:"WARC-Record-ID"`
	Type        gwarc.WARCRecordType `warc:"WARC-Type"`
	TargetURI   string            `warc:"WARC-Target-URI"`
	Date        time.Time         `warc:"WARC-Date"`
	ContentType string            `warc:"Content-Type,omitempty"`
	Content     []byte
}

func newRecord(url string, payload []byte) *record {
	return &record{
		Version:     gwarc.WARCVariant1_0,
		RecordID:    "urn:uuid:" + uuid.New().String(),
		Type:        gwarc.WARCTypeResponse,
		TargetURI:   url,
		Date:        time.Now().UTC(),
		ContentType: "application/http; msgtype=response",
		Content:     payload,
	}
}

// marshalWARC renders header || payload || "\r\n\r\n", the exact byte
// layout required before gzip-compressing a single WARC member.
func marshalWARC(url string, payload []byte) ([]byte, error) {
	r := newRecord(url, payload)
	b, err := gwarc.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(b, '\r', '\n', '\r', '\n'), nil
}
