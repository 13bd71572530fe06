package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	conceptMetricPrefix = "conmet"
	queryRecordPrefix   = "qryrec"
	fingerprintPrefix   = "srcfpr"
)

// makeConceptMetricKey generates a key for a concept counter.
func makeConceptMetricKey(concept string) []byte {
	return []byte(fmt.Sprintf("%s:%s", conceptMetricPrefix, concept))
}

// makeQueryRecordKey generates a composite key for a logged question.
// Format: prefix:timestamp:id
func makeQueryRecordKey(askedAt time.Time, id string) []byte {
	prefix := queryRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(askedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// makeFingerprintKey generates a key for a source fingerprint by link.
func makeFingerprintKey(link string) []byte {
	return []byte(fmt.Sprintf("%s:%s", fingerprintPrefix, link))
}
