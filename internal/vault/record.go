package vault

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/lockbox/internal/common"
)

// Record is the decrypted vault content: a flat mapping of secret names to
// string values. A name is either present with some string value or entirely
// absent; the mapping is never sparse. Records exist only in memory while a
// session is unlocked.
type Record map[string]string

// Clone returns an independent copy of the record. Cloning a nil record
// yields an empty, non-nil one.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Serialize encodes the record as a JSON object. Go's encoder writes map
// keys in sorted order, so equal records always serialize to equal bytes.
func (r Record) Serialize() ([]byte, error) {
	if r == nil {
		r = Record{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("serialize record: %w", err)
	}
	return data, nil
}

// ParseRecord decodes plaintext vault content. Anything that is not a JSON
// object with string values only is rejected with common.ErrCorruptData.
func ParseRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrCorruptData, err)
	}
	if r == nil {
		// "null" unmarshals without error but is not a mapping.
		return nil, fmt.Errorf("%w: not a JSON object", common.ErrCorruptData)
	}
	return r, nil
}
