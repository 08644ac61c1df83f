package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/myopic/ecosim/ecoerr"
)

// Hash computes the scenario's stable identity: blake2b-128 over the
// scenario's JSON serialization with map keys sorted at every level, so two
// structurally-identical scenarios hash identically regardless of field
// declaration order in the source document.
func Hash(s *Scenario) (string, error) {
	const op = "scenario.Hash"

	raw, err := json.Marshal(s)
	if err != nil {
		return "", ecoerr.Wrap(ecoerr.ConfigInvalid, op, err)
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", ecoerr.Wrap(ecoerr.ConfigInvalid, op, err)
	}

	canonical, err := canonicalJSON(generic)
	if err != nil {
		return "", ecoerr.Wrap(ecoerr.ConfigInvalid, op, err)
	}

	h, err := blake2b.New(16, nil)
	if err != nil {
		return "", ecoerr.Wrap(ecoerr.ConfigInvalid, op, err)
	}
	h.Write(canonical)
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// canonicalJSON re-encodes v with object keys sorted at every nesting
// level and no extraneous whitespace, matching json.dumps(obj,
// sort_keys=True, separators=(",", ":")) in the reference implementation.
func canonicalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []interface{}:
		buf.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}
