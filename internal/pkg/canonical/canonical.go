// Package canonical produces a deterministic byte encoding of arbitrary
// payloads so that semantically identical requests hash identically,
// regardless of field order in the caller's JSON.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/Fresh-Industries/pantrypal/internal/pkg/errs"
)

// Marshal encodes v as JSON with every object's keys sorted, recursively.
// encoding/json already emits map keys in sorted order, so a round-trip
// through map[string]any is enough to normalize struct field order too.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errs.Wrap(err, "canonical: marshal payload")
	}

	var norm any
	if err := json.Unmarshal(raw, &norm); err != nil {
		return nil, errs.Wrap(err, "canonical: normalize payload")
	}

	out, err := json.Marshal(norm)
	if err != nil {
		return nil, errs.Wrap(err, "canonical: re-marshal payload")
	}
	return out, nil
}

// Hash returns the hex-encoded SHA-256 of the canonical encoding of v.
func Hash(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// HashBytes hashes raw bytes that are already in canonical form.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
