package state

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DedupStore is the persisted set of content fingerprints. The backing file
// is a flat JSON array of hex strings, fully reloaded on every check —
// fine at the expected scale of hundreds to low thousands of entries.
// Records are append-only and never deleted.
type DedupStore struct {
	path string
}

// NewDedupStore returns a store backed by the given file. The file is
// created on first Record.
func NewDedupStore(path string) *DedupStore {
	return &DedupStore{path: path}
}

// Normalize lowercases, trims and collapses internal whitespace so
// whitespace/case variants of the same content cannot bypass dedup.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Fingerprint returns the stable content hash:
// SHA-256 over normalize(question) + "|" + normalize(answer), hex encoded.
func Fingerprint(question, answer string) string {
	sum := sha256.Sum256([]byte(Normalize(question) + "|" + Normalize(answer)))
	return hex.EncodeToString(sum[:])
}

// IsUsed reports whether fingerprint has been recorded before.
func (d *DedupStore) IsUsed(fingerprint string) (bool, error) {
	fps, err := d.load()
	if err != nil {
		return false, err
	}
	for _, fp := range fps {
		if fp == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

// Record appends fingerprint and persists atomically. Recording an already
// present fingerprint is a no-op.
func (d *DedupStore) Record(fingerprint string) error {
	fps, err := d.load()
	if err != nil {
		return err
	}
	for _, fp := range fps {
		if fp == fingerprint {
			return nil
		}
	}
	fps = append(fps, fingerprint)
	return writeJSONAtomic(d.path, fps)
}

// Size returns the number of recorded fingerprints.
func (d *DedupStore) Size() (int, error) {
	fps, err := d.load()
	if err != nil {
		return 0, err
	}
	return len(fps), nil
}

func (d *DedupStore) load() ([]string, error) {
	var fps []string
	if err := readJSON(d.path, &fps); err != nil {
		return nil, err
	}
	return fps, nil
}
