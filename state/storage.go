// Package state persists the two pieces of durable pipeline state: the
// used-content fingerprints and the daily publish counter. Single-writer
// assumption: one pipeline run at a time; writes are made atomic via
// write-to-temp-then-rename so a crash mid-write never leaves torn state.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quiz-shorts-pipeline/faults"
)

// writeJSONAtomic marshals v and replaces path in one rename.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return faults.Wrapf(err, faults.KindPersistence, "marshal %s", path)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return faults.Wrapf(err, faults.KindPersistence, "create state dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return faults.Wrapf(err, faults.KindPersistence, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return faults.Wrapf(err, faults.KindPersistence, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return faults.Wrapf(err, faults.KindPersistence, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return faults.Wrapf(err, faults.KindPersistence, "rename %s to %s", tmpName, path)
	}
	return nil
}

// readJSON loads path into v; missing files leave v untouched.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return faults.Wrapf(err, faults.KindPersistence, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return faults.Wrap(err, faults.KindPersistence, fmt.Sprintf("parse %s", path))
	}
	return nil
}
