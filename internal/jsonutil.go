package internal

import (
	"encoding/json"
	"os"
)

// ReadJSONFile reads a JSON file and unmarshals into the provided destination
func ReadJSONFile(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// WriteJSONFile marshals the source and writes to the given path
func WriteJSONFile(path string, src interface{}) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// removeFile deletes a cache file, ignoring a missing one.
func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		UmmLog(WARN, "Cache", "Failed to remove %s: %v", path, err)
	}
}

// LoadJSONCache reads a persisted cache file into dest. A missing file is
// normal and returns false silently; a corrupt file returns false after a
// warning so the caller rebuilds from scratch. Never fatal.
func LoadJSONCache(path, component string, dest interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		UmmLog(WARN, component, "Cache file %s is corrupt, starting fresh: %v", path, err)
		return false
	}
	return true
}
