// Package manifest loads the project file that names which map files an
// indexer produces, so the inspection CLI can refer to them by short name
// instead of a full path. It is CLI-only glue: the core filemap library
// never reads this file.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// MapFile names one map file the project produces and records the codec
// kind used to interpret it. The CLI does not read Kind; its commands take
// the kind as an argument.
type MapFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"kind"` //nolint:tagliatelle // snake_case-free, single word
}

// Manifest is the parsed contents of a project's filemap manifest file.
type Manifest struct {
	MapFiles []MapFile `json:"map_files"` //nolint:tagliatelle // matches on-disk field name
}

// FileName is the default manifest file name, read from the working
// directory unless the caller supplies an explicit path (see DefaultPath).
const FileName = ".filemapctl.jsonc"

// Load reads and parses the manifest at path. The file is JSONC (JSON with
// comments and trailing commas), standardized to JSON with hujson before
// decoding, the same tolerant format this project's own CLI config uses.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied, not attacker data
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: %s is not valid JSONC: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(standardized, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: %s is not valid JSON after standardization: %w", path, err)
	}

	return m, nil
}

// Find returns the MapFile named name, or false if the manifest has no
// such entry.
func (m Manifest) Find(name string) (MapFile, bool) {
	for _, mf := range m.MapFiles {
		if mf.Name == name {
			return mf, true
		}
	}

	return MapFile{}, false
}

// DefaultPath returns the manifest path to use given a working directory
// and an optional explicit override (empty means "use the default name in
// workDir").
func DefaultPath(workDir, explicit string) string {
	if explicit != "" {
		return explicit
	}

	return filepath.Join(workDir, FileName)
}
