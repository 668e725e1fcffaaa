package transform

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"biotreebridge/internal/validate"
)

// Resource is a FHIR resource as a JSON object.
type Resource = map[string]any

// WriteNDJSON writes one JSON object per line.
func WriteNDJSON(w io.Writer, resources []Resource) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, res := range resources {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("resource %d: %w", i, err)
		}
	}

	return nil
}

// ReadNDJSON reads one JSON object per line. Blank and undecodable lines
// are skipped.
func ReadNDJSON(r io.Reader) ([]Resource, error) {
	var out []Resource

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var res Resource
		if err := json.Unmarshal(line, &res); err != nil {
			continue
		}

		out = append(out, res)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ndjson: %w", err)
	}

	return out, nil
}

// NDJSONPath returns the file that holds resources of resourceType in dir.
func NDJSONPath(dir, resourceType string) string {
	return filepath.Join(dir, resourceType+".ndjson")
}

// CreateOrExtend merges resources into <dir>/<resourceType>.ndjson, keyed
// by id. Existing entries are kept unless update is set; new ids are
// appended in input order. It returns the written path.
func CreateOrExtend(dir, resourceType string, resources []Resource, update bool) (string, error) {
	if !validate.IsValidResourceType(resourceType) {
		return "", fmt.Errorf("%w: %s", validate.ErrUnknownResourceType, resourceType)
	}

	path := NDJSONPath(dir, resourceType)

	var existing []Resource

	if f, err := os.Open(path); err == nil {
		existing, err = ReadNDJSON(f)
		f.Close()

		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}

	merged := make([]Resource, 0, len(existing)+len(resources))
	index := make(map[string]int, len(existing)+len(resources))

	for _, res := range append(existing, resources...) {
		id, _ := res["id"].(string)

		pos, seen := index[id]
		switch {
		case !seen:
			index[id] = len(merged)
			merged = append(merged, res)
		case update:
			merged[pos] = res
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var buf bytes.Buffer
	if err := WriteNDJSON(&buf, merged); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
