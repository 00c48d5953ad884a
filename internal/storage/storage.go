package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/grantflow/internal/grant"
)

// ErrMissingInput is returned when a mandatory input file does not exist
var ErrMissingInput = errors.New("input file not found")

// ExpandPath expands a leading ~/ to the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// LoadGrants reads a mandatory grant list
func LoadGrants(path string) ([]*grant.Grant, error) {
	var grants []*grant.Grant
	found, err := readJSON(path, &grants)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
	}
	return compact(grants), nil
}

// LoadOptionalGrants reads a grant list that may not exist. An empty path
// or a missing file yields an empty list.
func LoadOptionalGrants(path string) ([]*grant.Grant, error) {
	if path == "" {
		return []*grant.Grant{}, nil
	}
	var grants []*grant.Grant
	if _, err := readJSON(path, &grants); err != nil {
		return nil, err
	}
	return compact(grants), nil
}

// LoadResources reads the optional resources list
func LoadResources(path string) ([]grant.Resource, error) {
	resources := make([]grant.Resource, 0)
	if path == "" {
		return resources, nil
	}
	if _, err := readJSON(path, &resources); err != nil {
		return nil, err
	}
	if resources == nil {
		resources = make([]grant.Resource, 0)
	}
	return resources, nil
}

// SaveGrants writes grants as an indented JSON array, creating the parent
// directory if needed
func SaveGrants(path string, grants []*grant.Grant) error {
	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	if grants == nil {
		grants = []*grant.Grant{}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(grants, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding grants: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// readJSON decodes the file at path into v. It reports found=false without
// an error when the file does not exist.
func readJSON(path string, v any) (bool, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("parsing %s: %w", path, err)
	}

	return true, nil
}

// compact drops null entries
func compact(grants []*grant.Grant) []*grant.Grant {
	out := make([]*grant.Grant, 0, len(grants))
	for _, g := range grants {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}
