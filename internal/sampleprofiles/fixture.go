package sampleprofiles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/birthprofile/internal/domain/types"
)

// Diagnoser computes a profile from a birth record.
type Diagnoser interface {
	Diagnose(ctx context.Context, in types.BirthInput) (types.Profile, error)
}

// LoadFixture reads birth inputs from a YAML or JSON file. The file holds
// either a list of inputs or a single input.
func LoadFixture(path string) ([]types.BirthInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixture, err)
	}

	var list []types.BirthInput
	if err := yaml.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %s: no inputs", ErrFixture, path)
		}
		return list, nil
	}

	var single types.BirthInput
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFixture, path, err)
	}
	return []types.BirthInput{single}, nil
}

// DiagnoseAll computes a profile for every input in order.
func DiagnoseAll(ctx context.Context, d Diagnoser, inputs []types.BirthInput) ([]types.Profile, error) {
	out := make([]types.Profile, 0, len(inputs))
	for i, in := range inputs {
		p, err := d.Diagnose(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("input %d (%s): %w", i, in.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// WriteProfiles writes profiles to w as indented JSON.
func WriteProfiles(w io.Writer, profiles []types.Profile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(profiles)
}
