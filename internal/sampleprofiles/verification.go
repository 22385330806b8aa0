package sampleprofiles

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/birthprofile/internal/domain/numerology"
	"github.com/okian/birthprofile/internal/domain/types"
)

// verifyPair checks that two responses for the same input are byte-identical
// and that the profile is consistent with the input.
func verifyPair(in types.BirthInput, first, second []byte) error {
	var a types.Profile
	if err := json.Unmarshal(first, &a); err != nil {
		return fmt.Errorf("%w: %s: undecodable profile: %w", ErrInconsistent, in.Name, err)
	}
	if !bytes.Equal(first, second) {
		var b types.Profile
		if err := json.Unmarshal(second, &b); err != nil {
			return fmt.Errorf("%w: %s: undecodable profile: %w", ErrInconsistent, in.Name, err)
		}
		return fmt.Errorf("%w: %s (-first +second):\n%s", ErrInconsistent, in.Name, cmp.Diff(a, b))
	}
	return checkProfile(in, a)
}

// checkProfile validates the echoed fields and the value ranges of p.
func checkProfile(in types.BirthInput, p types.Profile) error {
	switch {
	case p.Name != in.Name || p.Birthdate != in.Birthdate || p.Birthtime != in.Birthtime || p.Timezone != in.Timezone:
		return fmt.Errorf("%w: %s: input not echoed", ErrInconsistent, in.Name)
	case p.Maya.Kin < 1 || p.Maya.Kin > 260:
		return fmt.Errorf("%w: %s: kin %d out of range", ErrInconsistent, in.Name, p.Maya.Kin)
	case p.Maya.Tone < 1 || p.Maya.Tone > 13:
		return fmt.Errorf("%w: %s: tone %d out of range", ErrInconsistent, in.Name, p.Maya.Tone)
	case (p.LifePathNumber < 1 || p.LifePathNumber > 9) && !numerology.IsMaster(p.LifePathNumber):
		return fmt.Errorf("%w: %s: life path %d", ErrInconsistent, in.Name, p.LifePathNumber)
	case p.SunSign == "" || p.MoonSign == "":
		return fmt.Errorf("%w: %s: missing luminary sign", ErrInconsistent, in.Name)
	}
	return nil
}
