package sampleprofiles

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birthprofile/internal/domain/types"
	"github.com/okian/birthprofile/pkg/logger"
)

var givenNames = []string{ //nolint:gochecknoglobals // sample name pool
	"Alice", "Bruno", "Chiyo", "Dmitri", "Emeka", "Farah", "Goro", "Hana",
	"Ines", "Jun", "Kofi", "Leila", "Mateo", "Noor", "Oskar", "Priya",
}

var offsets = []string{ //nolint:gochecknoglobals // sample offsets
	"-08:00", "-05:00", "-03:00", "+00:00", "+01:00", "+03:00", "+05:30", "+08:00", "+09:00", "+10:00",
}

// randomInt returns a uniform value in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// randomCoordinate returns a value in [-limit, limit] rounded to 2 decimals.
func randomCoordinate(limit float64) float64 {
	hundredths := int64(limit * 100)
	return float64(randomInt(2*hundredths+1)-hundredths) / 100
}

// GenerateInputs creates n valid birth inputs. Every name carries a uuid
// suffix so saved runs can be traced back to service logs.
func GenerateInputs(ctx context.Context, n int) ([]types.BirthInput, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidConfig, n)
	}
	logger.Get().Info(ctx, "generating birth inputs", logger.Int("count", n))

	start := time.Date(firstYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int64(time.Date(lastYear, time.December, 31, 0, 0, 0, 0, time.UTC).Sub(start).Hours()/24) + 1

	inputs := make([]types.BirthInput, n)
	for i := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		name := givenNames[randomInt(int64(len(givenNames)))]
		inputs[i] = types.BirthInput{
			Name:      name + "-" + uuid.NewString()[:8],
			Birthdate: start.AddDate(0, 0, int(randomInt(days))).Format("2006-01-02"),
			Birthtime: fmt.Sprintf("%02d:%02d", randomInt(24), randomInt(60)),
			Timezone:  offsets[randomInt(int64(len(offsets)))],
			Latitude:  randomCoordinate(maxLatitude),
			Longitude: randomCoordinate(180),
		}
	}
	return inputs, nil
}
