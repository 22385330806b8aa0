package sampleprofiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/birthprofile/internal/domain/types"
	"github.com/okian/birthprofile/pkg/logger"
)

// Run generates inputs, submits each one twice and verifies that both
// answers match. Mismatches are counted and reported as ErrInconsistent
// after every input has been tried.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, config.Workers)
	}

	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting sample profile run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("count", config.Count),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return nil, err
	}

	inputs, err := GenerateInputs(ctx, config.Count)
	if err != nil {
		return nil, fmt.Errorf("input generation failed: %w", err)
	}
	stats.InputsGenerated = len(inputs)

	if err := submitInputs(ctx, client, config, inputs, stats); err != nil {
		return stats, err
	}

	if config.OutputFile != "" {
		if err := saveInputsToFile(ctx, config.OutputFile, inputs); err != nil {
			logger.Get().Warn(ctx, "failed to save inputs to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d of %d inputs", ErrInconsistent, stats.Mismatched, stats.Submitted)
	}
	logger.Get().Info(ctx, "run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	status, _, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	// Any 200 counts; the body is Prometheus text.
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// submitInputs posts every input twice with at most config.Workers requests
// in flight.
func submitInputs(ctx context.Context, client *HTTPClient, config *Config, inputs []types.BirthInput, stats *Stats) error {
	url := config.BaseURL + "/api/diagnose"

	var submitted, consistent, mismatched, failed int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for _, in := range inputs {
		g.Go(func() error {
			atomic.AddInt64(&submitted, 1)
			first, err := postProfile(gctx, client, url, in)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				logger.Get().Debug(gctx, "submission failed", logger.String("name", in.Name), logger.Error(err))
				return nil
			}
			second, err := postProfile(gctx, client, url, in)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				logger.Get().Debug(gctx, "submission failed", logger.String("name", in.Name), logger.Error(err))
				return nil
			}
			if err := verifyPair(in, first, second); err != nil {
				atomic.AddInt64(&mismatched, 1)
				if config.Verbose {
					logger.Get().Warn(gctx, "profile mismatch", logger.Error(err))
				}
				return nil
			}
			atomic.AddInt64(&consistent, 1)
			return nil
		})
	}
	err := g.Wait()

	stats.Submitted = int(atomic.LoadInt64(&submitted))
	stats.Consistent = int(atomic.LoadInt64(&consistent))
	stats.Mismatched = int(atomic.LoadInt64(&mismatched))
	stats.Failed = int(atomic.LoadInt64(&failed))

	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("submission interrupted: %w", ctx.Err())
	}
	return nil
}

// postProfile submits one input and returns the raw profile body.
func postProfile(ctx context.Context, client *HTTPClient, url string, in types.BirthInput) ([]byte, error) {
	status, body, err := client.Post(ctx, url, in)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", status, body)
	}
	return body, nil
}

// saveInputsToFile writes the generated inputs as an indented JSON array.
func saveInputsToFile(ctx context.Context, filename string, inputs []types.BirthInput) error {
	if len(inputs) == 0 {
		return errors.New("no inputs to save")
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(inputs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal inputs: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "inputs saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var consistencyRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		consistencyRate = float64(stats.Consistent) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(2*stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("inputsGenerated", stats.InputsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("consistent", stats.Consistent),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("consistencyRate", consistencyRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
