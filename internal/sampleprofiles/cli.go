package sampleprofiles

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/okian/birthprofile/internal/adapters/ephemeris"
	app "github.com/okian/birthprofile/internal/app"
	"github.com/okian/birthprofile/pkg/logger"
)

// NewRootCmd builds the sample-profiles command tree.
func NewRootCmd() *cobra.Command {
	var (
		logFile   string
		logLevel  string
		logFormat string
		closeLog  func() error
	)

	cmd := &cobra.Command{
		Use:          "sample-profiles",
		Short:        "Generate, submit and verify birth profiles",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			closer, err := SetupLogging(cmd.ErrOrStderr(), logFile, logFormat, logLevel)
			if err != nil {
				return err
			}
			closeLog = closer
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logFile, "log", "", "Also write logs to this file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "Log format: text|json")

	cmd.AddCommand(runCmd(), diagnoseCmd())
	return cmd
}

// SetupLogging initializes the global logger on console and, when logFile is
// set, on that file too. The CLI passes stderr so stdout stays machine
// readable.
func SetupLogging(console io.Writer, logFile, format, level string) (func() error, error) {
	writers := []io.Writer{console}
	closer := func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}
	if err := logger.Init(logger.WithFormat(format), logger.WithWriters(writers...)); err != nil {
		_ = closer()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(level); err != nil {
		_ = closer()
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return closer, nil
}

func runCmd() *cobra.Command {
	config := &Config{}

	c := &cobra.Command{
		Use:   "run",
		Short: "Submit random inputs to a running service and verify repeatability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := Run(cmd.Context(), config)
			return err
		},
	}

	c.Flags().StringVar(&config.BaseURL, "url", DefaultBaseURL, "Base URL of the service")
	c.Flags().IntVarP(&config.Count, "count", "n", DefaultCount, "Number of inputs to generate")
	c.Flags().IntVarP(&config.Workers, "workers", "w", runtime.NumCPU()*DefaultWorkers, "Concurrent submissions")
	c.Flags().DurationVar(&config.Timeout, "timeout", DefaultTimeout, "HTTP request timeout")
	c.Flags().StringVarP(&config.OutputFile, "output", "o", "", "Write generated inputs to this JSON file")
	c.Flags().BoolVarP(&config.Verbose, "verbose", "v", false, "Log every mismatch in full")
	return c
}

func diagnoseCmd() *cobra.Command {
	var (
		fixture       string
		houseSystem   string
		ephemerisPath string
	)

	c := &cobra.Command{
		Use:   "diagnose",
		Short: "Compute profiles locally from a YAML or JSON fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hs, err := ephemeris.ParseHouseSystem(houseSystem)
			if err != nil {
				return err
			}
			inputs, err := LoadFixture(fixture)
			if err != nil {
				return err
			}

			svc := app.New(
				app.WithLogger(logger.Get().Named("service")),
				app.WithChartBuilder(ephemeris.New(
					ephemeris.WithHouseSystem(hs),
					ephemeris.WithDataPath(ephemerisPath),
				)),
			)

			profiles, err := DiagnoseAll(cmd.Context(), svc, inputs)
			if err != nil {
				return err
			}
			return WriteProfiles(cmd.OutOrStdout(), profiles)
		},
	}

	c.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file with birth inputs (required)")
	c.Flags().StringVar(&houseSystem, "house-system", string(ephemeris.HouseEqual), "House system: equal|whole_sign|porphyry")
	c.Flags().StringVar(&ephemerisPath, "ephemeris-path", "", "Directory of VSOP87B files")
	_ = c.MarkFlagRequired("fixture")
	return c
}
