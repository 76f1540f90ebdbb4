// Command polardigest reduces Polar exercise, sleep, recharge, activity and
// heart rate data into compact JSON summaries.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasjlepore/polar-digest/accesslink"
	"github.com/lucasjlepore/polar-digest/config"
	"github.com/lucasjlepore/polar-digest/logging"
)

const serviceName = "polardigest"

type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "polardigest",
		Short: "Summarize Polar training and recovery data",
		Long: `polardigest turns raw Polar data (AccessLink entities or FIT files) into
compact JSON digests: per-channel exercise summaries, sleep architecture,
nightly recharge trends, activity profiles and heart rate buckets.

Local inputs are read with --json or --fit. Remote inputs are fetched from
AccessLink with the access token from the config file or POLAR_ACCESS_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Logging.Level = a.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, serviceName)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override: debug|info|warn|error")

	root.AddCommand(
		a.exerciseCmd(),
		a.sleepCmd(),
		a.rechargeCmd(),
		a.activityCmd(),
		a.heartRateCmd(),
		a.exportCmd(),
		a.configCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, err := newRootCmd().ExecuteContextC(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", cmd.Name(), err)
		os.Exit(1)
	}
}

func (a *app) client() (*accesslink.Client, error) {
	if a.cfg.AccessLink.AccessToken == "" {
		return nil, fmt.Errorf("no access token: set accesslink.access_token or POLAR_ACCESS_TOKEN")
	}
	return accesslink.NewClient(a.cfg.AccessLink.BaseURL, a.cfg.AccessLink.AccessToken, a.cfg.GetTimeout(), a.logger), nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exactlyOne reports an error unless exactly one of the named flags is set.
func exactlyOne(cmd *cobra.Command, names ...string) error {
	set := 0
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of %v is required", names)
	}
	return nil
}
