package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	digest "github.com/lucasjlepore/polar-digest"
	"github.com/lucasjlepore/polar-digest/accesslink"
	"github.com/lucasjlepore/polar-digest/fitsource"
)

func (a *app) exerciseCmd() *cobra.Command {
	var fitPath, jsonPath, id string
	cmd := &cobra.Command{
		Use:   "exercise",
		Short: "Summarize one exercise from a FIT file, an exercise JSON or AccessLink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exactlyOne(cmd, "fit", "json", "id"); err != nil {
				return err
			}
			var ex digest.Exercise
			var err error
			switch {
			case fitPath != "":
				ex, err = fitsource.ReadFile(fitPath)
			case jsonPath != "":
				err = readJSONFile(jsonPath, &ex)
			default:
				var c *accesslink.Client
				if c, err = a.client(); err == nil {
					ex, err = c.Exercise(cmd.Context(), id)
				}
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), digest.SummarizeExercise(ex, a.cfg.SummaryConfig()))
		},
	}
	cmd.Flags().StringVar(&fitPath, "fit", "", "Path to a FIT activity file")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Path to an exercise JSON document")
	cmd.Flags().StringVar(&id, "id", "", "AccessLink exercise id")
	return cmd
}

func (a *app) sleepCmd() *cobra.Command {
	var jsonPath, date string
	cmd := &cobra.Command{
		Use:   "sleep",
		Short: "Summarize one sleep night",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exactlyOne(cmd, "json", "date"); err != nil {
				return err
			}
			var night digest.SleepNight
			if jsonPath != "" {
				if err := readJSONFile(jsonPath, &night); err != nil {
					return err
				}
			} else {
				c, err := a.client()
				if err != nil {
					return err
				}
				if night, err = c.SleepNight(cmd.Context(), date); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), digest.SummarizeSleep(night, a.cfg.SummaryConfig()))
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "Path to a sleep night JSON document")
	cmd.Flags().StringVar(&date, "date", "", "Night to fetch from AccessLink (YYYY-MM-DD)")
	return cmd
}

func (a *app) rechargeCmd() *cobra.Command {
	var jsonPath, sleepPath, date string
	cmd := &cobra.Command{
		Use:   "recharge",
		Short: "Summarize one nightly recharge",
		Long: `Summarize one nightly recharge. The recharge entity carries no sleep start,
so the matching sleep night (--sleep-json, or fetched alongside --date) is
used to anchor the trend clock when available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exactlyOne(cmd, "json", "date"); err != nil {
				return err
			}
			var night digest.RechargeNight
			var sleep digest.SleepNight
			if jsonPath != "" {
				if err := readJSONFile(jsonPath, &night); err != nil {
					return err
				}
				if sleepPath != "" {
					if err := readJSONFile(sleepPath, &sleep); err != nil {
						return err
					}
				}
			} else {
				c, err := a.client()
				if err != nil {
					return err
				}
				if night, err = c.RechargeNight(cmd.Context(), date); err != nil {
					return err
				}
				sleep, err = c.SleepNight(cmd.Context(), date)
				if err != nil && !errors.Is(err, accesslink.ErrNotFound) {
					a.logger.Warn("paired sleep night unavailable", zap.String("date", date), zap.Error(err))
				}
			}
			if night.SleepStartTime == "" {
				night.SleepStartTime = sleep.SleepStartTime
			}
			return printJSON(cmd.OutOrStdout(), digest.SummarizeRecharge(night, a.cfg.SummaryConfig()))
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "Path to a nightly recharge JSON document")
	cmd.Flags().StringVar(&sleepPath, "sleep-json", "", "Path to the matching sleep night JSON document")
	cmd.Flags().StringVar(&date, "date", "", "Night to fetch from AccessLink (YYYY-MM-DD)")
	return cmd
}

func (a *app) heartRateCmd() *cobra.Command {
	var jsonPath, date string
	cmd := &cobra.Command{
		Use:   "heartrate",
		Short: "Summarize one day of continuous heart rate into half-hour buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exactlyOne(cmd, "json", "date"); err != nil {
				return err
			}
			var day digest.HeartRateDay
			if jsonPath != "" {
				if err := readJSONFile(jsonPath, &day); err != nil {
					return err
				}
			} else {
				c, err := a.client()
				if err != nil {
					return err
				}
				if day, err = c.HeartRateDay(cmd.Context(), date); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), digest.SummarizeHeartRateDay(day, a.cfg.SummaryConfig()))
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "Path to a continuous heart rate JSON document")
	cmd.Flags().StringVar(&date, "date", "", "Day to fetch from AccessLink (YYYY-MM-DD)")
	return cmd
}

func (a *app) activityCmd() *cobra.Command {
	var jsonPath, from, to string
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Summarize a range of activity days",
		Long: `Summarize a range of activity days. With --from/--to the days are fetched
from AccessLink in batches of accesslink.batch_width parallel requests; days
the upstream cannot deliver are left out. --json reads a JSON array of days.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var days []digest.ActivityDay
			if jsonPath != "" {
				if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
					return fmt.Errorf("--json cannot be combined with --from/--to")
				}
				if err := readJSONFile(jsonPath, &days); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), digest.SummarizeActivityRange(days, a.cfg.SummaryConfig()))
			}

			if from == "" {
				return fmt.Errorf("--from or --json is required")
			}
			if to == "" {
				to = from
			}
			start, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			end, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			days, err = accesslink.FetchActivityRange(cmd.Context(), c, start, end, a.cfg.AccessLink.BatchWidth, a.logger)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), digest.SummarizeActivityRange(days, a.cfg.SummaryConfig()))
		},
	}
	cmd.Flags().StringVar(&jsonPath, "json", "", "Path to a JSON array of activity days")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day, inclusive (YYYY-MM-DD); defaults to --from")
	return cmd
}
