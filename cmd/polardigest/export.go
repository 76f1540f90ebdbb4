package main

import (
	"github.com/spf13/cobra"

	"github.com/lucasjlepore/polar-digest/pipeline"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		fitPath    string
		jsonPath   string
		outDir     string
		format     string
		overwrite  bool
		copySource bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an exercise bundle (manifest, summary, sample table)",
		Long: `Write an exercise bundle into --out:

  manifest.json     run id, source hash, channel inventory
  summary.json      the exercise summary
  samples.<format>  every decoded channel aligned on one time grid
  source.<ext>      a copy of the input (with --copy-source)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := exactlyOne(cmd, "fit", "json"); err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = a.cfg.Export.Format
			}
			if !cmd.Flags().Changed("overwrite") {
				overwrite = a.cfg.Export.Overwrite
			}
			res, err := pipeline.Run(pipeline.Options{
				FitPath:      fitPath,
				ExercisePath: jsonPath,
				OutDir:       outDir,
				Format:       format,
				Overwrite:    overwrite,
				CopySource:   copySource,
				Summary:      a.cfg.SummaryConfig(),
				Logger:       a.logger,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&fitPath, "fit", "", "Path to a FIT activity file")
	cmd.Flags().StringVar(&jsonPath, "json", "", "Path to an exercise JSON document")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory")
	cmd.Flags().StringVar(&format, "format", "parquet", "Sample table format: parquet|csv")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Allow writing into a non-empty output directory")
	cmd.Flags().BoolVar(&copySource, "copy-source", false, "Copy the input file into the bundle")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
