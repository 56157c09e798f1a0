package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/chazu/spanloft/pkg/config"
	"github.com/chazu/spanloft/pkg/export"
	"github.com/chazu/spanloft/pkg/span"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// printSections writes the per-section table.
func printSections(w io.Writer, sections []span.Section) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SECTION\tZ\tCHORD\tTHICK\tTWIST\tAREA\tCX\tCY\t")
	for _, s := range sections {
		st := span.Stats(s)
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.3f\t%.3f\t\n",
			s.Index, s.Z, s.Chord, s.Thickness, s.Twist*180/math.Pi, st.Area, st.Centroid.X, st.Centroid.Y)
	}
	return tw.Flush()
}

func newInspectCmd() *cobra.Command {
	var (
		cfgPath  string
		plotPath string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the blade's section table and distribution chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			sections, err := span.Build(cfg.Blade)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := printSections(w, sections); err != nil {
				return err
			}
			chart, err := export.DistributionChart(cfg.Blade)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\n%s\n", chart)

			if plotPath != "" {
				if err := export.SaveDistributionPlot(plotPath, cfg.Blade); err != nil {
					return err
				}
				log.Info().Str("path", plotPath).Msg("wrote plot")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "YAML parameter file")
	cmd.Flags().StringVar(&plotPath, "plot", "", "save a chord and twist plot (.png, .svg or .pdf)")
	return cmd
}
