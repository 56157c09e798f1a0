package main

import (
	"errors"
	"os"

	"github.com/chazu/spanloft/pkg/config"
	"github.com/chazu/spanloft/pkg/export"
	"github.com/chazu/spanloft/pkg/span"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSectionsCmd() *cobra.Command {
	var (
		cfgPath string
		dxfPath string
		svgPath string
		svgSize int
	)
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Export the blade sections as DXF or SVG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dxfPath == "" && svgPath == "" {
				return errors.New("nothing to write: give --dxf or --svg")
			}
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			sections, err := span.Build(cfg.Blade)
			if err != nil {
				return err
			}

			if dxfPath != "" {
				if err := export.SaveSectionsDXF(dxfPath, sections); err != nil {
					return err
				}
				log.Info().Str("path", dxfPath).Int("sections", len(sections)).Msg("wrote DXF")
			}
			if svgPath != "" {
				f, err := os.Create(svgPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := export.WriteSectionsSVG(f, sections, svgSize); err != nil {
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				log.Info().Str("path", svgPath).Int("sections", len(sections)).Msg("wrote SVG")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "YAML parameter file")
	cmd.Flags().StringVar(&dxfPath, "dxf", "", "write 3D section wireframes to this DXF file")
	cmd.Flags().StringVar(&svgPath, "svg", "", "write plan-view outlines to this SVG file")
	cmd.Flags().IntVar(&svgSize, "size", 600, "SVG canvas size in pixels")
	return cmd
}
