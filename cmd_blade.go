package main

import (
	"github.com/chazu/spanloft/pkg/config"
	"github.com/chazu/spanloft/pkg/export"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newBladeCmd() *cobra.Command {
	var (
		cfgPath string
		name    string
		out     string
		kf      kernelFlags
	)
	cmd := &cobra.Command{
		Use:   "blade",
		Short: "Build the LPT blade assembly",
		Long: `Build the LPT blade: the trapezoid root body with its cutouts,
fillet and flanges, plus the twisted blade standing on its top face.
Parameters come from --config laid over the defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := kf.apply(cmd, &cfg); err != nil {
				return err
			}

			app := NewApp(cfg.Kernel, log.Logger)
			meshes, err := app.BuildAssembly(cmd.Context(), name, cfg)
			if err != nil {
				return err
			}
			if err := printMeshes(cmd.OutOrStdout(), meshes); err != nil {
				return err
			}
			if err := export.SaveSTL(out, meshes); err != nil {
				return err
			}
			log.Info().Str("path", out).Msg("wrote STL")
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "YAML parameter file")
	cmd.Flags().StringVar(&name, "name", "lpt_blade", "part name")
	cmd.Flags().StringVarP(&out, "output", "o", "lpt_blade.stl", "STL output path")
	kf.register(cmd)
	return cmd
}
