package main

import (
	"github.com/chazu/spanloft/pkg/config"
	"github.com/chazu/spanloft/pkg/export"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newEllipsesCmd() *cobra.Command {
	var (
		out string
		kf  kernelFlags
	)
	cmd := &cobra.Command{
		Use:   "ellipses",
		Short: "Build the two reference elliptical ducts",
		Long: `Loft the reference ellipse pairs as open skins: a 40x13 inlet rising
33 to a 28x13 outlet, and a 19x9 throat falling 22 to a 14x9 exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := kf.apply(cmd, &cfg); err != nil {
				return err
			}

			app := NewApp(cfg.Kernel, log.Logger)
			meshes, err := app.BuildReferenceDucts(cmd.Context())
			if err != nil {
				return err
			}
			if err := printMeshes(cmd.OutOrStdout(), meshes); err != nil {
				return err
			}
			if err := export.SaveSTL(out, meshes); err != nil {
				return err
			}
			log.Info().Str("path", out).Int("parts", len(meshes)).Msg("wrote STL")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "ellipses.stl", "STL output path")
	kf.register(cmd)
	return cmd
}
