package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/chazu/spanloft/pkg/config"
	"github.com/chazu/spanloft/pkg/export"
	"github.com/chazu/spanloft/pkg/kernel"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// errEval is returned once the evaluation errors have been printed.
var errEval = errors.New("evaluation failed")

// kernelFlags overlays command-line kernel choices on a config.
type kernelFlags struct {
	backend string
	cells   int
}

func (f *kernelFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.backend, "kernel", config.BackendAuto, "geometry kernel (auto, sdfx, mesh)")
	cmd.Flags().IntVar(&f.cells, "cells", config.DefaultMeshCells, "sdfx mesh resolution along the longest axis")
}

// apply copies the flags the user set into cfg and validates the result.
func (f *kernelFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("kernel") {
		cfg.Kernel.Backend = f.backend
	}
	if cmd.Flags().Changed("cells") {
		cfg.Kernel.MeshCells = f.cells
	}
	return cfg.Validate()
}

// printMeshes writes one line per mesh.
func printMeshes(w io.Writer, meshes []*kernel.Mesh) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PART\tTRIANGLES\tMIN\tMAX")
	for _, m := range meshes {
		min, max := m.Bounds()
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\n", m.PartName, m.TriangleCount(), min, max)
	}
	return tw.Flush()
}

func newEvalCmd() *cobra.Command {
	var (
		out string
		kf  kernelFlags
	)
	cmd := &cobra.Command{
		Use:   "eval SCRIPT",
		Short: "Evaluate a part script and mesh its parts",
		Long: `Evaluate a Lisp part script, mesh every root part and optionally
write all meshes to one binary STL file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := kf.apply(cmd, &cfg); err != nil {
				return err
			}
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			app := NewApp(cfg.Kernel, log.Logger)
			res := app.Evaluate(cmd.Context(), string(source))
			if !res.OK() {
				for _, e := range res.Errors {
					if e.Line > 0 {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: %s\n", args[0], e.Line, e.Col, e.Message)
					} else {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], e.Message)
					}
				}
				return errEval
			}

			if err := printMeshes(cmd.OutOrStdout(), res.Meshes); err != nil {
				return err
			}
			if out == "" {
				return nil
			}
			if err := export.SaveSTL(out, res.Meshes); err != nil {
				return err
			}
			log.Info().Str("path", out).Int("parts", len(res.Meshes)).Msg("wrote STL")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write meshes to this STL file")
	kf.register(cmd)
	return cmd
}
