// Command spanloft builds turbine blades and elliptical lofts from Lisp part
// scripts or YAML parameter files, and exports them as STL, DXF, SVG or PNG.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is the spanloft release.
const Version = "0.3.0"

type rootOptions struct {
	logLevel string
	logJSON  bool
}

// setupLogging installs the global logger. Console output is the default.
func setupLogging(w io.Writer, level string, json bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	if json {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	}
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "spanloft",
		Short: "Parametric turbine blade and loft generator",
		Long: `spanloft builds twisted, tapered NACA 0012 blades, the LPT blade root
body and elliptical lofts.

Parts come from Lisp scripts:
  (lpt-blade "stage1" :twist 45)
  (loft "duct" (ellipse "in" :major 20 :minor 6.5)
               (ellipse "out" :center (vec3 0 0 33) :major 14 :minor 6.5))

or from a YAML parameter file laid over the defaults.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), opts.logLevel, opts.logJSON)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "log JSON lines instead of console output")

	root.AddCommand(
		newEvalCmd(),
		newBladeCmd(),
		newSectionsCmd(),
		newEllipsesCmd(),
		newInspectCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
