// Command layershell runs the layer-shell demo on the terminal backend.
package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/psi"
	"pkt.systems/pslog"
)

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("layershell command failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts runOptions
	root := &cobra.Command{
		Use:           "layershell",
		Short:         "Multi-window layer-shell demo rendered in the terminal",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/layershell/config.json)")
	root.Flags().BoolVar(&opts.daemon, "daemon", false, "keep running after the last window closes")
	root.Flags().IntVarP(&opts.windows, "windows", "w", 1, "number of windows to open at startup")
	root.Flags().StringVar(&opts.logPath, "log", "", "log file (default next to the config file)")

	root.AddCommand(newConfigCmd(&opts.configPath))
	root.AddCommand(newVersionCmd())
	return root
}
