//go:build !solution

package webpage

import (
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"gitlab.com/slon/pageaccess/pageaccess"
)

// NewCommand builds the root command. cfg supplies flag defaults, usually
// from LoadConfig.
func NewCommand(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webpage",
		Short: "Simulate readers and writers sharing one web page",
		Long: `webpage plays a schedule of readers and writers against a single
shared page. Readers may share the page, writers need it alone.
Every visitor logs when it is created, ready, accessing and exiting.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := cfg.Roster()
			if err != nil {
				return err
			}

			logger, err := NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			reg := prometheus.NewRegistry()
			metrics, err := NewMetrics(reg)
			if err != nil {
				return err
			}

			runner := NewRunner(logger, clockwork.NewRealClock(), roster, pageaccess.WithObserver(metrics))
			if err := runner.Run(cmd.Context(), roster); err != nil {
				return err
			}

			return LogSummary(logger.Named("summary"), reg)
		},
	}
	cfg.BindFlags(cmd.Flags())
	return cmd
}
