package commands

import (
	"github.com/spf13/cobra"
)

func newSetupCmd(opts *rootOptions) *cobra.Command {
	var (
		src       payloadFlags
		keep      bool
		force     bool
		printOnly bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Dispatch a setup payload with App/Setup",
		Long: `Validate a setup payload, aggregate it into one buffer and send it to the
control server with App/Setup. Every dispatch is recorded in the history
database.

With --print the buffer is printed instead of sent; --force includes
setups that are still incomplete. With --keep the buffer is printed after
a successful dispatch so it can be replayed with --file.`,
		Example: `  fcsctl setup --spf lamp1:action=ON,lamp1:intensity=40,lamp1:time=10
  fcsctl setup --file night.json --keep > sent.json
  fcsctl setup --json '[{"id":"shutter1","param":{"shutter":{"action":"CLOSE"}}}]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			buf, err := s.buffer(ctx, !printOnly)
			if err != nil {
				return s.out.Error("Cannot prepare the setup buffer", err.Error(),
					"Check the database, redis and influxdb sections of the configuration")
			}
			if err := src.load(ctx, buf); err != nil {
				return payloadError(s, err)
			}

			if printOnly {
				return writeJSON(s.out.Out, buf.Payload(force))
			}

			if !keep {
				s.out.Step("dispatching %d setups to %s", buf.Len(), s.cfg.FCS.Service)
			}
			msg, err := buf.Dispatch(ctx, keep)
			if err != nil {
				return s.out.Error("Setup dispatch failed", err.Error(),
					"Check the server state with 'fcsctl std GetStatus'",
					"Inspect earlier attempts with 'fcsctl history'")
			}

			if keep {
				return writeJSON(s.out.Out, buf.Payload(force))
			}
			s.out.Success("setup dispatched")
			if msg != "" {
				s.out.Println(msg)
			}
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVarP(&keep, "keep", "k", false, "print the dispatched buffer as JSON")
	cmd.Flags().BoolVar(&force, "force", false, "include incomplete setups in printed payloads")
	cmd.Flags().BoolVarP(&printOnly, "print", "p", false, "print the buffer instead of sending it")
	return cmd
}
