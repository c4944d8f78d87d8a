package commands

import (
	"github.com/spf13/cobra"

	"github.com/nerrad567/fcs-core/internal/client"
	"github.com/nerrad567/fcs-core/internal/status"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		restrict string
		filter   string
		onValues bool
	)

	cmd := &cobra.Command{
		Use:   "status [devname...]",
		Short: "Print the status of devices",
		Long: `Print the "key = value" status lines reported by App/DevStatus, for the
named devices or for every device when none is named.

--filter keeps the keys (or, with --values, the values) matching a
regular expression. --restrict keeps the keys ending with a suffix such
as lcs.substate and prints them per device.`,
		Example: `  fcsctl status lamp1 lamp2
  fcsctl status --restrict lcs.substate
  fcsctl status --filter '^Op' --values`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			lines, err := client.DevStatus(cmd.Context(), s.caller, client.DevNames(args...)...)
			if err != nil {
				return s.out.Error("Cannot read device status", err.Error(),
					"Check the device names with 'fcsctl devinfo'")
			}

			st := status.Parse(lines)
			if filter != "" {
				if st, err = st.Filtered(filter, onValues); err != nil {
					return s.out.Error("Invalid --filter pattern", err.Error())
				}
			}
			if restrict != "" {
				restricted, scalar := st.Restricted(restrict)
				if scalar != nil {
					restricted = status.New()
					restricted.Set(scalar.Key, scalar.Value)
				}
				st = restricted
			}
			s.out.StatusLines(st.Lines())
			return nil
		},
	}
	cmd.Flags().StringVar(&restrict, "restrict", "", "keep keys ending with this suffix")
	cmd.Flags().StringVar(&filter, "filter", "", "keep keys matching this regular expression")
	cmd.Flags().BoolVar(&onValues, "values", false, "apply --filter to values instead of keys")
	return cmd
}
