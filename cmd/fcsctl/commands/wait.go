package commands

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/fcs-core/internal/status"
)

func newWaitCmd(opts *rootOptions) *cobra.Command {
	var (
		maxWait time.Duration
		period  time.Duration
		anyOf   bool
	)

	cmd := &cobra.Command{
		Use:   "wait <key> <value> [devname...]",
		Short: "Wait until devices report a status value",
		Long: `Poll App/DevStatus until every named device (or, with --any, one of them)
reports value under the status key suffix. Values are compared as JSON
when they parse as JSON ("42", "true") and as text otherwise.`,
		Example: `  fcsctl wait lcs.substate On lamp1 lamp2
  fcsctl wait motor.pos 10.5 motor1 --max-wait 2m`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			key, value, devnames := args[0], decodeArg(args[1]), args[2:]
			w := status.NewWaiter(s.caller, key, value)
			w.Timeout = maxWait
			w.Period = period
			w.Logger = s.log
			if anyOf {
				w.Op = status.Any
			}

			s.out.Step("waiting for %s = %v", key, value)
			elapsed, err := w.Wait(cmd.Context(), devnames...)
			switch {
			case errors.Is(err, status.ErrTimeout):
				return s.out.Error("Timed out waiting for "+key, err.Error(),
					"Raise --max-wait",
					"Check the current values with 'fcsctl status --restrict "+key+"'")
			case errors.Is(err, status.ErrNothingToWait):
				return s.out.Error("No device reports "+key, err.Error(),
					"Check the key with 'fcsctl status'")
			case err != nil:
				return s.out.Error("Wait failed", err.Error())
			}
			s.out.Success("%s reached after %s", key, elapsed.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxWait, "max-wait", status.DefaultTimeout, "give up after this long")
	cmd.Flags().DurationVar(&period, "period", status.DefaultPeriod, "polling period")
	cmd.Flags().BoolVar(&anyOf, "any", false, "stop when any device reports the value")
	return cmd
}

// decodeArg reads a command line value as JSON, falling back to the text.
func decodeArg(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
