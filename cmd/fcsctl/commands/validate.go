package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		src       payloadFlags
		printOnly bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a setup payload without sending it",
		Long: `Validate a setup payload against the schema and the device declarations
without dispatching it. JSON payloads are checked offline; --spf needs the
server device map.`,
		Example: `  fcsctl validate --json '[{"id":"lamp1","param":{"lamp":{"action":"ON","intensity":40,"time":10}}}]'
  fcsctl validate --file setup.json --print
  fcsctl validate --spf lamp1:action=OFF`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			buf, err := s.buffer(cmd.Context(), false)
			if err != nil {
				return s.out.Error("Cannot prepare the setup buffer", err.Error())
			}
			if err := src.load(cmd.Context(), buf); err != nil {
				return payloadError(s, err)
			}

			if printOnly {
				return writeJSON(s.out.Out, buf.Payload(true))
			}
			s.out.Success("payload valid: %d setups", buf.Len())
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVarP(&printOnly, "print", "p", false, "print the normalised payload")
	return cmd
}

func payloadError(s *session, err error) error {
	if errors.Is(err, errNoPayload) {
		return s.out.Error("No payload given", "",
			"Pass a JSON payload with --json",
			"Pass a payload file with --file",
			"Pass a compact payload with --spf devname:key=value")
	}
	return s.out.Error("Invalid setup payload", err.Error(),
		"Run 'fcsctl schema' to see what the payload must look like")
}
