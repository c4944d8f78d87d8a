package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/fcs-core/internal/client"
)

// ownCommands maps the App methods with a dedicated subcommand.
var ownCommands = map[string]string{
	"Setup":     "setup",
	"DevInfo":   "devinfo",
	"DevStatus": "status",
}

func newStdCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "std <method>",
		Short: "Run a Std command on the server",
		Long:  "Run a Std command: " + strings.Join(client.StdMethods, ", ") + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			method, ok := client.LookupMethod(client.DomainStd, args[0])
			if !ok {
				return s.out.Error("Unknown Std method: "+args[0], "",
					"Use one of "+strings.Join(client.StdMethods, ", "))
			}
			reply, err := client.Std(cmd.Context(), s.caller, method)
			if err != nil {
				return s.out.Error("Std/"+method+" failed", err.Error())
			}
			printReply(s, "Std/"+method, reply)
			return nil
		},
	}
}

func newAppCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "app <method> [devname...]",
		Short: "Run an App command on the server",
		Long: `Run an App command. Recover takes no device; Ignore, Simulate, StopIgn,
StopSim, HwInit, HwEnable, HwDisable and HwReset need at least one device
name. Setup, DevInfo and DevStatus have their own commands.`,
		Example: `  fcsctl app Simulate lamp1 lamp2
  fcsctl app recover`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			method, ok := client.LookupMethod(client.DomainApp, args[0])
			if !ok {
				return s.out.Error("Unknown App method: "+args[0], "",
					"Use one of "+strings.Join(client.AppMethods, ", "))
			}

			var reply string
			switch method {
			case "Setup", "DevInfo", "DevStatus":
				return s.out.Error("App/"+method+" has its own command", "",
					"Run 'fcsctl "+ownCommands[method]+" --help'")
			case "Recover":
				reply, err = client.Recover(cmd.Context(), s.caller)
			default:
				reply, err = client.AppDevices(cmd.Context(), s.caller, method, args[1:]...)
			}
			if errors.Is(err, client.ErrNoDevices) {
				return s.out.Error("App/"+method+" needs device names", "",
					"Run 'fcsctl app "+method+" <devname...>'")
			}
			if err != nil {
				return s.out.Error("App/"+method+" failed", err.Error())
			}
			printReply(s, "App/"+method, reply)
			return nil
		},
	}
}

// printReply prints status-like replies line by line and anything else
// after a success mark.
func printReply(s *session, call, reply string) {
	s.out.Success("%s done", call)
	if reply == "" {
		return
	}
	lines := strings.Split(strings.TrimRight(reply, "\n"), "\n")
	s.out.StatusLines(lines)
}
