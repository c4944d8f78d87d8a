package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/fcs-core/internal/setup"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	var list, actions bool

	cmd := &cobra.Command{
		Use:   "schema [devtype]",
		Short: "Print the JSON schema of setup payloads",
		Long: `Print the JSON schema that setup payloads are validated against.

Without an argument the schema covers every device type accepted by the
configuration (fcs.devtypes, or all registered types). With a device type
only the parameter schema of that type is printed. --actions lists the
setup methods of that type instead.`,
		Example: `  fcsctl schema --list
  fcsctl schema lamp
  fcsctl schema --actions motor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			if list {
				for _, devtype := range s.registry.DevTypes(false) {
					s.out.Println(devtype)
				}
				return nil
			}

			if len(args) == 1 {
				def, err := s.registry.Lookup(args[0])
				if err != nil {
					return s.out.Error(
						"Unknown device type: "+args[0],
						err.Error(),
						"Run 'fcsctl schema --list' to see the registered device types",
					)
				}
				if actions {
					for _, a := range def.SetupActions() {
						s.out.Println(actionUsage(a))
						if a.Doc != "" {
							s.out.Println("    " + a.Doc)
						}
					}
					return nil
				}
				return writeJSON(s.out.Out, def.Schema())
			}
			if actions {
				return s.out.Error("No device type given", "--actions lists the setup methods of one device type",
					"Run 'fcsctl schema --actions <devtype>'")
			}

			var bufOpts []setup.BufferOption
			if len(s.cfg.FCS.DevTypes) > 0 {
				bufOpts = append(bufOpts, setup.WithDevTypes(s.cfg.FCS.DevTypes...))
			}
			schema, err := setup.NewBuffer(s.registry, nil, bufOpts...).Schema()
			if err != nil {
				return s.out.Error("Cannot build the setup schema", err.Error(),
					"Check fcs.devtypes in the configuration")
			}
			return writeJSON(s.out.Out, schema)
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list the registered device types")
	cmd.Flags().BoolVarP(&actions, "actions", "a", false, "list the setup methods of the device type")
	return cmd
}

// actionUsage renders a setup method as name(arg, [optional]) followed by
// the context it selects.
func actionUsage(a *setup.Action) string {
	args := make([]string, 0, len(a.Args)+1)
	for _, arg := range a.Args {
		if arg.Optional {
			args = append(args, "["+arg.Name+"]")
		} else {
			args = append(args, arg.Name)
		}
	}
	if a.Variadic {
		args = append(args, "...")
	}
	usage := fmt.Sprintf("%s(%s)", a.Name, strings.Join(args, ", "))

	if keys := a.Context.Keys(); len(keys) > 0 {
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, a.Context[k])
		}
		usage += "  " + strings.Join(pairs, " ")
	}
	return usage
}
