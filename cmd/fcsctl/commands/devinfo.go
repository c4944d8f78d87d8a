package commands

import (
	"github.com/spf13/cobra"

	"github.com/nerrad567/fcs-core/internal/client"
	"github.com/nerrad567/fcs-core/internal/setup"
)

func newDevInfoCmd(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "devinfo",
		Short: "List the devices managed by the server",
		Long: `List the device names managed by the control server with their device
types, as reported by App/DevInfo. When redis is enabled the map is served
from the cache; --refresh drops the cached copy first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()

			var src setup.DevTypeSource = client.DevInfoSource{Caller: s.caller}
			if s.cfg.Redis.Enabled {
				cache, err := s.devCache()
				if err != nil {
					return s.out.Error("Cannot create the device cache", err.Error())
				}
				if refresh {
					if err := cache.Invalidate(ctx); err != nil {
						s.out.Warning("device cache not cleared: %v", err)
					}
				}
				src = cache
			}

			devtypes, err := src.DevTypes(ctx)
			if err != nil {
				return s.out.Error("Cannot read the device map", err.Error(),
					"Check that the server "+s.cfg.FCS.Service+" is running",
					"Check the mqtt section of the configuration")
			}
			s.out.DevTypes(devtypes)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "ignore the cached device map")
	return cmd
}
