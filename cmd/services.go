package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/luftbild/ortho-cli/internal/wms"
)

var servicesCmd = &cobra.Command{
	Use:   "services [state]",
	Short: "Show the registered WMS endpoints",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := wms.DefaultCatalog()
		if err != nil {
			return eris.Wrap(err, "services")
		}

		states := catalog.States()
		if len(args) == 1 {
			states = []string{args[0]}
		}

		for _, state := range states {
			svcs := catalog.ServicesFor(state)
			if len(svcs) == 0 {
				return eris.Errorf("services: unknown state %q", state)
			}
			for _, svc := range svcs {
				fmt.Printf("%-4s %-5s %-7s %.1fm  %s  layer=%s\n",
					svc.State, svc.Product, svc.Version, svc.Resolution, svc.URL, svc.Layer)
			}
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(servicesCmd) }
