package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/luftbild/ortho-cli/internal/wms"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities <state>",
	Short: "Query GetCapabilities of a state service",
	Long:  "Fetches the capabilities document of the registered service and lists its named layers, marking the layer the catalog requests.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		catalog, err := wms.DefaultCatalog()
		if err != nil {
			return eris.Wrap(err, "capabilities")
		}
		productFlag, _ := cmd.Flags().GetString("product")
		product, err := wms.ParseProduct(productFlag)
		if err != nil {
			return err
		}
		svc, err := catalog.Service(args[0], product)
		if err != nil {
			return err
		}

		client := wms.NewClient(svc, newFetcher())
		caps, err := client.GetCapabilities(ctx)
		if err != nil {
			return eris.Wrap(err, "capabilities")
		}

		if !caps.HasLayer(svc.Layer) {
			fmt.Printf("WARNING: configured layer %q not advertised by the service\n", svc.Layer)
		}
		for _, layer := range caps.NamedLayers() {
			marker := " "
			if layer.Name == svc.Layer {
				marker = "*"
			}
			fmt.Printf("%s %-40s %s\n", marker, layer.Name, layer.Title)
		}
		return nil
	},
}

func init() {
	capabilitiesCmd.Flags().String("product", "rgb", "imagery product: rgb or cir")
	rootCmd.AddCommand(capabilitiesCmd)
}
