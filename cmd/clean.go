package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/luftbild/ortho-cli/internal/raster"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <dir>...",
	Short: "Delete downloaded datasets",
	Long:  "Removes dataset directories. Directories containing files other than downloaded rasters and the dataset manifest are left untouched.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, dir := range args {
			if err := raster.DeleteDataset(dir); err != nil {
				return eris.Wrap(err, "clean")
			}
			fmt.Printf("deleted %s\n", dir)
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(cleanCmd) }
