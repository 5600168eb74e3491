package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/varlytics/internal/batch"
)

// modelsCmd lists the simulation catalogue
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the simulation catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		if modelsJSON {
			return printJSON(batch.Listing())
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tNAME\tCATEGORY\tMETHOD")
		for _, e := range batch.Catalogue() {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", int(e.Model)+1, strings.ToLower(e.Name), e.Category, e.Kind)
		}
		return w.Flush()
	},
}

var modelsJSON bool

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the listing as JSON")
}
