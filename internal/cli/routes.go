package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRoutesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route access table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := loadTable(configFrom(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(table.All())
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tTITLE\tVIEW\tSEARCH\tPERMISSIONS")
			for _, r := range table.All() {
				view := r.View
				if view == "" {
					view = "-"
				}
				perms := strings.Join(r.RequiredPermissions, ",")
				if perms == "" {
					perms = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", r.Path, r.Title, view, r.Searchable, perms)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
