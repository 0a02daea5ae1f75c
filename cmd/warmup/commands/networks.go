package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func networksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the known networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCHAIN ID\tRPC URL\tRELAYER")

			for _, name := range networkNames() {
				n, err := lookupNetwork(name)
				if err != nil {
					return err
				}

				relayer := n.RelayerURL
				if relayer == "" {
					relayer = "-"
				}

				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", n.Name, n.ChainID, n.RPCURL, relayer)
			}

			return tw.Flush()
		},
	}
}
