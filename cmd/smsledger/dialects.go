package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/smsledger/internal/cli"
	"github.com/Veraticus/smsledger/internal/model"
	"github.com/Veraticus/smsledger/internal/sms"
	"github.com/spf13/cobra"
)

func dialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported banks in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Bank"),
				cli.TableHeaderStyle.Render("Markers"),
				cli.TableHeaderStyle.Render("Merchant fallback"),
			); err != nil {
				return err
			}
			for _, d := range model.Dialects() {
				if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n",
					d.DisplayName(),
					strings.Join(sms.Markers(d), ", "),
					sms.FallbackMerchant(d),
				); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}
}
