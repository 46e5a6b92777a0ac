package cli

import (
	"Go_Site/internal/service"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newListCommand(svc func() *service.AssetService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every asset in the pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := svc().ListAssets(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(cmd.OutOrStdout(), assets)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tDIMENSIONS")
			for _, a := range assets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\n", a.ID, a.Name, humanize.IBytes(uint64(a.Bytes)), a.Width, a.Height)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
	return cmd
}

func newUsageCommand(svc func() *service.AssetService) *cobra.Command {
	return &cobra.Command{
		Use:   "usage <asset-id>",
		Short: "Show every entity referencing an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := svc().UsageFor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), usage)
		},
	}
}

func newRenameCommand(svc func() *service.AssetService) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <asset-id> <new-name>",
		Short: "Change an asset's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := svc().RenameAsset(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), asset)
		},
	}
}

func newDeleteCommand(svc func() *service.AssetService) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <asset-id>",
		Short: "Delete an asset no entity references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := svc().DeleteAsset(cmd.Context(), args[0])
			var conflict *service.ConflictError
			if errors.As(err, &conflict) {
				_ = printJSON(cmd.ErrOrStderr(), conflict.Usage)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newQuotaCommand(svc func() *service.AssetService) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show pool usage against the configured ceiling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := svc().QuotaUsage(cmd.Context())
			if err != nil {
				return err
			}
			limit := "unlimited"
			if q.LimitBytes > 0 {
				limit = humanize.IBytes(uint64(q.LimitBytes))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "used %s of %s (%.2f%%)\n", humanize.IBytes(uint64(q.UsedBytes)), limit, q.Percent)
			if q.Exceeded {
				fmt.Fprintln(cmd.OutOrStdout(), "quota exceeded: uploads are refused")
			}
			return nil
		},
	}
}
