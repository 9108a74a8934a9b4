package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skypark/bookings/internal/handoff"
	"github.com/skypark/bookings/pkg/config"
)

func newURLCmd() *cobra.Command {
	var (
		df   draftFlags
		base string
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the checkout link for a booking draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			d, err := df.draft(openTimeSet(cfg))
			if err != nil {
				return err
			}
			if base == "" {
				base = strings.TrimRight(cfg.Server.PublicURL, "/") + "/checkout"
			}
			link, err := handoff.URL(base, d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}

	df.register(cmd)
	cmd.Flags().StringVar(&base, "base", "", "checkout page URL (defaults to PUBLIC_URL/checkout)")
	return cmd
}
