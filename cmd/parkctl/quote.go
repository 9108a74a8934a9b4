package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/skypark/bookings/internal/catalog"
	"github.com/skypark/bookings/internal/checkout"
	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/pricing"
	"github.com/skypark/bookings/internal/repo/postgres"
	"github.com/skypark/bookings/pkg/config"
	"github.com/skypark/bookings/pkg/database"
)

func newQuoteCmd() *cobra.Command {
	var (
		df      draftFlags
		promo   string
		apiURL  string
		fromDB  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a booking draft",
		Long: `Prices a draft the same way the booking page does. With --promo the code is
checked against a running API and the granted discount is applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			snap, err := loadCatalog(ctx, cfg, fromDB)
			if err != nil {
				return err
			}
			openTime := openTimeSet(cfg)
			calc := pricing.New(snap, openTime, pricing.Rates{
				PrivateTransfer: cfg.Park.PrivateTransferPrice,
				NonPlayer:       cfg.Park.NonPlayerPrice,
			})

			d, err := df.draft(openTime)
			if err != nil {
				return err
			}

			var oracle checkout.PromoOracle
			if promo != "" {
				if apiURL == "" {
					apiURL = "http://localhost:" + cfg.Server.Port
				}
				oracle = checkout.NewPromoClient(apiURL)
			}
			s := checkout.NewSession(calc, oracle, d)
			if promo != "" {
				if err := s.ApplyPromo(ctx, promo); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "promo not applied: %v\n", err)
				}
			}

			st := s.State()
			renderQuote(cmd.OutOrStdout(), snap, st, calc.IsDraftValid(st.Draft))
			return nil
		},
	}

	df.register(cmd)
	cmd.Flags().StringVar(&promo, "promo", "", "promo code to validate")
	cmd.Flags().StringVar(&apiURL, "api", "", "booking API base URL used for --promo")
	cmd.Flags().BoolVar(&fromDB, "db", false, "read the catalog from DATABASE_URL instead of the built-in one")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "overall timeout")
	return cmd
}

func loadCatalog(ctx context.Context, cfg *config.Config, fromDB bool) (*catalog.Snapshot, error) {
	if !fromDB {
		return catalog.Static(), nil
	}
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	return catalog.NewRepoSource(postgres.NewCatalogRepo(pool)).Load(ctx)
}

func renderQuote(w io.Writer, snap *catalog.Snapshot, st checkout.SessionState, valid bool) {
	d := st.Draft
	name := d.PackageID
	if p := snap.Package(d.PackageID); p != nil {
		name = p.Name
	}

	info := table.NewWriter()
	info.SetOutputMirror(w)
	info.AppendRows([]table.Row{
		{"Package", name},
		{"Date", orDash(d.DateString())},
		{"Time", orDash(d.Time)},
		{"Guests", d.Guests},
		{"Transfer", transferLabel(d)},
	})
	if len(d.AddonIDs) > 0 {
		info.AppendRow(table.Row{"Add-ons", strings.Join(d.AddonIDs, ", ")})
	}
	if st.PromoCode != nil {
		info.AppendRow(table.Row{"Promo", st.PromoCode.Code})
	}
	if st.PromoError != "" {
		info.AppendRow(table.Row{"Promo error", st.PromoError})
	}
	if !valid {
		info.AppendRow(table.Row{"Status", "incomplete, cannot check out"})
	}
	info.Render()

	b := st.Breakdown
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Line", "THB"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.AppendRows([]table.Row{
		{"Base", b.Base},
		{"Add-ons", b.Addons},
		{"Upsells", b.Upsells},
		{"Transfer", b.Transfer},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Subtotal", b.Subtotal})
	if b.Discount > 0 {
		t.AppendRow(table.Row{"Discount", -b.Discount})
	}
	t.AppendFooter(table.Row{"Total", b.Total})
	t.Render()
}

func transferLabel(d domain.Draft) string {
	switch d.Transfer.Kind() {
	case domain.TransferPrivate:
		return fmt.Sprintf("private, %d passengers (%s)", d.Transfer.Passengers(), d.Hotel)
	case domain.TransferShared:
		return fmt.Sprintf("shared, %d non-players (%s)", d.Transfer.NonPlayers(), d.Hotel)
	default:
		return "none"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
