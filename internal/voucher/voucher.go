// Package voucher renders the printable booking voucher.
package voucher

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/skypark/bookings/internal/domain"
)

// Render builds the voucher PDF for a booking.
func Render(b *domain.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking voucher "+b.Ref, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 10, "SkyPark Adventures")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Booking voucher")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, b.Ref, "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	when := b.VisitDate + " " + b.VisitTime
	if b.VisitTime == domain.TimeFlexible {
		when = b.VisitDate + " (open time)"
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := [][2]string{
		{"Status", string(b.Status)},
		{"Package", b.PackageName},
		{"Visit", when},
		{"Guests", fmt.Sprintf("%d", b.Guests)},
		{"Name", b.Customer.Name},
		{"Phone", b.Customer.Phone},
	}
	if b.Pickup {
		lines = append(lines, [2]string{"Pickup", fmt.Sprintf("%s %s", b.Hotel, b.Room)})
		switch b.TransferKind {
		case domain.TransferPrivate:
			lines = append(lines, [2]string{"Transfer", fmt.Sprintf("Private, %d passengers", b.PrivatePassengers)})
		case domain.TransferShared:
			lines = append(lines, [2]string{"Transfer", fmt.Sprintf("Shared, %d non-players", b.NonPlayers)})
		}
	}
	if len(b.Addons) > 0 {
		lines = append(lines, [2]string{"Add-ons", joinSorted(b.Addons)})
	}
	if len(b.Upsells) > 0 {
		lines = append(lines, [2]string{"Extras", upsellList(b.Upsells)})
	}
	for _, l := range lines {
		pdf.CellFormat(40, 7, l[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, l[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Price")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	bd := b.Breakdown()
	rows := [][2]string{
		{"Packages", thb(bd.Base)},
		{"Add-ons", thb(bd.Addons)},
		{"Extras", thb(bd.Upsells)},
		{"Transfer", thb(bd.Transfer)},
		{"Discount", "-" + thb(bd.Discount)},
	}
	for _, r := range rows {
		pdf.CellFormat(60, 6, r[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, r[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(60, 8, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, thb(bd.Total), "T", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, "Please show this voucher at the park entrance. Pickup times are confirmed by our driver the day before your visit.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render voucher: %w", err)
	}
	return buf.Bytes(), nil
}

func Filename(ref string) string {
	return "voucher-" + ref + ".pdf"
}

func thb(v int64) string {
	return fmt.Sprintf("%d THB", v)
}

func joinSorted(ids []string) string {
	s := append([]string(nil), ids...)
	sort.Strings(s)
	return strings.Join(s, ", ")
}

func upsellList(m map[string]int) string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s x%d", id, m[id]))
	}
	return strings.Join(parts, ", ")
}
