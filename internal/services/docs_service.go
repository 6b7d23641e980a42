package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"greenbus/backend/internal/domain/models"
)

// DocsService renders printable receipts for manual tickets.
type DocsService struct {
	Tickets TicketStore
	Routes  RouteStore
}

func (s DocsService) TicketReceipt(ctx context.Context, ticketID int64) ([]byte, string, error) {
	t, err := s.Tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}

	busNumber := t.BusID
	if bus, err := s.Routes.BusByID(ctx, t.BusID); err == nil {
		busNumber = bus.BusNumber
	}
	return buildTicketReceiptPDF(t, busNumber)
}

func buildTicketReceiptPDF(t *models.ManualTicket, busNumber string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ticket Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TICKET RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Serial        : %s", t.Serial),
		fmt.Sprintf("Bus           : %s", busNumber),
		fmt.Sprintf("Passengers    : %d", t.PassengerCount),
		fmt.Sprintf("Fare          : %s", t.Fare.StringFixed(2)),
		fmt.Sprintf("Payment       : %s", t.PaymentMethod),
		fmt.Sprintf("Ticket type   : %s", t.TicketType),
		fmt.Sprintf("Issued        : %s", t.IssuedAt.Format("2006-01-02 15:04")),
	}
	if t.Location != nil {
		lines = append(lines, fmt.Sprintf("Issued at     : %.5f, %.5f", t.Location.Lat, t.Location.Lng))
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This receipt covers the listed passengers for a single journey. Keep it until the end of the trip.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%s.pdf", safeFilenamePart(t.Serial))
	return buf.Bytes(), filename, nil
}

func safeFilenamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
