package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/prohmpiriya/hostel-saas/internal/domain"
)

const (
	SheetSummary   = "Summary"
	SheetRoomTypes = "Room Types"
	SheetTrend     = "Booking Trend"

	// ContentType is the MIME type of the generated workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Filename names the export after the hostel slug and the snapshot date
func Filename(hostel *domain.Hostel, snap *domain.StatsSnapshot) string {
	return fmt.Sprintf("%s-stats-%s.xlsx", hostel.Slug, snap.AsOf.UTC().Format("2006-01-02"))
}

// StatsWorkbook renders a stats snapshot as an xlsx workbook
func StatsWorkbook(hostel *domain.Hostel, snap *domain.StatsSnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{SheetRoomTypes, SheetTrend} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	currency := hostel.Settings.WithDefaults().Currency
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Hostel", hostel.Name},
		{"Slug", hostel.Slug},
		{"As of (UTC)", snap.AsOf.UTC().Format(time.RFC3339)},
		{fmt.Sprintf("Monthly revenue (%s)", currency), snap.MonthlyRevenue},
		{fmt.Sprintf("Yearly revenue (%s)", currency), snap.YearlyRevenue},
		{"Occupancy rate (%)", snap.OccupancyRate},
		{"Today's bookings", snap.TodayBookings},
		{"Active bookings", snap.ActiveBookings},
		{"Available rooms", snap.AvailableRooms},
		{"Total rooms", snap.TotalRooms},
		{"Total guests", snap.TotalGuests},
		{"Total bookings", snap.TotalBookings},
		{"Staff", snap.TotalStaff},
	}
	if err := writeRows(f, SheetSummary, summary, headerStyle); err != nil {
		return nil, err
	}

	roomTypes := [][]interface{}{{"Type", "Rooms"}}
	for _, rt := range snap.RoomTypes {
		roomTypes = append(roomTypes, []interface{}{string(rt.Type), rt.Count})
	}
	if err := writeRows(f, SheetRoomTypes, roomTypes, headerStyle); err != nil {
		return nil, err
	}

	trend := [][]interface{}{{"Month", "Bookings"}}
	for _, m := range snap.MonthlyBookingsTrend {
		trend = append(trend, []interface{}{m.Month, m.Bookings})
	}
	if err := writeRows(f, SheetTrend, trend, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRows writes rows from A1 down, styles the first row as a header and
// freezes it
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}

	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
