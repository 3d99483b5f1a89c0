package export

import (
	"fmt"
	"strconv"

	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/xuri/excelize/v2"
)

const tripsheetSheet = "Tripsheet"

var tripsheetColumns = []string{
	"Date", "Day", "Status", "Starting Km", "Closing Km", "Total Km",
	"Starting Time", "Closing Time", "Total Hours", "Extra Hours",
	"Driver Extra Hours", "Fuel (L)", "Fuel Amount", "Remarks",
}

// TripsheetHeader identifies the vehicle and driver on the exported sheet.
type TripsheetHeader struct {
	VehicleNumber string
	DriverName    string
}

// TripsheetWorkbook writes one row per day followed by a totals row.
func TripsheetWorkbook(ts models.Tripsheet, header TripsheetHeader) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", tripsheetSheet); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Tripsheet %s - %s - %s (%s)", period(ts.Month, ts.Year), header.VehicleNumber, header.DriverName, ts.Status)
	if err := f.SetCellValue(tripsheetSheet, "A1", title); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	const headerRow = 3
	if err := setRow(f, headerRow, toAny(tripsheetColumns)); err != nil {
		return nil, err
	}

	row := headerRow + 1
	for _, e := range ts.Entries {
		values := []any{
			e.Date.Format("2006-01-02"), e.DayOfWeek, string(e.Status),
			intOrBlank(e.StartingKm), intOrBlank(e.ClosingKm), intOrBlank(e.TotalKm),
			e.StartingTime, e.ClosingTime,
			floatOrBlank(e.TotalHours), floatOrBlank(e.ExtraHours), floatOrBlank(e.DriverExtraHours),
			floatOrBlank(e.FuelLitres), floatOrBlank(e.FuelAmount), e.Remarks,
		}
		if err := setRow(f, row, values); err != nil {
			return nil, err
		}
		row++
	}

	s := ts.Summary
	totals := []any{
		"Total", "", fmt.Sprintf("%d working / %d off / %d pending", s.TotalWorkingDays, s.TotalOffDays, s.TotalPendingDays),
		"", "", s.TotalKms, "", "", s.TotalHours, s.TotalExtraHours, s.TotalDriverExtraHours,
		s.TotalFuelLitres, s.TotalFuelAmount, "",
	}
	if err := setRow(f, row, totals); err != nil {
		return nil, err
	}

	last, _ := excelize.CoordinatesToCellName(len(tripsheetColumns), headerRow)
	if err := f.SetCellStyle(tripsheetSheet, "A"+strconv.Itoa(headerRow), last, bold); err != nil {
		return nil, err
	}
	last, _ = excelize.CoordinatesToCellName(len(tripsheetColumns), row)
	if err := f.SetCellStyle(tripsheetSheet, "A"+strconv.Itoa(row), last, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TripsheetFilename is the download name for an exported tripsheet.
func TripsheetFilename(vehicleNumber string, month, year int) string {
	return fmt.Sprintf("tripsheet_%s_%04d_%02d.xlsx", filenamePart(vehicleNumber), year, month)
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(tripsheetSheet, cell, &values)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func intOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrBlank(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
