package handler

import (
    "strings"

    "github.com/shopspring/decimal"
    "github.com/xuri/excelize/v2"

    "github.com/iliyamo/tour-ops-dashboard/internal/recap"
)

// Sheet names of the exported workbook.
const (
    sheetSlots = "Slots"
    sheetDays  = "Days"
)

// BuildWorkbook renders a recap as a workbook with one row per slot on the
// Slots sheet and one row per date, plus a period total, on the Days sheet.
// Money is written as numbers so the sheet can be summed.
func BuildWorkbook(rec recap.Recap) (*excelize.File, error) {
    f := excelize.NewFile()
    if err := f.SetSheetName("Sheet1", sheetSlots); err != nil {
        return nil, err
    }
    if _, err := f.NewSheet(sheetDays); err != nil {
        return nil, err
    }
    bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
    if err != nil {
        return nil, err
    }

    slotHeader := []any{"Date", "Time", "Activity", "Status", "Bookings"}
    for _, cat := range rec.Categories {
        slotHeader = append(slotHeader, cat)
    }
    slotHeader = append(slotHeader, "Participants", "Amount", "Guide cost", "Escort cost",
        "Headphone cost", "Printing cost", "Voucher cost", "Total cost", "Net profit", "Guides", "Escorts")
    if err := writeRow(f, sheetSlots, 1, slotHeader, bold); err != nil {
        return nil, err
    }

    row := 2
    for _, day := range rec.Days {
        for _, s := range day.Slots {
            vals := []any{s.Date, s.Time, s.ActivityTitle, s.Status, s.BookingCount}
            for _, cat := range rec.Categories {
                vals = append(vals, s.Participants[cat])
            }
            vals = append(vals, s.TotalParticipants, money(s.TotalAmount), money(s.GuideCost), money(s.EscortCost),
                money(s.HeadphoneCost), money(s.PrintingCost), money(s.VoucherCost), money(s.TotalCost),
                money(s.NetProfit), names(s.Guides), names(s.Escorts))
            if err := writeRow(f, sheetSlots, row, vals, 0); err != nil {
                return nil, err
            }
            row++
        }
    }

    dayHeader := []any{"Date", "Bookings", "Participants", "Amount", "Total cost", "Net profit", "Guides", "Escorts"}
    if err := writeRow(f, sheetDays, 1, dayHeader, bold); err != nil {
        return nil, err
    }
    row = 2
    for _, day := range rec.Days {
        if err := writeRow(f, sheetDays, row, totalsRow(day.Date, day.Totals), 0); err != nil {
            return nil, err
        }
        row++
    }
    if err := writeRow(f, sheetDays, row, totalsRow("Total", rec.Totals), bold); err != nil {
        return nil, err
    }
    return f, nil
}

func totalsRow(label string, t recap.Totals) []any {
    return []any{label, t.BookingCount, t.TotalParticipants, money(t.TotalAmount), money(t.TotalCost),
        money(t.NetProfit), t.GuideCount, t.EscortCount}
}

// writeRow writes vals from column A of row; a non-zero style is applied
// to the whole row.
func writeRow(f *excelize.File, sheet string, row int, vals []any, style int) error {
    start, err := excelize.CoordinatesToCellName(1, row)
    if err != nil {
        return err
    }
    if err := f.SetSheetRow(sheet, start, &vals); err != nil {
        return err
    }
    if style == 0 || len(vals) == 0 {
        return nil
    }
    end, err := excelize.CoordinatesToCellName(len(vals), row)
    if err != nil {
        return err
    }
    return f.SetCellStyle(sheet, start, end, style)
}

func money(d decimal.Decimal) float64 {
    return d.Round(2).InexactFloat64()
}

func names(people []recap.Person) string {
    out := make([]string, len(people))
    for i, p := range people {
        out[i] = p.Name
    }
    return strings.Join(out, ", ")
}
