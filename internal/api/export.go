package api

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"osrs-flipper/internal/engine"
	"osrs-flipper/internal/logger"
)

const exportSheet = "Flips"

var exportHeader = []interface{}{
	"ID", "Name", "Buy (low)", "Sell (high)", "Tax", "Profit", "ROI %", "Volume 24h", "GE limit", "Potential 4h",
}

// handleExport downloads every item matching the filters as an Excel sheet.
// Unlike the list it is not capped at 50 rows.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, items := s.filtered(r)

	f, err := buildWorkbook(items)
	if err != nil {
		logger.Error("Export", fmt.Sprintf("build workbook: %v", err))
		writeError(w, 500, "export failed")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="flips.xlsx"`)
	if err := f.Write(w); err != nil {
		logger.Error("Export", fmt.Sprintf("write workbook: %v", err))
	}
}

func buildWorkbook(items []engine.Item) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	for i, it := range items {
		var limit interface{} = ""
		if it.HasLimit() {
			limit = *it.Limit
		}
		row := []interface{}{
			it.ID, it.Name, it.PriceLow, it.PriceHigh, it.Tax, it.Profit,
			fmt.Sprintf("%.2f", it.ROI), it.Volume, limit, it.Potential,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheet, "B", "B", 32); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
