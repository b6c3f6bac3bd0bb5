package routes

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"sanitation-feedback-server/models"
	"sanitation-feedback-server/services"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportSheetName  = "Feedback"
	exportTimeLayout = "2006-01-02 15:04:05"
)

var exportHeaders = []string{"ID", "Location", "Cleanliness", "Water & Soap", "Hygiene", "Odor", "Average", "Comment", "Submitted At"}

var exportColumnWidths = []float64{8, 28, 12, 14, 10, 8, 10, 50, 20}

func (d *Dependencies) exportFeedback(c *gin.Context) {
	rows, err := d.Reports.RecentFeedback(c.Request.Context(), services.ExportFeedbackLimit)
	if err != nil {
		d.respondError(c, err)
		return
	}

	data, err := buildFeedbackWorkbook(rows)
	if err != nil {
		d.Logger.Error("build feedback workbook", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to generate export"})
		return
	}

	filename := fmt.Sprintf("feedback-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// buildFeedbackWorkbook renders rows as a single-sheet workbook with a styled header.
func buildFeedbackWorkbook(rows []models.FeedbackWithLocation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		comment := ""
		if row.Comment != nil {
			comment = *row.Comment
		}
		values := []interface{}{
			row.ID,
			row.LocationName,
			row.Cleanliness,
			row.WaterSoap,
			row.Hygiene,
			row.Odor,
			float64(row.Cleanliness+row.WaterSoap+row.Hygiene+row.Odor) / 4,
			comment,
			row.CreatedAt.UTC().Format(exportTimeLayout),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
