package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"fims-backend/internal/models"
	"fims-backend/internal/supabase"
)

type ExportHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewExportHandler(dbClient *supabase.DatabaseClient) *ExportHandler {
	return &ExportHandler{
		dbClient: dbClient,
	}
}

// Export downloads the authenticated inspector's inspections as an XLSX
// workbook.
func (h *ExportHandler) Export(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}

	inspectorID, ok := inspectorIDFromContext(c)
	if !ok {
		return
	}

	inspections, err := h.dbClient.ListInspections(inspectorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list inspections",
			Message: err.Error(),
		})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inspections"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})

	headers := []string{"Inspection Number", "Location", "Address", "Status", "Planned Date", "Inspection Date", "Created At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", endHeader, headerStyle)

	for row, insp := range inspections {
		values := []interface{}{
			insp.InspectionNumber,
			insp.LocationName,
			insp.Address.String,
			insp.Status,
			"",
			insp.InspectionDate.Format("2006-01-02 15:04"),
			insp.CreatedAt.Format("2006-01-02 15:04"),
		}
		if insp.PlannedDate.Valid {
			values[4] = insp.PlannedDate.Time.Format("2006-01-02")
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to generate export",
			Message: err.Error(),
		})
		return
	}

	filename := fmt.Sprintf("inspections_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buffer.Bytes())
}
