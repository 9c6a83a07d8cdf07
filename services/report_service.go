package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/expendio/foh-app/models"
	"gorm.io/gorm"
)

// Date/time layouts matching the es-MX strings the old reports used.
const (
	csvDateLayout = "02/01/2006"
	csvTimeLayout = "15:04:05"
)

var csvHeader = []string{
	"Mesa", "Cliente", "Email", "Personas", "Consumo Total",
	"Fecha Llegada", "Hora Llegada", "Fecha Salida", "Hora Salida",
}

// ReportService is a pure read side over visit history. Nothing here mutates
// state.
type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

// VisitsByDateRange returns visits whose arrival falls inside [start, end],
// table and customer attached, most recent first.
func (rs *ReportService) VisitsByDateRange(start, end time.Time) ([]models.Visit, error) {
	var visits []models.Visit
	err := rs.DB.Preload("Table").Preload("Customer").
		Where("arrival_time >= ? AND arrival_time <= ?", start, end).
		Order("arrival_time DESC").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}

// WriteCSV renders the report in the export format the back office consumes.
// Spend defaults to 0, open visits render N/A in the departure columns.
func (rs *ReportService) WriteCSV(w io.Writer, visits []models.Visit) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, v := range visits {
		spend := 0.0
		if v.TotalSpend != nil {
			spend = *v.TotalSpend
		}

		departureDate, departureTime := "N/A", "N/A"
		if v.DepartureTime != nil {
			departureDate = v.DepartureTime.Format(csvDateLayout)
			departureTime = v.DepartureTime.Format(csvTimeLayout)
		}

		row := []string{
			v.Table.Name,
			v.Customer.Name,
			v.Customer.Email,
			strconv.Itoa(v.PartySize),
			fmt.Sprintf("%.2f", spend),
			v.ArrivalTime.Format(csvDateLayout),
			v.ArrivalTime.Format(csvTimeLayout),
			departureDate,
			departureTime,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename names a CSV download for the covered range.
func (rs *ReportService) ExportFilename(start, end time.Time) string {
	return fmt.Sprintf("reporte_expendio_%s_a_%s.csv",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
}
