package controllers

import (
	"net/http"
	"os"

	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
)

type TableController struct {
	Floor *services.FloorService
}

func NewTableController(floor *services.FloorService) *TableController {
	return &TableController{Floor: floor}
}

// GetAllTables -> the whole floor, for the dashboard grid.
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Floor.ListTables()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> add a table to the floor plan.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Capacity int    `json:"capacity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Floor.CreateTable(req.Name, req.Capacity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetTableDetail -> one table plus its open visit and confirmed reservation,
// backing the dashboard's table modal.
func (tc *TableController) GetTableDetail(c *gin.Context) {
	id, ok := parseID(c, "table_id")
	if !ok {
		return
	}

	table, err := tc.Floor.TableByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	visit, err := tc.Floor.ActiveVisitByTable(table.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	reservation, err := tc.Floor.ActiveReservationByTable(table.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table detail", gin.H{
		"table":              table,
		"active_visit":       visit,
		"active_reservation": reservation,
	})
}

// GetTableQRCodes -> per-table check-in links plus the external QR image URL,
// for the printable QR sheet.
func (tc *TableController) GetTableQRCodes(c *gin.Context) {
	tables, err := tc.Floor.ListTables()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	type qrEntry struct {
		TableName  string `json:"table_name"`
		CheckInURL string `json:"check_in_url"`
		QRImageURL string `json:"qr_image_url"`
	}
	entries := make([]qrEntry, 0, len(tables))
	for _, table := range tables {
		checkInURL := utils.CheckInURL(baseURL, table.Name)
		entries = append(entries, qrEntry{
			TableName:  table.Name,
			CheckInURL: checkInURL,
			QRImageURL: utils.QRImageURL(checkInURL),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "QR codes", entries)
}
