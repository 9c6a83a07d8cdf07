package controllers

import (
	"net/http"
	"strconv"

	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
)

// CheckInController serves the QR check-in flow: resolving the scanned link
// to a table, and seating the party.
type CheckInController struct {
	Floor *services.FloorService
}

func NewCheckInController(floor *services.FloorService) *CheckInController {
	return &CheckInController{Floor: floor}
}

// ResolveTable -> the table a scanned QR link points at, accepting both the
// current `?mesa=` form and the legacy hash-embedded form.
func (cc *CheckInController) ResolveTable(c *gin.Context) {
	name := utils.TableNameFromQuery(c.Request.URL.Query())
	if name == "" {
		utils.RespondError(c, http.StatusBadRequest, services.ErrTableNotFound)
		return
	}

	table, err := cc.Floor.TableByName(name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	reservation, err := cc.Floor.ActiveReservationByTable(table.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Check-in table", gin.H{
		"table":              table,
		"active_reservation": reservation,
	})
}

// CheckIn -> seat a party at the named table.
func (cc *CheckInController) CheckIn(c *gin.Context) {
	var req struct {
		TableName string `json:"mesa" binding:"required"`
		Name      string `json:"name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Phone     string `json:"phone"`
		PartySize int    `json:"party_size" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	info := services.CustomerInfo{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	visit, err := cc.Floor.CheckIn(req.TableName, info, req.PartySize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "¡Check-in exitoso! Disfrute su estancia.", visit)
}

// parseID reads a numeric path parameter; responds 400 on garbage.
func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return uint(id), true
}
