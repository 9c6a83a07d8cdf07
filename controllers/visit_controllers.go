package controllers

import (
	"net/http"

	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
)

type VisitController struct {
	Floor *services.FloorService
}

func NewVisitController(floor *services.FloorService) *VisitController {
	return &VisitController{Floor: floor}
}

// ReleaseTable -> close a visit: stamp departure and total spend, send the
// table to cleaning.
func (vc *VisitController) ReleaseTable(c *gin.Context) {
	visitID, ok := parseID(c, "visit_id")
	if !ok {
		return
	}

	var req struct {
		TotalSpend float64 `json:"total_spend" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	visit, err := vc.Floor.ReleaseTable(visitID, req.TotalSpend)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Mesa liberada", visit)
}
