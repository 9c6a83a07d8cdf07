package controllers

import (
	"net/http"
	"time"

	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
)

type ReservationController struct {
	Floor *services.FloorService
}

func NewReservationController(floor *services.FloorService) *ReservationController {
	return &ReservationController{Floor: floor}
}

// GetUpcoming -> confirmed future reservations, soonest first.
func (rc *ReservationController) GetUpcoming(c *gin.Context) {
	reservations, err := rc.Floor.UpcomingReservations()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Upcoming reservations", reservations)
}

// Create -> hold an available table. Date and time come separately, the way
// the reservation form collects them.
func (rc *ReservationController) Create(c *gin.Context) {
	var req struct {
		TableID   uint   `json:"table_id" binding:"required"`
		Name      string `json:"name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Date      string `json:"date" binding:"required"` // YYYY-MM-DD
		Time      string `json:"time" binding:"required"` // HH:MM
		PartySize int    `json:"party_size" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	dateTime, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	info := services.CustomerInfo{Name: req.Name, Email: req.Email}
	reservation, err := rc.Floor.CreateReservation(req.TableID, info, dateTime, req.PartySize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Reserva confirmada", reservation)
}

// Cancel -> void a reservation; unknown ids succeed silently.
func (rc *ReservationController) Cancel(c *gin.Context) {
	id, ok := parseID(c, "reservation_id")
	if !ok {
		return
	}

	if err := rc.Floor.CancelReservation(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reserva cancelada", nil)
}

// MarkArrived -> seat the reserved party via the check-in path.
func (rc *ReservationController) MarkArrived(c *gin.Context) {
	id, ok := parseID(c, "reservation_id")
	if !ok {
		return
	}

	visit, err := rc.Floor.MarkReservationArrived(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Llegada registrada", visit)
}
