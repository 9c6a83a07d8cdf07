package controllers

import (
	"net/http"

	"github.com/expendio/foh-app/hub"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	Hub *hub.Hub
}

func NewWSController(h *hub.Hub) *WSController {
	return &WSController{Hub: h}
}

// Handler -> websocket endpoint pushing table and reservation snapshots to
// dashboard clients. The first frames after connect carry the current state.
func (wc *WSController) Handler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists || roleInterface != utils.RoleStaff {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wc.Hub.RegisterClient(ws, hub.TopicTables, hub.TopicReservations)

	// Clients only listen; drain until disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.UnregisterClient(ws)
}
