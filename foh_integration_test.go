package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/expendio/foh-app/hub"
	"github.com/expendio/foh-app/models"
	"github.com/expendio/foh-app/router"
	"github.com/expendio/foh-app/services"
	"github.com/expendio/foh-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestFullServiceDay walks one evening of service end to end through the HTTP
// surface: staff log in, a walk-in party checks in via the QR flow, a second
// party reserves and arrives, both tables are released, the janitor frees them
// and the night shows up in the report.
func TestFullServiceDay(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Table{}, &models.Customer{}, &models.Visit{}, &models.Reservation{},
	))

	floorHub := hub.New(utils.InfoLogger)
	floor := services.NewFloorService(db, floorHub)
	require.NoError(t, floor.SeedTables())

	r := router.SetupRouter(router.Deps{
		Floor:    floor,
		OTP:      services.NewOTPService(db),
		Reports:  services.NewReportService(db),
		Insights: &services.InsightsService{},
		Hub:      floorHub,
	})

	do := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var payload []byte
		if body != nil {
			payload, err = json.Marshal(body)
			require.NoError(t, err)
		}
		req, err := http.NewRequest(method, path, bytes.NewBuffer(payload))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	body := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		return response
	}

	// Staff open the shift.
	w := do("POST", "/login", "", map[string]string{"passcode": "1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := body(w)["data"].(map[string]interface{})["token"].(string)

	// The floor starts fully available.
	w = do("GET", "/staff/tables", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tables := body(w)["data"].([]interface{})
	require.Len(t, tables, len(models.DefaultFloorPlan()))
	for _, raw := range tables {
		table := raw.(map[string]interface{})
		assert.Equal(t, models.TableAvailable, table["status"])
	}

	// A walk-in scans the F1 QR code and checks in.
	w = do("GET", "/checkin/table?mesa=F1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do("POST", "/checkin", "", map[string]interface{}{
		"mesa":       "F1",
		"name":       "Carlos Ruiz",
		"email":      "carlos.ruiz@email.com",
		"party_size": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	walkInVisitID := uint(body(w)["data"].(map[string]interface{})["id"].(float64))

	// Another party reserves G4 for tonight and arrives.
	g4, err := floor.TableByName("G4")
	require.NoError(t, err)
	tonight := time.Now().Add(2 * time.Hour)
	w = do("POST", "/staff/reservations", token, map[string]interface{}{
		"table_id":   g4.ID,
		"name":       "Ana García",
		"email":      "ana.garcia@email.com",
		"date":       tonight.Format("2006-01-02"),
		"time":       tonight.Format("15:04"),
		"party_size": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reservationID := uint(body(w)["data"].(map[string]interface{})["id"].(float64))

	w = do("POST", "/staff/reservations/"+fmt.Sprint(reservationID)+"/arrived", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reservedVisitID := uint(body(w)["data"].(map[string]interface{})["id"].(float64))

	// Both parties leave; staff release the tables with the night's spend.
	w = do("POST", "/staff/visits/"+fmt.Sprint(walkInVisitID)+"/release", token,
		map[string]interface{}{"total_spend": 640.00})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do("POST", "/staff/visits/"+fmt.Sprint(reservedVisitID)+"/release", token,
		map[string]interface{}{"total_spend": 1280.50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Both tables now wait for the janitor.
	for _, name := range []string{"F1", "G4"} {
		table, err := floor.TableByName(name)
		require.NoError(t, err)
		assert.Equal(t, models.TableCleaning, table.Status)
	}

	// Two janitor ticks bus both tables.
	janitor := services.NewJanitor(floor)
	janitor.Rand = rand.New(rand.NewSource(1))
	janitor.Tick()
	janitor.Tick()

	for _, name := range []string{"F1", "G4"} {
		table, err := floor.TableByName(name)
		require.NoError(t, err)
		assert.Equal(t, models.TableAvailable, table.Status)
	}

	// The night shows up in the report.
	today := time.Now().Format("2006-01-02")
	w = do("GET", "/staff/reports/visits?start="+today+"&end="+today, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	visits := body(w)["data"].([]interface{})
	assert.Len(t, visits, 2)

	w = do("GET", "/staff/reports/visits.csv?start="+today+"&end="+today, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Carlos Ruiz")
	assert.Contains(t, w.Body.String(), "1280.50")
}
