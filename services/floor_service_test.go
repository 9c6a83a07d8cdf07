package services

import (
	"testing"
	"time"

	"github.com/expendio/foh-app/hub"
	"github.com/expendio/foh-app/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFloor(t *testing.T) (*FloorService, *hub.Hub) {
	t.Helper()
	h := hub.New(logrus.New())
	return NewFloorService(setupTestDB(t), h), h
}

func anaInfo() CustomerInfo {
	return CustomerInfo{Name: "Ana", Email: "a@x.com"}
}

func TestCheckInOnFreeTable(t *testing.T) {
	fs, _ := newFloor(t)
	seedTable(t, fs.DB, "F1", models.TableAvailable, 4)

	visit, err := fs.CheckIn("F1", anaInfo(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, visit.PartySize)
	assert.Nil(t, visit.DepartureTime)

	table, err := fs.TableByName("F1")
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, table.Status)

	var customer models.Customer
	require.NoError(t, fs.DB.Where("email = ?", "a@x.com").First(&customer).Error)
	assert.Equal(t, "Ana", customer.Name)
}

func TestCheckInUnknownTable(t *testing.T) {
	fs, _ := newFloor(t)

	_, err := fs.CheckIn("ZZ9", anaInfo(), 2)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestCheckInOnUnavailableTable(t *testing.T) {
	fs, _ := newFloor(t)
	seedTable(t, fs.DB, "F1", models.TableOccupied, 4)
	seedTable(t, fs.DB, "F2", models.TableCleaning, 4)

	for _, name := range []string{"F1", "F2"} {
		_, err := fs.CheckIn(name, anaInfo(), 2)
		assert.ErrorIs(t, err, ErrTableUnavailable, name)
	}

	// No visit may exist after a failed check-in.
	var count int64
	fs.DB.Model(&models.Visit{}).Count(&count)
	assert.Zero(t, count)
}

func TestCheckInOnReservedTableCompletesReservation(t *testing.T) {
	fs, _ := newFloor(t)
	table := seedTable(t, fs.DB, "G4", models.TableAvailable, 6)

	_, err := fs.CreateReservation(table.ID, anaInfo(), time.Now().Add(2*time.Hour), 5)
	require.NoError(t, err)

	visit, err := fs.CheckIn("G4", anaInfo(), 5)
	require.NoError(t, err)
	assert.NotNil(t, visit)

	updated, err := fs.TableByID(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, updated.Status)

	var reservation models.Reservation
	require.NoError(t, fs.DB.Where("table_id = ?", table.ID).First(&reservation).Error)
	assert.Equal(t, models.ReservationCompleted, reservation.Status)
}

func TestReleaseTable(t *testing.T) {
	fs, _ := newFloor(t)
	seedTable(t, fs.DB, "B1", models.TableAvailable, 2)

	visit, err := fs.CheckIn("B1", anaInfo(), 2)
	require.NoError(t, err)

	released, err := fs.ReleaseTable(visit.ID, 500)
	require.NoError(t, err)
	assert.NotNil(t, released.DepartureTime)
	require.NotNil(t, released.TotalSpend)
	assert.Equal(t, 500.0, *released.TotalSpend)

	table, err := fs.TableByName("B1")
	require.NoError(t, err)
	assert.Equal(t, models.TableCleaning, table.Status)
}

func TestReleaseUnknownVisit(t *testing.T) {
	fs, _ := newFloor(t)

	_, err := fs.ReleaseTable(99, 100)
	assert.ErrorIs(t, err, ErrVisitNotFound)
}

func TestDoubleReleaseRejected(t *testing.T) {
	fs, _ := newFloor(t)
	seedTable(t, fs.DB, "B1", models.TableAvailable, 2)

	visit, err := fs.CheckIn("B1", anaInfo(), 2)
	require.NoError(t, err)
	_, err = fs.ReleaseTable(visit.ID, 500)
	require.NoError(t, err)

	_, err = fs.ReleaseTable(visit.ID, 900)
	assert.ErrorIs(t, err, ErrVisitClosed)

	// First stamp survives.
	var stored models.Visit
	require.NoError(t, fs.DB.First(&stored, visit.ID).Error)
	assert.Equal(t, 500.0, *stored.TotalSpend)
}

func TestCreateReservationOnReservedTableFails(t *testing.T) {
	fs, _ := newFloor(t)
	table := seedTable(t, fs.DB, "G5", models.TableAvailable, 6)

	_, err := fs.CreateReservation(table.ID, anaInfo(), time.Now().Add(time.Hour), 4)
	require.NoError(t, err)

	_, err = fs.CreateReservation(table.ID, CustomerInfo{Name: "Juan", Email: "j@x.com"}, time.Now().Add(2*time.Hour), 2)
	assert.ErrorIs(t, err, ErrTableUnavailable)

	// Status unchanged, still just one confirmed hold.
	updated, _ := fs.TableByID(table.ID)
	assert.Equal(t, models.TableReserved, updated.Status)
	var count int64
	fs.DB.Model(&models.Reservation{}).Where("status = ?", models.ReservationConfirmed).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCancelReservationRevertsTable(t *testing.T) {
	fs, _ := newFloor(t)
	table := seedTable(t, fs.DB, "G4", models.TableAvailable, 6)

	reservation, err := fs.CreateReservation(table.ID, anaInfo(), time.Now().Add(time.Hour), 4)
	require.NoError(t, err)

	require.NoError(t, fs.CancelReservation(reservation.ID))

	updated, _ := fs.TableByID(table.ID)
	assert.Equal(t, models.TableAvailable, updated.Status)

	var stored models.Reservation
	require.NoError(t, fs.DB.First(&stored, reservation.ID).Error)
	assert.Equal(t, models.ReservationCancelled, stored.Status)
}

func TestCancelUnknownReservationIsNoop(t *testing.T) {
	fs, _ := newFloor(t)
	assert.NoError(t, fs.CancelReservation(424242))
}

func TestMarkReservationArrived(t *testing.T) {
	fs, _ := newFloor(t)
	table := seedTable(t, fs.DB, "AC3", models.TableAvailable, 8)

	reservation, err := fs.CreateReservation(table.ID, anaInfo(), time.Now().Add(time.Hour), 6)
	require.NoError(t, err)

	visit, err := fs.MarkReservationArrived(reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, visit.PartySize)

	updated, _ := fs.TableByID(table.ID)
	assert.Equal(t, models.TableOccupied, updated.Status)

	var stored models.Reservation
	require.NoError(t, fs.DB.First(&stored, reservation.ID).Error)
	assert.Equal(t, models.ReservationCompleted, stored.Status)

	// Completed reservations cannot arrive twice.
	_, err = fs.MarkReservationArrived(reservation.ID)
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestOneOpenVisitPerTable(t *testing.T) {
	fs, _ := newFloor(t)
	seedTable(t, fs.DB, "F1", models.TableAvailable, 4)

	visit, err := fs.CheckIn("F1", anaInfo(), 2)
	require.NoError(t, err)

	// Occupied table rejects a second party.
	_, err = fs.CheckIn("F1", CustomerInfo{Name: "Juan", Email: "j@x.com"}, 3)
	assert.ErrorIs(t, err, ErrTableUnavailable)

	var open int64
	fs.DB.Model(&models.Visit{}).Where("departure_time IS NULL").Count(&open)
	assert.EqualValues(t, 1, open)

	_, err = fs.ReleaseTable(visit.ID, 120)
	require.NoError(t, err)
	fs.DB.Model(&models.Visit{}).Where("departure_time IS NULL").Count(&open)
	assert.Zero(t, open)
}

func TestActiveLookups(t *testing.T) {
	fs, _ := newFloor(t)
	table := seedTable(t, fs.DB, "F3", models.TableAvailable, 2)

	visit, err := fs.ActiveVisitByTable(table.ID)
	require.NoError(t, err)
	assert.Nil(t, visit)

	created, err := fs.CheckIn("F3", anaInfo(), 2)
	require.NoError(t, err)

	visit, err = fs.ActiveVisitByTable(table.ID)
	require.NoError(t, err)
	require.NotNil(t, visit)
	assert.Equal(t, created.ID, visit.ID)
	assert.Equal(t, "Ana", visit.Customer.Name)
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	fs, _ := newFloor(t)

	_, err := fs.CreateTable("F1", 4)
	require.NoError(t, err)
	_, err = fs.CreateTable("F1", 6)
	assert.ErrorIs(t, err, ErrTableNameTaken)
}

func TestSeedTablesIdempotent(t *testing.T) {
	fs, _ := newFloor(t)

	require.NoError(t, fs.SeedTables())
	require.NoError(t, fs.SeedTables())

	tables, err := fs.ListTables()
	require.NoError(t, err)
	assert.Len(t, tables, len(models.DefaultFloorPlan()))
}

func TestMutationsBroadcastSnapshots(t *testing.T) {
	fs, h := newFloor(t)
	table := seedTable(t, fs.DB, "F1", models.TableAvailable, 4)

	var tableMsgs, reservationMsgs []hub.Message
	h.Subscribe(hub.TopicTables, func(m hub.Message) { tableMsgs = append(tableMsgs, m) })
	h.Subscribe(hub.TopicReservations, func(m hub.Message) { reservationMsgs = append(reservationMsgs, m) })

	_, err := fs.CreateReservation(table.ID, anaInfo(), time.Now().Add(time.Hour), 2)
	require.NoError(t, err)

	// One snapshot per mutated collection.
	assert.Len(t, tableMsgs, 1)
	assert.Len(t, reservationMsgs, 1)
	assert.Equal(t, hub.EventTableSnapshot, tableMsgs[0].Event)

	_, err = fs.CheckIn("F1", anaInfo(), 2)
	require.NoError(t, err)
	assert.Len(t, tableMsgs, 2)
	assert.Len(t, reservationMsgs, 2)
}
