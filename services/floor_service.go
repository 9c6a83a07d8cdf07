package services

import (
	"errors"
	"sync"
	"time"

	"github.com/expendio/foh-app/hub"
	"github.com/expendio/foh-app/models"
	"github.com/expendio/foh-app/statemachine"
	"github.com/expendio/foh-app/utils"
	"gorm.io/gorm"
)

// CustomerInfo carries the contact details collected at check-in or
// reservation time. Phone and birth date only arrive through the customer
// self-check-in path.
type CustomerInfo struct {
	Name           string
	Email          string
	Phone          string
	BirthDate      *time.Time
	MarketingOptIn bool
}

// FloorService owns every mutation of tables, customers, visits and
// reservations. The janitor runs concurrently with staff actions, so all
// mutations serialize on one mutex; reads go straight to the database.
type FloorService struct {
	DB  *gorm.DB
	Hub *hub.Hub

	mu sync.Mutex
}

func NewFloorService(db *gorm.DB, h *hub.Hub) *FloorService {
	return &FloorService{DB: db, Hub: h}
}

// SeedTables creates the fixed floor plan on an empty tables collection.
func (fs *FloorService) SeedTables() error {
	var count int64
	if err := fs.DB.Model(&models.Table{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, seed := range models.DefaultFloorPlan() {
		table := models.Table{Name: seed.Name, Capacity: seed.Capacity, Status: models.TableAvailable}
		if err := fs.DB.Create(&table).Error; err != nil {
			return err
		}
	}
	utils.InfoLogger.Printf("Seeded %d tables", len(models.DefaultFloorPlan()))
	return nil
}

// CreateTable adds a table to the floor. Check-in addresses tables by name,
// so duplicates are rejected up front.
func (fs *FloorService) CreateTable(name string, capacity int) (*models.Table, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var existing models.Table
	err := fs.DB.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, ErrTableNameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	table := models.Table{Name: name, Capacity: capacity, Status: models.TableAvailable}
	if err := fs.DB.Create(&table).Error; err != nil {
		return nil, err
	}

	fs.broadcastTables()
	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.Name, table.Capacity)
	return &table, nil
}

// ListTables returns the whole floor.
func (fs *FloorService) ListTables() ([]models.Table, error) {
	var tables []models.Table
	if err := fs.DB.Order("name ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// TableByID returns one table.
func (fs *FloorService) TableByID(id uint) (*models.Table, error) {
	var table models.Table
	if err := fs.DB.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

// TableByName looks a table up the way check-in links address it.
func (fs *FloorService) TableByName(name string) (*models.Table, error) {
	var table models.Table
	if err := fs.DB.Where("name = ?", name).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

// CheckIn seats a party at the named table. The table must be available or
// reserved; arriving at a reserved table completes its confirmed reservation.
func (fs *FloorService) CheckIn(tableName string, info CustomerInfo, partySize int) (*models.Visit, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var visit *models.Visit
	var touchedReservations bool

	err := fs.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.Where("name = ?", tableName).First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		if !statemachine.CanCheckIn(table.Status) {
			return ErrTableUnavailable
		}
		if err := statemachine.CanTransition(table.Status, models.TableOccupied); err != nil {
			return err
		}

		customer, err := resolveCustomer(tx, info)
		if err != nil {
			return err
		}

		if table.Status == models.TableReserved {
			// The arrival completes the hold on this table.
			if err := tx.Model(&models.Reservation{}).
				Where("table_id = ? AND status = ?", table.ID, models.ReservationConfirmed).
				Update("status", models.ReservationCompleted).Error; err != nil {
				return err
			}
			touchedReservations = true
		}

		v := models.Visit{
			TableID:     table.ID,
			CustomerID:  customer.ID,
			ArrivalTime: time.Now(),
			PartySize:   partySize,
		}
		if err := tx.Create(&v).Error; err != nil {
			return err
		}

		table.Status = models.TableOccupied
		if err := tx.Save(&table).Error; err != nil {
			return err
		}

		visit = &v
		return nil
	})
	if err != nil {
		return nil, err
	}

	fs.broadcastTables()
	if touchedReservations {
		fs.broadcastReservations()
	}
	utils.InfoLogger.Printf("Check-in at table %s (party=%d, visit=%d)", tableName, partySize, visit.ID)
	return visit, nil
}

// ReleaseTable closes a visit: stamps departure and spend, sends the table to
// cleaning. Releasing an already-closed visit is rejected, re-stamping it
// would corrupt reports.
func (fs *FloorService) ReleaseTable(visitID uint, totalSpend float64) (*models.Visit, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var visit models.Visit
	err := fs.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&visit, visitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVisitNotFound
			}
			return err
		}
		if !visit.Open() {
			return ErrVisitClosed
		}

		var table models.Table
		if err := tx.First(&table, visit.TableID).Error; err != nil {
			return err
		}
		if err := statemachine.CanTransition(table.Status, models.TableCleaning); err != nil {
			return err
		}

		now := time.Now()
		visit.DepartureTime = &now
		visit.TotalSpend = &totalSpend
		if err := tx.Save(&visit).Error; err != nil {
			return err
		}

		table.Status = models.TableCleaning
		return tx.Save(&table).Error
	})
	if err != nil {
		return nil, err
	}

	fs.broadcastTables()
	utils.InfoLogger.Printf("Visit %d released (spend=%.2f), table %d now cleaning", visit.ID, totalSpend, visit.TableID)
	return &visit, nil
}

// CreateReservation holds an available table for a future party.
func (fs *FloorService) CreateReservation(tableID uint, info CustomerInfo, dateTime time.Time, partySize int) (*models.Reservation, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var reservation *models.Reservation
	err := fs.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}
		if err := statemachine.CanTransition(table.Status, models.TableReserved); err != nil {
			return ErrTableUnavailable
		}

		customer, err := resolveCustomer(tx, info)
		if err != nil {
			return err
		}

		r := models.Reservation{
			TableID:    table.ID,
			CustomerID: customer.ID,
			DateTime:   dateTime,
			PartySize:  partySize,
			Status:     models.ReservationConfirmed,
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		table.Status = models.TableReserved
		if err := tx.Save(&table).Error; err != nil {
			return err
		}

		reservation = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	fs.broadcastTables()
	fs.broadcastReservations()
	utils.InfoLogger.Printf("Reservation %d created for table %d at %s", reservation.ID, tableID, dateTime.Format(time.RFC3339))
	return reservation, nil
}

// CancelReservation voids a reservation. Unknown ids are a no-op: the slot is
// already gone, there is nothing for staff to retry.
func (fs *FloorService) CancelReservation(reservationID uint) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var cancelled bool
	err := fs.DB.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		reservation.Status = models.ReservationCancelled
		if err := tx.Save(&reservation).Error; err != nil {
			return err
		}
		cancelled = true

		var table models.Table
		if err := tx.First(&table, reservation.TableID).Error; err != nil {
			return err
		}
		if table.Status == models.TableReserved {
			table.Status = models.TableAvailable
			return tx.Save(&table).Error
		}
		return nil
	})
	if err != nil {
		return err
	}

	if cancelled {
		fs.broadcastTables()
		fs.broadcastReservations()
		utils.InfoLogger.Printf("Reservation %d cancelled", reservationID)
	}
	return nil
}

// MarkReservationArrived seats the reserved party, reusing the check-in path
// with the reservation's customer and party size.
func (fs *FloorService) MarkReservationArrived(reservationID uint) (*models.Visit, error) {
	var reservation models.Reservation
	if err := fs.DB.Preload("Table").Preload("Customer").First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if reservation.Status != models.ReservationConfirmed {
		return nil, ErrNotConfirmed
	}

	info := CustomerInfo{
		Name:  reservation.Customer.Name,
		Email: reservation.Customer.Email,
	}
	return fs.CheckIn(reservation.Table.Name, info, reservation.PartySize)
}

// ActiveVisitByTable returns the table's open visit, if any.
func (fs *FloorService) ActiveVisitByTable(tableID uint) (*models.Visit, error) {
	var visit models.Visit
	err := fs.DB.Preload("Customer").
		Where("table_id = ? AND departure_time IS NULL", tableID).
		First(&visit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

// ActiveReservationByTable returns the table's confirmed reservation, if any.
func (fs *FloorService) ActiveReservationByTable(tableID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := fs.DB.Preload("Customer").
		Where("table_id = ? AND status = ?", tableID, models.ReservationConfirmed).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

// UpcomingReservations lists confirmed, future-dated reservations with table
// and customer attached, soonest first. This is the reservations snapshot.
func (fs *FloorService) UpcomingReservations() ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := fs.DB.Preload("Table").Preload("Customer").
		Where("status = ? AND date_time > ?", models.ReservationConfirmed, time.Now()).
		Order("date_time ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// FreeOneCleaningTable picks one cleaning table with the supplied index
// chooser and marks it available. Returns nil when nothing is cleaning.
// Called by the janitor, which holds no lock of its own.
func (fs *FloorService) FreeOneCleaningTable(pick func(n int) int) (*models.Table, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var cleaning []models.Table
	if err := fs.DB.Where("status = ?", models.TableCleaning).Find(&cleaning).Error; err != nil {
		return nil, err
	}
	if len(cleaning) == 0 {
		return nil, nil
	}

	table := cleaning[pick(len(cleaning))]
	if err := statemachine.CanTransition(table.Status, models.TableAvailable); err != nil {
		return nil, err
	}
	table.Status = models.TableAvailable
	if err := fs.DB.Save(&table).Error; err != nil {
		return nil, err
	}

	fs.broadcastTables()
	return &table, nil
}

// resolveCustomer finds the customer by phone (self-check-in) or email (staff
// flow), creating the record on first contact. Optional fields collected
// later, like phone or birth date, are filled in on the existing record.
func resolveCustomer(tx *gorm.DB, info CustomerInfo) (*models.Customer, error) {
	var customer models.Customer
	var err error
	if info.Phone != "" {
		err = tx.Where("phone = ?", info.Phone).First(&customer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Where("email = ?", info.Email).First(&customer).Error
		}
	} else {
		err = tx.Where("email = ?", info.Email).First(&customer).Error
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = models.Customer{
			Name:           info.Name,
			Email:          info.Email,
			MarketingOptIn: info.MarketingOptIn,
		}
		if info.Phone != "" {
			customer.Phone = &info.Phone
		}
		customer.BirthDate = info.BirthDate
		if err := tx.Create(&customer).Error; err != nil {
			return nil, err
		}
		return &customer, nil
	}
	if err != nil {
		return nil, err
	}

	changed := false
	if customer.Phone == nil && info.Phone != "" {
		customer.Phone = &info.Phone
		changed = true
	}
	if customer.BirthDate == nil && info.BirthDate != nil {
		customer.BirthDate = info.BirthDate
		changed = true
	}
	if info.MarketingOptIn && !customer.MarketingOptIn {
		customer.MarketingOptIn = true
		changed = true
	}
	if changed {
		if err := tx.Save(&customer).Error; err != nil {
			return nil, err
		}
	}
	return &customer, nil
}

func (fs *FloorService) broadcastTables() {
	if fs.Hub == nil {
		return
	}
	tables, err := fs.ListTables()
	if err != nil {
		utils.ErrorLogger.Printf("Error building table snapshot: %v", err)
		return
	}
	fs.Hub.Publish(hub.TopicTables, hub.Message{
		Event: hub.EventTableSnapshot,
		Data:  tables,
	})
}

func (fs *FloorService) broadcastReservations() {
	if fs.Hub == nil {
		return
	}
	reservations, err := fs.UpcomingReservations()
	if err != nil {
		utils.ErrorLogger.Printf("Error building reservation snapshot: %v", err)
		return
	}
	fs.Hub.Publish(hub.TopicReservations, hub.Message{
		Event: hub.EventReservationSnapshot,
		Data:  reservations,
	})
}
