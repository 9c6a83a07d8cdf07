package models

import "time"

// Table status values. Transitions between them are validated by the
// statemachine package; nothing should write these fields directly.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
	TableCleaning  = "cleaning"
)

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Status    string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// SeedTable is one entry of the fixed floor plan created on first boot.
type SeedTable struct {
	Name     string
	Capacity int
}

// DefaultFloorPlan mirrors the venue's physical layout.
func DefaultFloorPlan() []SeedTable {
	return []SeedTable{
		{Name: "F1", Capacity: 4},
		{Name: "F2", Capacity: 4},
		{Name: "F3", Capacity: 2},
		{Name: "G4", Capacity: 6},
		{Name: "G5", Capacity: 6},
		{Name: "AC3", Capacity: 8},
		{Name: "B1", Capacity: 2},
		{Name: "B2", Capacity: 2},
	}
}
