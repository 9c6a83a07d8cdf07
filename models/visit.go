package models

import "time"

// Visit is one continuous occupancy of a table, from arrival to departure.
// DepartureTime and TotalSpend are stamped exactly once, when staff release
// the table. At most one visit per table may have DepartureTime unset.
type Visit struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TableID       uint       `gorm:"not null;index" json:"table_id"`
	Table         Table      `gorm:"foreignKey:TableID" json:"table"`
	CustomerID    uint       `gorm:"not null;index" json:"customer_id"`
	Customer      Customer   `gorm:"foreignKey:CustomerID" json:"customer"`
	ArrivalTime   time.Time  `gorm:"not null;index" json:"arrival_time"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	PartySize     int        `gorm:"not null" json:"party_size"`
	TotalSpend    *float64   `gorm:"type:decimal(10,2)" json:"total_spend,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

// Open reports whether the party is still at the table.
func (v *Visit) Open() bool {
	return v.DepartureTime == nil
}
