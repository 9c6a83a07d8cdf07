package models

import "time"

type Customer struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Email          string     `gorm:"type:varchar(255);index;not null" json:"email"`
	Phone          *string    `gorm:"type:varchar(30);index" json:"phone,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	MarketingOptIn bool       `gorm:"not null;default:false" json:"marketing_opt_in"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}
