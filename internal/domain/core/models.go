package core

import "time"

type Employee struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	FullName    string     `json:"fullName"`
	Nickname    string     `json:"nickname"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	VenueID     string     `json:"venueId"`
	Status      string     `json:"status"`
	JoinDate    *time.Time `json:"joinDate,omitempty"`
	BankAccount string     `json:"bankAccount,omitempty"`
	NationalID  string     `json:"nationalId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Venue struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
