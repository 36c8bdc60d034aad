package domain

import "time"

// User is the participant directory entry behind an authenticated
// principal. Profile management lives elsewhere; the engine only needs
// identity fields for exports and notifications.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // student, alumni, admin
	CreatedAt time.Time `json:"createdAt"`
}

// Company is a job posting owner.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Job is a board posting. Deleting a company cascades to its jobs.
type Job struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	Title       string    `json:"title"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
