package events

import "time"

// Event is a community event shown on the public events page and managed
// through the admin back-office. Date and Time stay as the ISO strings the
// site submits, ordering relies on the ISO date format.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Date        string    `json:"date"`
	Time        string    `json:"time,omitempty"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Link        string    `json:"link,omitempty"`
	Category    string    `json:"category"`
	Image       string    `json:"image,omitempty"`
	AdminID     string    `json:"adminId,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PublicView strips the admin linkage for the public listing
func (e Event) PublicView() Event {
	e.AdminID = ""
	e.CreatedBy = ""
	return e
}
