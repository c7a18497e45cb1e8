package inquiries

import "time"

// Inquiry is a contact form submission from the public site.
type Inquiry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CompanyName string    `json:"companyName"`
	Country     string    `json:"country"`
	JobTitle    string    `json:"jobTitle,omitempty"`
	JobDetails  string    `json:"jobDetails"`
	CreatedAt   time.Time `json:"createdAt"`
}
