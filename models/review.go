package models

// Review ist eine Kundenbewertung. Status ist nil, wenn die API das Feld nicht liefert.
type Review struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Review       string `json:"review"`
	Comment      string `json:"comment,omitempty"`
	Rating       Number `json:"rating"`
	Status       *Flag  `json:"status,omitempty"`
	Trek         string `json:"trek,omitempty"`
	TrekName     string `json:"trek_name,omitempty"`
	ActivityName string `json:"activity_name,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Approved meldet, ob die Bewertung freigegeben ist.
func (r Review) Approved() bool {
	return r.Status != nil && bool(*r.Status)
}

// Pending meldet, ob die Bewertung ausdrücklich noch nicht freigegeben ist.
func (r Review) Pending() bool {
	return r.Status != nil && !bool(*r.Status)
}

// ReviewInput ist der Body für neue Bewertungen von der öffentlichen Seite.
type ReviewInput struct {
	Name   string `json:"name" binding:"required,max=120"`
	Email  string `json:"email" binding:"required,email"`
	Review string `json:"review" binding:"required,max=5000"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Status *bool  `json:"status,omitempty"`
}
