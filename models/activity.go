package models

// Activity repräsentiert eine buchbare Aktivität (Paragliding, Rafting, ...).
type Activity struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	Price            Number `json:"price"`
	Currency         string `json:"currency"`
	Duration         string `json:"duration"`
	Difficulty       string `json:"difficulty"`
	Category         string `json:"category"`
	MinAge           Number `json:"min_age,omitempty"`
	MaxParticipants  Number `json:"max_participants,omitempty"`
	Description      string `json:"description,omitempty"`
	Inclusions       string `json:"inclusions,omitempty"`
	Requirements     string `json:"requirements,omitempty"`
	FeaturedImage    string `json:"featured_image,omitempty"`
	FeaturedImageURL string `json:"featured_image_url,omitempty"`
	IsFeatured       Flag   `json:"is_featured"`
	IsActive         Flag   `json:"is_active"`
	Season           string `json:"season,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}
