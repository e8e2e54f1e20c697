package models

// Trek repräsentiert einen Trek oder ein Reisepaket der Trek-API.
type Trek struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	DataType         string   `json:"data_type"` // trek, package
	Location         string   `json:"location"`
	Price            Number   `json:"price"`
	Currency         string   `json:"currency"`
	Duration         string   `json:"duration"`
	Difficulty       string   `json:"difficulty"`
	Type             string   `json:"type"`
	DistanceKM       Number   `json:"distance_km"`
	Description      string   `json:"description,omitempty"`
	Images           []string `json:"images,omitempty"`
	FeaturedImageURL string   `json:"featured_image_url,omitempty"`
	ImageURLs        []string `json:"image_urls,omitempty"`
	IsFeatured       Flag     `json:"is_featured"`
	IsActive         Flag     `json:"is_active"`
	TrekDays         DayList  `json:"trek_days"`
	CreatedAt        string   `json:"created_at,omitempty"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

// Trek-Typen für data_type.
const (
	DataTypeTrek    = "trek"
	DataTypePackage = "package"
)
