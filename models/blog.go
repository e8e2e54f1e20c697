package models

// BlogSection ist ein Abschnitt im Inhalt eines Blogposts.
type BlogSection struct {
	Heading   string `json:"heading"`
	Paragraph string `json:"paragraph"`
}

// Blog repräsentiert einen Blogpost.
type Blog struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle,omitempty"`
	Description string        `json:"description"`
	Excerpt     string        `json:"excerpt,omitempty"`
	Author      string        `json:"author,omitempty"`
	Slug        string        `json:"slug"`
	IsActive    Flag          `json:"is_active"`
	Image       string        `json:"image,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
	Content     []BlogSection `json:"content,omitempty"`
	Conclusion  string        `json:"conclusion,omitempty"`
	CreatedAt   string        `json:"created_at,omitempty"`
	UpdatedAt   string        `json:"updated_at,omitempty"`
}
