package models

import "time"

// Snapshot protokolliert einen exportierten Stand einer Collection der Trek-API.
type Snapshot struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Collection string `json:"collection" gorm:"index;not null"` // treks, activities, blogs, reviews
	ItemCount  int    `json:"item_count"`
	Checksum   string `json:"checksum" gorm:"size:64"` // sha256 über das unkomprimierte JSON
	ObjectKey  string `json:"object_key" gorm:"uniqueIndex;not null"`
	ObjectURL  string `json:"object_url,omitempty"`
	SizeBytes  int    `json:"size_bytes"`
}

// TableName gibt explizit den Tabellennamen an.
func (Snapshot) TableName() string {
	return "catalog_snapshots"
}
