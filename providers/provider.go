package providers

import (
	"context"
	"net/url"
	"strconv"

	"jamjam-trek/models"
)

// Session ist der Anmeldezustand eines Admins. Er wird explizit pro Anfrage
// weitergereicht statt global abgelegt.
type Session struct {
	Token string
	Email string
}

// Valid meldet, ob ein Token vorhanden ist.
func (s Session) Valid() bool {
	return s.Token != ""
}

// Catalog ist das Interface für eine Quelle der öffentlichen Inhalte.
type Catalog interface {
	Treks(ctx context.Context, q TrekQuery) ([]models.Trek, error)
	Activities(ctx context.Context, q ActivityQuery) ([]models.Activity, error)
	Blogs(ctx context.Context, q BlogQuery) ([]models.Blog, error)
	PublishableReviews(ctx context.Context, perPage int) ([]models.Review, error)
}

// Dashboard ist das Interface für die Listen, aus denen die Admin-Statistik berechnet wird.
type Dashboard interface {
	Treks(ctx context.Context, q TrekQuery) ([]models.Trek, error)
	Blogs(ctx context.Context, q BlogQuery) ([]models.Blog, error)
	Reviews(ctx context.Context) ([]models.Review, error)
}

// TrekQuery filtert /treks serverseitig.
type TrekQuery struct {
	DataType   string // trek, package
	IsActive   *bool
	IsFeatured *bool
}

// Values kodiert die Query wie die Laravel-API sie erwartet (1/0 für Flags).
func (q TrekQuery) Values() url.Values {
	v := url.Values{}
	if q.DataType != "" {
		v.Set("data_type", q.DataType)
	}
	setFlag(v, "is_active", q.IsActive)
	setFlag(v, "is_featured", q.IsFeatured)
	return v
}

// ActivityQuery filtert /activities serverseitig.
type ActivityQuery struct {
	Category string
	IsActive *bool
}

func (q ActivityQuery) Values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	setFlag(v, "is_active", q.IsActive)
	return v
}

// BlogQuery filtert /blogs serverseitig. is_published wird als true/false gesendet.
type BlogQuery struct {
	IsPublished *bool
	PerPage     int
}

func (q BlogQuery) Values() url.Values {
	v := url.Values{}
	if q.IsPublished != nil {
		v.Set("is_published", strconv.FormatBool(*q.IsPublished))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// Bool ist eine kleine Hilfe für die optionalen Query-Flags.
func Bool(b bool) *bool {
	return &b
}

func setFlag(v url.Values, key string, b *bool) {
	if b == nil {
		return
	}
	if *b {
		v.Set(key, "1")
	} else {
		v.Set(key, "0")
	}
}
