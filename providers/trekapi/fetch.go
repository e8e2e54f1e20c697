package trekapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"jamjam-trek/models"
	"jamjam-trek/normalize"
	"jamjam-trek/providers"
)

// Treks lädt Treks und Pakete. Der Reiseplan jedes Eintrags läuft durch den Day-List-Decoder.
func (c *Client) Treks(ctx context.Context, q providers.TrekQuery) ([]models.Trek, error) {
	body, err := c.get(ctx, "/treks", "/treks", q.Values())
	if err != nil {
		return nil, withFallback(err, "Failed to fetch treks")
	}

	return decodeTreks(c.Logger, c.normalized(body, "treks")), nil
}

// Activities lädt die Aktivitäten.
func (c *Client) Activities(ctx context.Context, q providers.ActivityQuery) ([]models.Activity, error) {
	body, err := c.get(ctx, "/activities", "/activities", q.Values())
	if err != nil {
		return nil, withFallback(err, "Failed to fetch activities")
	}
	return decodeItems[models.Activity](c.Logger, c.normalized(body, "activities"), "activities"), nil
}

// Blogs lädt die Blogposts.
func (c *Client) Blogs(ctx context.Context, q providers.BlogQuery) ([]models.Blog, error) {
	body, err := c.get(ctx, "/blogs", "/blogs", q.Values())
	if err != nil {
		return nil, withFallback(err, "Failed to fetch blogs")
	}
	return decodeItems[models.Blog](c.Logger, c.normalized(body, "blogs"), "blogs"), nil
}

// Reviews lädt alle Bewertungen inklusive nicht freigegebener (Admin).
func (c *Client) Reviews(ctx context.Context) ([]models.Review, error) {
	body, err := c.get(ctx, "/reviews", "/reviews", nil)
	if err != nil {
		return nil, withFallback(err, "Failed to fetch reviews")
	}
	return decodeItems[models.Review](c.Logger, c.normalized(body, "reviews"), "reviews"), nil
}

// LatestReviews lädt die neuesten Bewertungen. Fehler führen zu einer leeren Liste.
func (c *Client) LatestReviews(ctx context.Context) ([]models.Review, error) {
	body, err := c.get(ctx, "/reviews/latest", "/reviews/latest", nil)
	if err != nil {
		c.Logger.Warn("Neueste Bewertungen nicht verfügbar", zap.Error(err))
		return []models.Review{}, nil
	}
	return decodeItems[models.Review](c.Logger, c.normalized(body, "reviews"), "reviews"), nil
}

// PublishableReviews lädt die freigegebenen Bewertungen für die öffentliche Seite.
// Fehler führen zu einer leeren Liste.
func (c *Client) PublishableReviews(ctx context.Context, perPage int) ([]models.Review, error) {
	q := url.Values{}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	body, err := c.get(ctx, "/reviews/publishable", "/reviews/publishable", q)
	if err != nil {
		c.Logger.Warn("Veröffentlichbare Bewertungen nicht verfügbar", zap.Error(err))
		return []models.Review{}, nil
	}
	return decodeItems[models.Review](c.Logger, c.normalized(body, "reviews"), "reviews"), nil
}

// Blog lädt einen einzelnen Blogpost über seinen Slug.
func (c *Client) Blog(ctx context.Context, slug string) (*models.Blog, error) {
	body, err := c.get(ctx, "/blogs/:slug", "/blogs/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, withFallback(err, "Failed to fetch blog")
	}

	raw, err := decodeAny(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode blog: %w", err)
	}
	record := normalize.Single(raw)
	if len(record) == 0 {
		return nil, ErrNotFound
	}

	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blog: %w", err)
	}
	var blog models.Blog
	if err := json.Unmarshal(b, &blog); err != nil {
		return nil, fmt.Errorf("failed to decode blog: %w", err)
	}
	if blog.ID == 0 && blog.Slug == "" {
		return nil, ErrNotFound
	}
	return &blog, nil
}

// ReviewStats reicht die Bewertungsstatistik der API unverändert durch.
func (c *Client) ReviewStats(ctx context.Context) (any, error) {
	return c.passThrough(ctx, "/reviews/stats", "Failed to fetch review stats")
}

// TotalBlogs reicht die Blog-Anzahl der API unverändert durch.
func (c *Client) TotalBlogs(ctx context.Context) (any, error) {
	return c.passThrough(ctx, "/blogs/total", "Failed to fetch blog total")
}

func (c *Client) passThrough(ctx context.Context, path, fallback string) (any, error) {
	body, err := c.get(ctx, path, path, nil)
	if err != nil {
		return nil, withFallback(err, fallback)
	}
	v, err := decodeAny(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fallback, err)
	}
	return v, nil
}

// normalized dekodiert einen Listen-Body und bringt ihn über den Normalizer in Listenform.
// Unbekannte Formen werden geloggt, liefern aber wie eine leere Antwort eine leere Liste.
func (c *Client) normalized(body []byte, collection string) []any {
	log := c.Logger.With(zap.String("collection", collection))

	raw, err := decodeAny(body)
	if err != nil {
		shapesTotal.WithLabelValues(collection, "invalid_json").Inc()
		log.Warn("Antwort ist kein gültiges JSON", zap.Error(err))
		return []any{}
	}

	items, shape := normalize.Inspect(raw, collection)
	shapesTotal.WithLabelValues(collection, shape.String()).Inc()
	if shape == normalize.ShapeUnknown {
		log.Warn("Unbekannte Antwortform, verwende leere Liste")
	}
	return items
}

// decodeTreks dekodiert Treks. Der Reiseplan wird pro Eintrag genau einmal aufgelöst
// und gezählt; fehlt das Feld, bekommt der Trek den Standard-Tag.
func decodeTreks(log *zap.Logger, items []any) []models.Trek {
	out := make([]models.Trek, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			log.Warn("Eintrag übersprungen", zap.String("collection", "treks"), zap.Int("index", i))
			continue
		}

		days, status := normalize.DecodeDayListStatus(m["trek_days"])
		dayDecodesTotal.WithLabelValues(string(status)).Inc()
		if status == normalize.DaysExhausted || status == normalize.DaysRaw {
			log.Debug("Reiseplan nur teilweise dekodiert", zap.Any("id", m["id"]), zap.String("status", string(status)))
		}

		rest := make(map[string]any, len(m))
		for k, v := range m {
			if k != "trek_days" {
				rest[k] = v
			}
		}
		decoded := decodeItems[models.Trek](log, []any{rest}, "treks")
		if len(decoded) == 0 {
			continue
		}
		trek := decoded[0]
		trek.TrekDays = models.DayList(days)
		out = append(out, trek)
	}
	return out
}

// decodeItems dekodiert normalisierte Einträge in das Zielmodell. Einträge, die sich
// nicht dekodieren lassen, werden übersprungen.
func decodeItems[T any](log *zap.Logger, items []any, collection string) []T {
	out := make([]T, 0, len(items))
	for i, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			log.Warn("Eintrag übersprungen", zap.String("collection", collection), zap.Int("index", i), zap.Error(err))
			continue
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			log.Warn("Eintrag übersprungen", zap.String("collection", collection), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}
