package trekapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"jamjam-trek/models"
)

// Resource ist eine per Admin verwaltbare Sammlung der API.
type Resource string

const (
	ResourceTreks      Resource = "treks"
	ResourceActivities Resource = "activities"
	ResourceBlogs      Resource = "blogs"
)

// ParseResource prüft einen Sammlungsnamen aus der URL.
func ParseResource(s string) (Resource, bool) {
	switch r := Resource(s); r {
	case ResourceTreks, ResourceActivities, ResourceBlogs:
		return r, true
	}
	return "", false
}

// Singular liefert den Namen eines einzelnen Eintrags ("trek", "activity", "blog").
func (r Resource) Singular() string {
	switch r {
	case ResourceActivities:
		return "activity"
	case ResourceTreks:
		return "trek"
	case ResourceBlogs:
		return "blog"
	}
	return string(r)
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename string
	data            []byte
}

// Form ist ein geordneter Multipart-Payload für Create und Update.
type Form struct {
	fields []formField
	files  []formFile
}

// Add hängt ein Textfeld an. Wiederholte Namen bleiben erhalten (z.B. "trek_days[]").
func (f *Form) Add(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

// AddBool hängt ein Flag als "1" oder "0" an, wie Laravel es erwartet.
func (f *Form) AddBool(name string, b bool) {
	if b {
		f.Add(name, "1")
	} else {
		f.Add(name, "0")
	}
}

// AddFile hängt eine Datei an.
func (f *Form) AddFile(field, filename string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	f.files = append(f.files, formFile{field: field, filename: filename, data: data})
	return nil
}

// Get liefert den ersten Wert eines Feldes.
func (f *Form) Get(name string) (string, bool) {
	for _, fld := range f.fields {
		if fld.name == name {
			return fld.value, true
		}
	}
	return "", false
}

// Len liefert die Anzahl der Text- und Dateifelder.
func (f *Form) Len() int {
	return len(f.fields) + len(f.files)
}

// encode schreibt das Formular als multipart/form-data; extra wird hinten angehängt.
func (f *Form) encode(extra ...formField) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, fld := range append(append([]formField{}, f.fields...), extra...) {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// Create legt einen Eintrag an.
func (c *Client) Create(ctx context.Context, r Resource, form *Form) (any, error) {
	fallback := "Failed to create " + r.Singular()
	if !c.session.Valid() {
		return nil, ErrNoSession
	}

	body, contentType, err := form.encode()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fallback, err)
	}
	path := "/" + string(r)
	data, err := c.do(ctx, http.MethodPost, path, path, nil, body, contentType)
	if err != nil {
		return nil, withFallback(err, fallback)
	}

	c.invalidate(ctx, path)
	c.Logger.Info("Eintrag angelegt", zap.String("resource", string(r)))
	return decodeResult(data), nil
}

// Update ändert einen Eintrag. Laravel erwartet Multipart-Updates als POST mit _method=PUT.
func (c *Client) Update(ctx context.Context, r Resource, id int, form *Form) (any, error) {
	fallback := "Failed to update " + r.Singular()
	if !c.session.Valid() {
		return nil, ErrNoSession
	}

	body, contentType, err := form.encode(formField{name: "_method", value: "PUT"})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fallback, err)
	}
	path := "/" + string(r)
	data, err := c.do(ctx, http.MethodPost, path+"/:id", path+"/"+strconv.Itoa(id), nil, body, contentType)
	if err != nil {
		return nil, withFallback(err, fallback)
	}

	c.invalidate(ctx, path)
	c.Logger.Info("Eintrag aktualisiert", zap.String("resource", string(r)), zap.Int("id", id))
	return decodeResult(data), nil
}

// Delete löscht einen Eintrag.
func (c *Client) Delete(ctx context.Context, r Resource, id int) error {
	fallback := "Failed to delete " + r.Singular()
	if !c.session.Valid() {
		return ErrNoSession
	}

	path := "/" + string(r)
	if _, err := c.sendJSON(ctx, http.MethodDelete, path+"/:id", path+"/"+strconv.Itoa(id), nil); err != nil {
		return withFallback(err, fallback)
	}

	c.invalidate(ctx, path)
	c.Logger.Info("Eintrag gelöscht", zap.String("resource", string(r)), zap.Int("id", id))
	return nil
}

// ApproveReview gibt eine Bewertung frei.
func (c *Client) ApproveReview(ctx context.Context, id int) error {
	if !c.session.Valid() {
		return ErrNoSession
	}
	path := "/reviews/" + strconv.Itoa(id) + "/approve"
	if _, err := c.sendJSON(ctx, http.MethodPut, "/reviews/:id/approve", path, nil); err != nil {
		return withFallback(err, "Failed to approve review")
	}
	c.invalidate(ctx, "/reviews")
	return nil
}

// DeleteReview löscht eine Bewertung.
func (c *Client) DeleteReview(ctx context.Context, id int) error {
	if !c.session.Valid() {
		return ErrNoSession
	}
	if _, err := c.sendJSON(ctx, http.MethodDelete, "/reviews/:id", "/reviews/"+strconv.Itoa(id), nil); err != nil {
		return withFallback(err, "Failed to delete review")
	}
	c.invalidate(ctx, "/reviews")
	return nil
}

// SubmitReview reicht eine neue Bewertung von der öffentlichen Seite ein.
func (c *Client) SubmitReview(ctx context.Context, in models.ReviewInput) (any, error) {
	data, err := c.sendJSON(ctx, http.MethodPost, "/reviews", "/reviews", in)
	if err != nil {
		return nil, withFallback(err, "Failed to submit review")
	}
	return decodeResult(data), nil
}

func (c *Client) invalidate(ctx context.Context, prefix string) {
	if c.Cache != nil {
		c.Cache.Invalidate(ctx, prefix)
	}
}

// decodeResult liefert die Antwort einer Mutation; ein leerer Body ergibt nil.
func decodeResult(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	v, err := decodeAny(body)
	if err != nil {
		return nil
	}
	return v
}
