package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"jamjam-trek/normalize"
	"jamjam-trek/providers/trekapi"
)

const maxFormMemory = 32 << 20

// flagFields werden an die API immer als 1/0 weitergegeben.
var flagFields = map[string]bool{
	"is_active":   true,
	"is_featured": true,
}

// fileFields sind die Datei-Uploads, die das Admin-Formular senden darf.
var fileFields = []string{"images[]", "featured_image", "image"}

// buildForm übernimmt ein Admin-Formular (multipart oder urlencoded) in ein trekapi.Form.
// Der Reiseplan wird vor dem Weiterreichen dekodiert und genau einmal als JSON kodiert,
// damit er sich bei wiederholtem Speichern nicht weiter verschachtelt.
func buildForm(c *gin.Context) (*trekapi.Form, error) {
	req := c.Request
	if err := req.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	if err := req.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}

	form := &trekapi.Form{}
	names := make([]string, 0, len(req.PostForm))
	for name := range req.PostForm {
		names = append(names, name)
	}
	sort.Strings(names)

	var days []string
	hasDays := false
	for _, name := range names {
		values := req.PostForm[name]
		switch {
		case name == "_method":
			continue
		case name == "trek_days" || name == "trek_days[]":
			hasDays = true
			days = append(days, dayValues(name, values)...)
		case flagFields[name]:
			form.AddBool(name, truthy(values[len(values)-1]))
		default:
			for _, v := range values {
				form.Add(name, v)
			}
		}
	}

	if hasDays {
		if len(days) == 0 {
			days = normalize.DefaultDays()
		}
		encoded, err := json.Marshal(days)
		if err != nil {
			return nil, err
		}
		form.Add("trek_days", string(encoded))
	}

	if req.MultipartForm != nil {
		for _, field := range fileFields {
			for _, fh := range req.MultipartForm.File[field] {
				f, err := fh.Open()
				if err != nil {
					return nil, fmt.Errorf("invalid upload %s: %w", fh.Filename, err)
				}
				err = form.AddFile(field, fh.Filename, f)
				_ = f.Close()
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return form, nil
}

// dayValues liest den Reiseplan: wiederholte Felder sind bereits Einträge,
// ein einzelnes "trek_days" ist ein (eventuell mehrfach) kodierter JSON-String.
func dayValues(name string, values []string) []string {
	if name == "trek_days" && len(values) == 1 {
		return normalize.DecodeDayList(values[0])
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
