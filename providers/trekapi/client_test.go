package trekapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jamjam-trek/config"
	"jamjam-trek/models"
	"jamjam-trek/normalize"
	"jamjam-trek/providers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{APIBaseURL: srv.URL + "/", APITimeout: 5 * time.Second}
	return NewClient(cfg, nil, zap.NewNop())
}

func TestTreks_AllResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare list", `[{"id":1,"title":"EBC"},{"id":2,"title":"Annapurna"}]`},
		{"data list", `{"data":[{"id":1,"title":"EBC"},{"id":2,"title":"Annapurna"}]}`},
		{"nested collection", `{"success":true,"data":{"treks":[{"id":1,"title":"EBC"},{"id":2,"title":"Annapurna"}],"pagination":{}}}`},
		{"flat items", `{"items":[{"id":1,"title":"EBC"},{"id":2,"title":"Annapurna"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/treks", r.URL.Path)
				_, _ = io.WriteString(w, tt.body)
			})

			treks, err := c.Treks(context.Background(), providers.TrekQuery{})
			require.NoError(t, err)
			require.Len(t, treks, 2)
			assert.Equal(t, "EBC", treks[0].Title)
			assert.Equal(t, 2, treks[1].ID)
		})
	}
}

func TestTreks_UnknownShapeIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	})

	treks, err := c.Treks(context.Background(), providers.TrekQuery{})
	require.NoError(t, err)
	assert.NotNil(t, treks)
	assert.Empty(t, treks)
}

func TestTreks_QueryAndDayLists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "package", r.URL.Query().Get("data_type"))
		assert.Equal(t, "1", r.URL.Query().Get("is_active"))
		assert.Equal(t, "0", r.URL.Query().Get("is_featured"))
		_, _ = io.WriteString(w, `{"data":[
			{"id":1,"price":"1200.00","is_active":1,"trek_days":"\"[\\\"Day 1: Kathmandu\\\",\\\"Day 2: Lukla\\\"]\""},
			{"id":2,"price":900,"is_active":"0","trek_days":null}
		]}`)
	})

	treks, err := c.Treks(context.Background(), providers.TrekQuery{
		DataType:   models.DataTypePackage,
		IsActive:   providers.Bool(true),
		IsFeatured: providers.Bool(false),
	})
	require.NoError(t, err)
	require.Len(t, treks, 2)

	assert.Equal(t, models.Number(1200), treks[0].Price)
	assert.True(t, bool(treks[0].IsActive))
	assert.Equal(t, models.DayList{"Day 1: Kathmandu", "Day 2: Lukla"}, treks[0].TrekDays)
	assert.False(t, bool(treks[1].IsActive))
	assert.Equal(t, models.DayList{"Day 1: "}, treks[1].TrekDays)
}

func TestTreks_SkipsUndecodableItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1},"broken",{"id":3}]`)
	})

	treks, err := c.Treks(context.Background(), providers.TrekQuery{})
	require.NoError(t, err)
	require.Len(t, treks, 2)
	assert.Equal(t, 3, treks[1].ID)
}

func TestTreks_MissingDaysGetDefault(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"title":"EBC"}]`)
	})

	treks, err := c.Treks(context.Background(), providers.TrekQuery{})
	require.NoError(t, err)
	require.Len(t, treks, 1)
	assert.Equal(t, models.DayList{"Day 1: "}, treks[0].TrekDays)

	b, err := json.Marshal(treks[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"trek_days":["Day 1: "]`)
}

func dayDecodes(t *testing.T, status normalize.DayStatus) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, dayDecodesTotal.WithLabelValues(string(status)).Write(&m))
	return m.GetCounter().GetValue()
}

func TestTreks_DayDecodeCountedOncePerTrek(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":1,"trek_days":"[\"Day 1: Kathmandu\"]"},
			{"id":2,"trek_days":"\"[\\\"Day 1: Pokhara\\\"]\""},
			{"id":3}
		]`)
	})

	decoded := dayDecodes(t, normalize.DaysDecoded)
	defaulted := dayDecodes(t, normalize.DaysDefault)

	treks, err := c.Treks(context.Background(), providers.TrekQuery{})
	require.NoError(t, err)
	require.Len(t, treks, 3)
	assert.Equal(t, models.DayList{"Day 1: Kathmandu"}, treks[0].TrekDays)
	assert.Equal(t, models.DayList{"Day 1: Pokhara"}, treks[1].TrekDays)

	assert.Equal(t, decoded+2, dayDecodes(t, normalize.DaysDecoded))
	assert.Equal(t, defaulted+1, dayDecodes(t, normalize.DaysDefault))
}

func TestTreks_StatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Treks(context.Background(), providers.TrekQuery{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Failed to fetch treks", apiErr.Message)
}

func TestPublishableReviews_SwallowsErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "8", r.URL.Query().Get("per_page"))
		w.WriteHeader(http.StatusBadGateway)
	})

	reviews, err := c.PublishableReviews(context.Background(), 8)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestBlog_UnwrapsSingleRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blogs/best-time-to-trek", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"id":4,"slug":"best-time-to-trek","content":[{"heading":"Spring","paragraph":"..."}]}}`)
	})

	blog, err := c.Blog(context.Background(), "best-time-to-trek")
	require.NoError(t, err)
	assert.Equal(t, 4, blog.ID)
	require.Len(t, blog.Content, 1)
	assert.Equal(t, "Spring", blog.Content[0].Heading)
}

func TestBlog_EmptyIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null}`)
	})

	_, err := c.Blog(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"success", http.StatusOK, `{"status":true,"token":"abc","message":"Welcome"}`, nil, ""},
		{"numeric status", http.StatusOK, `{"status":1,"token":"abc"}`, nil, ""},
		{"missing token", http.StatusOK, `{"status":true}`, ErrInvalidCredentials, "Invalid email or password"},
		{"false status with message", http.StatusOK, `{"status":false,"message":"Wrong password"}`, ErrInvalidCredentials, "Wrong password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var in map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
				assert.Equal(t, "admin@jamjam.test", in["email"])
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			res, err := c.Login(context.Background(), "admin@jamjam.test", "secret")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "abc", res.Token)
		})
	}
}

func TestLogin_StatusErrorUsesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"The email field is required."}`)
	})

	_, err := c.Login(context.Background(), "", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "The email field is required.", apiErr.Message)
}

func TestLogin_NonJSONSuccessIsNotACredentialsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html><body>Maintenance</body></html>`)
	})

	res, err := c.Login(context.Background(), "admin@jamjam.test", "secret")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "invalid response")
}

func TestSessionIsBoundPerCopy(t *testing.T) {
	var got []string
	var mu sync.Mutex
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = io.WriteString(w, `[]`)
	})

	admin := c.WithSession(providers.Session{Token: "tok"})
	_, err := admin.Reviews(context.Background())
	require.NoError(t, err)
	_, err = c.Reviews(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok", ""}, got)
	assert.False(t, c.Session().Valid())
}

func TestMutationsRequireSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	ctx := context.Background()

	_, err := c.Create(ctx, ResourceTreks, &Form{})
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = c.Update(ctx, ResourceTreks, 1, &Form{})
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, c.Delete(ctx, ResourceBlogs, 1), ErrNoSession)
	assert.ErrorIs(t, c.ApproveReview(ctx, 1), ErrNoSession)
	assert.ErrorIs(t, c.DeleteReview(ctx, 1), ErrNoSession)
	assert.ErrorIs(t, c.Logout(ctx), ErrNoSession)
}

func TestUpdate_SendsMultipartWithMethodOverride(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/treks/7", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}

		assert.Equal(t, "PUT", r.FormValue("_method"))
		assert.Equal(t, "Everest Base Camp", r.FormValue("title"))
		assert.Equal(t, "1", r.FormValue("is_active"))
		assert.Equal(t, "0", r.FormValue("is_featured"))

		files := r.MultipartForm.File["images[]"]
		if assert.Len(t, files, 1) {
			assert.Equal(t, "ebc.jpg", files[0].Filename)
		}

		_, _ = io.WriteString(w, `{"status":true,"data":{"id":7}}`)
	})

	form := &Form{}
	form.Add("title", "Everest Base Camp")
	form.AddBool("is_active", true)
	form.AddBool("is_featured", false)
	require.NoError(t, form.AddFile("images[]", "ebc.jpg", strings.NewReader("jpeg")))

	res, err := c.WithSession(providers.Session{Token: "tok"}).Update(context.Background(), ResourceTreks, 7, form)
	require.NoError(t, err)
	assert.NotNil(t, res)

	_, hasMethod := form.Get("_method")
	assert.False(t, hasMethod, "update must not modify the caller's form")
}

func TestDelete_ErrorMessageFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusForbidden)
	})

	err := c.WithSession(providers.Session{Token: "tok"}).Delete(context.Background(), ResourceActivities, 3)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to delete activity", apiErr.Message)
}

type memCache struct {
	mu          sync.Mutex
	bodies      map[string][]byte
	invalidated []string
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bodies[key]
	return b, ok
}

func (m *memCache) Set(_ context.Context, key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[key] = body
}

func (m *memCache) Invalidate(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, prefix)
	for k := range m.bodies {
		if strings.HasPrefix(k, prefix) {
			delete(m.bodies, k)
		}
	}
}

func TestCache_AnonymousGetsAndInvalidation(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			calls++
		}
		_, _ = io.WriteString(w, `[{"id":1}]`)
	})
	cache := &memCache{bodies: map[string][]byte{}}
	c.Cache = cache
	ctx := context.Background()
	q := providers.ActivityQuery{IsActive: providers.Bool(true)}

	_, err := c.Activities(ctx, q)
	require.NoError(t, err)
	_, err = c.Activities(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	admin := c.WithSession(providers.Session{Token: "tok"})
	_, err = admin.Activities(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "authenticated reads bypass the cache")

	require.NoError(t, admin.Delete(ctx, ResourceActivities, 1))
	assert.Equal(t, []string{"/activities"}, cache.invalidated)

	_, err = c.Activities(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestParseResource(t *testing.T) {
	r, ok := ParseResource("activities")
	assert.True(t, ok)
	assert.Equal(t, "activity", r.Singular())

	_, ok = ParseResource("users")
	assert.False(t, ok)
}
