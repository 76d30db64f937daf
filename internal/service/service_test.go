package service

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

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/model"
)

// fakeAPI serves canned envelopes by "METHOD /path" and counts hits.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]string
	hits   map[string]int
	bodies map[string][]byte
	auth   map[string]string
}

func newFakeAPI(t *testing.T, routes map[string]string) (*fakeAPI, *apiclient.Client) {
	t.Helper()
	f := &fakeAPI{
		routes: routes,
		hits:   map[string]int{},
		bodies: map[string][]byte{},
		auth:   map[string]string{},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.hits[key]++
		f.bodies[key] = body
		f.auth[key] = r.Header.Get("Authorization")
		payload, ok := f.routes[key]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
			return
		}
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(ts.Close)
	return f, apiclient.New(ts.URL, time.Second)
}

func (f *fakeAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeAPI) body(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func newRedisStore(t *testing.T) cache.Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return cache.NewRedisCache(rdb)
}

func TestBookListIsCachedUntilMutation(t *testing.T) {
	t.Parallel()

	api, client := newFakeAPI(t, map[string]string{
		"GET /books":       `{"data":[{"_id":"b1","title":"Dune","totalPages":412}],"pagination":{"page":1,"limit":12,"total":1,"pages":1}}`,
		"POST /books":      `{"data":{"_id":"b2","title":"Emma"}}`,
		"DELETE /books/b1": `{"data":null}`,
	})
	svc := NewBookService(client, newRedisStore(t), time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		books, pg, err := svc.List(ctx, model.BookQuery{})
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(books) != 1 || books[0].Title != "Dune" || books[0].TotalPages != 412 {
			t.Fatalf("List() books = %+v", books)
		}
		if pg == nil || pg.Pages != 1 {
			t.Fatalf("List() pagination = %+v", pg)
		}
	}
	if got := api.count("GET /books"); got != 1 {
		t.Errorf("GET /books hits = %d, want 1 (cached)", got)
	}

	if _, err := svc.Create(ctx, &model.CreateBookRequest{Title: "Emma", Author: "Austen", Genre: "g1", TotalPages: 300}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, _, err := svc.List(ctx, model.BookQuery{}); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if got := api.count("GET /books"); got != 2 {
		t.Errorf("GET /books hits = %d, want 2 after invalidation", got)
	}

	if err := svc.Delete(ctx, "b1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
}

func TestBookValuesDefaults(t *testing.T) {
	t.Parallel()

	v := bookValues(model.BookQuery{SearchTerm: "dune", Genre: []string{"scifi", "", "classic"}, SortBy: "title"})
	if v.Get("page") != "1" || v.Get("limit") != "12" {
		t.Errorf("defaults = page %q limit %q", v.Get("page"), v.Get("limit"))
	}
	if got := v["genre"]; len(got) != 2 {
		t.Errorf("genre = %v, want 2 values", got)
	}
	if v.Get("order") != "desc" {
		t.Errorf("order = %q, want desc when sortBy is set", v.Get("order"))
	}

	if v := bookValues(model.BookQuery{}); v.Has("sortBy") || v.Has("order") || v.Has("searchTerm") {
		t.Errorf("unexpected params %v", v.Encode())
	}
}

func TestGetBookNotFound(t *testing.T) {
	t.Parallel()

	_, client := newFakeAPI(t, map[string]string{})
	svc := NewBookService(client, nil, time.Minute, zerolog.Nop())

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, apiclient.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestLibraryIsScopedPerUser(t *testing.T) {
	t.Parallel()

	api, client := newFakeAPI(t, map[string]string{
		"GET /user-library":      `{"data":[{"_id":"s1","user":"u1","shelfType":"read","book":{"_id":"b1","title":"Dune"}}]}`,
		"PATCH /user-library/b1": `{"data":{"_id":"s1","shelfType":"currentlyReading"}}`,
	})
	svc := NewLibraryService(client, newRedisStore(t), time.Minute, zerolog.Nop())

	alice := &gate.Session{Subject: "alice", Role: model.RoleUser, Token: "tok-a"}
	bob := &gate.Session{Subject: "bob", Role: model.RoleUser, Token: "tok-b"}

	ctxA := apiclient.WithToken(context.Background(), alice.Token)
	ctxB := apiclient.WithToken(context.Background(), bob.Token)

	if _, err := svc.List(ctxA, alice); err != nil {
		t.Fatalf("List(alice) error: %v", err)
	}
	if _, err := svc.List(ctxA, alice); err != nil {
		t.Fatalf("List(alice) error: %v", err)
	}
	if _, err := svc.List(ctxB, bob); err != nil {
		t.Fatalf("List(bob) error: %v", err)
	}
	if got := api.count("GET /user-library"); got != 2 {
		t.Errorf("GET /user-library hits = %d, want 2 (one per user)", got)
	}

	pages := 120
	shelf, err := svc.UpdateShelf(ctxA, alice, "b1", &model.UpdateShelfRequest{ShelfType: model.ShelfCurrentlyReading, PagesRead: &pages})
	if err != nil {
		t.Fatalf("UpdateShelf() error: %v", err)
	}
	if shelf.ShelfType != model.ShelfCurrentlyReading {
		t.Errorf("ShelfType = %q", shelf.ShelfType)
	}

	var sent map[string]any
	if err := json.Unmarshal(api.body("PATCH /user-library/b1"), &sent); err != nil {
		t.Fatalf("PATCH body: %v", err)
	}
	if sent["shelfType"] != "currentlyReading" || sent["pagesRead"] != float64(120) {
		t.Errorf("PATCH body = %v", sent)
	}

	if _, err := svc.List(ctxA, alice); err != nil {
		t.Fatalf("List(alice) error: %v", err)
	}
	if _, err := svc.List(ctxB, bob); err != nil {
		t.Fatalf("List(bob) error: %v", err)
	}
	if got := api.count("GET /user-library"); got != 3 {
		t.Errorf("GET /user-library hits = %d, want 3 (only alice refetched)", got)
	}

	if _, err := svc.List(ctxA, nil); !errors.Is(err, ErrNoSession) {
		t.Errorf("List(nil) error = %v, want ErrNoSession", err)
	}
}

func TestReviewAddSendsBook(t *testing.T) {
	t.Parallel()

	api, client := newFakeAPI(t, map[string]string{
		"POST /reviews":             `{"data":{"_id":"r1","rating":4,"status":"pending"}}`,
		"PATCH /reviews/r1/approve": `{"data":null}`,
		"GET /reviews/approved/b1":  `{"data":[]}`,
	})
	svc := NewReviewService(client, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	r, err := svc.Add(ctx, "b1", &model.AddReviewRequest{Rating: 4, ReviewText: "Loved it"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if r.Status != model.ReviewPending {
		t.Errorf("Status = %q, want pending", r.Status)
	}

	var sent addReviewBody
	if err := json.Unmarshal(api.body("POST /reviews"), &sent); err != nil {
		t.Fatalf("POST body: %v", err)
	}
	if sent.Book != "b1" || sent.Rating != 4 || sent.ReviewText != "Loved it" {
		t.Errorf("POST body = %+v", sent)
	}

	if err := svc.Approve(ctx, "r1"); err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	reviews, err := svc.Approved(ctx, "b1")
	if err != nil {
		t.Fatalf("Approved() error: %v", err)
	}
	if reviews == nil {
		t.Error("Approved() should return an empty slice, not nil")
	}
}

func TestDashboardStatsByRole(t *testing.T) {
	t.Parallel()

	_, client := newFakeAPI(t, map[string]string{
		"GET /stats": `{"data":{"userCount":10,"booksCount":40,"adminCount":2,"pendingReviewCount":3,"annualGoal":20,"booksReadThisYear":5}}`,
	})
	svc := NewDashboardService(client, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	got, err := svc.Stats(ctx, &gate.Session{Subject: "a1", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("Stats(admin) error: %v", err)
	}
	admin, ok := got.(*model.AdminStats)
	if !ok {
		t.Fatalf("Stats(admin) returned %T", got)
	}
	if admin.UserCount != 10 || admin.PendingReviewCount != 3 || admin.GenreDistribution == nil {
		t.Errorf("admin stats = %+v", admin)
	}

	got, err = svc.Stats(ctx, &gate.Session{Subject: "u1", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("Stats(user) error: %v", err)
	}
	user, ok := got.(*model.UserStats)
	if !ok {
		t.Fatalf("Stats(user) returned %T", got)
	}
	if user.GoalPercentage != 25 {
		t.Errorf("GoalPercentage = %d, want 25", user.GoalPercentage)
	}
}

func TestGoalPercentage(t *testing.T) {
	t.Parallel()

	tests := []struct{ read, goal, want int }{
		{0, 10, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{30, 20, 100},
	}
	for _, tt := range tests {
		if got := GoalPercentage(tt.read, tt.goal); got != tt.want {
			t.Errorf("GoalPercentage(%d, %d) = %d, want %d", tt.read, tt.goal, got, tt.want)
		}
	}
}

func TestYoutubeVideoID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://m.youtube.com/shorts/dQw4w9WgXcQ/", "dQw4w9WgXcQ"},
		{"https://vimeo.com/12345", ""},
		{"https://youtube.com/watch?v=short", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		got, err := YoutubeVideoID(tt.url)
		if tt.want == "" {
			if !errors.Is(err, ErrInvalidYoutubeURL) {
				t.Errorf("YoutubeVideoID(%q) = (%q, %v), want ErrInvalidYoutubeURL", tt.url, got, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("YoutubeVideoID(%q) = (%q, %v), want %q", tt.url, got, err, tt.want)
		}
	}
}

func TestTutorialCreateDerivesVideoID(t *testing.T) {
	t.Parallel()

	api, client := newFakeAPI(t, map[string]string{
		"POST /tutorials": `{"data":{"_id":"t1","youtubeVideoId":"dQw4w9WgXcQ"}}`,
	})
	svc := NewTutorialService(client, nil, time.Minute, zerolog.Nop())

	_, err := svc.Create(context.Background(), &model.TutorialRequest{
		Title:      "Reading faster",
		YoutubeURL: "https://youtu.be/dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	var sent tutorialPayload
	if err := json.Unmarshal(api.body("POST /tutorials"), &sent); err != nil {
		t.Fatalf("POST body: %v", err)
	}
	if sent.YoutubeVideoID != "dQw4w9WgXcQ" {
		t.Errorf("youtubeVideoId = %q", sent.YoutubeVideoID)
	}
	if sent.Thumbnail != "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg" {
		t.Errorf("thumbnail = %q", sent.Thumbnail)
	}

	_, err = svc.Create(context.Background(), &model.TutorialRequest{Title: "x", YoutubeURL: "https://example.com/video"})
	if !errors.Is(err, ErrInvalidYoutubeURL) {
		t.Errorf("Create() with bad URL error = %v", err)
	}
	if got := api.count("POST /tutorials"); got != 1 {
		t.Errorf("POST /tutorials hits = %d, want 1", got)
	}
}

func TestLogoutDropsUserEntries(t *testing.T) {
	t.Parallel()

	api, client := newFakeAPI(t, map[string]string{
		"GET /user-library": `{"data":[]}`,
	})
	store := newRedisStore(t)
	lib := NewLibraryService(client, store, time.Minute, zerolog.Nop())
	sessions := NewSessionService(store, zerolog.Nop())
	sess := &gate.Session{Subject: "u9", Role: model.RoleUser}
	ctx := context.Background()

	if _, err := lib.List(ctx, sess); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	sessions.Logout(ctx, sess)
	sessions.Logout(ctx, nil)
	if _, err := lib.List(ctx, sess); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if got := api.count("GET /user-library"); got != 2 {
		t.Errorf("GET /user-library hits = %d, want 2 after logout", got)
	}
}

func TestGenreUpdateInvalidatesBooks(t *testing.T) {
	t.Parallel()

	api, client := newFakeAPI(t, map[string]string{
		"GET /genres":      `{"data":[{"_id":"g1","name":"Sci-Fi","slug":"sci-fi"}]}`,
		"GET /books":       `{"data":[]}`,
		"PATCH /genres/g1": `{"data":{"_id":"g1","name":"Science Fiction"}}`,
	})
	store := newRedisStore(t)
	genres := NewGenreService(client, store, time.Minute, zerolog.Nop())
	books := NewBookService(client, store, time.Minute, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := genres.List(ctx, "", 0); err != nil {
			t.Fatalf("genres.List() error: %v", err)
		}
		if _, _, err := books.List(ctx, model.BookQuery{}); err != nil {
			t.Fatalf("books.List() error: %v", err)
		}
	}

	g, err := genres.Update(ctx, "g1", &model.GenreRequest{Name: "Science Fiction"})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if g.Name != "Science Fiction" {
		t.Errorf("Name = %q", g.Name)
	}

	if _, err := genres.List(ctx, "", 0); err != nil {
		t.Fatalf("genres.List() error: %v", err)
	}
	if _, _, err := books.List(ctx, model.BookQuery{}); err != nil {
		t.Fatalf("books.List() error: %v", err)
	}
	if got := api.count("GET /genres"); got != 2 {
		t.Errorf("GET /genres hits = %d, want 2", got)
	}
	if got := api.count("GET /books"); got != 2 {
		t.Errorf("GET /books hits = %d, want 2 (genre names are embedded in books)", got)
	}
}

func TestUserRoleChange(t *testing.T) {
	t.Parallel()

	api, client := newFakeAPI(t, map[string]string{
		"GET /users":           `{"data":[{"_id":"u1","name":"Ann","role":"user"}]}`,
		"PATCH /users/u1/role": `{"data":{"_id":"u1","name":"Ann","role":"admin"}}`,
		"DELETE /users/u1":     `{"data":null}`,
	})
	svc := NewUserService(client, newRedisStore(t), time.Minute, zerolog.Nop())
	ctx := context.Background()

	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	u, err := svc.UpdateRole(ctx, "u1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole() error: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("Role = %q", u.Role)
	}

	var sent model.UpdateRoleRequest
	if err := json.Unmarshal(api.body("PATCH /users/u1/role"), &sent); err != nil || sent.Role != model.RoleAdmin {
		t.Errorf("sent body = %s (%v)", api.body("PATCH /users/u1/role"), err)
	}

	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(users) != 1 || api.count("GET /users") != 2 {
		t.Errorf("users = %+v, GET /users hits = %d, want refetch after role change", users, api.count("GET /users"))
	}

	if err := svc.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
}

// newPerTokenAPI answers GET requests with the payload registered for the
// caller's bearer token.
func newPerTokenAPI(t *testing.T, byToken map[string]map[string]string) *apiclient.Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		payload, ok := byToken[token][r.Method+" "+r.URL.Path]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
			return
		}
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(ts.Close)
	return apiclient.New(ts.URL, time.Second)
}

func TestUserScopedReadsNeverShareEntries(t *testing.T) {
	t.Parallel()

	client := newPerTokenAPI(t, map[string]map[string]string{
		"tok-alice": {
			"GET /user-library": `{"data":[{"_id":"s1","shelfType":"read","book":{"_id":"b1","title":"Dune"}}]}`,
		},
		"tok-bob": {
			"GET /user-library": `{"data":[]}`,
		},
		"tok-admin": {
			"GET /stats": `{"data":{"userCount":10,"booksCount":40,"adminCount":2,"pendingReviewCount":3}}`,
		},
		"tok-named-admin": {
			"GET /stats": `{"data":{"annualGoal":10,"booksReadThisYear":1}}`,
		},
	})
	store := newRedisStore(t)
	lib := NewLibraryService(client, store, time.Minute, zerolog.Nop())
	dash := NewDashboardService(client, store, time.Minute, zerolog.Nop())

	t.Run("sessions without subject", func(t *testing.T) {
		alice := &gate.Session{Role: model.RoleUser, Token: "tok-alice"}
		bob := &gate.Session{Role: model.RoleUser, Token: "tok-bob"}

		shelves, err := lib.List(apiclient.WithToken(context.Background(), alice.Token), alice)
		if err != nil {
			t.Fatalf("List(alice) error: %v", err)
		}
		if len(shelves) != 1 {
			t.Fatalf("List(alice) = %d shelves, want 1", len(shelves))
		}

		shelves, err = lib.List(apiclient.WithToken(context.Background(), bob.Token), bob)
		if err != nil {
			t.Fatalf("List(bob) error: %v", err)
		}
		if len(shelves) != 0 {
			t.Errorf("List(bob) = %+v, want bob's own empty library", shelves)
		}
	})

	t.Run("subject named like a shared scope", func(t *testing.T) {
		admin := &gate.Session{Subject: "a1", Role: model.RoleAdmin, Token: "tok-admin"}
		if _, err := dash.AdminStats(apiclient.WithToken(context.Background(), admin.Token)); err != nil {
			t.Fatalf("AdminStats() error: %v", err)
		}

		user := &gate.Session{Subject: "admin", Role: model.RoleUser, Token: "tok-named-admin"}
		stats, err := dash.UserStats(apiclient.WithToken(context.Background(), user.Token), user)
		if err != nil {
			t.Fatalf("UserStats() error: %v", err)
		}
		if stats.AnnualGoal != 10 || stats.BooksReadThisYear != 1 || stats.GoalPercentage != 10 {
			t.Errorf("UserStats() = %+v, want the user's own figures", stats)
		}
	})
}
