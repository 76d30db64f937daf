package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bookworm/bookworm-web/internal/apiclient"
	"github.com/bookworm/bookworm-web/internal/cache"
	"github.com/bookworm/bookworm-web/internal/config"
	"github.com/bookworm/bookworm-web/internal/gate"
	"github.com/bookworm/bookworm-web/internal/handler"
	"github.com/bookworm/bookworm-web/internal/middleware"
	"github.com/bookworm/bookworm-web/internal/model"
	"github.com/bookworm/bookworm-web/internal/service"
	"github.com/bookworm/bookworm-web/internal/validator"
)

const (
	testSecret = "router-test-secret"
	bookID     = "64b7f0c2a1d3e4f5a6b7c8d9"
)

func init() {
	validator.Setup()
}

type libraryAPI struct {
	mu   sync.Mutex
	auth map[string]string
}

func (a *libraryAPI) authFor(key string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.auth[key]
}

func newLibraryAPI(t *testing.T) (*libraryAPI, string) {
	t.Helper()
	api := &libraryAPI{auth: map[string]string{}}
	routes := map[string]string{
		"GET /books":                            `{"data":[{"_id":"` + bookID + `","title":"Dune"}],"pagination":{"page":1,"limit":12,"total":1,"pages":1}}`,
		"GET /books/" + bookID:                  `{"data":{"_id":"` + bookID + `","title":"Dune","totalPages":412}}`,
		"GET /reviews/approved/" + bookID:       `{"data":[{"_id":"r1","rating":5,"reviewText":"great","status":"approved"}]}`,
		"GET /genres":                           `{"data":[{"_id":"g1","name":"Science Fiction","slug":"science-fiction"}]}`,
		"GET /tutorials":                        `{"data":[]}`,
		"GET /user-library":                     `{"data":[{"_id":"s1","shelfType":"read","book":{"_id":"` + bookID + `","title":"Dune"}}]}`,
		"GET /stats":                            `{"data":{"totalUsers":3,"totalBooks":10}}`,
		"POST /reviews":                         `{"data":{"_id":"r2","rating":4,"status":"pending"}}`,
		"PATCH /reviews/" + bookID + "/approve": `{"data":null}`,
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		api.mu.Lock()
		api.auth[key] = r.Header.Get("Authorization")
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		payload, ok := routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
			return
		}
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(ts.Close)
	return api, ts.URL
}

func testConfig(apiURL string) *config.Config {
	return &config.Config{
		GinMode:                   gin.TestMode,
		AppEnv:                    "test",
		APIBaseURL:                apiURL,
		APITimeout:                time.Second,
		CacheTTL:                  time.Minute,
		RefreshTokenSecret:        testSecret,
		SessionCookieName:         "refreshToken",
		GateProtectedPaths:        []string{"/", "/dashboard", "/library", "/profile", "/settings", "/books"},
		GateRootRedirect:          true,
		AdminHomePath:             "/dashboard",
		UserHomePath:              "/dashboard/user/library",
		LoginPath:                 "/login",
		UnauthorizedPath:          "/unauthorized",
		RateLimitPerMinute:        30,
		GateGuestSettingsRedirect: "/",
	}
}

func newTestServer(t *testing.T) (*libraryAPI, *gin.Engine) {
	t.Helper()
	api, apiURL := newLibraryAPI(t)
	cfg := testConfig(apiURL)
	log := zerolog.Nop()

	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	store := cache.Nop{}
	books := service.NewBookService(client, store, cfg.CacheTTL, log)
	genres := service.NewGenreService(client, store, cfg.CacheTTL, log)
	reviews := service.NewReviewService(client, store, cfg.CacheTTL, log)
	library := service.NewLibraryService(client, store, cfg.CacheTTL, log)
	tutorials := service.NewTutorialService(client, store, cfg.CacheTTL, log)
	users := service.NewUserService(client, store, cfg.CacheTTL, log)
	dashboard := service.NewDashboardService(client, store, cfg.CacheTTL, log)

	handlers := &Handlers{
		Auth:      handler.NewAuthHandler(service.NewSessionService(store, log), cfg),
		Catalog:   handler.NewCatalogHandler(books, genres, reviews, library),
		Library:   handler.NewLibraryHandler(library),
		Dashboard: handler.NewDashboardHandler(dashboard),
		Tutorial:  handler.NewTutorialHandler(tutorials),
		Admin:     handler.NewAdminHandler(books, genres, tutorials, reviews, users),
		System:    handler.NewSystemHandler(nil, log),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	t.Cleanup(limiter.Stop)

	return api, SetupRouter(gate.NewFromConfig(cfg), handlers, limiter, cfg, log)
}

func tokenFor(t *testing.T, role model.Role) string {
	t.Helper()
	tok, err := gate.Sign(testSecret, gate.NewClaims("u-1", "reader@example.com", role, time.Now(), time.Hour))
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	return tok
}

func do(r *gin.Engine, method, target, token, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGateRedirects(t *testing.T) {
	_, r := newTestServer(t)
	admin := tokenFor(t, model.RoleAdmin)
	user := tokenFor(t, model.RoleUser)
	guest := tokenFor(t, model.RoleGuest)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
		wantLoc  string
	}{
		{"missing cookie", http.MethodGet, "/dashboard", "", http.StatusTemporaryRedirect, "/login?redirectTo=%2Fdashboard"},
		{"garbage cookie", http.MethodGet, "/library", "not-a-jwt", http.StatusTemporaryRedirect, "/login?redirectTo=%2Flibrary"},
		{"user on admin section", http.MethodGet, "/dashboard/admin/books", user, http.StatusTemporaryRedirect, "/unauthorized"},
		{"admin on user section", http.MethodGet, "/dashboard/user/library", admin, http.StatusTemporaryRedirect, "/unauthorized"},
		{"user on root", http.MethodGet, "/", user, http.StatusTemporaryRedirect, "/dashboard/user/library"},
		{"admin on root", http.MethodGet, "/", admin, http.StatusTemporaryRedirect, "/dashboard"},
		{"mutation without cookie", http.MethodDelete, "/dashboard/admin/books/" + bookID, "", http.StatusTemporaryRedirect, "/login"},
		{"traversal into admin", http.MethodGet, "/dashboard/user/../admin/books", user, http.StatusTemporaryRedirect, "/unauthorized"},
		{"guest on settings", http.MethodGet, "/settings", guest, http.StatusTemporaryRedirect, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.token, "")
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if got := w.Header().Get("Location"); got != tt.wantLoc {
				t.Errorf("Location = %q, want %q", got, tt.wantLoc)
			}
		})
	}
}

func TestAllowedPages(t *testing.T) {
	_, r := newTestServer(t)
	admin := tokenFor(t, model.RoleAdmin)
	user := tokenFor(t, model.RoleUser)

	tests := []struct {
		name  string
		path  string
		token string
	}{
		{"admin section", "/dashboard/admin/books", admin},
		{"user section", "/dashboard/user/library", user},
		{"dashboard as user", "/dashboard", user},
		{"dashboard as admin", "/dashboard", admin},
		{"book detail", "/books/" + bookID, user},
		{"library", "/library", user},
		{"browse anonymous", "/browse", ""},
		{"tutorials anonymous", "/tutorials", ""},
		{"health", "/health", ""},
		{"login", "/login", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, tt.token, "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestBookDetailForwardsCredential(t *testing.T) {
	api, r := newTestServer(t)
	tok := tokenFor(t, model.RoleUser)

	w := do(r, http.MethodGet, "/books/"+bookID, tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	if got := api.authFor("GET /books/" + bookID); got != "Bearer "+tok {
		t.Errorf("Authorization = %q, want bearer token", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "private, no-store" {
		t.Errorf("Cache-Control = %q", got)
	}

	var body struct {
		Data struct {
			Book    model.Book     `json:"book"`
			Reviews []model.Review `json:"reviews"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Book.Title != "Dune" || len(body.Data.Reviews) != 1 {
		t.Errorf("data = %+v", body.Data)
	}
}

func TestBrowseIsPublicAndCacheable(t *testing.T) {
	_, r := newTestServer(t)

	w := do(r, http.MethodGet, "/browse?searchTerm=dune&page=1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); !strings.HasPrefix(got, "public") {
		t.Errorf("Cache-Control = %q, want public", got)
	}
	if !strings.Contains(w.Body.String(), `"pagination"`) {
		t.Errorf("body has no pagination: %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/browse?order=sideways", "", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad order status = %d, want 400", w.Code)
	}
}

func TestHandlerErrors(t *testing.T) {
	_, r := newTestServer(t)
	admin := tokenFor(t, model.RoleAdmin)
	user := tokenFor(t, model.RoleUser)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     string
		wantCode int
		wantErr  string
	}{
		{"malformed id", http.MethodGet, "/books/not-an-id", user, "", http.StatusBadRequest, "INVALID_ID"},
		{"unknown book", http.MethodGet, "/books/000000000000000000000000", user, "", http.StatusNotFound, "NOT_FOUND"},
		{"rating out of range", http.MethodPost, "/books/" + bookID + "/reviews", user, `{"rating":9,"reviewText":"hmm"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"non youtube tutorial", http.MethodPost, "/dashboard/admin/tutorials", admin, `{"title":"Intro","youtubeURL":"https://vimeo.com/1"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown role", http.MethodPatch, "/dashboard/admin/users/" + bookID + "/role", admin, `{"role":"owner"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthorized page", http.MethodGet, "/unauthorized", user, "", http.StatusForbidden, "FORBIDDEN"},
		{"unknown route", http.MethodGet, "/nowhere", "", "", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), `"code":"`+tt.wantErr+`"`) {
				t.Errorf("body = %s, want code %s", w.Body.String(), tt.wantErr)
			}
		})
	}
}

func TestReviewAndModeration(t *testing.T) {
	_, r := newTestServer(t)

	w := do(r, http.MethodPost, "/books/"+bookID+"/reviews", tokenFor(t, model.RoleUser), `{"rating":4,"reviewText":"Loved it"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add review status = %d (body %s)", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPatch, "/dashboard/admin/reviews/"+bookID+"/approve", tokenFor(t, model.RoleAdmin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d (body %s)", w.Code, w.Body.String())
	}
}

func TestLoginPage(t *testing.T) {
	_, r := newTestServer(t)

	tests := []struct {
		target string
		want   string
	}{
		{"/login?redirectTo=%2Fdashboard%2Fadmin%2Fbooks", "/dashboard/admin/books"},
		{"/login?redirectTo=%2F%2Fevil.example", "/"},
		{"/login?redirectTo=https%3A%2F%2Fevil.example", "/"},
		{"/login?redirectTo=%2F%5Cevil.example", "/"},
		{"/login?redirectTo=%2F%09%2Fevil.example", "/"},
		{"/login?redirectTo=%2Fbooks%3Fpage%3D2", "/books?page=2"},
		{"/login", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.target, "", "")
			var body struct {
				Data struct {
					RedirectTo string `json:"redirectTo"`
				} `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Data.RedirectTo != tt.want {
				t.Errorf("redirectTo = %q, want %q", body.Data.RedirectTo, tt.want)
			}
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	_, r := newTestServer(t)

	w := do(r, http.MethodPost, "/auth/logout", tokenFor(t, model.RoleUser), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "refreshToken" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Errorf("Set-Cookie = %v, want refreshToken deleted", w.Header().Values("Set-Cookie"))
	}

	if w := do(r, http.MethodPost, "/auth/logout", "", ""); w.Code != http.StatusOK {
		t.Errorf("anonymous logout status = %d, want 200", w.Code)
	}
}
