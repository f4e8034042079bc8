package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/jonathan/jtrack/internal/types"
)

const testToken = "7.f2b1c0de"

// fakeBackend is an in-memory J-Tracker backend.
type fakeBackend struct {
	mu sync.Mutex

	profile  types.Profile
	apps     []types.Application
	nextID   int
	analyses []types.Analysis
	shared   []types.SharedJob
	resume   []byte
	wishlist []string
	updates  []types.Profile
	logouts  int
	revoked  bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{
		profile: types.Profile{ID: 7, Username: "ada", FullName: "Ada Lovelace"},
		nextID:  100,
	}
	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", b.login)
	mux.HandleFunc("POST /users/signup", b.signup)
	mux.HandleFunc("POST /users/logout", b.authed(b.logout))
	mux.HandleFunc("GET /getProfile", b.authed(b.getProfile))
	mux.HandleFunc("POST /updateProfile", b.authed(b.updateProfile))
	mux.HandleFunc("GET /profilePhoto", b.authed(b.getPhoto))
	mux.HandleFunc("POST /profilePhoto", b.authed(b.uploadPhoto))
	mux.HandleFunc("GET /applications", b.authed(b.listApps))
	mux.HandleFunc("POST /applications", b.authed(b.createApp))
	mux.HandleFunc("PUT /applications/{id}", b.authed(b.updateApp))
	mux.HandleFunc("DELETE /applications/{id}", b.authed(b.deleteApp))
	mux.HandleFunc("GET /search", b.authed(b.search))
	mux.HandleFunc("GET /resume", b.authed(b.getResume))
	mux.HandleFunc("POST /resume", b.authed(b.uploadResume))
	mux.HandleFunc("POST /parse-resume", b.authed(b.parseResume))
	mux.HandleFunc("POST /compare-resume", b.authed(b.compareResume))
	mux.HandleFunc("GET /analyses", b.authed(b.listAnalyses))
	mux.HandleFunc("POST /analyses", b.authed(b.saveAnalysis))
	mux.HandleFunc("GET /jobs/shared", b.authed(b.sharedJobs))
	mux.HandleFunc("POST /wishlist", b.authed(b.addWishlist))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		revoked := b.revoked
		b.mu.Unlock()
		if revoked || r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Username != "ada" || req.Password != "secret" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Invalid credentials"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = false
	p := b.profile
	writeJSON(w, http.StatusOK, types.LoginResponse{Token: testToken, Expiry: "2026-12-31T00:00:00Z", Profile: &p})
}

func (b *fakeBackend) signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Username == "ada" {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Username already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, types.SignupResponse{ID: 8, FullName: req.FullName, Username: req.Username})
}

func (b *fakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.logouts++
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (b *fakeBackend) getProfile(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("userid") != "7" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.profile)
}

func (b *fakeBackend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var p types.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, p)
	p.ID, p.Username, p.ProfilePhoto = b.profile.ID, b.profile.Username, b.profile.ProfilePhoto
	b.profile = p
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}

func (b *fakeBackend) getPhoto(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, types.PhotoResponse{URL: b.profile.ProfilePhoto})
}

func (b *fakeBackend) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	f, header, err := r.FormFile("profilePhoto")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file part"})
		return
	}
	_ = f.Close()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profile.ProfilePhoto = "https://cdn.example.com/photos/" + header.Filename
	writeJSON(w, http.StatusOK, map[string]string{"message": "uploaded"})
}

func (b *fakeBackend) listApps(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.apps
	if out == nil {
		out = []types.Application{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBackend) createApp(w http.ResponseWriter, r *http.Request) {
	var env struct {
		Application types.Application `json:"application"`
	}
	_ = json.NewDecoder(r.Body).Decode(&env)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	app := env.Application
	app.ID = types.IntPtr(b.nextID)
	b.apps = append(b.apps, app)
	writeJSON(w, http.StatusCreated, map[string]int{"id": b.nextID})
}

func (b *fakeBackend) updateApp(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	var env struct {
		Application types.Application `json:"application"`
	}
	_ = json.NewDecoder(r.Body).Decode(&env)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.apps {
		if b.apps[i].IDValue() == id {
			app := env.Application
			app.ID = types.IntPtr(id)
			b.apps[i] = app
			writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Application not found"})
}

func (b *fakeBackend) deleteApp(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.apps {
		if b.apps[i].IDValue() == id {
			b.apps = append(b.apps[:i], b.apps[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Application not found"})
}

func (b *fakeBackend) search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.Insights{
		RoleOverview:    "Builds the pipelines behind " + r.URL.Query().Get("keywords") + " work.",
		TechnicalSkills: []types.SkillSet{{Category: "Languages", Tools: []string{"Python", "SQL"}}},
		SoftSkills:      []string{"Communication"},
		IndustryTrends:  []string{"Streaming"},
	})
}

func (b *fakeBackend) getResume(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	data := b.resume
	b.mu.Unlock()
	if data == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No resume found"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("x-filename", "ada.pdf")
	_, _ = w.Write(data)
}

func (b *fakeBackend) uploadResume(w http.ResponseWriter, r *http.Request) {
	f, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file part"})
		return
	}
	defer func() { _ = f.Close() }()
	data, _ := io.ReadAll(f)
	b.mu.Lock()
	b.resume = data
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "File uploaded successfully"})
}

func (b *fakeBackend) parseResume(w http.ResponseWriter, r *http.Request) {
	if _, _, err := r.FormFile("resume"); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No resume file"})
		return
	}
	writeJSON(w, http.StatusOK, types.ParsedResume{Skills: []string{"Python"}})
}

func (b *fakeBackend) compareResume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"overallMatch":    "80%",
		"matchingSkills":  []string{"Python"},
		"missingSkills":   []string{"SQL"},
		"recommendations": []string{"Practice window functions"},
	})
}

func (b *fakeBackend) listAnalyses(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.analyses
	if out == nil {
		out = []types.Analysis{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *fakeBackend) saveAnalysis(w http.ResponseWriter, r *http.Request) {
	var a types.Analysis
	_ = json.NewDecoder(r.Body).Decode(&a)
	b.mu.Lock()
	b.analyses = append(b.analyses, a)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "saved"})
}

func (b *fakeBackend) sharedJobs(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.shared) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No shared jobs"})
		return
	}
	writeJSON(w, http.StatusOK, b.shared)
}

func (b *fakeBackend) addWishlist(w http.ResponseWriter, r *http.Request) {
	var req types.WishlistRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, job := range b.shared {
		if job.ID == req.JobID {
			b.wishlist = append(b.wishlist, req.JobID)
			b.shared = append(b.shared[:i], b.shared[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "added"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Job not found"})
}
