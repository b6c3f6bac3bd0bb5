// Package testutil provides sqlite-backed fixtures and HTTP helpers for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sanitation-feedback-server/config"
	"sanitation-feedback-server/database"
	"sanitation-feedback-server/models"
	"sanitation-feedback-server/utils"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret-0123456789abcdef0123456789"

// SetupTestDB opens a fresh migrated sqlite database that lives for the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() *config.Config {
	return &config.Config{
		Server:              config.ServerConfig{Port: "0", GinMode: "test", Env: "test"},
		Database:            config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		JWT:                 config.JWTConfig{Secret: TestSecret, ExpiryHours: 8, Issuer: "test"},
		CORS:                config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit:           config.RateLimitConfig{PerMinute: 100000, Burst: 100000},
		Log:                 config.LogConfig{Level: "error", Format: "json"},
		ExposeStorageErrors: true,
	}
}

func CreateLocation(t *testing.T, db *gorm.DB, name string) models.Location {
	t.Helper()
	loc := models.Location{Name: name}
	if err := db.Create(&loc).Error; err != nil {
		t.Fatalf("Failed to create location: %v", err)
	}
	return loc
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := utils.HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return h
}

func CreateAdmin(t *testing.T, db *gorm.DB, name, email, password string) models.Admin {
	t.Helper()
	admin := models.Admin{Name: name, Email: email, PasswordHash: hash(t, password)}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return admin
}

func CreateStaff(t *testing.T, db *gorm.DB, name, email, password string) models.Staff {
	t.Helper()
	staff := models.Staff{Name: name, Email: email, PasswordHash: hash(t, password)}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("Failed to create staff: %v", err)
	}
	return staff
}

func Assign(t *testing.T, db *gorm.DB, staffID, locationID uint) {
	t.Helper()
	if err := db.Create(&models.Assignment{StaffID: staffID, LocationID: locationID}).Error; err != nil {
		t.Fatalf("Failed to create assignment: %v", err)
	}
}

// CreateFeedback inserts a feedback row with an explicit timestamp.
func CreateFeedback(t *testing.T, db *gorm.DB, locationID uint, rating int, at time.Time) models.Feedback {
	t.Helper()
	f := models.Feedback{
		LocationID:  locationID,
		Cleanliness: rating,
		WaterSoap:   rating,
		Hygiene:     rating,
		Odor:        rating,
		CreatedAt:   at,
	}
	if err := db.Create(&f).Error; err != nil {
		t.Fatalf("Failed to create feedback: %v", err)
	}
	return f
}

// DoRequest sends a request through handler. body is JSON-encoded unless it is nil or a string.
func DoRequest(t *testing.T, handler http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// DecodeJSON decodes a recorder body into v.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}
