package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"sanitation-feedback-server/models"
	"sanitation-feedback-server/utils"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedData describes the reference data provisioned at startup.
type SeedData struct {
	Locations []string      `yaml:"locations"`
	Admins    []SeedAccount `yaml:"admins"`
	Staff     []SeedStaff   `yaml:"staff"`
}

// SeedAccount carries either a plaintext password (hashed on insert) or a precomputed bcrypt hash.
type SeedAccount struct {
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
}

type SeedStaff struct {
	SeedAccount `yaml:",inline"`
	Locations   []string `yaml:"locations"`
}

// DefaultSeed returns the embedded development fixtures.
func DefaultSeed() (*SeedData, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeedFile reads and validates a YAML seed file.
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes YAML seed data and checks its references.
func ParseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *SeedData) Validate() error {
	known := make(map[string]bool, len(d.Locations))
	for _, name := range d.Locations {
		if strings.TrimSpace(name) == "" {
			return errors.New("seed: location name must not be empty")
		}
		known[name] = true
	}

	check := func(kind string, a SeedAccount) error {
		if a.Email == "" || a.Name == "" {
			return fmt.Errorf("seed: %s entries need a name and an email", kind)
		}
		if a.Password == "" && a.PasswordHash == "" {
			return fmt.Errorf("seed: %s %s has neither password nor password_hash", kind, a.Email)
		}
		return nil
	}
	for _, a := range d.Admins {
		if err := check("admin", a); err != nil {
			return err
		}
	}
	for _, s := range d.Staff {
		if err := check("staff", s.SeedAccount); err != nil {
			return err
		}
		for _, loc := range s.Locations {
			if !known[loc] {
				return fmt.Errorf("seed: staff %s references unknown location %q", s.Email, loc)
			}
		}
	}
	return nil
}

// Seed inserts whatever seed rows are missing. Existing rows, matched by location name,
// account email or assignment pair, are left untouched.
func Seed(ctx context.Context, db *gorm.DB, data *SeedData, log *zap.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locationIDs := make(map[string]uint, len(data.Locations))
		for _, name := range data.Locations {
			loc := models.Location{Name: name}
			if err := tx.Where(models.Location{Name: name}).FirstOrCreate(&loc).Error; err != nil {
				return fmt.Errorf("failed to seed location %q: %w", name, err)
			}
			locationIDs[name] = loc.ID
		}

		for _, a := range data.Admins {
			var existing models.Admin
			found, err := findByEmail(tx, &existing, a.Email)
			if err != nil {
				return err
			}
			if found {
				continue
			}
			hash, err := a.hash()
			if err != nil {
				return err
			}
			admin := models.Admin{Name: a.Name, Email: a.Email, PasswordHash: hash}
			if err := tx.Create(&admin).Error; err != nil {
				return fmt.Errorf("failed to seed admin %s: %w", a.Email, err)
			}
			log.Info("seeded admin", zap.String("email", a.Email))
		}

		for _, s := range data.Staff {
			var staff models.Staff
			found, err := findByEmail(tx, &staff, s.Email)
			if err != nil {
				return err
			}
			if !found {
				hash, err := s.hash()
				if err != nil {
					return err
				}
				staff = models.Staff{Name: s.Name, Email: s.Email, PasswordHash: hash}
				if err := tx.Create(&staff).Error; err != nil {
					return fmt.Errorf("failed to seed staff %s: %w", s.Email, err)
				}
				log.Info("seeded staff", zap.String("email", s.Email))
			}

			for _, locName := range s.Locations {
				assignment := models.Assignment{StaffID: staff.ID, LocationID: locationIDs[locName]}
				if err := tx.Where(assignment).FirstOrCreate(&assignment).Error; err != nil {
					return fmt.Errorf("failed to assign %s to %q: %w", s.Email, locName, err)
				}
			}
		}
		return nil
	})
}

func findByEmail(tx *gorm.DB, dest interface{}, email string) (bool, error) {
	err := tx.Where("email = ?", email).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", email, err)
	}
	return true, nil
}

func (a SeedAccount) hash() (string, error) {
	if a.PasswordHash != "" {
		return a.PasswordHash, nil
	}
	hash, err := utils.HashPassword(a.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password for %s: %w", a.Email, err)
	}
	return hash, nil
}
