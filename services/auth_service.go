package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sanitation-feedback-server/types"
	"sanitation-feedback-server/utils"
)

// AuthService exchanges email/password credentials for bearer tokens.
type AuthService struct {
	db     *gorm.DB
	tokens *TokenService
	logger *zap.Logger
}

func NewAuthService(db *gorm.DB, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, tokens: tokens, logger: logger}
}

type credentialRow struct {
	ID           uint
	PasswordHash string
}

// Login checks the credentials against the admin or staff table and returns a signed token.
func (s *AuthService) Login(ctx context.Context, role types.Role, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", NewInvalidInputError("email and password are required")
	}

	var table string
	switch role {
	case types.RoleAdmin:
		table = "admin"
	case types.RoleStaff:
		table = "staff"
	default:
		return "", NewInvalidInputError("unknown role")
	}

	var rows []credentialRow
	err := s.db.WithContext(ctx).
		Table(table).
		Select("id, password_hash").
		Where("email = ?", email).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return "", NewStorageError(err)
	}

	if len(rows) == 0 || !utils.CheckPasswordHash(password, rows[0].PasswordHash) {
		s.logger.Info("login rejected", zap.String("role", string(role)), zap.String("email", email))
		return "", NewUnauthenticatedError("Invalid credentials", nil)
	}

	row := rows[0]
	token, err := s.tokens.Issue(row.ID, role)
	if err != nil {
		return "", NewStorageError(err)
	}

	s.logger.Info("login succeeded", zap.String("role", string(role)), zap.Uint("subject_id", row.ID))
	return token, nil
}
