package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/opsdesk/internal/auth/domain"
	"github.com/smallbiznis/opsdesk/internal/auth/password"
	"github.com/smallbiznis/opsdesk/internal/clock"
	"github.com/smallbiznis/opsdesk/pkg/db"
	"github.com/smallbiznis/opsdesk/pkg/db/option"
	"github.com/smallbiznis/opsdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	sessionTokenBytes = 32
	sessionTTL        = 7 * 24 * time.Hour

	minPasswordLength = 8
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	users    repository.Repository[domain.User]
	sessions repository.Repository[domain.Session]
	dbConn   *gorm.DB
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		users:    repository.ProvideStore[domain.User](p.DB),
		sessions: repository.ProvideStore[domain.Session](p.DB),
		dbConn:   p.DB,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, domain.ErrInvalidRole
	}

	existing, err := s.users.FindOne(ctx, &domain.User{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultDisplayName(email)
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        email,
		PasswordHash: &hashed,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if contact := strings.TrimSpace(req.ContactNumber); contact != "" {
		user.ContactNumber = &contact
	}
	if address := strings.TrimSpace(req.Address); address != "" {
		user.Address = &address
	}

	if err := s.users.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindOne(ctx, &domain.User{Email: email})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !password.Verify(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        strings.TrimSpace(req.UserAgent),
		IPAddress:        strings.TrimSpace(req.IPAddress),
		Metadata:         datatypes.JSONMap{"login_method": "password"},
		ExpiresAt:        now.Add(sessionTTL),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		User:      user,
		RawToken:  rawToken,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return nil
	}
	session, err := s.sessions.FindOne(ctx, &domain.Session{SessionTokenHash: hashToken(rawToken)})
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	now := s.clock.Now()
	return s.sessions.Update(ctx, session.ID.String(), map[string]any{"revoked_at": now})
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Session, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.sessions.FindOne(ctx, &domain.Session{SessionTokenHash: hashToken(rawToken)})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrInvalidSession
	}
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	now := s.clock.Now()
	if now.After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	_ = s.sessions.Update(ctx, session.ID.String(), map[string]any{"last_seen_at": now})
	return session, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id == 0 {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.users.FindOne(ctx, &domain.User{ID: id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	items, err := s.users.Find(ctx, &domain.User{}, option.WithOrder("name asc"))
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}
	return users, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	return s.dbConn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", user.ID).Delete(&domain.User{}).Error
	})
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.ErrInvalidCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}

func defaultDisplayName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
