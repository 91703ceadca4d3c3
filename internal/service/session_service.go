package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/lee-tech/workforce-admin/internal/models"
	"github.com/lee-tech/workforce-admin/internal/navigation"
	"github.com/lee-tech/workforce-admin/internal/upstream"
	"github.com/lee-tech/workforce-admin/internal/validation"
)

const (
	tokenTypeAccess = "access"
	nonceSize       = 24
)

// SessionConfig configures token issuance.
type SessionConfig struct {
	Issuer string
	Secret string
	TTL    time.Duration
}

// SessionService logs dashboard users in through the platform, keeps their
// permission map and platform token server-side, and issues a session token
// that refers to them.
type SessionService struct {
	auth     Authenticator
	sessions SessionRepository
	menu     *navigation.Menu
	config   SessionConfig
	sealKey  [32]byte
	now      func() time.Time
	logger   *zap.Logger
}

func NewSessionService(auth Authenticator, sessions SessionRepository, menu *navigation.Menu, config SessionConfig, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		auth:     auth,
		sessions: sessions,
		menu:     menu,
		config:   config,
		sealKey:  sha256.Sum256([]byte("session-seal:" + config.Secret)),
		now:      time.Now,
		logger:   logger,
	}
}

// Login authenticates against the platform and opens a session.
func (s *SessionService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if req == nil {
		req = &models.LoginRequest{}
	}
	req.Username = strings.TrimSpace(req.Username)
	fields := validation.FieldErrors{}
	if req.Username == "" {
		fields.Add("username", "is required")
	}
	if req.Password == "" {
		fields.Add("password", "is required")
	}
	if len(fields) > 0 {
		return nil, fields
	}

	payload, err := s.auth.Login(ctx, req)
	if err != nil {
		if upstream.IsUnauthorized(err) || upstream.IsRejected(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("platform login: %w", err)
	}
	if strings.TrimSpace(payload.Token) == "" || strings.TrimSpace(string(payload.User.ID)) == "" {
		return nil, fmt.Errorf("platform login: response carried no token or user")
	}

	sealed, err := s.seal(payload.Token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := payload.User
	session := &models.Session{
		ID:           uuid.NewString(),
		UserID:       string(user.ID),
		LicenseID:    string(user.LicenseID),
		RoleID:       string(user.RoleID),
		Email:        user.Email,
		DisplayName:  strings.TrimSpace(user.FirstName + " " + user.LastName),
		IsSuperAdmin: user.IsSuperAdmin,
		Permissions:  models.ParsePermissionMap(payload.Permissions),
		SealedToken:  sealed,
		ExpiresAt:    now.Add(s.config.TTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, err := s.issue(session, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session opened",
		zap.String("session_id", session.ID),
		zap.String("user_id", session.UserID),
		zap.Int("granted", len(session.Permissions.Granted())),
	)

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.config.TTL.Seconds()),
		TokenType:   "Bearer",
		Session:     session.ToInfo(),
		Menu:        s.menu.For(session.Permissions),
	}, nil
}

// Resolve validates a session token and returns its principal.
func (s *SessionService) Resolve(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	sessionID, _ := claims["jti"].(string)
	if sessionID == "" {
		return nil, ErrInvalidToken
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrInvalidToken
	}
	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.Warn("failed to delete expired session", zap.String("session_id", session.ID), zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	token, err := s.open(session.SealedToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &Principal{
		SessionID:     session.ID,
		UserID:        session.UserID,
		LicenseID:     session.LicenseID,
		RoleID:        session.RoleID,
		Email:         session.Email,
		IsSuperAdmin:  session.IsSuperAdmin,
		Permissions:   session.Permissions,
		UpstreamToken: token,
	}, nil
}

// Logout discards the session and everything it holds.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("session closed", zap.String("session_id", sessionID))
	return nil
}

// Current returns the public view of the principal's session.
func (s *SessionService) Current(ctx context.Context, principal *Principal) (*models.SessionInfo, error) {
	session, err := s.sessions.GetByID(ctx, principal.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrInvalidToken
	}
	return session.ToInfo(), nil
}

// Menu returns the navigation menu visible with perms.
func (s *SessionService) Menu(perms models.PermissionMap) []models.MenuNode {
	return s.menu.For(perms)
}

// Introspect reports whether a session token is active. It never fails;
// anything unusable is reported inactive.
func (s *SessionService) Introspect(ctx context.Context, tokenString string) *models.IntrospectionResponse {
	inactive := &models.IntrospectionResponse{Active: false}

	claims, err := s.parse(tokenString)
	if err != nil {
		return inactive
	}
	principal, err := s.Resolve(ctx, tokenString)
	if err != nil {
		return inactive
	}

	resp := &models.IntrospectionResponse{
		Active:    true,
		Sub:       principal.UserID,
		SessionID: principal.SessionID,
		LicenseID: principal.LicenseID,
		Scopes:    principal.Permissions.Granted(),
		TokenType: tokenTypeAccess,
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		resp.IssuedAt = int64Ptr(iat.Unix())
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		resp.ExpiresAt = int64Ptr(exp.Unix())
	}
	return resp
}

// RevokeUser deletes every session of userID, discarding their permission
// maps. The user's next request is rejected as unauthenticated.
func (s *SessionService) RevokeUser(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, nil
	}
	revoked, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	if revoked > 0 {
		s.logger.Info("revoked sessions", zap.String("user_id", userID), zap.Int64("count", revoked))
	}
	return revoked, nil
}

// PurgeExpired deletes sessions past their expiry.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *SessionService) issue(session *models.Session, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":        s.config.Issuer,
		"sub":        session.UserID,
		"aud":        []string{s.config.Issuer},
		"exp":        session.ExpiresAt.Unix(),
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"jti":        session.ID,
		"type":       tokenTypeAccess,
		"license_id": session.LicenseID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (s *SessionService) parse(tokenString string) (jwt.MapClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// seal encrypts the platform token; the nonce is prepended to the box.
func (s *SessionService) seal(token string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, &s.sealKey), nil
}

func (s *SessionService) open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed token too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.sealKey)
	if !ok {
		return "", errors.New("sealed token cannot be opened")
	}
	return string(plain), nil
}

func int64Ptr(v int64) *int64 {
	return &v
}
