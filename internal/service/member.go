package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/room-escape-reservation/internal/model"
	"github.com/iliyamo/room-escape-reservation/internal/utils"
)

// AuthConfig carries the token and hashing settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is an authenticated member with a fresh token pair.
type Session struct {
	Member  MemberView
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", model.ErrAuthorization)

type MemberService struct {
	members MemberStore
	tokens  TokenStore
	cfg     AuthConfig
	log     *zap.Logger
}

func NewMemberService(members MemberStore, tokens TokenStore, cfg AuthConfig, log *zap.Logger) *MemberService {
	return &MemberService{members: members, tokens: tokens, cfg: cfg, log: log}
}

// Signup registers a MEMBER and signs them in.
func (s *MemberService) Signup(ctx context.Context, req SignupRequest) (Session, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case name == "":
		return Session{}, fmt.Errorf("%w: name is required", model.ErrValidation)
	case !validEmail(email):
		return Session{}, fmt.Errorf("%w: invalid email", model.ErrValidation)
	case len(req.Password) < utils.MinPasswordLength:
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", model.ErrValidation, utils.MinPasswordLength)
	}
	m, err := s.create(ctx, name, email, req.Password, model.RoleMember)
	if err != nil {
		return Session{}, err
	}
	s.log.Info("member signed up", zap.Uint64("member_id", m.ID))
	return s.issue(ctx, m)
}

// Login checks the credentials.  Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *MemberService) Login(ctx context.Context, req LoginRequest) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", model.ErrValidation)
	}
	m, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Session{}, errInvalidCredentials
		}
		return Session{}, err
	}
	if err := m.CheckPassword(req.Password); err != nil {
		s.log.Info("login rejected", zap.Uint64("member_id", m.ID))
		return Session{}, errInvalidCredentials
	}
	return s.issue(ctx, m)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *MemberService) Refresh(ctx context.Context, raw string) (Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Session{}, fmt.Errorf("%w: refresh_token is required", model.ErrValidation)
	}
	hash := utils.HashRefreshRaw(raw)
	memberID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return Session{}, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return Session{}, err
	}
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Session{}, errInvalidCredentials
		}
		return Session{}, err
	}
	return s.issue(ctx, m)
}

// Logout revokes the given refresh token, or every token of memberID when
// no token is given.
func (s *MemberService) Logout(ctx context.Context, memberID uint64, refreshRaw string) error {
	if raw := strings.TrimSpace(refreshRaw); raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := s.tokens.ValidateRefresh(ctx, hash); err != nil {
			return err
		}
		return s.tokens.RevokeByHash(ctx, hash)
	}
	if memberID == 0 {
		return fmt.Errorf("%w: provide a token or refresh_token", model.ErrValidation)
	}
	return s.tokens.RevokeAllForMember(ctx, memberID)
}

func (s *MemberService) Me(ctx context.Context, memberID uint64) (MemberView, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return MemberView{}, err
	}
	return toMemberView(m), nil
}

func (s *MemberService) List(ctx context.Context) ([]MemberView, error) {
	ms, err := s.members.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MemberView, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMemberView(m))
	}
	return out, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is
// already registered.
func (s *MemberService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.members.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin() {
			s.log.Warn("bootstrap admin email belongs to a regular member", zap.Uint64("member_id", existing.ID))
		}
		return nil
	case !errors.Is(err, model.ErrNotFound):
		return err
	}
	if name == "" {
		name = "admin"
	}
	m, err := s.create(ctx, name, email, password, model.RoleAdmin)
	if err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", zap.Uint64("member_id", m.ID))
	return nil
}

func (s *MemberService) create(ctx context.Context, name, email, password string, role model.Role) (model.Member, error) {
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return model.Member{}, err
	}
	m := model.Member{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.members.Create(ctx, &m); err != nil {
		return model.Member{}, err
	}
	return m, nil
}

func (s *MemberService) issue(ctx context.Context, m model.Member) (Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, m.ID, m.Name, string(m.Role), s.cfg.AccessTTLMin)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, m.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Session{Member: toMemberView(m), Access: access, Refresh: refresh}, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
