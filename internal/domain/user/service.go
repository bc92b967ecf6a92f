package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carebook/carebook/internal/domain/apperr"
	"github.com/carebook/carebook/internal/domain/audit"
	"github.com/carebook/carebook/internal/platform/auth"
)

const minPasswordLength = 6

// RequestMeta carries caller details recorded in the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Service implements account registration and session issuance.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
	secret   string
	lifetime time.Duration
}

func NewService(repo Repository, recorder *audit.Recorder, secret string, lifetime time.Duration) *Service {
	return &Service{repo: repo, recorder: recorder, secret: secret, lifetime: lifetime}
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Role           string  `json:"role"`
	Phone          *string `json:"phone,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
}

func (in *RegisterInput) validate() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return apperr.Validation("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	if in.FirstName == "" || in.LastName == "" {
		return apperr.Validation("first and last name are required")
	}
	if !auth.ValidRole(in.Role) {
		return apperr.Validation("invalid role %q", in.Role)
	}
	return nil
}

// Session is the result of a successful register or login.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Register creates an account and returns a fresh session.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*Session, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &User{
		ID:             uuid.New(),
		Email:          in.Email,
		PasswordHash:   string(hash),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           in.Role,
		Phone:          in.Phone,
		Specialization: in.Specialization,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := auth.IssueToken(s.secret, u.ID, u.Role, s.lifetime)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(audit.RecordInput{
		UserID:    u.ID,
		Action:    audit.ActionCreate,
		Resource:  audit.ResourceAuth,
		Changes:   map[string]interface{}{"email": u.Email, "role": u.Role},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return &Session{Token: token, User: u}, nil
}

// LoginInput is the payload for authenticating.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a fresh session. Unknown emails and
// bad passwords report the same error so accounts cannot be enumerated.
func (s *Service) Login(ctx context.Context, in LoginInput, meta RequestMeta) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Forbidden("invalid credentials")
		}
		return nil, err
	}
	if !u.Active {
		return nil, apperr.Forbidden("account is deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperr.Forbidden("invalid credentials")
	}

	token, err := auth.IssueToken(s.secret, u.ID, u.Role, s.lifetime)
	if err != nil {
		return nil, err
	}

	s.recorder.Record(audit.RecordInput{
		UserID:    u.ID,
		Action:    audit.ActionLogin,
		Resource:  audit.ResourceAuth,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return &Session{Token: token, User: u}, nil
}

// Me returns the authenticated user's own account.
func (s *Service) Me(ctx context.Context, actor auth.Actor) (*User, error) {
	return s.repo.GetByID(ctx, actor.ID)
}

// Logout records the end of a session. Tokens are stateless, so the only
// server-side effect is the audit entry.
func (s *Service) Logout(ctx context.Context, actor auth.Actor, meta RequestMeta) {
	s.recorder.Record(audit.RecordInput{
		UserID:    actor.ID,
		Action:    audit.ActionLogout,
		Resource:  audit.ResourceAuth,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
}

// ListDoctors returns active doctor accounts for appointment booking.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.ListByRole(ctx, auth.RoleDoctor, limit, offset)
}
