package mockstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/lessismore22/Quickfund/internal/auth"
	"github.com/lessismore22/Quickfund/internal/db"
)

// DemoAdminID backs the seeded admin account.
const DemoAdminID = "00000000-0000-0000-0000-000000000002"

// Demo credentials accepted in mock mode.
const (
	DemoBorrowerEmail = "demo@quickfund.ng"
	DemoAdminEmail    = "admin@quickfund.ng"
	DemoPassword      = "password123"
)

// AuthRepo keeps users and sessions in memory. Unlike the loan fixtures,
// sessions are writable: a login has to mint and rotate refresh tokens even
// in mock mode.
type AuthRepo struct {
	mu       sync.RWMutex
	users    map[string]db.User
	sessions map[string]db.Session
}

func NewAuthRepo() *AuthRepo {
	r := &AuthRepo{
		users:    map[string]db.User{},
		sessions: map[string]db.Session{},
	}
	r.seed()
	return r
}

func (r *AuthRepo) seed() {
	hash, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	now := time.Now().UTC()

	r.users[DemoUserID] = db.User{
		ID:               DemoUserID,
		Email:            DemoBorrowerEmail,
		PasswordHash:     string(hash),
		FirstName:        "Demo",
		LastName:         "Borrower",
		PhoneNumber:      "+2348011111111",
		BVN:              "12345678901",
		BVNVerified:      true,
		EmploymentStatus: "self_employed",
		MonthlyIncome:    decimal.RequireFromString("180000"),
		Role:             auth.RoleBorrower,
		KYCVerified:      true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.users[DemoAdminID] = db.User{
		ID:           DemoAdminID,
		Email:        DemoAdminEmail,
		PasswordHash: string(hash),
		FirstName:    "Demo",
		LastName:     "Admin",
		Role:         auth.RoleAdmin,
		KYCVerified:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (r *AuthRepo) CreateUser(ctx context.Context, in db.CreateUserInput) (*db.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	user := db.User{
		ID:               uuid.NewString(),
		Email:            strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:     in.PasswordHash,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		PhoneNumber:      in.PhoneNumber,
		BVN:              in.BVN,
		EmploymentStatus: in.EmploymentStatus,
		MonthlyIncome:    in.MonthlyIncome,
		Role:             in.Role,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.users[user.ID] = user
	return &user, nil
}

func (r *AuthRepo) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, user := range r.users {
		if strings.ToLower(user.Email) == needle {
			out := user
			return &out, nil
		}
	}
	return nil, errors.New("no rows in result set")
}

func (r *AuthRepo) GetUserByID(ctx context.Context, userID string) (*db.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	out := user
	return &out, nil
}

func (r *AuthRepo) CreateSession(ctx context.Context, userID, refreshHash, userAgent, ipAddress string, expiresAt time.Time) (*db.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	session := db.Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		RefreshTokenHash: refreshHash,
		UserAgent:        userAgent,
		IPAddress:        ipAddress,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.sessions[session.ID] = session
	return &session, nil
}

func (r *AuthRepo) GetSessionByID(ctx context.Context, sessionID string) (*db.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	out := session
	return &out, nil
}

func (r *AuthRepo) RevokeSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	session.RevokedAt = &now
	session.UpdatedAt = now
	r.sessions[sessionID] = session
	return nil
}

func (r *AuthRepo) UpdateSessionRefreshHash(ctx context.Context, sessionID, refreshHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return errors.New("no rows in result set")
	}
	session.RefreshTokenHash = refreshHash
	session.UpdatedAt = time.Now().UTC()
	r.sessions[sessionID] = session
	return nil
}
