package services

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sarisari/internal/domain"
	"sarisari/internal/repos"
)

// unknownUserHash is verified when the email has no account, keeping the
// unknown-email path as expensive as a real password check.
var unknownUserHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type AuthService struct {
	Users *repos.UserRepo
}

// Login verifies the credentials and binds the session cookie to the account.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.Users.ByEmail(email)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(unknownUserHash, []byte(password))
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
