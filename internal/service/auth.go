package service

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"streams-service/internal/apperr"
	"streams-service/internal/logger"
	"streams-service/internal/models"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthResult is what register and login hand back to the caller.
type AuthResult struct {
	Token  string `json:"token"`
	UserID int    `json:"auth_user_id"`
}

// Register creates a new user, opens a session and returns its token.
// The first registered user becomes a global owner.
func (s *Service) Register(email, password, nameFirst, nameLast string) (AuthResult, error) {
	if !emailPattern.MatchString(email) {
		return AuthResult{}, apperr.Inputf("email is not valid")
	}
	if len(password) < 6 {
		return AuthResult{}, apperr.Inputf("password must be at least 6 characters")
	}
	if len(nameFirst) < 1 || len(nameFirst) > 50 {
		return AuthResult{}, apperr.Inputf("first name must be between 1 and 50 characters")
	}
	if len(nameLast) < 1 || len(nameLast) > 50 {
		return AuthResult{}, apperr.Inputf("last name must be between 1 and 50 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}

	s.store.Lock()
	if s.store.UserByEmail(email) != nil {
		s.store.Unlock()
		return AuthResult{}, apperr.Inputf("email is already registered")
	}

	handle, err := s.generateHandleLocked(nameFirst, nameLast)
	if err != nil {
		s.store.Unlock()
		return AuthResult{}, err
	}

	now := s.nowUnix()
	perm := models.PermMember
	if len(s.store.State.Users) == 0 && len(s.store.State.RemovedUsers) == 0 {
		perm = models.PermOwner
		s.store.State.AdminNum = 1
		// The workspace stats clock starts with the first user.
		s.store.BumpChannelsExist(0, now)
		s.store.BumpDMsExist(0, now)
		s.store.BumpMessagesExist(0, now)
	}

	u := &models.User{
		ID:            len(s.store.State.Users) + len(s.store.State.RemovedUsers) + 1,
		Email:         email,
		PasswordHash:  hash,
		NameFirst:     nameFirst,
		NameLast:      nameLast,
		Handle:        handle,
		Perm:          perm,
		Channels:      map[int]models.Role{},
		DMs:           map[int]models.Role{},
		SentMessages:  map[int]bool{},
		Notifications: []models.Notification{},
		Stats: models.UserStats{
			ChannelsJoined: []models.StatPoint{{Value: 0, Timestamp: now}},
			DMsJoined:      []models.StatPoint{{Value: 0, Timestamp: now}},
			MessagesSent:   []models.StatPoint{{Value: 0, Timestamp: now}},
		},
	}
	s.store.State.Users = append(s.store.State.Users, u)
	s.store.State.Handles[handle] = u.ID

	sessionID := s.store.NewSession(u.ID)
	s.store.Unlock()

	signed, err := s.signer.Mint(u.ID, sessionID)
	if err != nil {
		return AuthResult{}, err
	}
	s.persist()
	return AuthResult{Token: signed, UserID: u.ID}, nil
}

// Login checks the credentials and opens a fresh session.
func (s *Service) Login(email, password string) (AuthResult, error) {
	s.store.Lock()
	u := s.store.UserByEmail(email)
	if u == nil {
		s.store.Unlock()
		return AuthResult{}, apperr.Inputf("email is not registered")
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		s.store.Unlock()
		return AuthResult{}, apperr.Inputf("password is incorrect")
	}
	sessionID := s.store.NewSession(u.ID)
	s.store.Unlock()

	signed, err := s.signer.Mint(u.ID, sessionID)
	if err != nil {
		return AuthResult{}, err
	}
	s.persist()
	return AuthResult{Token: signed, UserID: u.ID}, nil
}

// Logout invalidates the presented session only. Other sessions of the
// same user stay live.
func (s *Service) Logout(raw string) error {
	claims, err := s.signer.Parse(raw)
	if err != nil {
		return apperr.Accessf("invalid token")
	}

	s.store.Lock()
	userID, ok := s.store.SessionUser(claims.SessionID)
	if !ok || userID != claims.UserID {
		s.store.Unlock()
		return apperr.Accessf("session is no longer active")
	}
	s.store.DropSession(claims.SessionID)
	s.store.Unlock()

	s.persist()
	return nil
}

// PasswordResetRequest issues a reset code for a registered email and
// logs the holder out of every session. Unknown emails succeed silently
// so the endpoint does not leak which addresses exist.
func (s *Service) PasswordResetRequest(email string) {
	s.store.Lock()
	u := s.store.UserByEmail(email)
	if u == nil {
		s.store.Unlock()
		return
	}
	s.store.DropUserSessions(u.ID)
	code := 100000 + len(s.store.State.ResetCodes) + 2
	s.store.State.ResetCodes[code] = u.ID
	s.store.Unlock()

	// Mail delivery is out of scope; the code is surfaced in the log.
	logger.Log.Info("password_reset_code_issued",
		zap.Int("user_id", u.ID),
		zap.Int("code", code),
	)
	s.persist()
}

// PasswordReset consumes a reset code and replaces the password.
func (s *Service) PasswordReset(code int, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.Inputf("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.store.Lock()
	userID, ok := s.store.State.ResetCodes[code]
	if !ok {
		s.store.Unlock()
		return apperr.Inputf("reset code is not valid")
	}
	u := s.store.FindUser(userID)
	if u == nil {
		s.store.Unlock()
		return apperr.Inputf("reset code is not valid")
	}
	u.PasswordHash = hash
	delete(s.store.State.ResetCodes, code)
	s.store.Unlock()

	s.persist()
	return nil
}

// generateHandleLocked derives a unique handle from the name: the first
// 20 alphanumerics of the lowercased concatenation, with a numeric
// suffix on collision.
func (s *Service) generateHandleLocked(nameFirst, nameLast string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(nameFirst + nameLast) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 20 {
				break
			}
		}
	}
	base := b.String()
	if base == "" {
		return "", apperr.Inputf("name does not produce a valid handle")
	}

	if _, taken := s.store.State.Handles[base]; !taken {
		return base, nil
	}
	for i := 0; ; i++ {
		candidate := base + strconv.Itoa(i)
		if _, taken := s.store.State.Handles[candidate]; !taken {
			return candidate, nil
		}
	}
}
