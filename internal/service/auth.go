package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/realorfakerf/myblog/internal/repository"
)

const (
	passwordMinLen = 6
	passwordMaxLen = 72 // bcrypt input cap
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SessionEventType marks what changed about a session.
type SessionEventType string

const (
	SignedIn  SessionEventType = "signed_in"
	SignedOut SessionEventType = "signed_out"
)

type SessionEvent struct {
	Type   SessionEventType
	UserID string
}

// Viewer is the resolved identity plus profile for a request.
type Viewer struct {
	User    *repository.User
	Profile *repository.Profile
}

// Auth owns identity and sessions. It is constructed once and handed to
// consumers by reference; session changes are published to subscribers.
type Auth struct {
	repo repository.Repository
	ttl  time.Duration

	mu   sync.Mutex
	subs map[chan SessionEvent]struct{}
}

func NewAuth(repo repository.Repository, sessionTTL time.Duration) *Auth {
	return &Auth{
		repo: repo,
		ttl:  sessionTTL,
		subs: make(map[chan SessionEvent]struct{}),
	}
}

// Subscribe returns a channel receiving session-change events until
// Unsubscribe is called. Slow subscribers drop events rather than block.
func (a *Auth) Subscribe() chan SessionEvent {
	ch := make(chan SessionEvent, 8)
	a.mu.Lock()
	a.subs[ch] = struct{}{}
	a.mu.Unlock()
	return ch
}

func (a *Auth) Unsubscribe(ch chan SessionEvent) {
	a.mu.Lock()
	if _, ok := a.subs[ch]; ok {
		delete(a.subs, ch)
		close(ch)
	}
	a.mu.Unlock()
}

func (a *Auth) publish(event SessionEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ch := range a.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SignUp registers a new identity, provisions its profile from the
// side-channel nickname, and opens a session.
func (a *Auth) SignUp(ctx context.Context, email, password, nickname string) (string, *Viewer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", nil, validationf("invalid email address")
	}
	if n := len(password); n < passwordMinLen || n > passwordMaxLen {
		return "", nil, validationf("password must be %d to %d characters", passwordMinLen, passwordMaxLen)
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = nicknameFromEmail(email)
	}
	if n := utf8.RuneCountInString(nickname); n < nicknameMinLen || n > nicknameMaxLen {
		return "", nil, validationf("nickname must be %d to %d characters", nicknameMinLen, nicknameMaxLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	user := &repository.User{Email: email, PasswordHash: string(hash)}
	if err := a.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, validationf("email is already registered")
		}
		return "", nil, err
	}

	profile := &repository.Profile{ID: user.ID, Email: email, Nickname: nickname}
	if err := a.repo.CreateProfile(ctx, profile); err != nil {
		return "", nil, err
	}

	token, err := a.openSession(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &Viewer{User: user, Profile: profile}, nil
}

// SignIn verifies credentials and opens a session. Wrong email and wrong
// password are indistinguishable to the caller.
func (a *Auth) SignIn(ctx context.Context, email, password string) (string, *Viewer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, validationf("invalid email or password")
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, validationf("invalid email or password")
	}

	token, err := a.openSession(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	profile, err := a.profileFor(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, &Viewer{User: user, Profile: profile}, nil
}

// SignOut deletes the session and notifies subscribers right away.
func (a *Auth) SignOut(ctx context.Context, token string) error {
	session, err := a.repo.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := a.repo.DeleteSession(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	a.publish(SessionEvent{Type: SignedOut, UserID: session.UserID})
	return nil
}

// Current resolves a session token into the viewer. Expired sessions are
// deleted on sight. A missing profile row is provisioned from the
// identity's email and looked up once more.
func (a *Auth) Current(ctx context.Context, token string) (*Viewer, error) {
	session, err := a.repo.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		if err := a.repo.DeleteSession(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Printf("[AUTH] deleting expired session: %v", err)
		}
		return nil, ErrUnauthenticated
	}

	user, err := a.repo.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	profile, err := a.profileFor(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Viewer{User: user, Profile: profile}, nil
}

func (a *Auth) openSession(ctx context.Context, userID string) (string, error) {
	session := &repository.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(a.ttl),
	}
	if err := a.repo.CreateSession(ctx, session); err != nil {
		return "", err
	}
	a.publish(SessionEvent{Type: SignedIn, UserID: userID})
	return session.Token, nil
}

func (a *Auth) profileFor(ctx context.Context, user *repository.User) (*repository.Profile, error) {
	profile, err := a.repo.GetProfile(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Auto-provision with defaults derived from the email, then retry the
	// lookup once: a concurrent provision may have won the insert.
	fresh := &repository.Profile{ID: user.ID, Email: user.Email, Nickname: nicknameFromEmail(user.Email)}
	if err := a.repo.CreateProfile(ctx, fresh); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}
	return a.repo.GetProfile(ctx, user.ID)
}

func nicknameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	runes := []rune(local)
	if len(runes) > nicknameMaxLen {
		runes = runes[:nicknameMaxLen]
	}
	if len(runes) < nicknameMinLen {
		return "user"
	}
	return string(runes)
}
