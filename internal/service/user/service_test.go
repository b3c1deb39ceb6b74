package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"pcparts-backend/internal/domain"
	tokenrepo "pcparts-backend/internal/repository/token"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by id
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*domain.User{}}
}

func (s *stubUserRepo) Create(_ context.Context, u domain.User) (*domain.User, error) {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, domain.ErrAlreadyExists
		}
	}
	s.nextID++
	u.ID = string(rune('a' + s.nextID))
	s.users[u.ID] = &u
	return &u, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUserRepo) List(context.Context, domain.ListParams) ([]domain.User, int, error) {
	return nil, 0, nil
}

func (s *stubUserRepo) Update(_ context.Context, u domain.User) (*domain.User, error) {
	if _, ok := s.users[u.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	s.users[u.ID] = &u
	return &u, nil
}

func (s *stubUserRepo) SetActive(_ context.Context, id string, active bool) error {
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsActive = active
	return nil
}

type stubTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: map[string]tokenrepo.Token{}}
}

func (s *stubTokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	if _, ok := s.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	s.tokens[t.Token] = t
	return nil
}

func (s *stubTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := s.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *stubTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := s.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(s.tokens, token)
	return nil
}

func (s *stubTokenRepo) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func register(t *testing.T, svc *Service) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Email:     "Buyer@Example.com",
		Password:  "Sup3rSecret",
		FirstName: "Ona",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

func TestRegisterNormalizesEmailAndHashes(t *testing.T) {
	svc := New(newStubUserRepo(), newStubTokenRepo())
	u := register(t, svc)

	if u.Email != "buyer@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
	if u.PasswordHash == "Sup3rSecret" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if u.Role != domain.RoleCustomer {
		t.Errorf("role = %q, want customer", u.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := New(newStubUserRepo(), newStubTokenRepo())
	register(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "buyer@example.com", Password: "Sup3rSecret"})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestRegisterWeakPasswords(t *testing.T) {
	svc := New(newStubUserRepo(), newStubTokenRepo())
	for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		if _, err := svc.Register(context.Background(), RegisterInput{Email: "x@y.com", Password: password}); err == nil {
			t.Errorf("password %q accepted, want rejection", password)
		}
	}
}

func TestLoginAndLookup(t *testing.T) {
	svc := New(newStubUserRepo(), newStubTokenRepo())
	registered := register(t, svc)
	ctx := context.Background()

	u, pair, err := svc.Login(ctx, "buyer@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.ID != registered.ID {
		t.Errorf("user id = %q, want %q", u.ID, registered.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.AccessToken == pair.RefreshToken {
		t.Fatalf("bad token pair: %+v", pair)
	}

	got, err := svc.LookupByToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("LookupByToken: %v", err)
	}
	if got.ID != registered.ID {
		t.Errorf("lookup user = %q, want %q", got.ID, registered.ID)
	}

	// A refresh token must not pass as an access token.
	if _, err := svc.LookupByToken(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := New(newStubUserRepo(), newStubTokenRepo())
	register(t, svc)

	_, _, err := svc.Login(context.Background(), "buyer@example.com", "WrongPass1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := New(repo, newStubTokenRepo())
	u := register(t, svc)
	repo.users[u.ID].IsActive = false

	_, _, err := svc.Login(context.Background(), "buyer@example.com", "Sup3rSecret")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc := New(newStubUserRepo(), newStubTokenRepo())
	register(t, svc)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, "buyer@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	_, next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.AccessToken == pair.AccessToken {
		t.Error("access token not rotated")
	}
	// Used refresh token is revoked.
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reused refresh token accepted: %v", err)
	}
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	tokens := newStubTokenRepo()
	svc := New(newStubUserRepo(), tokens)
	register(t, svc)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, "buyer@example.com", "Sup3rSecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	stored := tokens.tokens[pair.AccessToken]
	stored.ExpiresAt = time.Now().Add(-time.Minute)
	tokens.tokens[pair.AccessToken] = stored

	if _, err := svc.LookupByToken(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
	if _, ok := tokens.tokens[pair.AccessToken]; ok {
		t.Error("expired token not deleted")
	}
}

func TestChangePassword(t *testing.T) {
	svc := New(newStubUserRepo(), newStubTokenRepo())
	u := register(t, svc)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, u.ID, "WrongPass1", "NewSecret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "Sup3rSecret", "NewSecret1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := svc.Login(ctx, "buyer@example.com", "NewSecret1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
