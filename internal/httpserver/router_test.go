package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pcparts-backend/internal/domain"
	orderrepo "pcparts-backend/internal/repository/order"
	ordersvc "pcparts-backend/internal/service/order"
	productsvc "pcparts-backend/internal/service/product"
	usersvc "pcparts-backend/internal/service/user"
)

type stubUserService struct {
	user      *domain.User
	lookupErr error
}

func (s *stubUserService) Register(_ context.Context, _ usersvc.RegisterInput) (*domain.User, error) {
	return s.user, nil
}

func (s *stubUserService) Login(context.Context, string, string) (*domain.User, *usersvc.TokenPair, error) {
	if s.user == nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	return s.user, &usersvc.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}, nil
}

func (s *stubUserService) Refresh(context.Context, string) (*domain.User, *usersvc.TokenPair, error) {
	return s.user, &usersvc.TokenPair{AccessToken: "access2", RefreshToken: "refresh2"}, nil
}

func (s *stubUserService) Logout(context.Context, string) error { return nil }

func (s *stubUserService) LookupByToken(context.Context, string) (*domain.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if s.user == nil {
		return nil, usersvc.ErrInvalidToken
	}
	return s.user, nil
}

func (s *stubUserService) Get(context.Context, string) (*domain.User, error) { return s.user, nil }

func (s *stubUserService) List(context.Context, domain.ListParams) (domain.Page[domain.User], error) {
	return domain.Page[domain.User]{Items: []domain.User{}}, nil
}

func (s *stubUserService) Update(_ context.Context, _ string, _ usersvc.UpdateInput) (*domain.User, error) {
	return s.user, nil
}

func (s *stubUserService) ChangePassword(context.Context, string, string, string) error { return nil }
func (s *stubUserService) Delete(context.Context, string) error                         { return nil }

type stubProductService struct {
	page domain.Page[domain.Product]
}

func (s *stubProductService) Create(_ context.Context, _ productsvc.Input) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *stubProductService) Update(_ context.Context, _ string, _ productsvc.Input) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *stubProductService) Get(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *stubProductService) GetBySlug(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *stubProductService) List(context.Context, domain.ListParams) (domain.Page[domain.Product], error) {
	return s.page, nil
}

func (s *stubProductService) ListActive(context.Context, domain.ListParams) (domain.Page[domain.Product], error) {
	return s.page, nil
}

func (s *stubProductService) ListByCategorySlug(context.Context, string, domain.ListParams) (domain.Page[domain.Product], error) {
	return s.page, nil
}

func (s *stubProductService) Delete(context.Context, string) error { return nil }

type stubOrderService struct {
	created *ordersvc.CreateInput
	order   *domain.Order
}

func (s *stubOrderService) Create(_ context.Context, in ordersvc.CreateInput) (*domain.Order, error) {
	s.created = &in
	o := domain.Order{ID: "o1", UserID: in.UserID, IsGuest: in.UserID == nil, GuestInfo: in.GuestInfo}
	return &o, nil
}

func (s *stubOrderService) Get(context.Context, string) (*domain.Order, error) {
	if s.order == nil {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrderService) List(context.Context, orderrepo.ListFilter) (domain.Page[domain.Order], error) {
	return domain.Page[domain.Order]{Items: []domain.Order{}}, nil
}

func (s *stubOrderService) ListByUser(context.Context, string, domain.ListParams) (domain.Page[domain.Order], error) {
	return domain.Page[domain.Order]{Items: []domain.Order{}}, nil
}

func (s *stubOrderService) UpdateStatus(_ context.Context, id string, _ ordersvc.StatusInput) (*domain.Order, error) {
	return &domain.Order{ID: id}, nil
}

func testRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return buildRouter(zerolog.Nop(), nil, deps, []string{"*"})
}

func TestHealthz(t *testing.T) {
	router := testRouter(Deps{UserSvc: &stubUserService{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	router := testRouter(Deps{UserSvc: &stubUserService{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("error envelope missing success=false: %s", rec.Body.String())
	}
}

func TestProfileWithToken(t *testing.T) {
	router := testRouter(Deps{UserSvc: &stubUserService{
		user: &domain.User{ID: "u1", Email: "me@example.com", Role: domain.RoleCustomer, IsActive: true},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email":"me@example.com"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestStaffGateRejectsCustomer(t *testing.T) {
	router := testRouter(Deps{UserSvc: &stubUserService{
		user: &domain.User{ID: "u1", Role: domain.RoleCustomer, IsActive: true},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403, body=%s", rec.Code, rec.Body.String())
	}
}

func TestStaffGateAllowsAdmin(t *testing.T) {
	router := testRouter(Deps{UserSvc: &stubUserService{
		user: &domain.User{ID: "u1", Role: domain.RoleAdmin, IsActive: true},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := testRouter(Deps{UserSvc: &stubUserService{}})

	body := `{"email":"x@y.com","password":"nope"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, body=%s", rec.Code, rec.Body.String())
	}
}

func TestGuestOrderWithoutToken(t *testing.T) {
	orders := &stubOrderService{}
	router := testRouter(Deps{UserSvc: &stubUserService{}, OrderSvc: orders})

	body := `{
		"guestInfo": {"email":"guest@example.com","firstName":"Ona","lastName":"Onaite"},
		"items": [{"productId":"p1","variantSku":"SKU-1","quantity":1}],
		"shippingAddress": {"street":"1 Main St","city":"Vilnius","country":"LT","recipientName":"Ona"},
		"paymentMethod": "cod"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	if orders.created.UserID != nil {
		t.Error("guest order must not carry a user id")
	}
	if orders.created.GuestInfo == nil {
		t.Error("guest info lost in handler")
	}
}

func TestAuthenticatedOrderOverridesParty(t *testing.T) {
	orders := &stubOrderService{}
	router := testRouter(Deps{
		UserSvc:  &stubUserService{user: &domain.User{ID: "u1", Role: domain.RoleCustomer, IsActive: true}},
		OrderSvc: orders,
	})

	// Client-sent guest info must be ignored for authenticated requests.
	body := `{
		"guestInfo": {"email":"spoof@example.com"},
		"items": [{"productId":"p1","variantSku":"SKU-1","quantity":1}],
		"shippingAddress": {"street":"1 Main St","city":"Vilnius","country":"LT","recipientName":"Ona"},
		"paymentMethod": "cod"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if orders.created.UserID == nil || *orders.created.UserID != "u1" {
		t.Error("authenticated order must carry the user id")
	}
	if orders.created.GuestInfo != nil {
		t.Error("guest info must be dropped for authenticated orders")
	}
}

func TestOrderVisibility(t *testing.T) {
	other := "someone-else"
	orders := &stubOrderService{order: &domain.Order{ID: "o1", UserID: &other}}
	router := testRouter(Deps{
		UserSvc:  &stubUserService{user: &domain.User{ID: "u1", Role: domain.RoleCustomer, IsActive: true}},
		OrderSvc: orders,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for foreign order, body=%s", rec.Code, rec.Body.String())
	}
}

func TestPublicProductsNoAuth(t *testing.T) {
	products := &stubProductService{page: domain.Page[domain.Product]{
		Items: []domain.Product{{ID: "p1", Name: "RTX 4060", IsActive: true}},
		Total: 1, TotalPages: 1, Limit: 10,
	}}
	router := testRouter(Deps{UserSvc: &stubUserService{}, ProductSvc: products})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/products", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"RTX 4060"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
