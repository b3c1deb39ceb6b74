package httpserver

import (
	"context"

	"pcparts-backend/internal/domain"
	orderrepo "pcparts-backend/internal/repository/order"
	reportrepo "pcparts-backend/internal/repository/report"
	brandsvc "pcparts-backend/internal/service/brand"
	cartsvc "pcparts-backend/internal/service/cart"
	categorysvc "pcparts-backend/internal/service/category"
	ordersvc "pcparts-backend/internal/service/order"
	productsvc "pcparts-backend/internal/service/product"
	recommendsvc "pcparts-backend/internal/service/recommend"
	reportsvc "pcparts-backend/internal/service/report"
	usersvc "pcparts-backend/internal/service/user"
)

// Deps carries the service surface the router needs. Interfaces keep the
// handlers testable without a database.
type Deps struct {
	UserSvc      UserService
	CategorySvc  CategoryService
	BrandSvc     BrandService
	ProductSvc   ProductService
	CartSvc      CartService
	OrderSvc     OrderService
	ReportSvc    ReportService
	RecommendSvc RecommendService
}

type UserService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, *usersvc.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.User, *usersvc.TokenPair, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, p domain.ListParams) (domain.Page[domain.User], error)
	Update(ctx context.Context, id string, in usersvc.UpdateInput) (*domain.User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
	Delete(ctx context.Context, id string) error
}

type CategoryService interface {
	Create(ctx context.Context, in categorysvc.Input) (*domain.Category, error)
	Update(ctx context.Context, id string, in categorysvc.Input) (*domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context, p domain.ListParams) (domain.Page[domain.Category], error)
	ListWithProductCounts(ctx context.Context, p domain.ListParams) (domain.Page[domain.CategoryWithCount], error)
	Delete(ctx context.Context, id string) error
}

type BrandService interface {
	Create(ctx context.Context, in brandsvc.Input) (*domain.Brand, error)
	Update(ctx context.Context, id string, in brandsvc.Input) (*domain.Brand, error)
	Get(ctx context.Context, id string) (*domain.Brand, error)
	List(ctx context.Context, p domain.ListParams) (domain.Page[domain.Brand], error)
	Delete(ctx context.Context, id string) error
}

type ProductService interface {
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, p domain.ListParams) (domain.Page[domain.Product], error)
	ListActive(ctx context.Context, p domain.ListParams) (domain.Page[domain.Product], error)
	ListByCategorySlug(ctx context.Context, slug string, p domain.ListParams) (domain.Page[domain.Product], error)
	Delete(ctx context.Context, id string) error
}

type CartService interface {
	AddToCart(ctx context.Context, userID string, in cartsvc.AddInput) (*domain.Cart, error)
	Sync(ctx context.Context, userID string, items []cartsvc.SyncItem) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Get(ctx context.Context, id string) (*domain.Cart, error)
	List(ctx context.Context, p domain.ListParams) (domain.Page[domain.Cart], error)
	RemoveItem(ctx context.Context, userID, productID, variantSKU string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) (*domain.Cart, error)
	Delete(ctx context.Context, id string) error
}

type OrderService interface {
	Create(ctx context.Context, in ordersvc.CreateInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) (domain.Page[domain.Order], error)
	ListByUser(ctx context.Context, userID string, p domain.ListParams) (domain.Page[domain.Order], error)
	UpdateStatus(ctx context.Context, id string, in ordersvc.StatusInput) (*domain.Order, error)
}

type ReportService interface {
	Summary(ctx context.Context, in reportsvc.QueryInput) (*reportsvc.Summary, error)
	RevenueSeries(ctx context.Context, in reportsvc.QueryInput) ([]reportrepo.Bucket, error)
	TopProducts(ctx context.Context, in reportsvc.QueryInput) ([]reportrepo.TopProduct, error)
	StatusBreakdown(ctx context.Context, in reportsvc.QueryInput) ([]reportrepo.StatusStat, error)
	PaymentMethodBreakdown(ctx context.Context, in reportsvc.QueryInput) ([]reportrepo.PaymentMethodStat, error)
	Customers(ctx context.Context, in reportsvc.QueryInput) (*reportrepo.CustomerStats, error)
	Conversion(ctx context.Context, in reportsvc.QueryInput) (*reportsvc.Conversion, error)
	OrderValues(ctx context.Context, in reportsvc.QueryInput) (*reportrepo.ValueStats, error)
	SalesByLocation(ctx context.Context, in reportsvc.QueryInput) ([]reportrepo.LocationStat, error)
	Dashboard(ctx context.Context, in reportsvc.QueryInput) (*reportsvc.Dashboard, error)
}

type RecommendService interface {
	Recommend(ctx context.Context, query string) (*recommendsvc.Result, error)
}
