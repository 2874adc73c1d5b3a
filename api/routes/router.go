package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shoplinehq/shopline-backend/api/controllers"
	"github.com/shoplinehq/shopline-backend/api/middleware"
	addresssvc "github.com/shoplinehq/shopline-backend/internal/address"
	"github.com/shoplinehq/shopline-backend/internal/auth"
	"github.com/shoplinehq/shopline-backend/internal/cart"
	couponssvc "github.com/shoplinehq/shopline-backend/internal/coupons"
	itemssvc "github.com/shoplinehq/shopline-backend/internal/items"
	"github.com/shoplinehq/shopline-backend/internal/orders"
	paymentssvc "github.com/shoplinehq/shopline-backend/internal/payments"
	shopssvc "github.com/shoplinehq/shopline-backend/internal/shops"
	"github.com/shoplinehq/shopline-backend/internal/wallet"
	"github.com/shoplinehq/shopline-backend/pkg/auth/session"
	"github.com/shoplinehq/shopline-backend/pkg/config"
	"github.com/shoplinehq/shopline-backend/pkg/db"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	"github.com/shoplinehq/shopline-backend/pkg/logger"
	"github.com/shoplinehq/shopline-backend/pkg/metrics"
	"github.com/shoplinehq/shopline-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers. The redis-backed
// fields are interfaces so tests can substitute in-memory stores; cmd/api
// passes the same *redis.Client for all three.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DBPinger         db.Pinger
	IdempotencyStore redis.IdempotencyStore
	RateLimitStore   middleware.RateLimitStore
	RedisPinger      redis.Pinger
	Sessions         session.AccessSessionChecker
	Registry         *prometheus.Registry

	AuthService     auth.Service
	RegisterService auth.RegisterService
	WalletService   wallet.Service
	CartService     cart.Service
	OrdersService   orders.Service
	CouponsService  couponssvc.Service
	AddressService  addresssvc.Service
	PaymentsService paymentssvc.Service
	ShopsService    shopssvc.Service
	ItemsService    itemssvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	if deps.Registry != nil {
		httpMetrics := metrics.NewHTTPMetrics(deps.Registry)
		r.Use(middleware.Metrics(httpMetrics))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DBPinger, deps.RedisPinger, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimitStore, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, deps.RateLimitStore, logg)).Post("/signup", controllers.AuthSignup(deps.RegisterService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.IdempotencyStore, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", controllers.AuthMe(deps.AuthService, logg))
			r.Post("/change-password", controllers.AuthChangePassword(deps.AuthService, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", controllers.WalletBalance(deps.WalletService, logg))
			r.Post("/deposit", controllers.WalletDeposit(deps.WalletService, logg))
			r.Post("/withdraw", controllers.WalletWithdraw(deps.WalletService, logg))
			r.Post("/transfer", controllers.WalletTransfer(deps.WalletService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/add-to-cart/{itemId}", controllers.CartAdd(deps.CartService, logg))
			r.Post("/update-quantity/{itemId}", controllers.CartDecrement(deps.CartService, logg))
			r.Delete("/order-items/{orderItemId}", controllers.CartRemoveLine(deps.CartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/order-summary", controllers.OrderSummary(deps.OrdersService, logg))
			r.Post("/add-coupon", controllers.OrderAddCoupon(deps.OrdersService, logg))
			r.Post("/checkout", controllers.OrderCheckout(deps.OrdersService, logg))
			r.Get("/", controllers.OrdersHistory(deps.OrdersService, logg))
		})

		r.Get("/payments", controllers.PaymentsHistory(deps.PaymentsService, logg))

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(deps.AddressService, logg))
			r.Post("/", controllers.AddressCreate(deps.AddressService, logg))
			r.Get("/{addressId}", controllers.AddressGet(deps.AddressService, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(deps.AddressService, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(deps.AddressService, logg))
			r.Post("/{addressId}/default", controllers.AddressSetDefault(deps.AddressService, logg))
		})

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", controllers.ShopList(deps.ShopsService, logg))
			r.Get("/{shopId}", controllers.ShopGet(deps.ShopsService, logg))
			r.Get("/{shopId}/items", controllers.ItemListByShop(deps.ItemsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleVendor, logg))
				r.Get("/mine", controllers.ShopMine(deps.ShopsService, logg))
				r.Put("/mine", controllers.ShopUpdateMine(deps.ShopsService, logg))
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(deps.ItemsService, logg))
			r.Get("/{itemId}", controllers.ItemGet(deps.ItemsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleVendor, logg))
				r.Post("/", controllers.ItemCreate(deps.ItemsService, logg))
				r.Put("/{itemId}", controllers.ItemUpdate(deps.ItemsService, logg))
				r.Delete("/{itemId}", controllers.ItemDelete(deps.ItemsService, logg))
			})
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.CouponList(deps.CouponsService, logg))
			r.Get("/{couponId}", controllers.CouponGet(deps.CouponsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleVendor, logg))
				r.Post("/", controllers.CouponCreate(deps.CouponsService, logg))
				r.Put("/{couponId}", controllers.CouponUpdate(deps.CouponsService, logg))
				r.Delete("/{couponId}", controllers.CouponDelete(deps.CouponsService, logg))
			})
		})
	})

	return r
}
