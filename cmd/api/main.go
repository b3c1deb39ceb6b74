package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pcparts-backend/internal/config"
	"pcparts-backend/internal/db"
	"pcparts-backend/internal/gemini"
	"pcparts-backend/internal/httpserver"
	brandrepo "pcparts-backend/internal/repository/brand"
	cartrepo "pcparts-backend/internal/repository/cart"
	categoryrepo "pcparts-backend/internal/repository/category"
	orderrepo "pcparts-backend/internal/repository/order"
	productrepo "pcparts-backend/internal/repository/product"
	reportrepo "pcparts-backend/internal/repository/report"
	tokenrepo "pcparts-backend/internal/repository/token"
	userrepo "pcparts-backend/internal/repository/user"
	brandsvc "pcparts-backend/internal/service/brand"
	cartsvc "pcparts-backend/internal/service/cart"
	categorysvc "pcparts-backend/internal/service/category"
	ordersvc "pcparts-backend/internal/service/order"
	productsvc "pcparts-backend/internal/service/product"
	recommendsvc "pcparts-backend/internal/service/recommend"
	reportsvc "pcparts-backend/internal/service/report"
	usersvc "pcparts-backend/internal/service/user"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()

	categoryRepo := categoryrepo.NewPostgres(pool)
	brandRepo := brandrepo.NewPostgres(pool)
	productRepo := productrepo.NewPostgres(pool, logger)
	cartRepo := cartrepo.NewPostgres(pool)
	orderRepo := orderrepo.NewPostgres(pool, logger)
	userRepo := userrepo.NewPostgres(pool)
	tokenRepo := tokenrepo.NewPostgres(pool)
	reportRepo := reportrepo.NewPostgres(pool)

	geminiClient := gemini.New(cfg.GeminiAPIURL, cfg.GeminiAPIKey, cfg.GeminiModel)

	deps := httpserver.Deps{
		UserSvc:      usersvc.New(userRepo, tokenRepo),
		CategorySvc:  categorysvc.New(categoryRepo),
		BrandSvc:     brandsvc.New(brandRepo),
		ProductSvc:   productsvc.New(productRepo, categoryRepo, brandRepo),
		CartSvc:      cartsvc.New(cartRepo, productRepo),
		OrderSvc:     ordersvc.New(orderRepo, productRepo, cartRepo, logger),
		ReportSvc:    reportsvc.New(reportRepo),
		RecommendSvc: recommendsvc.New(geminiClient, productRepo, logger),
	}

	srv := httpserver.New(cfg.HTTPAddr, logger, pool, deps, cfg.CORSOrigins)

	// Expired tokens accumulate; sweep them in the background.
	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go sweepTokens(sweeperCtx, tokenRepo, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}

func sweepTokens(ctx context.Context, tokens tokenrepo.Repository, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := tokens.DeleteExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("token sweep failed")
				continue
			}
			if n > 0 {
				logger.Info().Int64("deleted", n).Msg("swept expired tokens")
			}
		}
	}
}
