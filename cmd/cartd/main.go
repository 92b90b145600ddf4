package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartmanager/internal/cart"
	"github.com/nikolayk812/cartmanager/internal/config"
	"github.com/nikolayk812/cartmanager/internal/domain"
	"github.com/nikolayk812/cartmanager/internal/logger"
	"github.com/nikolayk812/cartmanager/internal/pricing"
	"github.com/nikolayk812/cartmanager/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("logger.New: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cur, err := cfg.Currency()
	if err != nil {
		return err
	}

	dispatcher := cart.NewDispatcher()
	dispatcher.Subscribe(cart.EventCartInit, func(_ context.Context, event any) error {
		if e, ok := event.(cart.CartEvent); ok {
			log.Info("cart initialized", zap.Stringer("cart_id", e.Cart.ID()), zap.String("cart_type", e.Cart.Type()))
		}
		return nil
	})
	dispatcher.Subscribe(cart.EventFinished, func(_ context.Context, event any) error {
		if e, ok := event.(cart.CartEvent); ok {
			log.Info("cart finished", zap.Stringer("cart_id", e.Cart.ID()), zap.Int("items", e.Cart.ItemCount()))
		}
		return nil
	})

	opts := []cart.Option{
		cart.WithNotifier(dispatcher),
		cart.WithLogger(log),
		cart.WithOrderedQuantityMerge(cfg.Cart.MergeOrderedQuantity),
	}

	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("pgxpool.New: %w", err)
		}
		defer pool.Close()

		repo, err := repository.NewCart(pool)
		if err != nil {
			return fmt.Errorf("repository.NewCart: %w", err)
		}
		opts = append(opts, cart.WithRepository(repo))
	}

	manager := cart.NewManager(pricing.NewListPriceProvider(cur), opts...)

	return demo(ctx, manager, cfg.Cart.DefaultType, cur, log)
}

// demo runs one cart through its lifecycle.
func demo(ctx context.Context, m *cart.Manager, cartType string, cur currency.Unit, log *zap.Logger) error {
	c, err := m.CreateCart(ctx, cartType)
	if err != nil {
		return fmt.Errorf("m.CreateCart: %w", err)
	}

	book := domain.CatalogProduct{
		ID:    uuid.New(),
		Name:  "Book",
		Price: domain.NewMoney(decimal.RequireFromString("12.50"), cur),
	}
	plan := domain.SubscriptionProduct{
		ID:       uuid.New(),
		Name:     "Reading plan",
		Price:    domain.NewMoney(decimal.RequireFromString("4.99"), cur),
		Interval: "month",
	}

	for _, p := range []domain.Product{book, book, plan} {
		if _, err := m.AddProductToCart(c, p, nil, 1); err != nil {
			return fmt.Errorf("m.AddProductToCart: %w", err)
		}
	}

	if err := m.DeterminePrices(ctx, c, true); err != nil {
		return fmt.Errorf("m.DeterminePrices: %w", err)
	}

	total, _ := c.PricingSet().Get(pricing.Total)
	log.Info("cart priced", zap.Stringer("cart_id", c.ID()), zap.Stringer("total", total))

	if err := m.UpdateCart(ctx, c, true); err != nil {
		return fmt.Errorf("m.UpdateCart: %w", err)
	}

	return nil
}
