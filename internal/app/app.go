// Package app assembles the wallet state service from its parts.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/app/port"
	"wallet_state/internal/app/provider"
	"wallet_state/internal/app/service"
	"wallet_state/internal/app/store"
	dexclient "wallet_state/internal/client"
	"wallet_state/internal/infrastructure/configloader"
	evmclient "wallet_state/internal/infrastructure/network/client"
	networkdefinition "wallet_state/internal/infrastructure/network/definition"
	"wallet_state/internal/infrastructure/restapi"
	"wallet_state/internal/infrastructure/snapshot"
	"wallet_state/internal/infrastructure/tokenloader"
	"wallet_state/internal/infrastructure/walletloader"
	"wallet_state/internal/pkg/logger"

	"go.uber.org/zap"
)

// App is the running service.
type App struct {
	cfg    *configloader.Config
	logger *zap.Logger

	directory *store.Store
	wallets   port.WalletProvider
	clients   port.BlockchainClientProvider
	prices    *service.TokenPriceService
	poller    *service.BalancePoller
	snapshots *snapshot.RedisStore
	persister *snapshot.Persister
	server    *http.Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires every component. The directory is restored from Redis when the
// snapshot sink is enabled and holds data.
func New(ctx context.Context, cfg *configloader.Config, zapLogger *zap.Logger) (*App, error) {
	slogger := logger.NewSlogAdapter()

	networks := networkdefinition.NewNetworkDefinitionProvider(slogger, cfg.Data.TokenDir, cfg.TrackedNetworkIdentifiers)
	tokens := provider.NewTokenProvider(tokenloader.NewTokenLoader(cfg.Data.TokenDir, slogger), slogger)
	wallets := provider.NewWalletProvider(walletloader.NewWalletFileLoader(cfg.Data.WalletFile, slogger), slogger)

	a := &App{cfg: cfg, logger: zapLogger.Named("App"), wallets: wallets}

	initial := accounts.NewState(accounts.NewIdentityAllocator(cfg.Identity.Names...))
	if cfg.Redis.Enabled {
		rs, err := snapshot.NewRedisStore(ctx, snapshot.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, err
		}
		a.snapshots = rs

		restored, found, err := rs.Load(ctx)
		if err != nil {
			a.logger.Warn("Failed to restore directory snapshot, starting empty", zap.Error(err))
		} else if found {
			initial = restored
			a.logger.Info("Directory restored from snapshot", zap.Int("tracked", restored.Len()))
		}
	}
	a.directory = store.New(initial, zapLogger)

	a.clients = evmclient.NewEVMClientProvider(cfg, zapLogger)
	dex := dexclient.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		time.Duration(cfg.TokenPriceSvc.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		cfg.TokenPriceSvc.MaxTokensPerBatchRequest,
	)
	a.prices = service.NewTokenPriceService(tokens, networks, dex, slogger, service.TokenPriceConfig{
		MaxTokensPerBatch: cfg.TokenPriceSvc.MaxTokensPerBatchRequest,
		Concurrency:       cfg.Performance.MaxConcurrentRoutines,
		CacheTTL:          cfg.PriceCacheTTL(),
	})
	a.poller = service.NewBalancePoller(a.directory, networks, tokens, a.clients, slogger, service.PollerConfig{
		Interval:         cfg.PollInterval(),
		Concurrency:      cfg.Poller.MaxConcurrentRequests,
		MaxItemsPerBatch: cfg.Poller.MaxItemsPerBatch,
	})
	activity := service.NewActivityService(networks, a.clients, slogger, service.ActivityConfig{
		LookbackBlocks: cfg.Activity.LookbackBlocks,
		MaxItems:       cfg.Activity.MaxItems,
		CacheTTL:       cfg.ActivityCacheTTL(),
	})

	handler := restapi.NewHandler(restapi.Deps{
		Directory: a.directory,
		Networks:  networks,
		Prices:    a.prices,
		Activity:  activity,
		Poller:    a.poller,
		Logger:    zapLogger,
	})
	router := restapi.NewRouter(handler, zapLogger)
	if cfg.Server.Pprof {
		restapi.RegisterPprof(router)
	}
	a.server = &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
	return a, nil
}

// Directory returns the live account directory.
func (a *App) Directory() *store.Store {
	return a.directory
}

// Start seeds the directory and launches the background loops and the HTTP
// server.
func (a *App) Start(ctx context.Context) error {
	if err := a.seed(ctx); err != nil {
		return err
	}

	ctx, a.cancel = context.WithCancel(ctx)

	if a.snapshots != nil {
		updates, unsubscribe := a.directory.Subscribe()
		a.persister = snapshot.NewPersister(a.snapshots, a.logger)
		a.goRun(func() {
			defer unsubscribe()
			a.persister.Run(ctx, updates)
		})
	}

	a.goRun(func() {
		a.prices.Run(ctx, time.Duration(a.cfg.TokenPriceSvc.RefreshIntervalMinutes)*time.Minute)
	})
	if a.cfg.Poller.Enabled {
		a.goRun(func() { a.poller.Run(ctx) })
	} else {
		a.logger.Info("Balance poller disabled")
	}

	a.goRun(func() {
		a.logger.Info("Server starting", zap.String("addr", a.cfg.Server.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server stopped", zap.Error(err))
		}
	})
	return nil
}

// seed starts tracking the wallets listed in the seed file.
func (a *App) seed(ctx context.Context) error {
	wallets, err := a.wallets.GetWallets()
	if err != nil {
		return fmt.Errorf("failed to load seed wallets: %w", err)
	}
	for _, w := range wallets {
		if _, err := a.directory.Dispatch(ctx, accounts.LoadAccount{Address: w.Address}); err != nil {
			return fmt.Errorf("failed to track seed wallet %s: %w", w.Address, err)
		}
		a.logger.Debug("Seed wallet tracked", zap.String("address", w.Address), zap.String("label", w.Label))
	}
	return nil
}

func (a *App) goRun(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Stop shuts the server down and waits for the background loops.
func (a *App) Stop(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if a.persister != nil {
		a.persister.Flush(a.directory.Snapshot())
	}
	a.directory.Close()
	if c, ok := a.clients.(interface{ Close() }); ok {
		c.Close()
	}
	if a.snapshots != nil {
		if cerr := a.snapshots.Close(); cerr != nil {
			a.logger.Warn("Failed to close redis connection", zap.Error(cerr))
		}
	}
	return err
}
