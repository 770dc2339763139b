package cmd

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-idpay/app/factory"
	"github.com/vibast-solutions/ms-go-idpay/app/provider"
	"github.com/vibast-solutions/ms-go-idpay/app/repository"
	"github.com/vibast-solutions/ms-go-idpay/app/service"
	"github.com/vibast-solutions/ms-go-idpay/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type pendingPaymentStore interface {
	Put(ctx context.Context, token string, orderID uint64, ttl time.Duration) error
	Take(ctx context.Context, token string) (uint64, bool, error)
}

func mustCreatePaymentService() (*config.Config, *service.PaymentService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	factory.ConfigureLogging(cfg.Log.Level)

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	pendingStore, closeStore := mustCreatePendingPaymentStore(cfg.Redis)

	idpayProvider := provider.NewIDPayProvider(provider.IDPayConfig{
		BaseURL:     cfg.IDPay.BaseURL,
		HTTPTimeout: cfg.IDPay.HTTPTimeout,
	})

	paymentService := service.NewPaymentService(
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		pendingStore,
		idpayProvider,
		cfg.Payments,
	)

	cleanup := func() {
		closeStore()
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, paymentService, cleanup
}

func mustCreatePendingPaymentStore(cfg config.RedisConfig) (pendingPaymentStore, func()) {
	if cfg.Addr == "" {
		logrus.Warn("REDIS_ADDR is empty, pending payment references are kept in memory")
		return repository.NewMemoryPendingPaymentRepository(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logrus.WithError(err).Fatal("Failed to ping redis")
	}

	return repository.NewRedisPendingPaymentRepository(client), func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis")
		}
	}
}

// gatewayConfiguration is read once at startup and handed to every payment call.
func gatewayConfiguration(cfg *config.Config) service.Configuration {
	return service.Configuration{
		APIKey:          cfg.IDPay.APIKey,
		Sandbox:         cfg.IDPay.Sandbox,
		StoreCurrency:   cfg.Checkout.StoreCurrency,
		CallbackURL:     cfg.IDPay.CallbackURL,
		CheckoutPageURL: cfg.Checkout.CheckoutPageURL,
		SuccessPageURL:  cfg.Checkout.SuccessPageURL,
		FailurePageURL:  cfg.Checkout.FailurePageURL,
	}
}
