package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-idpay/app/service"
)

const expirePendingJob = "expire_pending"

var expirePendingWorker bool

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Expire abandoned payment sessions",
}

var expirePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Fail pending orders whose buyer never returned from IDPay",
	Run: func(_ *cobra.Command, _ []string) {
		runExpirePending()
	},
}

func init() {
	rootCmd.AddCommand(expireCmd)
	expireCmd.AddCommand(expirePendingCmd)

	expirePendingCmd.Flags().BoolVar(&expirePendingWorker, "worker", false,
		"Keep running every PAYMENTS_EXPIRE_PENDING_INTERVAL_MINUTES")
}

func runExpirePending() {
	cfg, paymentService, cleanup := mustCreatePaymentService()
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logrus.WithField("job", expirePendingJob)
	if !expirePendingWorker {
		expirePendingOnce(ctx, logger, paymentService)
		return
	}

	interval := cfg.Jobs.ExpirePendingInterval
	if interval <= 0 {
		logger.Fatal("PAYMENTS_EXPIRE_PENDING_INTERVAL_MINUTES must be positive in worker mode")
	}
	logger.WithField("interval", interval.String()).Info("Expiry worker started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	expirePendingOnce(ctx, logger, paymentService)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Expiry worker stopped")
			return
		case <-ticker.C:
			expirePendingOnce(ctx, logger, paymentService)
		}
	}
}

func expirePendingOnce(ctx context.Context, logger logrus.FieldLogger, paymentService *service.PaymentService) {
	start := time.Now()
	err := paymentService.RunExpirePendingBatch(ctx)

	entry := logger.WithField("latency", time.Since(start).String())
	if err != nil {
		entry.WithError(err).Error("job_failed")
		return
	}
	entry.Info("job_completed")
}
