package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/client"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/config"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/consumer"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/counter"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/lifecycle"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/menu"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/notify"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/payment"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/pool"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/publisher"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/receipt"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/session"
)

const shutdownTimeout = 10 * time.Second

func serve(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if addr := c.String("addr"); addr != "" {
		cfg.HTTPAddr = addr
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	log.SetLevel(level)
	logger := log.WithField("service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := newCache(ctx, cfg, logger)
	defer closeStore()

	resolver, consul := newResolver(cfg, logger)

	notifications := notify.NewCenter(cfg.NotificationTTL)
	sessions := session.NewManager(logger)
	if cfg.AuthToken != "" {
		if _, err := sessions.Login(cfg.AuthToken); err != nil {
			logger.WithError(err).Warn("configured auth token rejected")
		}
	}

	pipeline := client.NewPipeline(resolver, cfg.RequestTimeout,
		client.WithTokenSource(sessions.Token),
		client.WithUnauthorizedHandler(func() {
			if sessions.Logout() {
				notifications.Push(notify.Warning, "Your session has ended. Sign in again.")
			}
		}),
		client.WithLogger(logger),
	)
	orderClient := client.NewOrderClient(pipeline, cfg.OrderServiceName)
	paymentClient := client.NewPaymentClient(pipeline, cfg.PaymentServiceName)
	menuClient := client.NewMenuClient(pipeline, cfg.MenuServiceName)

	catalog := menu.NewCatalog(menuClient, store, logger)
	payable := pool.New(orderClient, cfg.PayableFilter(), store, logger)

	var mq *messaging.RabbitMQ
	if cfg.RabbitMQEnabled {
		mq, err = messaging.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer mq.Close()
	}

	printer, err := newPrinter(cfg, mq)
	if err != nil {
		return err
	}
	receipts := receipt.NewService(
		receipt.NewComposer(orderClient, receipt.Header{StoreName: cfg.ReceiptStoreName, Address: cfg.ReceiptStoreAddress}),
		printer,
		logger,
	)

	orders := lifecycle.NewController(orderClient, payable, notifications, logger)
	payments := payment.NewReconciler(paymentClient, payable, receipts, notifications, logger)
	workflow := counter.NewWorkflow(orders, payments, catalog)

	h := handlers.NewCounterHandler(workflow, catalog, payable, receipts, notifications, sessions, cfg.ServiceName)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.NewRouter(h, logger, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddr).Info("pos-counter listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return payable.Run(gctx, cfg.PoolRefresh)
	})

	g.Go(func() error {
		return sessions.Watch(gctx, cfg.SessionCheckInterval, func() {
			notifications.Push(notify.Warning, "Your session has expired. Sign in again.")
		})
	})

	if mq != nil {
		if err := mq.DeclareQueue(consumer.OrderStatusChangedQueue); err != nil {
			return err
		}
		messages, err := mq.Consume(consumer.OrderStatusChangedQueue)
		if err != nil {
			return err
		}
		statusConsumer := consumer.NewOrderStatusConsumer(payable, logger)
		g.Go(func() error {
			return statusConsumer.Run(gctx, messages)
		})
	}

	if consul != nil {
		serviceCfg, err := registration(cfg)
		if err != nil {
			return err
		}
		if err := consul.Register(serviceCfg); err != nil {
			logger.WithError(err).Warn("Consul registration failed")
		} else {
			defer consul.Deregister(serviceCfg.ID)
		}
	}

	err = g.Wait()
	payments.WaitReceipts()
	logger.Info("pos-counter stopped")
	return err
}

func newCache(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (cache.Cache, func()) {
	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisHost, cfg.RedisPort, cfg.CacheTTL, cfg.ServiceID+":")
		if err == nil {
			return rc, func() { rc.Close() }
		}
		logger.WithError(err).Warn("Redis unavailable, using in-memory cache")
	}
	return cache.NewMemoryCache(cfg.CacheTTL), func() {}
}

// newResolver returns the Consul client too when it is in use, for
// self-registration.
func newResolver(cfg *config.Config, logger log.FieldLogger) (discovery.Resolver, *discovery.ConsulClient) {
	fallbacks := discovery.StaticResolver{
		cfg.OrderServiceName:   cfg.OrderServiceURL,
		cfg.PaymentServiceName: cfg.PaymentServiceURL,
		cfg.MenuServiceName:    cfg.MenuServiceURL,
	}
	if !cfg.ConsulEnabled {
		return fallbacks, nil
	}

	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort, fallbacks)
	if err != nil {
		logger.WithError(err).Warn("Consul unavailable, using static service URLs")
		return fallbacks, nil
	}
	return consul, consul
}

func newPrinter(cfg *config.Config, mq *messaging.RabbitMQ) (receipt.Printer, error) {
	if cfg.PrintMode == "queue" {
		return publisher.NewReceiptPublisher(mq)
	}
	return receipt.NewWriterPrinter(os.Stdout), nil
}

func registration(cfg *config.Config) (discovery.ServiceConfig, error) {
	_, portStr, err := net.SplitHostPort(cfg.HTTPAddr)
	if err != nil {
		return discovery.ServiceConfig{}, errors.Wrapf(err, "parse addr %s", cfg.HTTPAddr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return discovery.ServiceConfig{}, errors.Wrapf(err, "parse port %s", portStr)
	}
	return discovery.ServiceConfig{
		Name:       cfg.ServiceName,
		ID:         cfg.ServiceID,
		Address:    cfg.AdvertiseAddr,
		Port:       port,
		HealthPath: "/health",
		Tags:       []string{"pos", "counter", "print-" + cfg.PrintMode},
		Meta: map[string]string{
			"print_mode": cfg.PrintMode,
			"payable":    strings.Join(cfg.PayableStatuses, ","),
		},
	}, nil
}
