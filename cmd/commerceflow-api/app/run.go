package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/jayedsikder/commerceflow-api/configs"
	"github.com/jayedsikder/commerceflow-api/internal/adapter/cache"
	"github.com/jayedsikder/commerceflow-api/internal/adapter/gateway"
	apihttp "github.com/jayedsikder/commerceflow-api/internal/adapter/http"
	"github.com/jayedsikder/commerceflow-api/internal/adapter/http/middleware"
	"github.com/jayedsikder/commerceflow-api/internal/adapter/kafka"
	"github.com/jayedsikder/commerceflow-api/internal/adapter/notify"
	"github.com/jayedsikder/commerceflow-api/internal/adapter/queue"
	"github.com/jayedsikder/commerceflow-api/internal/adapter/repo"
	"github.com/jayedsikder/commerceflow-api/internal/cart"
	"github.com/jayedsikder/commerceflow-api/internal/catalog"
	"github.com/jayedsikder/commerceflow-api/internal/identity"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logging.Init(cfg.App.Name, cfg.App.LogFile)
	log := logging.New("bootstrap")

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		return nil, nil, err
	}
	cancel()

	log.Info("commerceflow-api: starting up")

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.LockTTL, cfg.Idempotency.TTL)
	orderCache := cache.NewRedisCache(rdb, cfg.Cache.TTL)
	cartStore := cache.NewRedisCartStore(rdb, cfg.Cart.TTL)
	carts := cart.NewService(cartStore)
	products := catalog.NewStaticSource()

	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	gw := gateway.NewClient(cfg.Gateway.StoreID, cfg.Gateway.StorePassword,
		cfg.GatewayAPIBase(), cfg.Gateway.Timeout)

	// usecases
	reconcile := usecase.NewReconcileOrder(orderRepo, producer, orderCache)
	initiate := usecase.NewInitiatePayment(gw, orderRepo, usecase.GatewayConfig{
		StoreID:       cfg.Gateway.StoreID,
		StorePassword: cfg.Gateway.StorePassword,
		BaseURL:       cfg.Gateway.BaseURL,
		Currency:      cfg.Gateway.Currency,
		Timeout:       cfg.Gateway.Timeout,
	})
	process := usecase.NewProcessNotification(gw, reconcile, idem)

	// identity
	provider := identity.NewMemoryProvider(identity.SessionConfig{
		JWTSecret: cfg.Session.JWTSecret,
		Issuer:    cfg.Session.Issuer,
		Audience:  cfg.Session.Audience,
		TTL:       cfg.Session.TTL,
	})

	// register queue-handler for settled-order confirmations
	setupQueue(ch)

	// register kafka-listener when a payment-events topic is configured
	kafkaCancel := func() {}
	if cfg.Kafka.Enabled {
		kafkaCancel = setupKafkaListener(cfg, process)
	}

	// init handlers + router + middleware
	session := middleware.NewSession(provider)
	handlers := apihttp.Handlers{
		Auth:         apihttp.NewAuthHandler(provider),
		Catalog:      apihttp.NewCatalogHandler(products),
		Cart:         apihttp.NewCartHandler(carts, products),
		Checkout:     apihttp.NewCheckoutHandler(carts, initiate, idem),
		Notification: apihttp.NewNotificationHandler(process),
		Order:        apihttp.NewOrderHandler(orderRepo, orderCache, carts),
	}
	router := apihttp.NewRouter(handlers, session)

	cleanup := func() {
		kafkaCancel()
		_ = ch.Close()
		_ = conn.Close()
		_ = db.Close()
		_ = rdb.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel) {
	h := queue.NewOrderSettledHandler(notify.NewLogEmailNotifier())

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register("order.settled.q", queue.JSON(h.HandleSettled))

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(cfg configs.Config, process *usecase.ProcessNotification) func() {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		panic(err)
	}

	h := kafka.NewPaymentEventHandler(process)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.Topic}, h.Handle)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("payment-events consumer stopped", "err", err)
		}
	}()
	return func() {
		cancel()
		_ = grp.Close()
	}
}
