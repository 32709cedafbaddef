package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	activeBookingsHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/active_bookings"
	cancelBookingHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/check_availability"
	createBookingHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/create_booking"
	getBookingHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/get_customer_bookings"
	listBookingsHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/list_bookings"
	rescheduleBookingHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/m04kA/SMC-WorkshopBooking/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-WorkshopBooking/internal/api/middleware"
	"github.com/m04kA/SMC-WorkshopBooking/internal/config"
	"github.com/m04kA/SMC-WorkshopBooking/internal/domain"
	bookingRepo "github.com/m04kA/SMC-WorkshopBooking/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-WorkshopBooking/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-WorkshopBooking/internal/integrations/messaging"
	"github.com/m04kA/SMC-WorkshopBooking/internal/integrations/proofstore"
	"github.com/m04kA/SMC-WorkshopBooking/internal/jobs/reminders"
	bookingsService "github.com/m04kA/SMC-WorkshopBooking/internal/service/bookings"
	notifierService "github.com/m04kA/SMC-WorkshopBooking/internal/service/notifier"
	checkAvailabilityUC "github.com/m04kA/SMC-WorkshopBooking/internal/usecase/check_availability"
	createBookingUC "github.com/m04kA/SMC-WorkshopBooking/internal/usecase/create_booking"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/logger"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/metrics"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/txmanager"
	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-WorkshopBooking...")

	// Инициализируем метрики (если включены)
	// При выключенных метриках передаем nil: методы *Metrics безопасны для nil-получателя
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Database.DBName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(
		wrappedDB,
		txmanager.WithMaxRetries(cfg.Database.TxMaxRetries),
		txmanager.WithRetryRecorder(metricsCollector),
	)

	// Бизнес-правила
	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone: %v", err)
	}
	rules, err := scheduleRules(cfg.Booking, location)
	if err != nil {
		log.Fatal("Invalid booking rules: %v", err)
	}
	log.Info("Booking rules: capacity=%d/day, horizon=%d months, closed=%s, hours=%s-%s, tz=%s",
		cfg.Booking.DailyCapacity, rules.HorizonMonths, rules.ClosedWeekday,
		rules.OpenTime, rules.CloseTime, location)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)

	// Канал уведомлений
	channelCtx, stopChannel := context.WithCancel(context.Background())
	defer stopChannel()

	channel := messaging.NewChannel(
		newTransport(cfg.Messaging),
		time.Duration(cfg.Messaging.ReconnectInterval)*time.Second,
		metricsCollector,
		log,
	)
	channel.OnStateChange(func(s messaging.State) {
		log.Info("Messaging: channel state changed to %s", s)
	})
	go func() {
		_ = channel.Run(channelCtx)
	}()
	log.Info("Messaging channel started (transport=%s)", cfg.Messaging.Transport)

	notifier := notifierService.NewService(
		bookingRepository,
		channel,
		metricsCollector,
		notifierService.Settings{
			CountryCode:   cfg.Messaging.CountryCode,
			TrunkPrefix:   cfg.Messaging.TrunkPrefix,
			AddressSuffix: cfg.Messaging.AddressSuffix,
			SendTimeout:   time.Duration(cfg.Messaging.SendTimeout) * time.Second,
		},
		log,
	)

	// Хранилище подтверждений оплаты
	proofStore, err := newProofStore(cfg.ProofStore)
	if err != nil {
		log.Fatal("Failed to initialize proof store: %v", err)
	}
	log.Info("Payment proof store: backend=%s", cfg.ProofStore.Backend)

	// Сервисы и use cases
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		txMgr,
		proofStore,
		notifier,
		metricsCollector,
		bookingsService.Settings{
			Rules:         rules,
			DailyCapacity: cfg.Booking.DailyCapacity,
			Policy:        domain.NewStatusPolicy(cfg.Booking.StrictOperatorTransitions),
		},
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		catalogRepository,
		txMgr,
		notifier,
		metricsCollector,
		createBookingUC.Settings{
			Rules:             rules,
			DailyCapacity:     cfg.Booking.DailyCapacity,
			CashPaymentMethod: cfg.Booking.CashPaymentMethod,
			TrustClientPrices: cfg.Booking.TrustClientPrices,
		},
		log,
	)

	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		bookingRepository,
		cfg.Booking.DailyCapacity,
		location,
		log,
	)

	// Напоминания накануне визита
	scheduler := reminders.NewScheduler(location)
	if cfg.Reminders.Enabled {
		job := reminders.NewJob(bookingRepository, notifier, location, log)
		if _, err := job.Schedule(scheduler, cfg.Reminders.Schedule); err != nil {
			log.Fatal("Failed to schedule reminders: %v", err)
		}
		scheduler.Start()
		log.Info("Reminders scheduled: %s", cfg.Reminders.Schedule)
	}

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingSvc, log)
	activeBookings := activeBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"ok","messaging":%q}`, channel.State())
	}).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Загрузка дня (регистрируется до /bookings/{bookingId})
	api.HandleFunc("/bookings/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPut)

	// ============================================================
	// OPERATOR ROUTES (X-User-Role: operator)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Auth)
	admin.Use(middleware.Operator)

	admin.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{bookingId:[0-9]+}", rescheduleBooking.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/bookings/{bookingId:[0-9]+}/status", updateBookingStatus.Handle).Methods(http.MethodPut)

	// ============================================================
	// INTERNAL ROUTES (для соседних сервисов, X-Service-Token header)
	// ============================================================

	if cfg.Server.InternalToken == "" {
		log.Warn("server.internal_token is empty, internal routes will reject all requests")
	}
	internal := api.PathPrefix("/internal").Subrouter()
	internal.Use(middleware.ServiceToken(cfg.Server.InternalToken))
	internal.HandleFunc("/vehicles/{vehicleId}/active-bookings", activeBookings.ByVehicle).Methods(http.MethodGet)
	internal.HandleFunc("/customers/{customerId}/active-bookings", activeBookings.ByCustomer).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// 1. Дожидаемся текущего прогона напоминаний
	<-scheduler.Stop().Done()

	// 2. Даем уйти уведомлениям, поставленным до остановки
	notifier.Wait()

	// 3. Закрываем канал и сбор метрик пула
	stopChannel()
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

func scheduleRules(c config.BookingConfig, location *time.Location) (domain.ScheduleRules, error) {
	closed, err := config.ParseWeekday(c.ClosedWeekday)
	if err != nil {
		return domain.ScheduleRules{}, err
	}
	open, err := types.NewTimeStringFromString(c.OpenTime)
	if err != nil {
		return domain.ScheduleRules{}, err
	}
	closing, err := types.NewTimeStringFromString(c.CloseTime)
	if err != nil {
		return domain.ScheduleRules{}, err
	}

	return domain.ScheduleRules{
		HorizonMonths: c.HorizonMonths,
		ClosedWeekday: closed,
		OpenTime:      open,
		CloseTime:     closing,
		Location:      location,
	}, nil
}

// newTransport nil означает, что уведомления выключены
func newTransport(c config.MessagingConfig) messaging.Transport {
	timeout := time.Duration(c.Timeout) * time.Second

	switch c.Transport {
	case config.TransportAMQP:
		return messaging.NewAMQPTransport(c.AMQPURL, c.Exchange, c.RoutingKey, timeout)
	case config.TransportHTTP:
		return messaging.NewHTTPTransport(c.GatewayURL, c.GatewayToken, timeout)
	default:
		return nil
	}
}

// newProofStore nil означает, что файлы подтверждений не удаляются
func newProofStore(c config.ProofStoreConfig) (bookingsService.ProofStore, error) {
	switch c.Backend {
	case config.ProofStoreLocal:
		return proofstore.NewLocalStore(c.Dir), nil
	case config.ProofStoreCloudinary:
		store, err := proofstore.NewCloudinaryStore(c.CloudinaryURL, c.Folder)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, nil
	}
}
