package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	addDoctorResponseHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/add_doctor_response"
	analyzeBookingHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/analyze_booking"
	cancelAppointmentsHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/cancel_appointments"
	confirmPaymentHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/confirm_payment"
	createBookingHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/create_booking"
	doctorAvailabilityHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/doctor_availability"
	getAvailableSlotsHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/get_booking"
	getDoctorHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/get_doctor"
	getDoctorAppointmentsHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/get_doctor_appointments"
	getDoctorProfileHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/get_doctor_profile"
	getUserBookingsHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/get_user_bookings"
	manageReportsHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/manage_reports"
	resetUnreadHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/reset_unread"
	resetUnreadBatchHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/reset_unread_batch"
	searchDoctorsHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/search_doctors"
	updateBookingStatusHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/update_booking_status"
	updateHealthIssuesHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/update_health_issues"
	updateTimeSlotsHandler "github.com/m04kA/SMC-DoctorBooking/internal/api/handlers/update_time_slots"
	"github.com/m04kA/SMC-DoctorBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DoctorBooking/internal/config"
	"github.com/m04kA/SMC-DoctorBooking/internal/infra/cache/availability"
	accountRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/account"
	bookingRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/booking"
	doctorRepo "github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-DoctorBooking/internal/integrations/aisummarizer"
	"github.com/m04kA/SMC-DoctorBooking/internal/integrations/notifier"
	"github.com/m04kA/SMC-DoctorBooking/internal/integrations/payments"
	analysisService "github.com/m04kA/SMC-DoctorBooking/internal/service/analysis"
	bookingsService "github.com/m04kA/SMC-DoctorBooking/internal/service/bookings"
	doctorsService "github.com/m04kA/SMC-DoctorBooking/internal/service/doctors"
	confirmPaymentUC "github.com/m04kA/SMC-DoctorBooking/internal/usecase/confirm_payment"
	createBookingUC "github.com/m04kA/SMC-DoctorBooking/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-DoctorBooking/internal/usecase/get_availability"
	"github.com/m04kA/SMC-DoctorBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DoctorBooking/pkg/logger"
	"github.com/m04kA/SMC-DoctorBooking/pkg/metrics"
	"github.com/m04kA/SMC-DoctorBooking/pkg/txmanager"
)

// availabilityCache кэш проекций: чтение в get_availability, сброс в сервисах
type availabilityCache interface {
	getAvailabilityUC.Cache
	bookingsService.AvailabilityCache
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func runServer(configPath string) error {
	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	log.Info("Starting SMC-DoctorBooking...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Booking.Location()
	if err != nil {
		return fmt.Errorf("failed to load booking timezone: %w", err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	defer close(stopMetricsCh)

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(seconds(cfg.Database.ConnMaxLifetime))

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// при выключенных метриках обертка просто проксирует запросы
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	doctorRepository := doctorRepo.NewRepository(wrappedDB)
	accountRepository := accountRepo.NewRepository(wrappedDB)

	// Кэш доступности
	var cache availabilityCache = availability.NoopCache{}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to ping redis: %w", err)
		}

		cache = availability.NewCache(redisClient, seconds(cfg.Redis.TTL))
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Интеграционные клиенты
	paymentClient := payments.NewClient(payments.Config{
		BaseURL:    cfg.Payments.URL,
		SecretKey:  cfg.Payments.SecretKey,
		Currency:   cfg.Payments.Currency,
		SuccessURL: cfg.Payments.SuccessURL,
		CancelURL:  cfg.Payments.CancelURL,
		Timeout:    seconds(cfg.Payments.Timeout),
	})

	// nil без обертки: иначе интерфейс не будет nil
	var summarizer analysisService.Summarizer
	if cfg.AI.Enabled {
		summarizer = aisummarizer.NewClient(cfg.AI.URL, cfg.AI.APIKey, seconds(cfg.AI.Timeout), log)
		log.Info("AI analysis enabled (url=%s, timeout=%ds)", cfg.AI.URL, cfg.AI.Timeout)
	} else {
		log.Warn("AI analysis disabled")
	}

	var smsNotifier confirmPaymentUC.Notifier
	if cfg.SMS.Enabled {
		smsNotifier = notifier.NewClient(notifier.Config{
			BaseURL:            cfg.SMS.URL,
			AccountSID:         cfg.SMS.AccountSID,
			AuthToken:          cfg.SMS.AuthToken,
			From:               cfg.SMS.From,
			DefaultCountryCode: cfg.SMS.DefaultCountryCode,
			Timeout:            seconds(cfg.SMS.Timeout),
		}, log)
		log.Info("SMS notifications enabled (from=%s)", cfg.SMS.From)
	} else {
		log.Warn("SMS notifications disabled")
	}

	// Сервисы
	analysisSvc := analysisService.NewService(
		bookingRepository,
		accountRepository,
		summarizer,
		metricsCollector,
		seconds(cfg.AI.Timeout),
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		analysisSvc,
		cache,
		txMgr,
		log,
	)
	doctorSvc := doctorsService.NewService(
		doctorRepository,
		bookingRepository,
		cache,
		txMgr,
		log,
	)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		doctorRepository,
		accountRepository,
		paymentClient,
		cache,
		metricsCollector,
		txMgr,
		cfg.Booking.HorizonDays,
		location,
		log,
	)
	availabilityUseCase := getAvailabilityUC.NewUseCase(
		bookingRepository,
		doctorRepository,
		cache,
		metricsCollector,
		cfg.Booking.HorizonDays,
		location,
		log,
	)
	confirmPaymentUseCase := confirmPaymentUC.NewUseCase(
		bookingRepository,
		doctorRepository,
		accountRepository,
		analysisSvc,
		smsNotifier,
		confirmPaymentUC.SMSTemplate{
			SupportPhone: cfg.SMS.SupportPhone,
			SupportURL:   cfg.SMS.SupportURL,
		},
		metricsCollector,
		txMgr,
		log,
	)

	// Handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	confirmPayment := confirmPaymentHandler.NewHandler(confirmPaymentUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	updateHealthIssues := updateHealthIssuesHandler.NewHandler(bookingSvc, log)
	addDoctorResponse := addDoctorResponseHandler.NewHandler(bookingSvc, log)
	manageReports := manageReportsHandler.NewHandler(bookingSvc, log)
	resetUnread := resetUnreadHandler.NewHandler(bookingSvc, log)
	resetUnreadBatch := resetUnreadBatchHandler.NewHandler(bookingSvc, log)
	analyzeBooking := analyzeBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)

	searchDoctors := searchDoctorsHandler.NewHandler(doctorSvc, log)
	getDoctor := getDoctorHandler.NewHandler(doctorSvc, log)
	getDoctorProfile := getDoctorProfileHandler.NewHandler(doctorSvc, log)
	getDoctorAppointments := getDoctorAppointmentsHandler.NewHandler(doctorSvc, log)
	updateTimeSlots := updateTimeSlotsHandler.NewHandler(doctorSvc, log)
	cancelAppointments := cancelAppointmentsHandler.NewHandler(doctorSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(availabilityUseCase, log)
	doctorAvailability := doctorAvailabilityHandler.NewHandler(availabilityUseCase, log)

	auth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.AllowBasic, accountRepository, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Logging(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Редирект платежного провайдера после оплаты
	api.HandleFunc("/bookings/payment-success", confirmPayment.Handle).Methods(http.MethodGet)

	// Каталог врачей
	api.HandleFunc("/doctors", searchDoctors.Handle).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{doctorId}", getDoctor.Handle).Methods(http.MethodGet)

	// Доступность врача для формы записи
	api.HandleFunc("/doctors/{doctorId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodPost)
	api.HandleFunc("/doctors/{doctorId}/blocked-dates-with-slots", doctorAvailability.BlockedDatesWithSlots).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (Bearer JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(auth.Middleware)

	// --- Записи ---
	// статические пути раньше /bookings/{bookingId}
	protected.HandleFunc("/bookings/reset-unread-batch", resetUnreadBatch.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/checkout-session/{doctorId}", createBooking.Handle).Methods(http.MethodPost)

	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/health-issues", updateHealthIssues.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/doctor-response", addDoctorResponse.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/reset-unread", resetUnread.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/analyze", analyzeBooking.Handle).Methods(http.MethodPost)

	// --- Отчеты ---
	protected.HandleFunc("/bookings/{bookingId}/reports", manageReports.Update).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/reports/save", manageReports.SaveGroup).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/reports/{groupName}/remove-file", manageReports.RemoveFile).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/reports/{oldName}", manageReports.RenameGroup).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}/reports/{groupName}", manageReports.DeleteGroup).Methods(http.MethodDelete)

	// --- Пациент ---
	protected.HandleFunc("/users/me/appointments", getUserBookings.Handle).Methods(http.MethodGet)

	// --- Кабинет врача ---
	protected.HandleFunc("/doctors/me/profile", getDoctorProfile.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/me/appointments", getDoctorAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/me/appointments/cancel", cancelAppointments.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/doctors/me/time-slots", updateTimeSlots.Handle).Methods(http.MethodPut)

	protected.HandleFunc("/doctors/{doctorId}/available-dates", doctorAvailability.AvailableDates).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/blocked-dates", doctorAvailability.BlockedDates).Methods(http.MethodGet)

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  seconds(cfg.Server.ReadTimeout),
		WriteTimeout: seconds(cfg.Server.WriteTimeout),
		IdleTimeout:  seconds(cfg.Server.IdleTimeout),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// фоновые AI-анализы пишут в БД, дожидаемся их до закрытия соединений
	if err := analysisSvc.Wait(shutdownCtx); err != nil {
		log.Warn("Background analyses did not finish: %v", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
