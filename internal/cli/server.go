package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"aerojob-backend/internal/app"
	"aerojob-backend/internal/config"
	"aerojob-backend/internal/domain"
	"aerojob-backend/internal/infra/memory"
	"aerojob-backend/internal/infra/postgres"
	infraredis "aerojob-backend/internal/infra/redis"
	"aerojob-backend/internal/notify"
	transport "aerojob-backend/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the job board server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	cacheTTL := config.TTLDuration(cfg.Survey.CacheTTL, 10*time.Minute)

	var (
		surveyStore   app.SurveyStore
		responseStore app.ResponseStore
		users         app.UserDirectory
		jobStore      app.JobStore
		loader        memory.SurveyLoader
	)
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		surveyStore = postgres.NewSurveyStore(db)
		responseStore = postgres.NewResponseStore(db)
		users = postgres.NewUserStore(db)
		jobStore = postgres.NewJobStore(db)
		loader = postgres.NewSurveyLoader(pool)
	} else {
		log.Printf("no postgres url configured, running in-memory")
		responses := memory.NewResponseStore()
		surveys := memory.NewSurveyStore().WithResponseStore(responses)
		seedDemo(surveys)
		userStore := memory.NewUserStore()
		userStore.Put(domain.User{ID: "admin", Email: "admin@example.com", Name: "Admin", Role: "admin"})
		surveyStore = surveys
		responseStore = responses
		users = userStore
		jobStore = memory.NewJobStore()
		loader = surveys
	}

	var cache app.SurveyProvider
	var invalidator app.SurveyCache
	if redisClient != nil {
		c := infraredis.NewSurveyCache(redisClient, loader, cacheTTL)
		cache, invalidator = c, c
	} else {
		c := memory.NewSurveyCache(loader, cacheTTL)
		cache, invalidator = c, c
	}

	var mailer app.Mailer = notify.LogMailer{}
	if cfg.Mail.ResendAPIKey != "" {
		mailer = notify.NewResendMailer(cfg.Mail.ResendAPIKey, cfg.Mail.From)
	}

	hub := app.NewResponseHub()
	surveyService := app.NewSurveyService(surveyStore).WithCache(invalidator)
	eligibility := app.NewEligibilityResolver(surveyStore, responseStore).WithProvider(cache)
	responseService := app.NewResponseService(surveyStore, responseStore, users).
		WithPublisher(hub).
		WithNotifications(mailer, cfg.Mail.AdminTo)
	jobService := app.NewJobService(jobStore)
	if redisClient != nil {
		jobService = jobService.WithSearchRecorder(infraredis.NewSearchTelemetry(redisClient))
	}

	auth := transport.NewAuth(cfg.Auth.Secret)
	handler := transport.NewHandler(surveyService, eligibility, responseService, jobService, hub, auth)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting aerojob backend on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedDemo loads a sample survey so the in-memory mode has something
// to serve.
func seedDemo(store *memory.SurveyStore) {
	now := time.Now().UTC()
	_ = store.Insert(context.Background(), &domain.Survey{
		ID:       "survey-demo",
		Title:    "Graduate Outcomes",
		Audience: domain.AudienceAll,
		Status:   domain.SurveyActive,
		Questions: []domain.Question{
			{ID: "q1", Text: "Are you currently employed?", Type: domain.QuestionMultipleChoice, Required: true, Options: []string{"Yes", "No"}},
			{ID: "q2", Text: "Tell us about your role", Type: domain.QuestionLongText},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
}
