package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"usmle-quiz-service/internal/app"
	"usmle-quiz-service/internal/config"
	"usmle-quiz-service/internal/domain"
	"usmle-quiz-service/internal/infra/memory"
	pgstore "usmle-quiz-service/internal/infra/postgres"
	redisstore "usmle-quiz-service/internal/infra/redis"
	transport "usmle-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisstore.NewQuestionRepository(redisClient, loader, questionTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
	}

	var attempts app.AttemptRepository
	var prefs app.PreferenceStore
	if redisClient != nil {
		attempts = redisstore.NewAttemptStore(redisClient, redisTTL)
		prefs = redisstore.NewPrefStore(redisClient)
	} else {
		attempts = memory.NewAttemptStore()
		prefs = memory.NewPrefStore()
	}

	var sink app.SessionSink
	if pool != nil {
		sink = pgstore.NewGateway(pool)
	}

	service := app.NewQuizService(questionRepo, attempts, sink, prefs)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
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

// sampleQuestions provides a minimal item bank so the service runs without a
// database; production deployments load questions from Postgres.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:   "q-cardio-1",
			Text: "A 62-year-old man presents with crushing substernal chest pain radiating to the left arm. Which coronary artery is most commonly occluded in inferior wall MI?",
			Options: []domain.Option{
				{ID: "a", Text: "Left anterior descending artery"},
				{ID: "b", Text: "Right coronary artery"},
				{ID: "c", Text: "Left circumflex artery"},
				{ID: "d", Text: "Left main coronary artery"},
			},
			CorrectOptionID: "b",
			Explanation:     "The right coronary artery supplies the inferior wall in right-dominant circulation.",
			Difficulty:      domain.DifficultyMedium,
			Topic:           "Cardiology",
		},
		{
			ID:   "q-pharm-1",
			Text: "Which diuretic acts on the Na-K-2Cl cotransporter in the thick ascending limb of Henle?",
			Options: []domain.Option{
				{ID: "a", Text: "Hydrochlorothiazide"},
				{ID: "b", Text: "Spironolactone"},
				{ID: "c", Text: "Furosemide"},
				{ID: "d", Text: "Acetazolamide"},
			},
			CorrectOptionID: "c",
			Explanation:     "Loop diuretics inhibit NKCC2 in the thick ascending limb.",
			Difficulty:      domain.DifficultyEasy,
			Topic:           "Pharmacology",
		},
		{
			ID:   "q-renal-1",
			Text: "A patient with nephrotic syndrome shows 'spike and dome' deposits on electron microscopy. What is the most likely diagnosis?",
			Options: []domain.Option{
				{ID: "a", Text: "Minimal change disease"},
				{ID: "b", Text: "Membranous nephropathy"},
				{ID: "c", Text: "Focal segmental glomerulosclerosis"},
				{ID: "d", Text: "IgA nephropathy"},
			},
			CorrectOptionID: "b",
			Explanation:     "Subepithelial immune deposits produce the classic spike and dome pattern.",
			Difficulty:      domain.DifficultyHard,
			System:          "Renal",
		},
	}
}
