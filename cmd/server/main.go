package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"myblog/internal/config"
	apphttp "myblog/internal/http"
	"myblog/internal/repository"
	"myblog/internal/repository/memory"
	"myblog/internal/repository/sqlite"
	"myblog/internal/securecookie"
	"myblog/internal/service"
	"myblog/internal/storage"
)

type repositories struct {
	Users    repository.UserRepository
	Blogs    repository.BlogRepository
	Comments repository.CommentRepository
	Votes    repository.VoteRepository
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeDB, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup repositories: %v", err)
	}
	defer closeDB()

	codec, err := securecookie.New(cfg.Auth.CookieSecret)
	if err != nil {
		logger.Fatalf("cookie codec: %v", err)
	}

	retry := service.RetryPolicy{
		MaxRetries:      cfg.Storage.MaxRetries,
		InitialInterval: cfg.Storage.RetryInterval,
		MaxInterval:     10 * cfg.Storage.RetryInterval,
	}

	archive, err := buildArchive(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup archive: %v", err)
	}

	userService := service.NewUserService(repos.Users, service.UserOptions{
		BcryptCost: cfg.Auth.BcryptCost,
		Retry:      retry,
	})
	guard := service.NewGuard(codec, userService, logger)
	blogOpts := service.BlogOptions{
		PageSize: cfg.Blog.PageSize,
		Retry:    retry,
		Logger:   logger,
	}
	// a nil *storage.Archive must not become a non-nil interface
	if archive != nil {
		blogOpts.Archive = archive
	}
	blogService := service.NewBlogService(repos.Blogs, repos.Comments, guard, blogOpts)
	commentService := service.NewCommentService(repos.Comments, guard, retry)
	voteService := service.NewVoteService(repos.Votes, repos.Blogs, guard, retry)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, guard, blogService, commentService, voteService, logger)
	handler.RegisterRoutes(router, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repositories, func() error, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		m := memory.NewRepositories(memory.NewStore())
		return repositories(m), func() error { return nil }, nil
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("open database: %w", err)
	}
	repos := sqlite.NewRepositories(db)
	if err := repos.Init(ctx); err != nil {
		db.Close()
		return repositories{}, nil, err
	}
	logger.Infof("using sqlite database %s", cfg.Database.Path)
	return repositories(repos), db.Close, nil
}

// buildArchive returns nil when no bucket is configured.
func buildArchive(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*storage.Archive, error) {
	if cfg.Archive.Bucket == "" {
		logger.Info("archive bucket not set, deleted entries are not archived")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Archive.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving deleted entries to s3 bucket %s (region %s)", cfg.Archive.Bucket, cfg.Archive.Region)
	return storage.NewArchive(storage.NewS3Service(client), cfg.Archive.Bucket, cfg.Archive.KeyPrefix), nil
}
