package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizzesapi/config"
	"quizzesapi/events"
	"quizzesapi/handlers"
	"quizzesapi/middleware"
	"quizzesapi/routes"
	"quizzesapi/services"
	"quizzesapi/store"
	"quizzesapi/validation"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Initialize storage
	st, err := config.InitStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize store:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Initialize change feed
	hub := events.NewHub()
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	var publisher events.Publisher = hub
	if cfg.RedisEnabled() {
		redisClient := config.InitRedis(cfg)
		defer redisClient.Close()
		relay := events.NewRedisRelay(redisClient, cfg.RedisChannel, hub)
		publisher = relay
		g.Go(func() error {
			relay.Run(ctx)
			return nil
		})
	}

	router := newRouter(st, publisher, hub)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}
	g.Go(func() error {
		log.Printf("Server starting on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Server stopped with error:", err)
	}
}

// newRouter wires services and handlers onto a gin engine.
func newRouter(st store.Store, publisher events.Publisher, hub *events.Hub) *gin.Engine {
	validation.Install()

	userService := services.NewUserService(st, publisher)
	quizService := services.NewQuizService(st, publisher)
	questionService := services.NewQuestionService(st, publisher)

	userHandler := handlers.NewUserHandler(userService)
	quizHandler := handlers.NewQuizHandler(quizService)
	questionHandler := handlers.NewQuestionHandler(questionService)

	router := gin.Default()
	router.Use(middleware.CORS())

	routes.SetupRoutes(router, userHandler, quizHandler, questionHandler, hub)
	return router
}
