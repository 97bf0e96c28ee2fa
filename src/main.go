package main

import (
	"admitgate/src/boot"
	"admitgate/src/config"
	"admitgate/src/middlewares"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"syscall"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	apiPrefix       string = "/api/v1"
	shutdownTimeout        = 15 * time.Second
)

var eventDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := time.Parse(config.EVENT_DATE_FORMAT, date)
	return err == nil
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("eventdate", eventDateValidatorFunc)
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.APIEnv == "local" {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(appHost, origin)
		if match {
			return true
		}
		match, _ = regexp.MatchString("app:scanner", origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func setupRouter(app *boot.App) *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.Use(corsMiddleware(app.Config))
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Use(middlewares.MaintenanceMode)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.OperatorAuth([]byte(app.Config.JWTSecret)))
	{
		ticketHandlers(authorized, app)
		admissionHandlers(authorized, app)
		deliveryHandlers(authorized, app)
	}
	return router
}

func initLogger(cfg *config.Config) {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")

	gin.DefaultWriter = io.MultiWriter(&lumberjack.Logger{
		Filename:   apiLogs,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
	}, os.Stdout)

	if cfg.IsProd() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}))
}

func main() {
	if os.Getenv("API_ENV") == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("No .env file loaded: %s\n", err.Error())
		}
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}
	initLogger(cfg)
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := boot.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %s", err)
	}

	registerValidations()
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), app.Shutdown(shutdownCtx))
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped: %s", err)
	}
}
