package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/config"
	httpHandlers "github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/http/handlers"
	httpRouter "github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/http/router"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/logger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/service"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}

	// Клиент контентного бэкенда.
	client := strapi.NewClient(cfg.StrapiURL, cfg.StrapiAPIToken, cfg.RequestTimeout)
	inspector := service.NewTokenInspector()

	// Вебсокеты: события хода сохранения навыков.
	hub := ws.NewHub()
	go hub.Run()

	skillsService := service.NewSkillsService(client, hub)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(client, cfg.AuthCookie, cfg.SecureCookies())
	profileHandler := httpHandlers.NewProfileHandler(client)
	skillsHandler := httpHandlers.NewSkillsHandler(client, cfg.AuthCookie)
	profileSkillsHandler := httpHandlers.NewProfileSkillsHandler(client, skillsService)
	mediaHandler := httpHandlers.NewMediaHandler(client, cfg.MaxUploadSizeMB)
	publicHandler := httpHandlers.NewPublicHandler(client)
	wsHandler := httpHandlers.NewWSHandler(hub, inspector, cfg.AllowedOrigins)
	healthHandler := httpHandlers.NewHealthHandler(cfg.Env)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, profileHandler, skillsHandler, profileSkillsHandler, mediaHandler, publicHandler, wsHandler, healthHandler, inspector)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}
