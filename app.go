// 프로세스 구성 요소 조립
//
// 처리 흐름:
//  1. 설정/로거 초기화
//  2. Postgres 풀 생성 및 테이블 보장, Redis 연결
//  3. 도메인 백엔드 레지스트리, Router, 스캐너, 대화 엔진 생성
//  4. HTTP 서버와 워커를 errgroup 으로 실행, 시그널 수신 시 정리

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/infraai/backend/internal/agent"
	"github.com/infraai/backend/internal/client"
	"github.com/infraai/backend/internal/config"
	"github.com/infraai/backend/internal/db"
	"github.com/infraai/backend/internal/handler"
	"github.com/infraai/backend/internal/logger"
	"github.com/infraai/backend/internal/model"
	"github.com/infraai/backend/internal/queue"
	"github.com/infraai/backend/internal/router"
	"github.com/infraai/backend/internal/scanner"
	"github.com/infraai/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

func run(parent context.Context, withServer, withWorker bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logger)
	defer func() { _ = log.Sync() }()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()
	pg := db.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	rdb, err := queue.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()
	actions := queue.NewRedisQueue(rdb, cfg.Redis.QueueKey, cfg.Redis.ProcessingKey)

	promTools := client.DefaultPrometheusCapabilities()
	if path := cfg.MCP.PrometheusToolsConfig; path != "" {
		loaded, err := client.LoadCapabilities(path)
		if err != nil {
			log.Warn("using default prometheus capabilities", zap.String("path", path), zap.Error(err))
		} else {
			promTools = loaded
		}
	}

	netScanner := scanner.New(cfg.Scan, pg, log.Named("scanner"))
	registry := newRegistry(cfg.MCP, log.Named("registry"))
	cmdRouter := router.New(router.Options{
		Registry:        registry,
		Scanner:         netScanner,
		DefaultSubnet:   cfg.Scan.DefaultSubnet,
		PrometheusTools: promTools,
		Logger:          log.Named("router"),
	})

	var completer agent.Completer
	if withServer {
		if completer, err = newCompleter(ctx, cfg.LLM); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if withWorker {
		worker := service.NewWorker(
			actions,
			pg,
			queue.NewIdempotency(rdb, cfg.Redis.IdempotencyTTL),
			service.NewToolTable(cmdRouter),
			cfg.Worker.PopTimeout,
			log.Named("worker"),
		)
		g.Go(func() error {
			return worker.Run(gctx)
		})
	}

	if withServer {
		policySvc := service.NewPolicyService(pg)
		engine := agent.New(agent.Options{
			Completer:     completer,
			Router:        cmdRouter,
			Scanner:       netScanner,
			Policies:      policySvc,
			DefaultSubnet: cfg.Scan.DefaultSubnet,
			Logger:        log.Named("agent"),
		})

		gin.SetMode(cfg.Server.Mode)
		var r *gin.Engine
		if gin.Mode() == gin.DebugMode {
			r = gin.Default()
		} else {
			r = gin.New()
			r.Use(gin.Recovery(), handler.RequestLogger(log.Named("http")))
		}
		r.Use(handler.CORSMiddleware(cfg.Server.CORSAllowedOrigins, true))
		handler.Register(r, handler.Handlers{
			Alert:     handler.NewAlertHandler(service.NewAlertService(pg, actions, log.Named("alert")), log.Named("alert")),
			Policy:    handler.NewPolicyHandler(policySvc),
			Chat:      handler.NewChatHandler(service.NewChatService(pg, engine, log.Named("chat"))),
			Command:   handler.NewCommandHandler(cmdRouter),
			Inventory: handler.NewInventoryHandler(service.NewInventoryService(pg, netScanner, pg, cfg.Scan.DefaultSubnet)),
			Backend:   handler.NewBackendHandler(registry),
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	log.Info("shutdown complete")
	return err
}

// newRegistry - 도메인별 백엔드 접속 방식 등록
func newRegistry(cfg config.MCPConfig, log *zap.Logger) *client.Registry {
	registry := client.NewRegistry(log)
	backends := []client.MCPClientConfig{
		{Domain: model.DomainKubernetes, BaseURL: cfg.KubernetesURL, Endpoint: "/jsonrpc", Probe: client.ProbeHealthEndpoint},
		{Domain: model.DomainPrometheus, BaseURL: cfg.PrometheusURL, Endpoint: "/jsonrpc", Probe: client.ProbeHealthEndpoint},
		{Domain: model.DomainGrafana, BaseURL: cfg.GrafanaURL, Endpoint: "/mcp", Probe: client.ProbeInitialize},
		{Domain: model.DomainVMware, BaseURL: cfg.ESXiURL, Endpoint: "/mcp", Probe: client.ProbeRoot},
	}
	for _, backend := range backends {
		backend.CallTimeout = cfg.CallTimeout
		backend.HealthTimeout = cfg.HealthTimeout
		registry.Register(backend.Domain, func() *client.MCPClient {
			return client.NewMCPClient(backend)
		})
	}
	return registry
}

func newCompleter(ctx context.Context, cfg config.LLMConfig) (agent.Completer, error) {
	if cfg.Provider == "gemini" {
		gemini, err := client.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
	return client.NewOllamaClient(cfg), nil
}
