// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/luxfi/adserve/pkg/ads"
	"github.com/luxfi/adserve/pkg/ads/catalog"
	"github.com/luxfi/adserve/pkg/ads/config"
	"github.com/luxfi/adserve/pkg/ads/events"
	"github.com/luxfi/adserve/pkg/ads/serving"
	"github.com/luxfi/adserve/pkg/log"
	"github.com/luxfi/adserve/pkg/metric"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		port        = flag.Int("port", 8080, "HTTP server port")
		logLevel    = flag.String("log-level", "info", "Log level (debug|info|warn|error)")
		redisAddr   = flag.String("redis", "", "Redis address for event history (empty for in-memory)")
		postgresDSN = flag.String("postgres-dsn", "", "PostgreSQL DSN for the creative catalog (empty for in-memory)")
		version     = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("adserved v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	logger := log.NewWithLevel(*logLevel)
	defer logger.Sync()

	logger.Info("starting adserved", "version", Version)

	cfg := config.FromEnv()

	metrics, err := metric.NewMetrics()
	if err != nil {
		logger.Fatal("failed to create metrics", "error", err)
	}

	var eventStore events.Store = events.NewMemoryStore()
	if *redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("failed to connect to redis", "addr", *redisAddr, "error", err)
		}
		eventStore = events.NewRedisStore(client)
		logger.Info("using redis event history", "addr", *redisAddr)
	}

	memCatalog := catalog.NewMemoryCatalog()
	var catalogSource catalog.Source = memCatalog
	if *postgresDSN != "" {
		pg, err := catalog.NewPostgresCatalog(context.Background(), *postgresDSN)
		if err != nil {
			logger.Fatal("failed to connect to catalog database", "error", err)
		}
		defer pg.Close()
		catalogSource = pg
		memCatalog = nil
		logger.Info("using postgres creative catalog")
	}

	hub := newEventHub(logger)

	engines := make(map[ads.Type]*serving.Engine, len(ads.Types))
	for _, adType := range ads.Types {
		engine := serving.NewEngine(serving.EngineConfig{
			AdType:           adType,
			Config:           cfg,
			Events:           eventStore,
			Catalog:          catalogSource,
			UserModelBuilder: &serving.StaticUserModelBuilder{},
			Metrics:          metrics,
			Logger:           logger,
		})
		engine.AddDelegate(hub)
		engines[adType] = engine
	}

	router := setupRouter(engines, memCatalog, metrics, hub, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down adserved")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func setupRouter(
	engines map[ads.Type]*serving.Engine,
	memCatalog *catalog.MemoryCatalog,
	metrics *metric.Metrics,
	hub *eventHub,
	logger log.Logger,
) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": Version})
	})

	router.GET("/metrics", gin.WrapH(
		promhttp.HandlerFor(metrics.GetGatherer(), promhttp.HandlerOpts{})))

	router.POST("/v1/:adType/serve", func(c *gin.Context) {
		adType, ok := ads.ParseType(c.Param("adType"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown ad type"})
			return
		}

		var req struct {
			Dimensions string `json:"dimensions"`
		}
		_ = c.ShouldBindJSON(&req)

		engines[adType].MaybeServeAd(c.Request.Context(), req.Dimensions, func(ad *ads.ServedAd) {
			if ad == nil {
				c.JSON(http.StatusOK, gin.H{"served": false})
				return
			}
			c.JSON(http.StatusOK, gin.H{"served": true, "ad": ad})
		})
	})

	if memCatalog != nil {
		router.PUT("/v1/catalog/:adType", func(c *gin.Context) {
			adType, ok := ads.ParseType(c.Param("adType"))
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown ad type"})
				return
			}

			var creatives []ads.CreativeAd
			if err := c.ShouldBindJSON(&creatives); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			memCatalog.SetCreativeAds(adType, creatives, time.Now())
			logger.Info("catalog updated", "ad_type", adType, "creatives", len(creatives))
			c.JSON(http.StatusOK, gin.H{"stored": len(creatives)})
		})
	}

	router.GET("/v1/events", hub.handleWebSocket)

	return router
}

// eventHub broadcasts serve lifecycle events to websocket subscribers.
// It doubles as a serving.Delegate so every engine feeds it.
type eventHub struct {
	log      log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newEventHub(logger log.Logger) *eventHub {
	return &eventHub{
		log: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

func (h *eventHub) handleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	h.log.Debug("event subscriber connected", "remote", c.Request.RemoteAddr)

	// Drain until the client disconnects.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *eventHub) broadcast(payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(payload); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// OnOpportunityAroseToServeAd implements serving.Delegate
func (h *eventHub) OnOpportunityAroseToServeAd(adType ads.Type, segments []string) {
	h.broadcast(gin.H{"event": "opportunity", "ad_type": adType, "segments": segments})
}

// OnDidServeAd implements serving.Delegate
func (h *eventHub) OnDidServeAd(ad ads.ServedAd) {
	h.broadcast(gin.H{"event": "served", "ad_type": ad.Type, "ad": ad})
}

// OnFailedToServeAd implements serving.Delegate
func (h *eventHub) OnFailedToServeAd(adType ads.Type) {
	h.broadcast(gin.H{"event": "failed", "ad_type": adType})
}
