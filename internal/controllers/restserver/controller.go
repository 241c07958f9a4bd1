// Package restserver serves the chart frontend and the chart-data API.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rpelletier/meteopi/internal/log"
	"github.com/rpelletier/meteopi/internal/query"
	"github.com/rpelletier/meteopi/internal/storage"
	"github.com/rpelletier/meteopi/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTData
	Server     http.Server
	Store      storage.ReadingStore
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTData, store storage.ReadingStore, logger *zap.SugaredLogger) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("the REST server requires a reading store")
	}

	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}
	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8000")
		rc.Port = 8000
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		Store:      store,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl, query.NewService(store))

	return ctrl, nil
}

// StartController starts the HTTP server and blocks until the context ends
func (c *Controller) StartController() error {
	router := mux.NewRouter()
	router.Use(c.requestLogger)

	router.HandleFunc("/data/today", c.handlers.GetDataToday).Methods(http.MethodGet)
	router.HandleFunc("/data/today_ext", c.handlers.GetDataTodayExt).Methods(http.MethodGet)
	router.HandleFunc("/data/stats", c.handlers.GetDayStats).Methods(http.MethodGet)
	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)

	// Everything else is the chart frontend
	router.PathPrefix("/").Handler(http.FileServer(http.FS(GetAssets())))

	c.Server = http.Server{
		Addr:         fmt.Sprintf("%s:%d", c.restConfig.ListenAddr, c.restConfig.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("error shutting down REST server: %v", err)
		}
	}()

	log.Infof("REST server listening on %s", c.Server.Addr)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	return nil
}
