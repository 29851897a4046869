package actions

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/gallerops/dwpipe/analytics"
	h "github.com/gallerops/dwpipe/helper"
	"github.com/gallerops/dwpipe/logger"
	"github.com/gallerops/dwpipe/rdbms"
	"github.com/gallerops/dwpipe/rdbms/shared"
	"github.com/gallerops/dwpipe/warehouse"
)

type WebServerConfig struct {
	Connections      ConnectionHandler
	SourceName       string `errorTxt:"source connection name" mandatory:"yes"`
	TargetName       string `errorTxt:"target connection name" mandatory:"yes"`
	Addr             string
	Port             int    `errorTxt:"port" mandatory:"yes"`
	CacheTTLMinutes  int    `errorTxt:"cache TTL in minutes" mandatory:"yes"`
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
}

// webServerState bundles the long-lived collaborators behind the handlers.
type webServerState struct {
	log       logger.Logger
	source    shared.Connector
	target    shared.Connector
	reports   *analytics.Service
	validator *warehouse.Validator
}

// RunWebServer exposes reports, validation and sync over HTTP and blocks
// until interrupted or stopped via the /stop endpoint.
func RunWebServer(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	if web.LogLevel == "" {
		web.LogLevel = "warn"
	}
	log := logger.NewLogger("dwpipe", web.LogLevel, web.StackDumpOnPanic)
	if err := h.ValidateStructIsPopulated(web); err != nil {
		return err
	}
	source, target, err := openSourceAndTarget(log, web.Connections, web.SourceName, web.TargetName)
	if err != nil {
		return err
	}
	defer func() {
		source.Close()
		target.Close()
	}()
	// Capabilities are probed once at startup; re-provisioning the warehouse
	// requires a server restart.
	caps := rdbms.ProbeTables(log, target, warehouse.WarehouseTables)
	state := &webServerState{
		log:       log,
		source:    source,
		target:    target,
		reports:   analytics.NewService(log, target, caps, time.Duration(web.CacheTTLMinutes)*time.Minute),
		validator: warehouse.NewValidator(log, warehouse.NewReader(log, source), target, caps),
	}
	srv, chanStopServer := runServer(log, web, state)
	return waitForServer(log, srv, chanStopServer)
}

// runServer starts the HTTP server and returns it plus a channel that stops it.
func runServer(log logger.Logger, web *WebServerConfig, state *webServerState) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	r := mux.NewRouter()
	r.HandleFunc("/stop", GetHandlerStopServer(log, chanStopServer))
	r.Path("/health").HandlerFunc(GetHandlerHealth(log))
	r.Path("/reports/exhibition-value").Methods(http.MethodGet).HandlerFunc(GetHandlerExhibitionValue(state))
	r.Path("/reports/top-artists").Methods(http.MethodGet).HandlerFunc(GetHandlerTopArtists(state))
	r.Path("/reports/monthly-activity").Methods(http.MethodGet).HandlerFunc(GetHandlerMonthlyActivity(state))
	r.Path("/validate").Methods(http.MethodGet).HandlerFunc(GetHandlerValidate(state))
	r.Path("/sync").Methods(http.MethodPost).HandlerFunc(GetHandlerSync(state))
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Minute * 5, // syncs run inside a request.
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r, // supply our instance of gorilla/mux.
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on http://%v:%v", web.Addr, web.Port))
	return srv, chanStopServer
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string) error {
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt) // request signals be sent to chanOS.
	select {
	case <-chanStopServer:
	case <-chanOS:
	}
	fmt.Println() // print new line char for clean looking CLI.
	log.Info("Shutting down web server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
