// Package server provides the api server of the blocks reader.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	rpcjson "github.com/gorilla/rpc/v2/json2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/params"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/rpc/restapi"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/rpc/rpcapi"
)

// StartAPIServer start api server, the caller shuts down the returned server
func StartAPIServer(api *rpcapi.RPCAPI, gatherer prometheus.Gatherer) *http.Server {
	apiPort := params.GetAPIPort()
	var apiServer params.APIServerConfig
	if cfg := params.GetConfig().APIServer; cfg != nil {
		apiServer = *cfg
	}

	log.Info("JSON RPC service listen and serving", "port", apiPort, "allowedOrigins", apiServer.AllowedOrigins)
	svr := &http.Server{
		Addr:         fmt.Sprintf(":%v", apiPort),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		Handler:      NewHandler(api, gatherer, &apiServer),
	}
	go func() {
		if err := svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ListenAndServe error", "err", err)
		}
	}()
	return svr
}

// NewHandler api handler with cors and request limit
func NewHandler(api *rpcapi.RPCAPI, gatherer prometheus.Gatherer, cfg *params.APIServerConfig) http.Handler {
	corsOptions := []handlers.CORSOption{
		handlers.AllowedMethods([]string{"GET", "POST"}),
	}
	if len(cfg.AllowedOrigins) != 0 {
		corsOptions = append(corsOptions,
			handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"}),
			handlers.AllowedOrigins(cfg.AllowedOrigins),
		)
	}

	var handler http.Handler = initRouter(api, gatherer)
	if cfg.MaxRequestsLimit > 0 {
		lmt := tollbooth.NewLimiter(float64(cfg.MaxRequestsLimit), &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
		lmt.SetMessage("too many requests")
		handler = tollbooth.LimitHandler(lmt, handler)
	}
	return handlers.CORS(corsOptions...)(handler)
}

func initRouter(api *rpcapi.RPCAPI, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()

	rpcserver := rpc.NewServer()
	rpcserver.RegisterCodec(rpcjson.NewCodec(), "application/json")
	if err := rpcserver.RegisterService(api, rpcapi.ServiceName); err != nil {
		log.Fatal("register rpc service failed", "err", err)
	}

	rest := restapi.NewAPI(api)
	r.Handle("/rpc", rpcserver)
	r.HandleFunc("/versioninfo", rest.VersionInfoHandler).Methods("GET")
	r.HandleFunc("/status", rest.ScanStatusHandler).Methods("GET")
	r.HandleFunc("/irreversible", rest.IrreversibleHandler).Methods("GET")
	r.HandleFunc("/read/{number}", rest.ReadBlockHandler).Methods("GET")
	r.HandleFunc("/block/{number}", rest.GetBlockHandler).Methods("GET")
	r.HandleFunc("/transaction/{txid}", rest.GetTransactionHandler).Methods("GET")
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	methodsExceptGet := []string{"POST", "HEAD", "PUT", "DELETE", "CONNECT", "OPTIONS", "TRACE", "PATCH"}
	for _, path := range []string{"/versioninfo", "/status", "/irreversible", "/read/{number}", "/block/{number}", "/transaction/{txid}"} {
		r.HandleFunc(path, warnHandler).Methods(methodsExceptGet...)
	}

	return r
}

func warnHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	fmt.Fprintf(w, "Forbid '%v' on '%v'\n", r.Method, r.RequestURI)
}
