// Package restapi provides the restful GET api of the blocks reader.
package restapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/common"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/mongodb"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/params"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/rpc/rpcapi"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/worker"
	"github.com/gorilla/mux"
)

// API rest handlers over the rpc api
type API struct {
	rpc *rpcapi.RPCAPI
}

// NewAPI new rest api
func NewAPI(rpc *rpcapi.RPCAPI) *API {
	return &API{rpc: rpc}
}

func writeResponse(w http.ResponseWriter, resp interface{}, err error) {
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, err.Error())
		return
	}
	jsonData, err := json.Marshal(resp)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(jsonData)
}

func getBlockNumber(r *http.Request) (int64, error) {
	number, err := common.GetInt64FromStr(mux.Vars(r)["number"])
	if err != nil {
		return 0, fmt.Errorf("wrong block number: %w", err)
	}
	return number, nil
}

// VersionInfoHandler handler
func (api *API) VersionInfoHandler(w http.ResponseWriter, r *http.Request) {
	var res params.VersionInfo
	err := api.rpc.GetVersionInfo(r, nil, &res)
	writeResponse(w, &res, err)
}

// ScanStatusHandler handler
func (api *API) ScanStatusHandler(w http.ResponseWriter, r *http.Request) {
	var res worker.ScanStatus
	err := api.rpc.GetScanStatus(r, nil, &res)
	writeResponse(w, &res, err)
}

// IrreversibleHandler handler
func (api *API) IrreversibleHandler(w http.ResponseWriter, r *http.Request) {
	var res blocks.IrreversibleMarker
	err := api.rpc.GetIrreversible(r, nil, &res)
	writeResponse(w, &res, err)
}

// ReadBlockHandler handler
func (api *API) ReadBlockHandler(w http.ResponseWriter, r *http.Request) {
	number, err := getBlockNumber(r)
	if err != nil {
		writeResponse(w, nil, err)
		return
	}
	var res blocks.BlockResult
	err = api.rpc.ReadBlock(r, &number, &res)
	writeResponse(w, &res, err)
}

// GetBlockHandler handler
func (api *API) GetBlockHandler(w http.ResponseWriter, r *http.Request) {
	number, err := getBlockNumber(r)
	if err != nil {
		writeResponse(w, nil, err)
		return
	}
	var res mongodb.MgoBlock
	err = api.rpc.GetBlock(r, &number, &res)
	writeResponse(w, &res, err)
}

// GetTransactionHandler handler
func (api *API) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	txid := mux.Vars(r)["txid"]
	var res rpcapi.TransactionInfo
	err := api.rpc.GetTransaction(r, &txid, &res)
	writeResponse(w, &res, err)
}
