// Package rpcapi provides the json rpc service of the blocks reader.
package rpcapi

import (
	"net/http"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/mongodb"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/params"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/worker"
)

// ServiceName rpc service name
const ServiceName = "blocksreader"

// StatusSource reports the scan status
type StatusSource interface {
	GetScanStatus() worker.ScanStatus
}

// RPCAPI rpc api handler
type RPCAPI struct {
	reader  worker.BlockReader
	tracker worker.IrreversibleSource
	status  StatusSource
}

// NewRPCAPI new rpc api, 'status' is nil if the worker is not running
func NewRPCAPI(reader worker.BlockReader, tracker worker.IrreversibleSource, status StatusSource) *RPCAPI {
	return &RPCAPI{
		reader:  reader,
		tracker: tracker,
		status:  status,
	}
}

// RPCNullArgs null args
type RPCNullArgs struct{}

// TransactionInfo stored transaction with its balance changes
type TransactionInfo struct {
	*mongodb.MgoTransaction
	BalanceChanges []*mongodb.MgoBalanceChange `json:"balanceChanges"`
}

// GetVersionInfo api
func (s *RPCAPI) GetVersionInfo(r *http.Request, args *RPCNullArgs, result *params.VersionInfo) error {
	*result = *params.GetVersionInfo()
	return nil
}

// ReadBlock api, reads the block from the node without storing it
func (s *RPCAPI) ReadBlock(r *http.Request, number *int64, result *blocks.BlockResult) error {
	res, err := s.reader.ReadBlock(r.Context(), *number)
	if err != nil {
		return newRPCError(err)
	}
	*result = *res
	return nil
}

// GetIrreversible api
func (s *RPCAPI) GetIrreversible(r *http.Request, args *RPCNullArgs, result *blocks.IrreversibleMarker) error {
	res, err := s.tracker.Latest(r.Context())
	if err != nil {
		return newRPCError(err)
	}
	*result = *res
	return nil
}

// GetScanStatus api
func (s *RPCAPI) GetScanStatus(r *http.Request, args *RPCNullArgs, result *worker.ScanStatus) error {
	if s.status == nil {
		return ErrScanDisabled
	}
	*result = s.status.GetScanStatus()
	return nil
}

// GetBlock api, gets stored block
func (s *RPCAPI) GetBlock(r *http.Request, number *int64, result *mongodb.MgoBlock) error {
	res, err := mongodb.FindBlock(*number)
	if err != nil {
		return err
	}
	*result = *res
	return nil
}

// GetLatestBlock api, gets the latest stored block
func (s *RPCAPI) GetLatestBlock(r *http.Request, args *RPCNullArgs, result *mongodb.MgoBlock) error {
	res, err := mongodb.FindLatestBlock()
	if err != nil {
		return err
	}
	*result = *res
	return nil
}

// GetTransaction api, gets stored transaction
func (s *RPCAPI) GetTransaction(r *http.Request, txid *string, result *TransactionInfo) error {
	tx, err := mongodb.FindTransaction(*txid)
	if err != nil {
		return err
	}
	changes, err := mongodb.FindBalanceChanges(*txid)
	if err != nil {
		return err
	}
	*result = TransactionInfo{
		MgoTransaction: tx,
		BalanceChanges: changes,
	}
	return nil
}

// GetStoredIrreversible api, gets the last stored irreversible marker
func (s *RPCAPI) GetStoredIrreversible(r *http.Request, args *RPCNullArgs, result *mongodb.MgoIrreversible) error {
	res, err := mongodb.FindIrreversible()
	if err != nil {
		return err
	}
	*result = *res
	return nil
}
