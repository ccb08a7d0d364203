package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultTimeout   = 60 // seconds
	defaultRequestID = 1

	maxReadContentLength int64 = 1024 * 1024 * 10 // 10M
)

// Request json rpc request
type Request struct {
	Method  string
	Params  interface{}
	Timeout int
	ID      int
	Headers map[string]string
}

// NewRequest new request
func NewRequest(method string, params ...interface{}) *Request {
	return &Request{
		Method:  method,
		Params:  params,
		Timeout: defaultTimeout,
		ID:      defaultRequestID,
	}
}

// SetBasicAuth sets the basic authorization header of the request
func (req *Request) SetBasicAuth(username, password string) {
	if username == "" && password == "" {
		return
	}
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	req.Headers["Authorization"] = "Basic " + auth
}

// RequestBody request body
type RequestBody struct {
	Version string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

// JSONError json rpc error object
type JSONError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (err *JSONError) Error() string {
	return fmt.Sprintf("json-rpc error %d, %s", err.Code, err.Message)
}

type jsonrpcResponse struct {
	Version string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Error   *JSONError      `json:"error,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// RPCPostRequest rpc post request
func RPCPostRequest(ctx context.Context, url string, req *Request, result interface{}) error {
	reqBody := &RequestBody{
		Version: "2.0",
		Method:  req.Method,
		Params:  req.Params,
		ID:      req.ID,
	}
	resp, err := HTTPPost(ctx, url, reqBody, req.Headers, req.Timeout)
	if err != nil {
		return err
	}
	return getResultFromJSONResponse(result, resp)
}

func getResultFromJSONResponse(result interface{}, resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadContentLength))
	if err != nil {
		return fmt.Errorf("read body error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wrong response status %v. message: %v", resp.StatusCode, string(body))
	}

	var jsonResp jsonrpcResponse
	err = json.Unmarshal(body, &jsonResp)
	if err != nil {
		return fmt.Errorf("unmarshal body error: %w", err)
	}
	if jsonResp.Error != nil {
		return jsonResp.Error
	}
	if len(jsonResp.Result) == 0 {
		return fmt.Errorf("empty result in response: %v", string(body))
	}
	err = json.Unmarshal(jsonResp.Result, result)
	if err != nil {
		return fmt.Errorf("unmarshal result error: %w", err)
	}
	return nil
}
