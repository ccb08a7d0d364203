package blocks

import (
	"fmt"
)

// ResultClass classification of a transaction result code
type ResultClass int

// result classes
const (
	ResultSuccess ResultClass = iota
	ResultInsufficientBalance
	ResultTransientOrOther
)

const resultCodeSuccess = "tesSUCCESS"

var insufficientBalanceCodes = map[string]struct{}{
	"tecUNFUNDED":         {},
	"tecUNFUNDED_PAYMENT": {},
	"tecPATH_DRY":         {},
	"tecPATH_PARTIAL":     {},
}

// ClassifyResult maps a transaction result code to its class
func ClassifyResult(code string) ResultClass {
	if code == resultCodeSuccess {
		return ResultSuccess
	}
	if _, exist := insufficientBalanceCodes[code]; exist {
		return ResultInsufficientBalance
	}
	return ResultTransientOrOther
}

func (c ResultClass) String() string {
	switch c {
	case ResultSuccess:
		return "Success"
	case ResultInsufficientBalance:
		return "NotEnoughBalance"
	case ResultTransientOrOther:
		return "TransientFailure"
	default:
		return fmt.Sprintf("ResultClass(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler
func (c ResultClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *ResultClass) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Success":
		*c = ResultSuccess
	case "NotEnoughBalance":
		*c = ResultInsufficientBalance
	case "TransientFailure":
		*c = ResultTransientOrOther
	default:
		return fmt.Errorf("unknown result class '%v'", string(text))
	}
	return nil
}
