package blocks

import (
	"encoding/json"
	"testing"
)

func TestClassifyResult(t *testing.T) {
	tests := []struct {
		code string
		want ResultClass
	}{
		{"tesSUCCESS", ResultSuccess},
		{"tecUNFUNDED", ResultInsufficientBalance},
		{"tecUNFUNDED_PAYMENT", ResultInsufficientBalance},
		{"tecPATH_DRY", ResultInsufficientBalance},
		{"tecPATH_PARTIAL", ResultInsufficientBalance},
		{"tecNO_DST_INSUF_XRP", ResultTransientOrOther},
		{"tecNO_LINE", ResultTransientOrOther},
		{"tefPAST_SEQ", ResultTransientOrOther},
		{"tessuccess", ResultTransientOrOther},
		{"", ResultTransientOrOther},
	}
	for _, test := range tests {
		if have := ClassifyResult(test.code); have != test.want {
			t.Errorf("classify %q: have %v, want %v", test.code, have, test.want)
		}
	}
}

func TestResultClassText(t *testing.T) {
	for _, class := range []ResultClass{ResultSuccess, ResultInsufficientBalance, ResultTransientOrOther} {
		b, err := json.Marshal(class)
		if err != nil {
			t.Fatalf("marshal %v error: %v", class, err)
		}
		var have ResultClass
		if err := json.Unmarshal(b, &have); err != nil {
			t.Fatalf("unmarshal %s error: %v", b, err)
		}
		if have != class {
			t.Errorf("have %v, want %v", have, class)
		}
	}
	var class ResultClass
	if err := class.UnmarshalText([]byte("Unknown")); err == nil {
		t.Errorf("unmarshal unknown result class should fail")
	}
}
