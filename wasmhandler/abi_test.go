package wasmhandler

import "testing"

func TestStatusCodeString(t *testing.T) {
	tests := []struct {
		code StatusCode
		want string
	}{
		{0, "OK"},
		{1, "ERROR"},
		{2, "INVALID_ARGUMENT"},
		{7, "UNKNOWN(7)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("StatusCode(%d).String() = %q, want %q", uint32(tt.code), got, tt.want)
		}
	}
}

func TestABIVersionString(t *testing.T) {
	if got := ABIV1.String(); got != "v1" {
		t.Errorf("ABIV1.String() = %q", got)
	}
	if got := ABIUnknown.String(); got != "unknown" {
		t.Errorf("ABIUnknown.String() = %q", got)
	}
	if got := ABIVersion(9).String(); got != "invalid" {
		t.Errorf("ABIVersion(9).String() = %q", got)
	}
}

func TestPackResult(t *testing.T) {
	packed := packResult(callGrow, 4096)
	if status := uint32(packed >> 32); status != callGrow {
		t.Errorf("status = %d, want %d", status, callGrow)
	}
	if payload := uint32(packed); payload != 4096 {
		t.Errorf("payload = %d, want %d", payload, 4096)
	}
}
