package errors

import (
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", "S101", "Configuration file not found", CategoryConfig},
		{"protocol error", "S301", "Hub connection failed", CategoryProtocol},
		{"unknown error code", "S999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New("S301").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("errors.Is should find the wrapped cause")
	}
	if got := err.Error(); got != "S301: Hub connection failed: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if FromError(err, "S999") != err {
		t.Error("FromError should return a SyncError unchanged")
	}
	if FromError(nil, "S101") != nil {
		t.Error("FromError(nil) should be nil")
	}
	if got := FromError(cause, "S201"); got.Code != "S201" || got.Wrapped != cause {
		t.Errorf("FromError(cause) = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer func() { colorEnabled = true }()

	err := New("S102").
		WithDetail("line 3: mapping values are not allowed here").
		WithSuggestion("Check the YAML indentation")
	out := err.Format()

	for _, want := range []string{"ERROR S102: Invalid configuration file", "line 3", "Hint: Check the YAML indentation"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	if got := err.FormatCompact(); got != "[S102] Invalid configuration file" {
		t.Errorf("FormatCompact() = %q", got)
	}

	var decoded map[string]string
	if e := json.Unmarshal([]byte(err.FormatJSON()), &decoded); e != nil {
		t.Fatalf("FormatJSON not valid JSON: %v", e)
	}
	if decoded["code"] != "S102" || decoded["category"] != "config" {
		t.Errorf("FormatJSON = %v", decoded)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown area %q", "cookie")
	if err.Message != `unknown area "cookie"` || err.Code != "" {
		t.Errorf("Newf = %+v", err)
	}
	if err.Error() != `unknown area "cookie"` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 || codes[0] != "S101" {
		t.Fatalf("GetAllCodes() = %v", codes)
	}
	if tmpl, ok := GetTemplate("S402"); !ok || tmpl.Category != CategoryCLI {
		t.Fatalf("GetTemplate(S402) = %+v, %v", tmpl, ok)
	}
	if _, ok := GetTemplate("S999"); ok {
		t.Fatal("GetTemplate(S999) should miss")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four", 9)
	if len(lines) != 2 || lines[0] != "one two" || lines[1] != "three four" {
		t.Fatalf("wrapText = %q", lines)
	}
}
