package wire

import (
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatForPath(t *testing.T) {
	if got := FormatForPath("page.yml"); got != FormatYAML {
		t.Errorf("expected yaml, got %s", got)
	}
	if got := FormatForPath("page.JSON"); got != FormatJSON {
		t.Errorf("expected json, got %s", got)
	}
	if got := FormatForPath("page"); got != FormatJSON {
		t.Errorf("expected json default, got %s", got)
	}
}

func TestNewContainerAndEncoder(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		enc, err := NewEncoder(format)
		if err != nil {
			t.Fatalf("NewEncoder(%s): %v", format, err)
		}
		if err := enc.Encode("code", "p1"); err != nil {
			t.Fatalf("Encode: %v", err)
		}
		data, err := enc.Bytes()
		if err != nil {
			t.Fatalf("Bytes: %v", err)
		}

		c, err := NewContainer(format, data)
		if err != nil {
			t.Fatalf("NewContainer(%s): %v", format, err)
		}
		code, err := Required[string](c, "code")
		if err != nil || code != "p1" {
			t.Errorf("%s round trip: got %q, %v", format, code, err)
		}
	}

	if _, err := NewEncoder(Format(9)); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := NewContainer(Format(9), nil); err == nil {
		t.Error("expected error for unknown format")
	}
}
