package common

import (
	"testing"

	"resumeats/internal/errors"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		configured []string
		wantErr    bool
	}{
		{"json enabled", "json", []string{"json", "text", "markdown"}, false},
		{"markdown enabled", "markdown", []string{"json", "markdown"}, false},
		{"registered but disabled", "text", []string{"json"}, true},
		{"unknown format", "xml", []string{"json", "text", "markdown", "xml"}, true},
		{"no restriction", "text", nil, false},
		{"no restriction unknown", "yaml", nil, true},
		{"empty format", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.configured)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateOutputFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			appErr, ok := errors.As(err)
			if !ok || appErr.Code != errors.ErrCodeInvalidFormat {
				t.Errorf("expected %s app error, got %v", errors.ErrCodeInvalidFormat, err)
			}
		})
	}
}

func TestSupportedFormats(t *testing.T) {
	tests := []struct {
		name       string
		configured []string
		want       []string
	}{
		{"all registered", nil, []string{"json", "markdown", "text"}},
		{"narrowed", []string{"text", "json"}, []string{"json", "text"}},
		{"unregistered ignored", []string{"json", "xml"}, []string{"json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SupportedFormats(tt.configured)
			if len(got) != len(tt.want) {
				t.Fatalf("SupportedFormats(%v) = %v, want %v", tt.configured, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SupportedFormats(%v)[%d] = %q, want %q", tt.configured, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	configured := []string{"json", "text", "markdown"}
	for i := 0; i < b.N; i++ {
		_ = ValidateOutputFormat("markdown", configured)
	}
}
