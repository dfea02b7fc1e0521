package errors

import (
	"strings"
	"testing"
)

func TestValidateDraftName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "lab1", false},
		{"valid with spaces", "Redes Lab 3", false},
		{"valid with dash", "star-topology", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 200), true},
		{"path traversal", "../etc", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"control char", "a\x01b", true},
		{"hidden", ".draft", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraftName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDraftName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateImageName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"cirros", false},
		{"ubuntu-22.04", false},
		{"debian_12:latest", false},
		{"", true},
		{"-leading-dash", true},
		{"has space", true},
		{strings.Repeat("x", 65), true},
	}

	for _, tt := range tests {
		err := ValidateImageName(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateImageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"http://localhost:8000/slices", false},
		{"https://slice-manager.example.org/api/deploy", false},
		{"", true},
		{"ftp://example.org", true},
		{"localhost:8000", true},
		{"https://", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
