package main

import (
	"testing"

	"cfuaa/cmd"
)

func TestVersion(t *testing.T) {
	if version != "dev" {
		t.Errorf("Expected default version to be 'dev', got %s", version)
	}
}

func TestSetVersion(t *testing.T) {
	tests := []struct {
		name     string
		setValue string
	}{
		{name: "custom version", setValue: "v1.0.0"},
		{name: "semantic version", setValue: "2.3.4-beta.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := cmd.GetVersion()
			defer cmd.SetVersion(original)

			cmd.SetVersion(tt.setValue)
			if got := cmd.GetVersion(); got != tt.setValue {
				t.Errorf("Expected version %s, got %s", tt.setValue, got)
			}
		})
	}
}
