package formatting

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"cfuaa/internal/config"
	"cfuaa/internal/principal"
	"cfuaa/internal/uaa"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPrinter_PrincipalTable(t *testing.T) {
	var buf bytes.Buffer
	pr := principal.ForUser("alice", []string{"org1", "org2"})

	require.NoError(t, NewPrinter(&buf, FormatTable).Principal(pr))
	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "authenticated")
	assert.Contains(t, out, "org2")
}

func TestPrinter_PrincipalJSON(t *testing.T) {
	var buf bytes.Buffer
	pr := principal.ForUser("alice", []string{"org1"})

	require.NoError(t, NewPrinter(&buf, FormatJSON).Principal(pr))
	var got principal.Principal
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, pr.Authorities, got.Authorities)
}

func TestPrinter_Organizations(t *testing.T) {
	orgs := &uaa.Organizations{Names: []string{"org1"}, TotalResults: 120, TotalPages: 3}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable).Organizations(orgs))
	assert.Contains(t, buf.String(), "org1")
	assert.Contains(t, buf.String(), "first of 3 pages")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatYAML).Organizations(orgs))
	var view organizationsView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &view))
	assert.True(t, view.Truncated)
	assert.Equal(t, []string{"org1"}, view.Organizations)

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatTable).Organizations(&uaa.Organizations{}))
	assert.Contains(t, buf.String(), "No active organizations")
}

func TestPrinter_ConfigErrors(t *testing.T) {
	var buf bytes.Buffer
	errs := []*config.ConfigurationError{
		config.NewConfigurationError("uaa.clientId", "must not be empty", "set CFUAA_CLIENT_ID"),
	}
	require.NoError(t, NewPrinter(&buf, FormatTable).ConfigErrors(errs))
	assert.Contains(t, buf.String(), "uaa.clientId")
	assert.Contains(t, buf.String(), "set CFUAA_CLIENT_ID")
}
