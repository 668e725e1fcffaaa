package diagnostic

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsCollect(t *testing.T) {
	var d Diagnostics

	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddInfo("template_entry_applied", "applied", "Patient", "")
	d.AddWarning("template_entry_skipped", "entry has no node id", "", "")
	d.AddWarningWithSuggestions("unmapped_field", "field has no mapping", "Patient", "Gendr", []string{"Gender"})
	d.AddError("node_not_found", "node does not exist", "Missing", "")

	assert.False(t, d.IsValid())
	assert.True(t, d.HasErrors())
	assert.Equal(t, 1, d.Count("unmapped_field"))
	assert.Equal(t, "1 error, 2 warnings, 1 info", d.Summary())
	assert.EqualError(t, d.Error(), "[Missing]: [node_not_found] node does not exist")
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Code:        "unmapped_field",
		Message:     "field has no mapping",
		Node:        "Patient",
		Field:       "Gendr",
		Suggestions: []string{"Gender"},
	}
	assert.Equal(t, "[Patient] Gendr: [unmapped_field] field has no mapping (did you mean Gender?)", d.String())

	assert.Equal(t, "plain", Diagnostic{Message: "plain"}.String())
}

func TestMerge(t *testing.T) {
	var a, b Diagnostics
	a.AddInfo("x", "x", "", "")
	b.AddError("y", "y", "", "")
	b.AddWarning("z", "z", "", "")

	a.Merge(b)
	assert.Len(t, a.Infos, 1)
	assert.Len(t, a.Errors, 1)
	assert.Len(t, a.Warnings, 1)
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var d Diagnostics
	d.AddWarning("template_entry_skipped", "entry has no node id", "", "")
	d.Log(context.Background(), logger)

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=template_entry_skipped")

	// nil logger is a no-op
	d.Log(context.Background(), nil)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
