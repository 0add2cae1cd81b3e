package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetail_Payload(t *testing.T) {
	raw := json.RawMessage(`{"status":"Processing","progress":50}`)
	progress := ProgressDetail("id-1", AnalysisStatus{Status: StatusProcessing, Progress: 50, Raw: raw})

	assert.Equal(t, DetailProgress, progress.Kind)
	assert.Equal(t, raw, progress.Payload())

	report := ReportDetail("id-1", AnalysisStatus{Status: StatusCompleted, Progress: 100}, Report{"verdict": "Malicious"})
	assert.Equal(t, DetailReport, report.Kind)
	assert.Equal(t, Report{"verdict": "Malicious"}, report.Payload())

	var none *Detail
	assert.Nil(t, none.Payload())
}

func TestDetail_PayloadWithoutRaw(t *testing.T) {
	d := ProgressDetail("id-1", AnalysisStatus{Status: StatusQueued})

	assert.Equal(t, d.Progress, d.Payload())
}

func TestDetailKind_String(t *testing.T) {
	assert.Equal(t, "progress", DetailProgress.String())
	assert.Equal(t, "report", DetailReport.String())
	assert.Equal(t, "unknown", DetailKind(9).String())
}
