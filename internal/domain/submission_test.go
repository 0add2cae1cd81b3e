package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	for _, s := range []SubmissionStatus{StatusQueued, StatusProcessing, StatusRunning, StatusFailed, "Unknown"} {
		assert.False(t, s.IsTerminal(), s)
	}
}

func TestSubmission_DecodesBackendPayload(t *testing.T) {
	body := `[
		{"submission_id":"6f1c","filename":"a.exe","status":"Queued","final_verdict":"Pending","created_at":"2025-03-01T10:00:00.123456+00:00"},
		{"submission_id":"7a2d","filename":"b.exe","status":"Completed","final_verdict":"Malicious","created_at":"2025-03-01T09:00:00.5"}
	]`

	var subs []Submission
	require.NoError(t, json.Unmarshal([]byte(body), &subs))
	require.Len(t, subs, 2)

	assert.Equal(t, StatusQueued, subs[0].Status)
	assert.Equal(t, VerdictPending, subs[0].FinalVerdict)
	assert.Equal(t, 123456000, subs[0].CreatedAt.Nanosecond())

	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 500_000_000, time.UTC), subs[1].CreatedAt.Time)
}

func TestTimestamp_Rejects(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}

func TestTimestamp_NullIsZero(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())
}

func TestAnalysisStatus_KeepsRawPayload(t *testing.T) {
	body := `{"status":"Processing","progress":50,"eta_seconds":12}`

	var st AnalysisStatus
	require.NoError(t, json.Unmarshal([]byte(body), &st))

	assert.Equal(t, StatusProcessing, st.Status)
	assert.Equal(t, 50, st.Progress)
	assert.JSONEq(t, body, string(st.Raw))
}

func TestReport_Accessors(t *testing.T) {
	var r Report
	require.NoError(t, json.Unmarshal([]byte(`{"verdict":"Malicious","score":98.5}`), &r))

	assert.Equal(t, VerdictMalicious, r.Verdict())
	score, ok := r.Score()
	assert.True(t, ok)
	assert.InDelta(t, 98.5, score, 0.0001)

	_, ok = Report{}.Score()
	assert.False(t, ok)
}
