package dashboard

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/etay-atar/Sandbox/internal/domain"
)

// fakeAPI is a programmable SubmissionAPI. Handlers ignore ctx on purpose so
// tests can model responses that arrive after their loop was cancelled.
type fakeAPI struct {
	mu sync.Mutex

	listFn   func(call int) ([]domain.Submission, error)
	statusFn func(id string, call int) (domain.AnalysisStatus, error)
	reportFn func(id string) (domain.Report, error)
	createFn func(filename string, content []byte) (domain.Submission, error)

	listCalls   int
	statusCalls map[string]int
	reportCalls map[string]int
	authHeaders []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		statusCalls: make(map[string]int),
		reportCalls: make(map[string]int),
	}
}

func (f *fakeAPI) ListSubmissions(_ context.Context, rc domain.RequestContext) ([]domain.Submission, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	f.authHeaders = append(f.authHeaders, rc.Authorization())
	fn := f.listFn
	f.mu.Unlock()

	if fn == nil {
		return []domain.Submission{}, nil
	}
	return fn(call)
}

func (f *fakeAPI) CreateSubmission(_ context.Context, _ domain.RequestContext, filename string, content io.Reader) (domain.Submission, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return domain.Submission{}, err
	}
	f.mu.Lock()
	fn := f.createFn
	f.mu.Unlock()
	if fn == nil {
		return domain.Submission{}, errors.New("create not configured")
	}
	return fn(filename, data)
}

func (f *fakeAPI) GetStatus(_ context.Context, _ domain.RequestContext, id string) (domain.AnalysisStatus, error) {
	f.mu.Lock()
	f.statusCalls[id]++
	call := f.statusCalls[id]
	fn := f.statusFn
	f.mu.Unlock()

	if fn == nil {
		return domain.AnalysisStatus{Status: domain.StatusQueued}, nil
	}
	return fn(id, call)
}

func (f *fakeAPI) GetReport(_ context.Context, _ domain.RequestContext, id string) (domain.Report, error) {
	f.mu.Lock()
	f.reportCalls[id]++
	fn := f.reportFn
	f.mu.Unlock()

	if fn == nil {
		return domain.Report{"submission_id": id, "verdict": domain.VerdictMalicious}, nil
	}
	return fn(id)
}

func (f *fakeAPI) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeAPI) statuses(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls[id]
}

func (f *fakeAPI) reports(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reportCalls[id]
}
