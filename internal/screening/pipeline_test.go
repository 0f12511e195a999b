package screening

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-admin-go/internal/request"
	"hrms-admin-go/internal/storage"
	"hrms-admin-go/internal/storage/models"
	"hrms-admin-go/internal/types"
)

type memSource struct {
	items   []Item
	content map[string]string
	openErr map[string]error
	listErr error
}

func (s *memSource) List(ctx context.Context) ([]Item, error) {
	return s.items, s.listErr
}

func (s *memSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := s.openErr[key]; err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(s.content[key])), nil
}

func newMemSource(names ...string) *memSource {
	s := &memSource{content: map[string]string{}, openErr: map[string]error{}}
	for _, n := range names {
		key := "inbox/" + n
		s.items = append(s.items, Item{Key: key, Name: n})
		s.content[key] = "content of " + n
	}
	return s
}

// fakeResumeAPI 按文件名决定上传/分析是否失败
type fakeResumeAPI struct {
	mu         sync.Mutex
	uploaded   map[string]string // 文件名 -> 内容
	analyzed   []types.AnalyzeRequest
	uploadErr  map[string]error
	analyzeErr map[string]error
	inflight   atomic.Int32
	maxSeen    atomic.Int32
	delay      time.Duration
}

func newFakeResumeAPI() *fakeResumeAPI {
	return &fakeResumeAPI{uploaded: map[string]string{}, uploadErr: map[string]error{}, analyzeErr: map[string]error{}}
}

func (f *fakeResumeAPI) Upload(ctx context.Context, up types.ResumeUpload) (*types.UploadedFile, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		old := f.maxSeen.Load()
		if n <= old || f.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	data, _ := io.ReadAll(up.Reader)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.uploadErr[up.FileName]; err != nil {
		return nil, err
	}
	f.uploaded[up.FileName] = string(data)
	return &types.UploadedFile{FileID: "id-" + up.FileName, Name: up.FileName}, nil
}

func (f *fakeResumeAPI) Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, req)
	if err := f.analyzeErr[req.FileID]; err != nil {
		return nil, err
	}
	score := 88.5
	return &types.AnalysisResult{Name: "候选人-" + req.FileID, Score: &score}, nil
}

type memRecorder struct {
	mu      sync.Mutex
	records []*models.ScreeningRecord
	err     error
}

func (r *memRecorder) SaveScreening(ctx context.Context, rec *models.ScreeningRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

type published struct {
	exchange, routingKey string
	event                ScreenedEvent
}

type memPublisher struct {
	mu     sync.Mutex
	events []published
}

var _ storage.Publisher = (*memPublisher)(nil)

func (p *memPublisher) PublishJSON(ctx context.Context, exchange, routingKey string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{exchange, routingKey, data.(ScreenedEvent)})
	return nil
}

func newPipeline(t *testing.T, src Source, api *fakeResumeAPI, settings Settings, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(Components{Source: src, Uploader: api, Analyzer: api}, settings, opts...)
	require.NoError(t, err)
	return p
}

func TestRunUploadsThenAnalyzes(t *testing.T) {
	src := newMemSource("a.pdf", "b.docx")
	api := newFakeResumeAPI()
	p := newPipeline(t, src, api, Settings{Workers: 2, JobDescription: "Go 后端"})

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)

	// 结果顺序与来源一致
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "inbox/a.pdf", report.Outcomes[0].Key)
	assert.Equal(t, "inbox/b.docx", report.Outcomes[1].Key)
	assert.Equal(t, "id-a.pdf", report.Outcomes[0].FileID)
	require.NotNil(t, report.Outcomes[0].Result)
	assert.Equal(t, "候选人-id-a.pdf", report.Outcomes[0].Result.Name)

	assert.Equal(t, "content of a.pdf", api.uploaded["a.pdf"])
	assert.ElementsMatch(t, []types.AnalyzeRequest{
		{FileID: "id-a.pdf", JobDescription: "Go 后端"},
		{FileID: "id-b.docx", JobDescription: "Go 后端"},
	}, api.analyzed)
}

func TestUploadFailureSkipsAnalyze(t *testing.T) {
	src := newMemSource("ok.pdf", "broken.pdf")
	api := newFakeResumeAPI()
	apiErr := &request.APIError{Method: "POST", Path: "/api/hrms/resume/upload/", StatusCode: 200, Code: 400, Msg: "未获取到上传文件"}
	api.uploadErr["broken.pdf"] = apiErr
	p := newPipeline(t, src, api, Settings{Workers: 1})

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	broken := report.Outcomes[1]
	assert.True(t, broken.Failed())
	assert.Equal(t, StageUpload, broken.FailedStage)
	assert.Empty(t, broken.FileID)
	assert.Nil(t, broken.Result)
	assert.ErrorIs(t, broken.Err, ErrUploadFailed)
	assert.False(t, errors.Is(broken.Err, ErrAnalyzeFailed))

	var gotAPI *request.APIError
	require.ErrorAs(t, broken.Err, &gotAPI)
	assert.Equal(t, 400, gotAPI.Code)

	var serr *StageError
	require.ErrorAs(t, broken.Err, &serr)
	assert.Equal(t, report.BatchID, serr.BatchID)

	// 只有上传成功的文件被分析
	require.Len(t, api.analyzed, 1)
	assert.Equal(t, "id-ok.pdf", api.analyzed[0].FileID)
}

func TestAnalyzeFailureKeepsFileID(t *testing.T) {
	src := newMemSource("a.pdf")
	api := newFakeResumeAPI()
	api.analyzeErr["id-a.pdf"] = errors.New("analysis timeout")
	p := newPipeline(t, src, api, Settings{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	out := report.Outcomes[0]
	assert.Equal(t, StageAnalyze, out.FailedStage)
	assert.Equal(t, "id-a.pdf", out.FileID)
	assert.ErrorIs(t, out.Err, ErrAnalyzeFailed)
	assert.Contains(t, out.Error, "analysis timeout")
}

func TestOpenFailure(t *testing.T) {
	src := newMemSource("gone.pdf")
	src.openErr["inbox/gone.pdf"] = errors.New("no such key")
	api := newFakeResumeAPI()
	p := newPipeline(t, src, api, Settings{})

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageOpen, report.Outcomes[0].FailedStage)
	assert.ErrorIs(t, report.Outcomes[0].Err, ErrOpenFailed)
	assert.Empty(t, api.uploaded)
	assert.Empty(t, api.analyzed)
}

func TestListFailure(t *testing.T) {
	src := newMemSource()
	src.listErr = errors.New("bucket missing")
	p := newPipeline(t, src, newFakeResumeAPI(), Settings{})

	report, err := p.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestWorkersBoundConcurrency(t *testing.T) {
	src := newMemSource("1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf", "6.pdf")
	api := newFakeResumeAPI()
	api.delay = 20 * time.Millisecond
	p := newPipeline(t, src, api, Settings{Workers: 2})

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, report.Succeeded)
	assert.LessOrEqual(t, api.maxSeen.Load(), int32(2))
}

func TestRecordsAndPublishes(t *testing.T) {
	src := newMemSource("a.pdf", "bad.pdf")
	api := newFakeResumeAPI()
	api.uploadErr["bad.pdf"] = errors.New("connection reset")
	rec := &memRecorder{}
	pub := &memPublisher{}
	fixed := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	p := newPipeline(t, src, api, Settings{Workers: 1, JobDescription: "HRBP"},
		WithRecorder(rec),
		WithPublisher(pub, "hrms.screening.exchange", ""),
		WithNow(func() time.Time { return fixed }),
	)

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rec.records, 2)
	byKey := map[string]*models.ScreeningRecord{}
	for _, r := range rec.records {
		byKey[r.ObjectKey] = r
		assert.Equal(t, report.BatchID, r.BatchID)
		assert.Equal(t, "HRBP", r.JobDescription)
	}
	ok := byKey["inbox/a.pdf"]
	assert.Equal(t, models.ScreeningStatusSuccess, ok.Status)
	require.NotNil(t, ok.Score)
	assert.Equal(t, 88.5, *ok.Score)
	assert.Contains(t, string(ok.ResultJSON), `"score":88.5`)
	bad := byKey["inbox/bad.pdf"]
	assert.Equal(t, models.ScreeningStatusFailed, bad.Status)
	assert.Equal(t, "upload", bad.FailedStage)
	assert.Contains(t, bad.ErrorMessage, "connection reset")

	require.Len(t, pub.events, 2)
	for _, e := range pub.events {
		assert.Equal(t, "hrms.screening.exchange", e.exchange)
		assert.Equal(t, DefaultRoutingKey, e.routingKey)
		assert.Equal(t, fixed, e.event.ScreenedAt)
	}
}

func TestRecorderFailureIsWarning(t *testing.T) {
	src := newMemSource("a.pdf")
	api := newFakeResumeAPI()
	p := newPipeline(t, src, api, Settings{}, WithRecorder(&memRecorder{err: errors.New("db down")}))

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	out := report.Outcomes[0]
	assert.False(t, out.Failed())
	assert.Equal(t, []string{"db down"}, out.Warnings)
}

func TestCancelledContext(t *testing.T) {
	src := newMemSource("a.pdf")
	api := newFakeResumeAPI()
	p := newPipeline(t, src, api, Settings{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := p.Run(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, report.Outcomes[0].Err, context.Canceled)
	assert.Empty(t, api.uploaded)
}

func TestNewRequiresComponents(t *testing.T) {
	_, err := New(Components{}, Settings{})
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	for path, body := range map[string]string{
		filepath.Join(dir, "b.pdf"):      "b",
		filepath.Join(dir, "a.docx"):     "a",
		filepath.Join(dir, "notes.txt"):  "skip",
		filepath.Join(sub, "c.doc"):      "c",
		filepath.Join(dir, "single.txt"): "explicit",
	} {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}

	src := NewFileSource(dir, filepath.Join(dir, "single.txt"), filepath.Join(dir, "b.pdf"))
	items, err := src.List(context.Background())
	require.NoError(t, err)

	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"a.docx", "b.pdf", "c.doc", "single.txt"}, names)

	rc, err := src.Open(context.Background(), items[0].Key)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "a", string(data))

	_, err = NewFileSource(filepath.Join(dir, "missing")).List(context.Background())
	assert.Error(t, err)
}

type fakeObjectStore struct {
	prefix string
}

func (f *fakeObjectStore) ListResumes(ctx context.Context, prefix string) ([]storage.ResumeObject, error) {
	f.prefix = prefix
	return []storage.ResumeObject{{Key: "2026/10/cv.pdf", Size: 12}}, nil
}

func (f *fakeObjectStore) OpenResume(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(key)), nil
}

func TestBucketSource(t *testing.T) {
	store := &fakeObjectStore{}
	src := NewBucketSource(store, "2026/")
	items, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026/", store.prefix)
	assert.Equal(t, []Item{{Key: "2026/10/cv.pdf", Name: "cv.pdf", Size: 12}}, items)
}

func TestAnalyzeRateLimit(t *testing.T) {
	src := newMemSource("1.pdf", "2.pdf", "3.pdf")
	api := newFakeResumeAPI()
	// 每秒一次，令牌桶容量为1：第一份立即分析，其余在截止时间内拿不到令牌
	p := newPipeline(t, src, api, Settings{Workers: 1, AnalyzePerMinute: 60})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	report, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	for _, out := range report.Outcomes[1:] {
		assert.Equal(t, StageAnalyze, out.FailedStage)
		assert.NotEmpty(t, out.FileID)
	}
	assert.Len(t, api.analyzed, 1)
}
