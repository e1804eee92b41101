package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/mine_safety_dashboard/internal/artifact"
	"github.com/shenikar/mine_safety_dashboard/internal/backend"
	"github.com/shenikar/mine_safety_dashboard/internal/chat/mocks"
	"github.com/shenikar/mine_safety_dashboard/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestManager - вспомогательная функция для создания менеджера с моками
func newTestManager(t *testing.T, opts Options) (*Manager, *mocks.MockBackend, *artifact.MemoryStore) {
	ctrl := gomock.NewController(t)
	backendMock := mocks.NewMockBackend(ctrl)
	store := artifact.NewMemoryStore()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	return NewManager(backendMock, store, nil, logger, opts), backendMock, store
}

func jsonReply(text string) backend.Reply {
	return backend.DecodeReply("application/json", []byte(`{"response":"`+text+`"}`))
}

func TestOpen_Greeting(t *testing.T) {
	manager, _, _ := newTestManager(t, Options{})

	s := manager.Open(context.Background())

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.SenderBot, msgs[0].Sender)
	assert.Equal(t, GreetingText, msgs[0].Text)
	assert.Equal(t, StateIdle, s.State())

	got, err := manager.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestSubmit_WhitespaceIsIgnored(t *testing.T) {
	manager, backendMock, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	backendMock.EXPECT().Query(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	for _, input := range []string{"", "   ", "\t\n "} {
		appended, err := s.Submit(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Nil(t, appended)
	}
	assert.Len(t, s.Messages(), 1)
	assert.Equal(t, StateIdle, s.State())
}

func TestSubmit_TooLongInputIsRejected(t *testing.T) {
	manager, backendMock, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	backendMock.EXPECT().Query(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.Submit(context.Background(), strings.Repeat("ш", MaxQueryLength+1))

	assert.ErrorIs(t, err, ErrInputTooLong)
	assert.Len(t, s.Messages(), 1)
	assert.Equal(t, StateIdle, s.State())
}

func TestSubmit_InputAtLimitIsForwarded(t *testing.T) {
	manager, backendMock, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())
	query := strings.Repeat("ш", MaxQueryLength)

	backendMock.EXPECT().Query(gomock.Any(), query).Return(jsonReply("ok"), nil)

	appended, err := s.Submit(context.Background(), query)

	require.NoError(t, err)
	assert.Len(t, appended, 2)
}

func TestSubmit_StructuredReply(t *testing.T) {
	manager, backendMock, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	backendMock.EXPECT().
		Query(gomock.Any(), "What is the methane limit?").
		Return(jsonReply("X"), nil).
		Times(1)

	appended, err := s.Submit(context.Background(), "What is the methane limit?")

	require.NoError(t, err)
	require.Len(t, appended, 2)
	assert.Equal(t, models.SenderUser, appended[0].Sender)
	assert.Equal(t, "What is the methane limit?", appended[0].Text)
	assert.Equal(t, models.SenderBot, appended[1].Sender)
	assert.Equal(t, "X", appended[1].Text)
	assert.Nil(t, appended[1].Artifact)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, appended, msgs[1:])
	assert.Equal(t, StateIdle, s.State())
}

func TestSubmit_MissingResponseFieldUsesFallback(t *testing.T) {
	manager, backendMock, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	backendMock.EXPECT().
		Query(gomock.Any(), gomock.Any()).
		Return(backend.DecodeReply("application/json", []byte(`{"answer":"nope"}`)), nil)

	appended, err := s.Submit(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, FallbackText, appended[1].Text)
}

func TestSubmit_UnparsableBodyShowsRawText(t *testing.T) {
	manager, backendMock, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	backendMock.EXPECT().
		Query(gomock.Any(), gomock.Any()).
		Return(backend.DecodeReply("text/plain", []byte("Ventilation OK, see section 4")), nil)

	appended, err := s.Submit(context.Background(), "status?")

	require.NoError(t, err)
	assert.Equal(t, "Ventilation OK, see section 4", appended[1].Text)
	assert.NotEqual(t, QueryErrorText, appended[1].Text)
}

func TestSubmit_PDFReplyCreatesArtifact(t *testing.T) {
	manager, backendMock, store := newTestManager(t, Options{})
	s := manager.Open(context.Background())
	pdf := []byte("%PDF-1.4\x00\xff{not json")

	backendMock.EXPECT().
		Query(gomock.Any(), "audit please").
		Return(backend.DecodeReply("application/pdf", pdf), nil)

	appended, err := s.Submit(context.Background(), "audit please")

	require.NoError(t, err)
	require.Len(t, appended, 2)
	bot := appended[1]
	assert.Equal(t, QueryPDFText, bot.Text)
	require.NotNil(t, bot.Artifact)
	assert.Equal(t, backend.MimePDF, bot.Artifact.MimeType)
	assert.Regexp(t, `^audit-report-\d+\.pdf$`, bot.Artifact.FileName)
	assert.Equal(t, artifact.DownloadURL(bot.Artifact.ID), bot.Artifact.URL)

	blob, err := store.Get(context.Background(), bot.Artifact.ID)
	require.NoError(t, err)
	assert.Equal(t, pdf, blob.Data)
}

func TestSubmit_NetworkFailure(t *testing.T) {
	manager, backendMock, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	backendMock.EXPECT().
		Query(gomock.Any(), gomock.Any()).
		Return(backend.Reply{}, errors.New("dial tcp: connection refused"))

	appended, err := s.Submit(context.Background(), "hello")

	require.NoError(t, err)
	require.Len(t, appended, 2)
	assert.Equal(t, QueryErrorText, appended[1].Text)
	assert.Len(t, s.Messages(), 3)
	assert.Equal(t, StateIdle, s.State())

	// после ошибки ввод снова принимается
	backendMock.EXPECT().Query(gomock.Any(), "again").Return(jsonReply("ok"), nil)
	appended, err = s.Submit(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, "ok", appended[1].Text)
}

func TestSubmit_BusyWhileAwaiting(t *testing.T) {
	manager, backendMock, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	backendMock.EXPECT().
		Query(gomock.Any(), "slow").
		DoAndReturn(func(ctx context.Context, q string) (backend.Reply, error) {
			close(started)
			<-release
			return jsonReply("done"), nil
		})
	backendMock.EXPECT().
		GenerateReport(gomock.Any()).
		Return(backend.DecodeReply("text/plain", []byte("report text")), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Submit(context.Background(), "slow")
		assert.NoError(t, err)
	}()

	<-started
	assert.Equal(t, StateAwaitingResponse, s.State())

	_, err := s.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	// отчёт не согласуется с состоянием чата
	reportMsg, err := s.GenerateReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "report text", reportMsg.Text)

	close(release)
	wg.Wait()

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "slow", msgs[1].Text)
	assert.Equal(t, "report text", msgs[2].Text) // порядок по времени завершения
	assert.Equal(t, "done", msgs[3].Text)
	assert.Equal(t, StateIdle, s.State())
}

func TestGenerateReport_PDFAndFailure(t *testing.T) {
	manager, backendMock, store := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	gomock.InOrder(
		backendMock.EXPECT().GenerateReport(gomock.Any()).Return(backend.DecodeReply("application/pdf", []byte("%PDF")), nil),
		backendMock.EXPECT().GenerateReport(gomock.Any()).Return(backend.Reply{}, errors.New("timeout")),
	)

	msg, err := s.GenerateReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReportPDFText, msg.Text)
	require.NotNil(t, msg.Artifact)
	assert.Equal(t, 1, store.Len())

	msg, err = s.GenerateReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReportErrorText, msg.Text)
	assert.Nil(t, msg.Artifact)
	assert.Len(t, s.Messages(), 3)
}

type failingStore struct{ *artifact.MemoryStore }

func (*failingStore) Put(context.Context, artifact.Blob) (uuid.UUID, error) {
	return uuid.Nil, errors.New("redis down")
}

func TestSubmit_ArtifactStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	backendMock := mocks.NewMockBackend(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	manager := NewManager(backendMock, &failingStore{MemoryStore: artifact.NewMemoryStore()}, nil, logger, Options{})
	s := manager.Open(context.Background())

	backendMock.EXPECT().Query(gomock.Any(), gomock.Any()).Return(backend.DecodeReply("application/pdf", []byte("%PDF")), nil)

	appended, err := s.Submit(context.Background(), "audit")

	require.NoError(t, err)
	assert.Equal(t, QueryErrorText, appended[1].Text)
	assert.Nil(t, appended[1].Artifact)
}

func TestHistoryLimit_EvictionReleasesArtifacts(t *testing.T) {
	manager, backendMock, store := newTestManager(t, Options{HistoryLimit: 2})
	s := manager.Open(context.Background())

	gomock.InOrder(
		backendMock.EXPECT().Query(gomock.Any(), "first").Return(backend.DecodeReply("application/pdf", []byte("%PDF")), nil),
		backendMock.EXPECT().Query(gomock.Any(), "second").Return(jsonReply("plain"), nil),
	)

	_, err := s.Submit(context.Background(), "first")
	require.NoError(t, err)
	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, 1, store.Len())

	_, err = s.Submit(context.Background(), "second")
	require.NoError(t, err)
	msgs = s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[0].Text)
	assert.Equal(t, "plain", msgs[1].Text)
	assert.Equal(t, 0, store.Len())
}

func TestTranscriptWriter_RecordsEveryMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	backendMock := mocks.NewMockBackend(ctrl)
	transcript := mocks.NewMockTranscriptWriter(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	manager := NewManager(backendMock, artifact.NewMemoryStore(), transcript, logger, Options{})

	var recorded []models.ChatMessage
	transcript.EXPECT().
		Record(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, msg models.ChatMessage) error {
			recorded = append(recorded, msg)
			return nil
		}).Times(2)
	// ошибка журнала не влияет на чат
	transcript.EXPECT().
		Record(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("db down")).
		Times(1)
	backendMock.EXPECT().Query(gomock.Any(), "q").Return(jsonReply("a"), nil)

	s := manager.Open(context.Background())
	appended, err := s.Submit(context.Background(), "q")

	require.NoError(t, err)
	require.Len(t, recorded, 2)
	assert.Equal(t, GreetingText, recorded[0].Text)
	assert.Equal(t, appended[0], recorded[1])
	assert.Len(t, s.Messages(), 3)
}

func TestClose_ReleasesArtifacts(t *testing.T) {
	manager, backendMock, store := newTestManager(t, Options{})
	s := manager.Open(context.Background())
	backendMock.EXPECT().GenerateReport(gomock.Any()).Return(backend.DecodeReply("application/pdf", []byte("%PDF")), nil)

	_, err := s.GenerateReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, manager.Close(context.Background(), s.ID()))
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, manager.Close(context.Background(), s.ID()), ErrSessionNotFound)

	_, err = manager.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.Submit(context.Background(), "late")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSweep_ClosesIdleSessions(t *testing.T) {
	manager, _, _ := newTestManager(t, Options{IdleTimeout: 10 * time.Minute})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return now }

	stale := manager.Open(context.Background())
	now = now.Add(8 * time.Minute)
	fresh := manager.Open(context.Background())
	now = now.Add(5 * time.Minute)

	closed := manager.Sweep(context.Background())

	assert.Equal(t, 1, closed)
	_, err := manager.Get(stale.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestGetOrOpen_KeepsSessionActive(t *testing.T) {
	manager, _, _ := newTestManager(t, Options{IdleTimeout: 10 * time.Minute})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return now }

	s := manager.Open(context.Background())
	now = now.Add(8 * time.Minute)
	manager.GetOrOpen(context.Background(), s.ID()) // только чтение журнала
	now = now.Add(8 * time.Minute)

	assert.Equal(t, 0, manager.Sweep(context.Background()))
	_, err := manager.Get(s.ID())
	assert.NoError(t, err)
}

func TestShutdown_ClosesAll(t *testing.T) {
	manager, _, _ := newTestManager(t, Options{})
	manager.Open(context.Background())
	manager.Open(context.Background())
	require.Equal(t, 2, manager.Len())

	manager.Shutdown(context.Background())

	assert.Equal(t, 0, manager.Len())
}

func TestGetOrOpen(t *testing.T) {
	manager, _, _ := newTestManager(t, Options{})
	s := manager.Open(context.Background())

	assert.Same(t, s, manager.GetOrOpen(context.Background(), s.ID()))
	other := manager.GetOrOpen(context.Background(), uuid.New())
	assert.NotEqual(t, s.ID(), other.ID())
	assert.Equal(t, 2, manager.Len())
}
