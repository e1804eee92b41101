package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient поднимает тестовый сервер и клиент, указывающий на него
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	return NewClientWithHTTP(Endpoints{
		Incidents: srv.URL + "/incidents",
		Alerts:    srv.URL + "/alerts",
		Query:     srv.URL + "/query",
		Report:    srv.URL + "/audit_report_pdf",
	}, &http.Client{Timeout: 2 * time.Second}, logger)
}

func TestFetchIncidents_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/incidents", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"incidents":[{"id":1,"type":"gas","severity":"high","casualties":2},{"id":"x","type":"roof fall"}]}`))
	})

	incidents, err := client.FetchIncidents(context.Background())

	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, "gas", incidents[0].Type)
	assert.Equal(t, 2, incidents[0].CasualtyCount())
}

func TestFetchIncidents_AbsentFieldIsEmpty(t *testing.T) {
	for _, body := range []string{`{}`, `{"incidents":null}`, ``} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		incidents, err := client.FetchIncidents(context.Background())

		require.NoError(t, err, body)
		assert.NotNil(t, incidents)
		assert.Empty(t, incidents)
	}
}

func TestFetchIncidents_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"incidents": [`))
	})

	_, err := client.FetchIncidents(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not fetch incidents")
}

func TestFetchAlerts_TopLevelArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"a1","type":"gas","severity":"high","message":"m","date":"d","state":"s"}]`))
	})

	alerts, err := client.FetchAlerts(context.Background())

	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "gas", alerts[0].Type)
}

func TestFetchAlerts_NullIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	alerts, err := client.FetchAlerts(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestFetchAlerts_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchAlerts(context.Background())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestQuery_SendsRawQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "  methane levels?  ", body["query"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Methane within limits."}`))
	})

	reply, err := client.Query(context.Background(), "  methane levels?  ")

	require.NoError(t, err)
	assert.Equal(t, ReplyStructured, reply.Kind)
	assert.Equal(t, "Methane within limits.", reply.MessageText(""))
}

func TestQuery_PDF(t *testing.T) {
	pdf := []byte("%PDF-1.4\x00\x01binary")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})

	reply, err := client.Query(context.Background(), "audit")

	require.NoError(t, err)
	assert.Equal(t, ReplyBinary, reply.Kind)
	assert.Equal(t, pdf, reply.Body)
}

func TestQuery_OversizedBodyIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(bytes.Repeat([]byte("x"), 17))
	})
	client.maxBody = 16

	_, err := client.Query(context.Background(), "audit")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestQuery_BodyAtLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(bytes.Repeat([]byte("x"), 16))
	})
	client.maxBody = 16

	reply, err := client.Query(context.Background(), "audit")

	require.NoError(t, err)
	assert.Len(t, reply.Body, 16)
}

func TestGenerateReport_PostsEmptyObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/audit_report_pdf", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{}`, string(body))

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("report queued"))
	})

	reply, err := client.GenerateReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ReplyPlainText, reply.Kind)
	assert.Equal(t, "report queued", reply.MessageText(""))
}

func TestQuery_TransportFailure(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	client := NewClientWithHTTP(Endpoints{Query: "http://127.0.0.1:1/query"}, &http.Client{Timeout: time.Second}, logger)

	_, err := client.Query(context.Background(), "hello")

	require.Error(t, err)
	assert.ErrorContains(t, err, "query failed")
}

func TestQuery_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Query(ctx, "hello")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
