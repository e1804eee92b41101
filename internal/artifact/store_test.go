package artifact

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	data := []byte("%PDF-1.7 binary\x00")

	id, err := store.Put(ctx, Blob{Data: data, MimeType: "application/pdf", FileName: "audit-report-1.pdf"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, 1, store.Len())

	// изменение исходного среза не должно влиять на хранимые данные
	data[0] = 'X'

	blob, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 binary\x00"), blob.Data)
	assert.Equal(t, "application/pdf", blob.MimeType)
	assert.Equal(t, "audit-report-1.pdf", blob.FileName)

	require.NoError(t, store.Release(ctx, id))
	assert.Equal(t, 0, store.Len())

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	// повторное освобождение
	assert.NoError(t, store.Release(ctx, id))
}

func TestMemoryStore_UnknownID(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportFileName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "audit-report-1700000000123.pdf", ReportFileName(at))
}

func TestDownloadURL(t *testing.T) {
	id := uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	assert.Equal(t, "/artifacts/1b4e28ba-2fa1-11d2-883f-0016d3cca427", DownloadURL(id))
}

func TestBlob_ContentDisposition(t *testing.T) {
	blob := &Blob{FileName: `audit-report-1.pdf`}
	assert.Equal(t, `attachment; filename="audit-report-1.pdf"`, blob.ContentDisposition())

	blob.FileName = `bad"name.pdf`
	assert.Equal(t, `attachment; filename="badname.pdf"`, blob.ContentDisposition())

	blob.FileName = ""
	assert.Equal(t, `attachment; filename="artifact"`, blob.ContentDisposition())
}
