package matrixview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

// sseServer writes each payload as one event. When hold is true the
// stream stays open until the client goes away.
func sseServer(t *testing.T, hold bool, payloads ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		for _, p := range payloads {
			fmt.Fprintf(w, "data: %s\n\n", p)
			flusher.Flush()
		}
		if hold {
			<-r.Context().Done()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIngestorAppendsInOrder(t *testing.T) {
	srv := sseServer(t, false,
		`{"label":"a","matrix":[[1,2],[3,4]]}`,
		`{"label":"b","matrix":[[5]]}`,
		`{"label":"a","matrix":[[6]]}`,
	)
	coll := NewCollection()
	in := NewIngestor(srv.URL, coll, WithLogger(quietLogger()))

	require.NoError(t, in.Run(context.Background()))

	snaps, _, _ := coll.Window()
	require.Len(t, snaps, 3)
	assert.Equal(t, "a", snaps[0].Label)
	assert.Equal(t, "b", snaps[1].Label)
	assert.Equal(t, "a", snaps[2].Label)
	assert.Equal(t, [][]float64{{6}}, snaps[2].Matrix)
}

func TestIngestorAcceptsLargeEvents(t *testing.T) {
	big := make([][]float64, 100)
	for r := range big {
		big[r] = make([]float64, 100)
		for c := range big[r] {
			big[r][c] = float64(r*100+c) + 0.123456
		}
	}
	payload, err := json.Marshal(Snapshot{Label: "big", Matrix: big})
	require.NoError(t, err)
	require.Greater(t, len(payload), 64*1024)

	srv := sseServer(t, false,
		`{"label":"before","matrix":[[1]]}`,
		string(payload),
		`{"label":"after","matrix":[[2]]}`,
	)
	coll := NewCollection()
	in := NewIngestor(srv.URL, coll, WithLogger(quietLogger()))

	require.NoError(t, in.Run(context.Background()))

	snaps, _, _ := coll.Window()
	require.Len(t, snaps, 3)
	assert.Equal(t, "before", snaps[0].Label)
	assert.Equal(t, "big", snaps[1].Label)
	assert.Equal(t, big, snaps[1].Matrix)
	assert.Equal(t, "after", snaps[2].Label)
	assert.Equal(t, uint64(0), in.Stats().Dropped)
}

func TestWithMaxMessageBytes(t *testing.T) {
	in := NewIngestor("http://example.invalid", NewCollection())
	assert.Equal(t, DefaultMaxMessageBytes, in.maxMessage)

	in = NewIngestor("http://example.invalid", NewCollection(), WithMaxMessageBytes(1<<10))
	assert.Equal(t, 1<<10, in.maxMessage)

	in = NewIngestor("http://example.invalid", NewCollection(), WithMaxMessageBytes(0))
	assert.Equal(t, DefaultMaxMessageBytes, in.maxMessage)
}

func TestIngestorDropsMalformed(t *testing.T) {
	srv := sseServer(t, false,
		`{"label":"first","matrix":[[1]]}`,
		`not json`,
		`{"label":"ragged","matrix":[[1,2],[3]]}`,
		`null`,
		`{}`,
		`{"foo":1}`,
		`{"label":"holes","matrix":[[1,null]]}`,
		`{"label":"second","matrix":[[2]]}`,
	)
	coll := NewCollection()
	in := NewIngestor(srv.URL, coll, WithLogger(quietLogger()))

	require.NoError(t, in.Run(context.Background()))

	snaps, _, _ := coll.Window()
	require.Len(t, snaps, 2)
	assert.Equal(t, "first", snaps[0].Label)
	assert.Equal(t, "second", snaps[1].Label)

	stats := in.Stats()
	assert.Equal(t, uint64(8), stats.Received)
	assert.Equal(t, uint64(2), stats.Appended)
	assert.Equal(t, uint64(6), stats.Dropped)
	assert.False(t, stats.Connected)
}

func TestIngestorTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	coll := NewCollection()
	in := NewIngestor(srv.URL, coll, WithLogger(quietLogger()))

	err := in.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Zero(t, coll.Len())
}

func TestIngestorConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	in := NewIngestor(url, NewCollection(), WithLogger(quietLogger()))
	err := in.Run(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestIngestorHeaders(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("X-Probe")
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer srv.Close()

	in := NewIngestor(srv.URL, NewCollection(),
		WithLogger(quietLogger()),
		WithHeaders(map[string]string{"X-Probe": "matrix"}),
		WithHTTPClient(&http.Client{}),
	)
	require.NoError(t, in.Run(context.Background()))
	assert.Equal(t, "matrix", <-got)
}

func TestIngestorStartClose(t *testing.T) {
	srv := sseServer(t, true, `{"label":"live","matrix":[[1]]}`)
	coll := NewCollection()
	in := NewIngestor(srv.URL, coll, WithLogger(quietLogger()))

	assert.Nil(t, in.Done())
	in.Start(context.Background())
	in.Start(context.Background()) // no-op

	require.Eventually(t, func() bool { return coll.Len() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, in.Stats().Connected)

	require.NoError(t, in.Close())
	select {
	case <-in.Done():
	default:
		t.Fatal("Done should be closed after Close returns")
	}
	assert.False(t, in.Stats().Connected)
	require.NoError(t, in.Close())
}

func TestIngestorCloseBeforeStart(t *testing.T) {
	in := NewIngestor("http://127.0.0.1:0", NewCollection(), WithLogger(quietLogger()))
	assert.NoError(t, in.Close())
}
