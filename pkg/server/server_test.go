package server

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/sylla/pkg/config"
	"github.com/bastiangx/sylla/pkg/dictionary"
	"github.com/bastiangx/sylla/pkg/engine"
	"github.com/bastiangx/sylla/pkg/messenger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const phrases = "你好\tni hao\t100\n你\tni\t80\n泥\tni\t120\n好\thao\t60\n"

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	table := dictionary.NewTable()
	_, _, err := dictionary.ReadText(strings.NewReader(phrases), table)
	require.NoError(t, err)

	opts := engine.DefaultOptions()
	opts.EnableAbbreviation = false
	opts.EnableCompletion = false
	e, err := engine.New(table, opts)
	require.NoError(t, err)
	return e
}

// serve runs a server over the encoded requests and returns a decoder over
// its responses, positioned after the ready signal.
func serve(t *testing.T, s func(r *bytes.Buffer, w *bytes.Buffer) *Server, requests ...any) (*Server, *msgpack.Decoder) {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}
	srv := s(&in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	return srv, dec
}

func plain(e *engine.Engine) func(r, w *bytes.Buffer) *Server {
	return func(r, w *bytes.Buffer) *Server {
		return NewServerWithIO(e, config.DefaultConfig(), nil, r, w)
	}
}

func TestQuery(t *testing.T) {
	_, dec := serve(t, plain(newEngine(t)),
		Request{ID: "q1", Input: "Ni Hao"},
		Request{ID: "q2", Action: ActionQuery, Input: "nihao", Limit: 2},
		Request{ID: "q3", Input: "nihao", Limit: 1000},
	)

	var resp QueryResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, "q1", resp.ID)
	require.Equal(t, 4, resp.Count)
	assert.Equal(t, Candidate{Text: "你好", Type: engine.TypePhrase, Start: 0, End: 5, Rank: 1}, resp.Candidates[0])
	assert.Equal(t, "泥", resp.Candidates[1].Text)
	assert.Equal(t, uint16(4), resp.Candidates[3].Rank)
	assert.Equal(t, engine.TypeRaw, resp.Candidates[3].Type)
	assert.GreaterOrEqual(t, resp.TimeTaken, int64(0))

	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 2, resp.Count)

	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, 4, resp.Count, "limit is clamped, not rejected")
}

func TestQueryErrors(t *testing.T) {
	testCases := []struct {
		request     Request
		code        int
		description string
	}{
		{Request{ID: "e1"}, 400, "missing input"},
		{Request{ID: "e2", Input: "   "}, 400, "blank input"},
		{Request{ID: "e3", Input: strings.Repeat("ni", 31)}, 400, "input too long"},
		{Request{ID: "e4", Action: "reload"}, 400, "unknown action"},
		{Request{ID: "e5", Action: ActionCommit}, 400, "commit without target"},
		{Request{ID: "e6", Action: ActionCommit, Rank: 1}, 404, "commit before any query"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, dec := serve(t, plain(newEngine(t)), tc.request)
			var resp ErrorResponse
			require.NoError(t, dec.Decode(&resp))
			assert.Equal(t, tc.request.ID, resp.ID)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestUnreadableInputHasNoCandidates(t *testing.T) {
	_, dec := serve(t, plain(newEngine(t)), Request{ID: "q", Input: "1234"})
	var resp QueryResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Zero(t, resp.Count)
	assert.Empty(t, resp.Candidates)
}

func TestMalformedRequestIsSkipped(t *testing.T) {
	srv, dec := serve(t, plain(newEngine(t)), "not a map", Request{ID: "h", Action: ActionHealth})

	var bad ErrorResponse
	require.NoError(t, dec.Decode(&bad))
	assert.Equal(t, 400, bad.Code)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, StatusResponse{ID: "h", Status: "ok"}, health)
	assert.Equal(t, 1, srv.Requests())
}

func TestCommitByRank(t *testing.T) {
	e := newEngine(t)
	_, dec := serve(t, plain(e),
		Request{ID: "q1", Input: "ni"},
		Request{ID: "c1", Action: ActionCommit, Rank: 2},
		Request{ID: "c2", Action: ActionCommit, Rank: 3},
		Request{ID: "q2", Input: "ni"},
	)

	var query QueryResponse
	require.NoError(t, dec.Decode(&query))
	require.Equal(t, 3, query.Count)
	assert.Equal(t, "你", query.Candidates[1].Text)

	var commit CommitResponse
	require.NoError(t, dec.Decode(&commit))
	assert.Equal(t, CommitResponse{ID: "c1", Status: "ok", Learned: []string{"你"}}, commit)

	require.NoError(t, dec.Decode(&commit))
	assert.Empty(t, commit.Learned, "the raw echo is not learned")

	require.NoError(t, dec.Decode(&query))
	assert.Equal(t, "你", query.Candidates[0].Text)
	assert.Equal(t, 1, e.Stats().Learned)
}

func TestCommitThroughMessenger(t *testing.T) {
	e := newEngine(t)
	m := messenger.New(0)
	defer m.Close()

	learn, stopLearning := m.Subscribe()
	defer stopLearning()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Listen(ctx, learn)

	events, stopEvents := m.Subscribe()
	defer stopEvents()

	_, dec := serve(t, func(r, w *bytes.Buffer) *Server {
		return NewServerWithIO(e, config.DefaultConfig(), m, r, w)
	},
		Request{ID: "q", Input: "hao"},
		Request{ID: "c", Action: ActionCommit, Text: "好"},
	)

	var query QueryResponse
	require.NoError(t, dec.Decode(&query))
	var commit CommitResponse
	require.NoError(t, dec.Decode(&commit))
	assert.Equal(t, []string{"好"}, commit.Learned)

	assert.Equal(t, messenger.Message{Type: messenger.TypeQuery, Value: "hao"}, <-events)
	assert.Equal(t, messenger.Message{Type: messenger.TypeCommit, Value: "好"}, <-events)
	require.Eventually(t, func() bool { return e.Stats().Learned == 1 }, time.Second, 5*time.Millisecond)
}

func TestStats(t *testing.T) {
	_, dec := serve(t, plain(newEngine(t)),
		Request{ID: "c", Action: ActionCommit, Text: "你好"},
		Request{ID: "s", Action: ActionStats},
	)
	var commit CommitResponse
	require.NoError(t, dec.Decode(&commit))

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, StatsResponse{
		ID:        "s",
		Status:    "ok",
		Syllables: 2,
		Phrases:   4,
		Learned:   1,
		Commits:   1,
		Requests:  2,
	}, stats)
}

func TestLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Translator.MaxCandidates = 0
	cfg.Server.MaxLimit = 10
	s := NewServerWithIO(newEngine(t), cfg, nil, &bytes.Buffer{}, &bytes.Buffer{})

	assert.Equal(t, 10, s.limit(0))
	assert.Equal(t, 3, s.limit(3))
	assert.Equal(t, 10, s.limit(11))
}
