/*
Package server implements msgpack IPC for phrase candidate services.

The server reads a stream of msgpack maps from stdin and writes one msgpack
map per request to stdout. Logs go to stderr. Requests are processed
synchronously with timing info included in query responses.

# IPC

Each message carries an ID that is echoed back, an optional action and the
fields that action needs. Queries are the default action:

	{"id": "q1", "i": "nihao", "l": 5}

The server answers with candidates ranked from 1, best first:

	{"id": "q1", "s": [{"w": "你好", "k": "phrase", "s": 0, "e": 5, "r": 1}, ...], "c": 4, "t": 145}

A commit teaches the history either a candidate of the last query, by rank,
or a literal text:

	{"id": "c1", "action": "commit", "n": 1}
	{"id": "c2", "action": "commit", "x": "你好"}

Engine statistics and a liveness probe:

	{"id": "s1", "action": "stats"}
	{"id": "h1", "action": "health"}

Failed requests are answered with an ErrorResponse holding an HTTP-like code.

When the server starts it writes a single StatusResponse with status "ready".
*/
package server

// Actions understood by the server.
const (
	ActionQuery  = "query"
	ActionCommit = "commit"
	ActionStats  = "stats"
	ActionHealth = "health"
)

// Request is the union of every request shape; unused fields are omitted.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action,omitempty"`
	Input  string `msgpack:"i,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
	Rank   int    `msgpack:"n,omitempty"`
	Text   string `msgpack:"x,omitempty"`
}

// Candidate - minimal candidate response
type Candidate struct {
	Text    string `msgpack:"w"`
	Comment string `msgpack:"m,omitempty"`
	Type    string `msgpack:"k"`
	Start   int    `msgpack:"s"`
	End     int    `msgpack:"e"`
	Rank    uint16 `msgpack:"r"`
}

// QueryResponse - query response, TimeTaken in microseconds
type QueryResponse struct {
	ID         string      `msgpack:"id"`
	Candidates []Candidate `msgpack:"s"`
	Count      int         `msgpack:"c"`
	TimeTaken  int64       `msgpack:"t"`
}

// CommitResponse reports the texts a commit taught.
type CommitResponse struct {
	ID      string   `msgpack:"id"`
	Status  string   `msgpack:"status"`
	Learned []string `msgpack:"learned"`
}

// StatsResponse - engine statistics
type StatsResponse struct {
	ID        string `msgpack:"id"`
	Status    string `msgpack:"status"`
	Syllables int    `msgpack:"syllables"`
	Phrases   int    `msgpack:"phrases"`
	Learned   int    `msgpack:"learned"`
	Commits   int64  `msgpack:"commits"`
	Requests  int    `msgpack:"requests"`
}

// StatusResponse is used for the ready signal and health checks.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
