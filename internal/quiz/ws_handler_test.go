package quiz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmexam/examprep/internal/auth"
	"github.com/pharmexam/examprep/internal/auth/jwt"
	httperrors "github.com/pharmexam/examprep/pkg/http/errors"
	"github.com/pharmexam/examprep/pkg/http/ws"
)

var wsTestTokenCfg = jwt.TokenConfig{
	AccessSecret:  []byte("ws-test-access"),
	RefreshSecret: []byte("ws-test-refresh"),
}

type wsTestClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func newWSServer(t *testing.T, src Source) *httptest.Server {
	t.Helper()
	authSvc := auth.NewService(nil, auth.ServiceOptions{TokenConfig: wsTestTokenCfg}, zerolog.Nop())
	handler := NewWSHandler(newTestManager(src), ws.NewHub(zerolog.Nop()), authSvc, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *wsTestClient {
	t.Helper()
	token, err := jwt.NewManager(wsTestTokenCfg).GenerateAccessToken(jwt.User{ID: uuid.New()})
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsTestClient{t: t, conn: conn}
}

func newWSClient(t *testing.T, src Source) *wsTestClient {
	t.Helper()
	return dialWS(t, newWSServer(t, src))
}

func (c *wsTestClient) send(msgType, requestID string, payload interface{}) {
	c.t.Helper()
	msg := ws.Message{Type: msgType, RequestID: requestID}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(c.t, err)
		msg.Payload = data
	}
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *wsTestClient) recv() ws.Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

func (c *wsTestClient) recvSnapshot() (string, Snapshot) {
	c.t.Helper()
	msg := c.recv()
	require.Equal(c.t, ws.TypeSessionSnapshot, msg.Type)

	var payload ws.SessionSnapshotPayload
	require.NoError(c.t, json.Unmarshal(msg.Payload, &payload))
	var snap Snapshot
	require.NoError(c.t, json.Unmarshal(payload.Snapshot, &snap))
	return payload.SessionID, snap
}

func (c *wsTestClient) recvError() (ws.ErrorPayload, string) {
	c.t.Helper()
	msg := c.recv()
	require.Equal(c.t, ws.TypeError, msg.Type)

	var payload ws.ErrorPayload
	require.NoError(c.t, json.Unmarshal(msg.Payload, &payload))
	return payload, msg.RequestID
}

func (c *wsTestClient) startSession(t *testing.T) (string, Snapshot) {
	t.Helper()
	c.send(ws.TypeStartSession, "start-1", ws.StartSessionPayload{})
	sessionID, snap := c.recvSnapshot()
	require.NotEmpty(t, sessionID)
	return sessionID, snap
}

func TestWSSessionFlow(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(2)})

	sessionID, snap := c.startSession(t)
	require.Equal(t, PhaseInProgress, snap.Phase)
	require.NotNil(t, snap.Question)

	var correct string
	for _, choice := range snap.Question.Choices {
		if choice.Text == "Vitamin D" {
			correct = choice.Label
		}
	}
	require.NotEmpty(t, correct)

	c.send(ws.TypeSelectAnswer, "sel-1", ws.SelectAnswerPayload{SessionID: sessionID, Choice: correct})
	_, snap = c.recvSnapshot()
	assert.Equal(t, correct, snap.Selection)

	c.send(ws.TypeCheckAnswer, "chk-1", ws.CheckAnswerPayload{SessionID: sessionID})
	_, snap = c.recvSnapshot()
	require.NotNil(t, snap.IsCorrect)
	assert.True(t, *snap.IsCorrect)
	assert.Equal(t, 1, snap.Score)

	c.send(ws.TypeNextQuestion, "nxt-1", ws.NavigatePayload{SessionID: sessionID})
	_, snap = c.recvSnapshot()
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Nil(t, snap.IsCorrect)

	// Completing the session produces a snapshot and a results message.
	c.send(ws.TypeNextQuestion, "nxt-2", ws.NavigatePayload{SessionID: sessionID})
	_, snap = c.recvSnapshot()
	assert.Equal(t, PhaseCompleted, snap.Phase)
	require.NotNil(t, snap.Results)

	msg := c.recv()
	require.Equal(t, ws.TypeSessionResults, msg.Type)
	var results ws.SessionResultsPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &results))
	assert.Equal(t, sessionID, results.SessionID)
	assert.Equal(t, 1, results.Score)
	assert.Equal(t, 2, results.Total)
	assert.Equal(t, 50, results.Percentage)
}

func TestWSNavigationAndFlag(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(3)})
	sessionID, _ := c.startSession(t)

	c.send(ws.TypeJumpToQuestion, "jmp-1", ws.JumpToQuestionPayload{SessionID: sessionID, Index: 2})
	_, snap := c.recvSnapshot()
	assert.Equal(t, 2, snap.CurrentIndex)

	c.send(ws.TypePreviousQuestion, "prv-1", ws.NavigatePayload{SessionID: sessionID})
	_, snap = c.recvSnapshot()
	assert.Equal(t, 1, snap.CurrentIndex)

	c.send(ws.TypeToggleFlag, "flg-1", ws.ToggleFlagPayload{SessionID: sessionID, Index: 0})
	_, snap = c.recvSnapshot()
	assert.True(t, snap.Questions[0].Flagged)

	c.send(ws.TypeRequestSnapshot, "snp-1", ws.NavigatePayload{SessionID: sessionID})
	_, snap = c.recvSnapshot()
	assert.Equal(t, 1, snap.CurrentIndex)
}

func TestWSRestart(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(2)})
	sessionID, _ := c.startSession(t)

	c.send(ws.TypeSelectAnswer, "sel-1", ws.SelectAnswerPayload{SessionID: sessionID, Choice: "A"})
	c.recvSnapshot()

	c.send(ws.TypeRestartSession, "rst-1", ws.NavigatePayload{SessionID: sessionID})
	_, snap := c.recvSnapshot()
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, NoSelection, snap.Selection)
	assert.Equal(t, 0, snap.Score)
}

func TestWSPing(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(1)})

	c.send(ws.TypePing, "ping-1", nil)
	msg := c.recv()
	assert.Equal(t, ws.TypePong, msg.Type)
	assert.Equal(t, "ping-1", msg.RequestID)
}

func TestWSUnknownSession(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(1)})

	c.send(ws.TypeCheckAnswer, "chk-1", ws.CheckAnswerPayload{SessionID: uuid.NewString()})
	payload, requestID := c.recvError()
	assert.Equal(t, httperrors.ErrCodeSessionNotFound, payload.Code)
	assert.Equal(t, "chk-1", requestID)
}

func TestWSOperationErrorCodes(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(2)})
	sessionID, _ := c.startSession(t)

	c.send(ws.TypeCheckAnswer, "chk-1", ws.CheckAnswerPayload{SessionID: sessionID})
	payload, _ := c.recvError()
	assert.Equal(t, httperrors.ErrCodeNoSelection, payload.Code)

	c.send(ws.TypeSelectAnswer, "sel-1", ws.SelectAnswerPayload{SessionID: sessionID, Choice: "Z"})
	payload, _ = c.recvError()
	assert.Equal(t, httperrors.ErrCodeInvalidChoice, payload.Code)

	c.send(ws.TypeJumpToQuestion, "jmp-1", ws.JumpToQuestionPayload{SessionID: sessionID, Index: 9})
	payload, _ = c.recvError()
	assert.Equal(t, httperrors.ErrCodeQuestionOutOfRange, payload.Code)
}

func TestWSInvalidSessionID(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(1)})

	c.send(ws.TypeNextQuestion, "nxt-1", ws.NavigatePayload{SessionID: "not-a-uuid"})
	payload, _ := c.recvError()
	assert.Equal(t, httperrors.ErrCodeInvalidPayload, payload.Code)
}

func TestWSMalformedPayload(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(1)})

	require.NoError(t, c.conn.WriteJSON(ws.Message{
		Type:      ws.TypeSelectAnswer,
		Payload:   json.RawMessage(`"not-an-object"`),
		RequestID: "sel-1",
	}))
	payload, requestID := c.recvError()
	assert.Equal(t, httperrors.ErrCodeInvalidPayload, payload.Code)
	assert.Equal(t, "sel-1", requestID)
}

func TestWSUnknownMessageType(t *testing.T) {
	c := newWSClient(t, &stubSource{records: bankRecords(1)})

	c.send("subscribe_leaderboard", "sub-1", nil)
	payload, requestID := c.recvError()
	assert.Equal(t, httperrors.ErrCodeUnknownMessageType, payload.Code)
	assert.Equal(t, "sub-1", requestID)
}

func TestWSRejectsMissingToken(t *testing.T) {
	srv := newWSServer(t, &stubSource{records: bankRecords(1)})

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSRejectsInvalidToken(t *testing.T) {
	srv := newWSServer(t, &stubSource{records: bankRecords(1)})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
