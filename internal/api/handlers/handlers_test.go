package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/yoointerview/internal/agents/coach"
	"github.com/yoockh/yoointerview/internal/agents/interviewer"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/llm"
	"github.com/yoockh/yoointerview/internal/providers/llm/llmtest"
	"github.com/yoockh/yoointerview/internal/repositories/memory"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

// one fake model answers every schema the agents ask for
func scriptedLLM() *llmtest.Provider {
	return &llmtest.Provider{GenerateFunc: func(_ context.Context, _ string, schema *llm.Schema) (string, error) {
		switch schema.Name {
		case "InterviewerTurn":
			return `{"content":"Tell me about a hard bug.","response_type":"question"}`, nil
		case "AnswerFeedback":
			return `{"conciseness":"ok","completeness":"ok","technical_depth":"ok","contextual_alignment":"ok","fixes":"add numbers","star_support":"partial"}`, nil
		default:
			return `{"patterns":"p","strengths":"s","weaknesses":"w","improvement_areas":"i","resource_search_topics":[]}`, nil
		}
	}}
}

func testAuth(c *gin.Context) {
	if u := c.GetHeader("X-Test-User"); u != "" {
		c.Set("user_id", u)
	}
	c.Next()
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := scriptedLLM()
	sessions := memory.NewSessionRepo()
	svc := services.NewSessionService(services.SessionDeps{
		Sessions:    sessions,
		Interviewer: interviewer.New(p, nil, nil),
		Coach:       coach.New(p, nil),
	})
	reports := services.NewReportService(sessions, memory.NewReportRepo(), nil, nil)

	sh := NewSessionHandler(svc)
	rh := NewReportHandler(reports, nil, nil)
	ws := NewWSHandler(svc, nil)

	r := gin.New()
	auth := r.Group("/", testAuth)
	auth.POST("/session/start", sh.Start)
	auth.GET("/session/:session_id", sh.Get)
	auth.POST("/session/:session_id/message", sh.Message)
	auth.POST("/session/:session_id/end", sh.End)
	auth.GET("/reports", rh.List)
	auth.GET("/reports/:session_id", rh.Get)
	auth.GET("/ws/session/:session_id", ws.SessionWS)
	return r
}

func call(r http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func startSession(t *testing.T, r http.Handler, user string) string {
	t.Helper()
	w := call(r, http.MethodPost, "/session/start", user, map[string]any{"job_role": "Backend Engineer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[StartSessionResponse](t, w).SessionID
}

func TestSessionFlow_HTTP(t *testing.T) {
	r := newRouter(t)
	id := startSession(t, r, "alice")

	w := call(r, http.MethodPost, "/session/"+id+"/message", "alice", MessageRequest{Text: "Hi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[map[string]json.RawMessage](t, w)
	assert.JSONEq(t, "null", string(first["coach_feedback"]))

	w = call(r, http.MethodPost, "/session/"+id+"/message", "alice", MessageRequest{Text: "A race in the cache."})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[MessageResponse](t, w)
	assert.Equal(t, models.ResponseQuestion, second.InterviewerResponse.ResponseType)
	require.NotNil(t, second.CoachFeedback)
	assert.Equal(t, "add numbers", second.CoachFeedback.Fixes)

	w = call(r, http.MethodPost, "/session/"+id+"/end", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ended := decode[models.EndResult](t, w)
	assert.Equal(t, "ended", ended.Status)
	require.NotNil(t, ended.CoachingSummary)
	assert.Equal(t, "p", ended.CoachingSummary.Patterns)

	w = call(r, http.MethodPost, "/session/"+id+"/message", "alice", MessageRequest{Text: "again"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, utils.CodeFailedPrecondition, decode[APIError](t, w).Code)

	w = call(r, http.MethodGet, "/session/"+id, "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StateEnded, decode[models.Session](t, w).State)
}

func TestStart_Errors(t *testing.T) {
	r := newRouter(t)

	w := call(r, http.MethodPost, "/session/start", "alice", map[string]any{"company": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.CodeInvalidArgument, decode[APIError](t, w).Code)

	w = call(r, http.MethodPost, "/session/start", "", map[string]any{"job_role": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSession_Ownership(t *testing.T) {
	r := newRouter(t)
	id := startSession(t, r, "alice")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/session/" + id},
		{http.MethodPost, "/session/" + id + "/end"},
	} {
		w := call(r, tc.method, tc.path, "mallory", nil)
		assert.Equal(t, http.StatusForbidden, w.Code, tc.path)
	}
	w := call(r, http.MethodPost, "/session/"+id+"/message", "mallory", MessageRequest{Text: "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSession_NotFoundAndBadBody(t *testing.T) {
	r := newRouter(t)

	w := call(r, http.MethodGet, "/session/missing", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := startSession(t, r, "alice")
	w = call(r, http.MethodPost, "/session/"+id+"/message", "alice", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReports_EmptyList(t *testing.T) {
	r := newRouter(t)

	w := call(r, http.MethodGet, "/reports", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reports":[]}`, w.Body.String())

	w = call(r, http.MethodGet, "/reports/nope", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionWS(t *testing.T) {
	r := newRouter(t)
	id := startSession(t, r, "alice")

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/session/" + id
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"X-Test-User": {"alice"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "bogus"}))
	var msg wsServerMsg
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, utils.CodeInvalidArgument, msg.Code)

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "message", Text: "Hello"}))
	msg = wsServerMsg{}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "turn", msg.Type)
	require.NotNil(t, msg.Turn)
	assert.Equal(t, "Tell me about a hard bug.", msg.Turn.InterviewerResponse.Content)

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "end_session"}))
	msg = wsServerMsg{}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "ended", msg.Type)
	assert.Equal(t, id, msg.Ended.SessionID)
}

func TestSessionWS_RejectsOtherUser(t *testing.T) {
	r := newRouter(t)
	id := startSession(t, r, "alice")

	w := call(r, http.MethodGet, "/ws/session/"+id, "mallory", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
