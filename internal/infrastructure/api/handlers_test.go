package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fusion-demo/internal/application/services"
	"fusion-demo/internal/application/usecases"
	"fusion-demo/internal/domain/entities"
	domainservices "fusion-demo/internal/domain/services"
	"fusion-demo/internal/domain/valueobjects"
	"fusion-demo/internal/infrastructure/repositories"
	"fusion-demo/model"
)

type stubAIService struct {
	readyErr error
	fuseErr  error
	noImage  bool
	calls    int
	lastReq  *entities.FusionRequest
}

func (s *stubAIService) FuseImages(ctx context.Context, request *entities.FusionRequest) (*entities.FusionResult, error) {
	s.calls++
	s.lastReq = request
	if s.fuseErr != nil {
		return nil, s.fuseErr
	}
	if s.noImage {
		return nil, entities.ErrNoImageReturned
	}
	image, _ := valueobjects.NewImagePayloadFromBytes([]byte("composite"), "image/png")
	return entities.NewFusionResult(request.ID(), image), nil
}

func (s *stubAIService) Ready() error {
	return s.readyErr
}

type testClient struct {
	t      *testing.T
	router *mux.Router
	cookie *http.Cookie
}

func newTestClient(t *testing.T, ai *stubAIService) *testClient {
	t.Helper()
	repo := repositories.NewMemorySessionRepository()
	domain := domainservices.NewFusionDomainService(ai, "test-model")
	handler := NewFusionHandler(
		usecases.NewFusionUseCase(repo, domain),
		usecases.NewIntakeUseCase(repo, 1024),
		services.NewParameterService(),
		HandlerConfig{MaxUploadBytes: 1024, SessionTTL: time.Hour},
	)
	return &testClient{t: t, router: NewRouter(handler, "")}
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			c.cookie = cookie
		}
	}
	return rec
}

func (c *testClient) upload(slot string, contentType string, data []byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="person.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/slots/"+slot, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req)
}

func (c *testClient) post(path string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) model.StateResponse {
	t.Helper()
	var state model.StateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	return state
}

func TestHandleFuse_Success(t *testing.T) {
	ai := &stubAIService{}
	c := newTestClient(t, ai)

	require.Equal(t, http.StatusOK, c.upload("1", "image/png", []byte("first")).Code)
	require.Equal(t, http.StatusOK, c.upload("2", "image/jpeg", []byte("second")).Code)
	require.Equal(t, http.StatusOK, c.post("/api/action", url.Values{"action": {"hugging each other"}}).Code)

	rec := c.post("/api/fuse", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)

	assert.Equal(t, "success", state.Outcome)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	require.NotNil(t, state.Image)
	assert.True(t, strings.HasPrefix(state.Image.DataURL, "data:image/png;base64,"))
	assert.True(t, state.CanDispatch)

	require.Equal(t, 1, ai.calls)
	assert.Equal(t, valueobjects.HuggingEachOther, ai.lastReq.Action())
	assert.Equal(t, "image/jpeg", ai.lastReq.Image2().MimeType())
}

func TestHandleFuse_MissingImage(t *testing.T) {
	ai := &stubAIService{}
	c := newTestClient(t, ai)
	c.upload("1", "image/png", []byte("first"))

	rec := c.post("/api/fuse", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "failure", state.Outcome)
	assert.Equal(t, "Please upload both images and select an action.", state.Error)
	assert.Nil(t, state.Image)
	assert.Zero(t, ai.calls)
}

func TestHandleFuse_ServiceFailures(t *testing.T) {
	tests := []struct {
		name    string
		ai      *stubAIService
		status  int
		message string
	}{
		{
			name:    "no image returned",
			ai:      &stubAIService{noImage: true},
			status:  http.StatusBadGateway,
			message: "The model did not return an image. Please try a different prompt or images.",
		},
		{
			name:    "transport error",
			ai:      &stubAIService{fuseErr: errors.New("quota exceeded")},
			status:  http.StatusBadGateway,
			message: "Failed to generate image: quota exceeded",
		},
		{
			name:    "missing credential",
			ai:      &stubAIService{readyErr: entities.ErrMissingCredential},
			status:  http.StatusBadRequest,
			message: entities.MessageMissingCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.ai)
			c.upload("1", "image/png", []byte("first"))
			c.upload("2", "image/png", []byte("second"))

			rec := c.post("/api/fuse", nil)
			assert.Equal(t, tt.status, rec.Code)
			state := decodeState(t, rec)
			assert.Equal(t, "failure", state.Outcome)
			assert.Equal(t, tt.message, state.Error)
			assert.False(t, state.Loading)
			assert.True(t, state.CanDispatch)
		})
	}
}

func TestHandleUpload_ReadFailureIsPerSlot(t *testing.T) {
	c := newTestClient(t, &stubAIService{})
	c.upload("1", "image/png", []byte("first"))

	// 上限 (1024 bytes) を超えるファイル
	rec := c.upload("2", "image/png", bytes.Repeat([]byte("x"), 4096))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	state := decodeState(t, rec)

	require.Len(t, state.Slots, 2)
	assert.True(t, state.Slots[0].Filled)
	assert.Empty(t, state.Slots[0].Error)
	assert.False(t, state.Slots[1].Filled)
	assert.Equal(t, "Failed to read image file", state.Slots[1].Error)
	assert.Equal(t, "idle", state.Outcome)
}

func TestHandleUpload_MissingField(t *testing.T) {
	c := newTestClient(t, &stubAIService{})

	rec := c.post("/api/slots/1", url.Values{"other": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "Failed to read image file", state.Slots[0].Error)
}

func TestHandleUpload_InvalidSlot(t *testing.T) {
	c := newTestClient(t, &stubAIService{})
	rec := c.upload("3", "image/png", []byte("x"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSelectAction_Unsupported(t *testing.T) {
	c := newTestClient(t, &stubAIService{})
	rec := c.post("/api/action", url.Values{"action": {"dancing"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResult(t *testing.T) {
	c := newTestClient(t, &stubAIService{})

	rec := c.do(httptest.NewRequest(http.MethodGet, "/api/result", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c.upload("1", "image/png", []byte("first"))
	c.upload("2", "image/png", []byte("second"))
	require.Equal(t, http.StatusOK, c.post("/api/fuse", nil).Code)

	rec = c.do(httptest.NewRequest(http.MethodGet, "/api/result", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".png")
	assert.Equal(t, "composite", rec.Body.String())
}

func TestHandleReset(t *testing.T) {
	c := newTestClient(t, &stubAIService{})
	c.upload("1", "image/png", []byte("first"))
	c.upload("2", "image/png", []byte("second"))
	c.post("/api/fuse", nil)

	rec := c.post("/api/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "idle", state.Outcome)
	assert.Nil(t, state.Image)
	assert.False(t, state.Slots[0].Filled)
	assert.False(t, state.Slots[1].Filled)
	assert.Equal(t, "shaking hands", state.Action)
}

func TestSessionsAreIsolatedByCookie(t *testing.T) {
	ai := &stubAIService{}
	first := newTestClient(t, ai)
	first.upload("1", "image/png", []byte("first"))
	require.NotNil(t, first.cookie)

	second := &testClient{t: t, router: first.router}
	rec := second.do(httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.False(t, state.Slots[0].Filled)
	assert.NotEqual(t, first.cookie.Value, second.cookie.Value)
}

func TestHandleIndex(t *testing.T) {
	c := newTestClient(t, &stubAIService{})
	rec := c.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `accept="image/png,image/jpeg,image/webp"`)
	for _, action := range valueobjects.SupportedActions() {
		assert.Contains(t, body, action.String())
	}
	assert.Contains(t, body, `id="loader" class="loader hidden"`)
}

func TestHandleActionsAndHealth(t *testing.T) {
	c := newTestClient(t, &stubAIService{})

	rec := c.do(httptest.NewRequest(http.MethodGet, "/api/actions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var actions model.ActionsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&actions))
	assert.Equal(t, []string{"shaking hands", "hugging each other", "saluting each other"}, actions.Actions)
	assert.Equal(t, "shaking hands", actions.Default)

	rec = c.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFor(nil))
	assert.Equal(t, http.StatusConflict, statusFor(entities.ErrDispatchInProgress))
	assert.Equal(t, http.StatusBadRequest, statusFor(entities.NewReadError(errors.New("eof"))))
	assert.Equal(t, http.StatusBadGateway, statusFor(entities.NewEmptyResultError()))
}
