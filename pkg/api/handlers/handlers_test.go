package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triviatastic/triviatastic/pkg/repositories"
)

type stubRepository struct {
	blobs map[string][]byte
}

func newStubRepository() *stubRepository {
	return &stubRepository{blobs: make(map[string][]byte)}
}

func (r *stubRepository) Close(ctx context.Context) error {
	return nil
}

func (r *stubRepository) SaveBlob(ctx context.Context, key string, value []byte) error {
	r.blobs[key] = append([]byte{}, value...)
	return nil
}

func (r *stubRepository) LoadBlob(ctx context.Context, key string) ([]byte, error) {
	value, ok := r.blobs[key]
	if !ok {
		return nil, &repositories.ErrNotFound{}
	}
	return value, nil
}

func newTestRouter(repository repositories.Repository) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/state/{key}", HandleGetState(repository)).Methods(http.MethodGet)
	router.HandleFunc("/state/{key}", HandlePutState(repository)).Methods(http.MethodPut)
	return router
}

func TestPutThenGetState(t *testing.T) {
	router := newTestRouter(newStubRepository())

	put := httptest.NewRequest(http.MethodPut, "/state/one-two-three-four", strings.NewReader(`{"gameId":"12345"}`))
	putRecorder := httptest.NewRecorder()
	router.ServeHTTP(putRecorder, put)
	require.Equal(t, http.StatusNoContent, putRecorder.Code)

	get := httptest.NewRequest(http.MethodGet, "/state/one-two-three-four", nil)
	getRecorder := httptest.NewRecorder()
	router.ServeHTTP(getRecorder, get)
	require.Equal(t, http.StatusOK, getRecorder.Code)
	assert.Equal(t, "application/json", getRecorder.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"gameId":"12345"}`, getRecorder.Body.String())
}

func TestGetStateNotFound(t *testing.T) {
	router := newTestRouter(newStubRepository())

	get := httptest.NewRequest(http.MethodGet, "/state/missing", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, get)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestPutStateLastWriteWins(t *testing.T) {
	repository := newStubRepository()
	router := newTestRouter(repository)

	for _, body := range []string{`{"v":1}`, `{"v":2}`} {
		put := httptest.NewRequest(http.MethodPut, "/state/key", strings.NewReader(body))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, put)
		require.Equal(t, http.StatusNoContent, recorder.Code)
	}

	assert.JSONEq(t, `{"v":2}`, string(repository.blobs["key"]))
}

func TestPutStateRejectsInvalidJSON(t *testing.T) {
	router := newTestRouter(newStubRepository())

	put := httptest.NewRequest(http.MethodPut, "/state/key", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, put)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPutStateRejectsOversizedBody(t *testing.T) {
	router := newTestRouter(newStubRepository())

	body := bytes.Repeat([]byte("a"), MaxBlobSize+1)
	put := httptest.NewRequest(http.MethodPut, "/state/key", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, put)
	assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
}
