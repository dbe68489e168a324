package applink

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/linked-planet/go-http-client/internal/testutil"
	"github.com/linked-planet/go-http-client/pkg/domainerr"
	"github.com/linked-planet/go-http-client/pkg/httpclient"
	"github.com/linked-planet/go-http-client/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *testutil.MockServer) {
	t.Helper()

	mock := testutil.NewMockServer()
	t.Cleanup(mock.Close)

	link, err := NewBasicAuthLink(mock.URL(), "admin", "secret")
	require.NoError(t, err)

	client, err := New(link)
	require.NoError(t, err)
	return client, mock
}

func TestNew_NilLink(t *testing.T) {
	_, err := New(nil)
	assert.EqualError(t, err, "application link is required")
}

func TestExecuteRestCall_Success(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetResponse("/rest/api/2/issue", testutil.MockResponse{
		StatusCode: http.StatusCreated,
		Body:       `{"key":"ABC-1"}`,
	})

	resp, err := client.ExecuteRestCall(context.Background(), "POST", "rest/api/2/issue",
		httpclient.Params{"updateHistory": "true"}, `{"fields":{}}`, "application/json",
		map[string]string{"X-Atlassian-Token": "no-check"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"key":"ABC-1"}`, resp.Body)

	req := mock.LastRequest()
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "updateHistory=true", req.RawQuery)
	assert.Equal(t, `{"fields":{}}`, string(req.Body))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "no-check", req.Header.Get("X-Atlassian-Token"))
	assert.Equal(t, "admin", req.Username)
	assert.Equal(t, "secret", req.Password)
}

func TestExecuteRestCall_NoBodyNoContentType(t *testing.T) {
	client, mock := newTestClient(t)

	_, err := client.ExecuteRestCall(context.Background(), "GET", "rest/api/2/myself", nil, "", "application/json", nil)
	require.NoError(t, err)

	req := mock.LastRequest()
	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Empty(t, req.RawQuery)
}

func TestExecuteRestCall_ResponseError(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetResponse("/rest/api/2/issue/ABC-404", testutil.NewErrorResponse(http.StatusNotFound,
		`{"errorMessages":["Issue does not exist"]}`))

	_, err := client.ExecuteRestCall(context.Background(), "GET", "rest/api/2/issue/ABC-404", nil, "", "", nil)
	require.Error(t, err)

	var respErr *domainerr.ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, domainerr.CodeResponse, respErr.Code)
	assert.Equal(t, http.StatusNotFound, respErr.StatusCode)
	assert.Contains(t, respErr.Message, "404")
	assert.Contains(t, respErr.Message, "Not Found")
	assert.Contains(t, respErr.Message, `{"errorMessages":["Issue does not exist"]}`)
}

func TestExecuteRestCall_InvalidMethod(t *testing.T) {
	client, mock := newTestClient(t)

	for _, method := range []string{"FOO", "get", ""} {
		t.Run(method, func(t *testing.T) {
			_, err := client.ExecuteRestCall(context.Background(), method, "x", nil, "", "", nil)
			assert.Equal(t, domainerr.CodeInvalidMethod, domainerr.CodeOf(err))
		})
	}
	assert.Zero(t, mock.RequestCount())
}

func TestExecuteRestCall_TransportError(t *testing.T) {
	mock := testutil.NewMockServer()
	link, err := NewBasicAuthLink(mock.URL(), "admin", "secret")
	require.NoError(t, err)
	mock.Close()

	client, err := New(link)
	require.NoError(t, err)

	_, err = client.ExecuteRestCall(context.Background(), "GET", "x", nil, "", "", nil)
	de, ok := domainerr.As(err)
	require.True(t, ok)
	assert.Equal(t, domainerr.CodeInternal, de.Code)
	assert.Empty(t, de.Message)
	assert.NotNil(t, de.Unwrap())
	assert.False(t, domainerr.IsResponseError(err))
}

func TestExecuteDownload(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetResponse("/secure/attachment/10000/report.pdf", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       "%PDF-1.4",
	})

	resp, err := client.ExecuteDownload(context.Background(), "GET", "secure/attachment/10000/report.pdf", nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), resp.Body)

	mock.SetResponse("/secure/attachment/10001/missing.pdf", testutil.NewErrorResponse(http.StatusForbidden, "denied"))
	_, err = client.ExecuteDownload(context.Background(), "GET", "secure/attachment/10001/missing.pdf", nil, "", "")
	assert.True(t, domainerr.IsResponseError(err))
}

func TestExecuteUpload(t *testing.T) {
	client, mock := newTestClient(t)
	data := []byte("col1,col2\n1,2\n")

	resp, err := client.ExecuteUpload(context.Background(), "POST", "rest/api/2/issue/ABC-1/attachments",
		nil, "text/csv", "export.csv", data)
	require.NoError(t, err)
	assert.Equal(t, data, resp.Body, "upload acknowledges with the sent bytes")

	req := mock.LastRequest()
	assert.Equal(t, "POST", req.Method)
	assert.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data"))
	assert.Equal(t, "export.csv", req.FileName)
	assert.Equal(t, "text/csv", req.FileContentType)
	assert.Equal(t, data, req.FileData)
}

func TestExecuteUpload_ResponseError(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetResponse("/rest/api/2/issue/ABC-1/attachments", testutil.NewErrorResponse(http.StatusRequestEntityTooLarge, "too big"))

	_, err := client.ExecuteUpload(context.Background(), "POST", "rest/api/2/issue/ABC-1/attachments",
		nil, "text/plain", "a.txt", []byte("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too big")
}

func TestTypedHelpers(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetResponse("/rest/api/2/myself", testutil.NewJSONResponse(`{"name":"admin","active":true}`))

	type user struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}

	resp, err := httpclient.ExecuteGet[user](context.Background(), client, "rest/api/2/myself", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Body)
	assert.Equal(t, "admin", resp.Body.Name)
	assert.True(t, resp.Body.Active)
}

func TestPaginationOverBackend(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetHandler("/rest/api/2/project", testutil.NewPagedHandler([]string{"A", "B", "C"}, "startAt", "maxResults"))

	keys, err := pagination.FetchAll(context.Background(), func(ctx context.Context, offset, pageSize int) ([]string, error) {
		resp, err := httpclient.ExecuteGetReturnList[string](ctx, client, "rest/api/2/project", httpclient.Params{
			"startAt":    strconv.Itoa(offset),
			"maxResults": strconv.Itoa(pageSize),
		})
		return resp.Body, err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, keys)
	assert.Equal(t, 4, mock.RequestCount())
}
