package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offerletter/internal/chunker"
	"offerletter/internal/domain"
	"offerletter/internal/embedding/hashing"
	oerrors "offerletter/internal/errors"
	"offerletter/internal/service"
	"offerletter/internal/vectorstore/memory"
)

func testService(t *testing.T, ingest bool) *service.Service {
	t.Helper()
	ch, err := chunker.NewWindowChunker(chunker.DefaultSize, chunker.DefaultOverlap)
	require.NoError(t, err)
	root := filepath.Join("..", "..", "testdata")
	svc, err := service.New(service.Sources{
		Roster:       filepath.Join(root, "Employee_List.csv"),
		LeavePolicy:  filepath.Join(root, "Leave_Policy.md"),
		TravelPolicy: filepath.Join(root, "Travel_Policy.txt"),
	}, service.Components{
		Chunker:     ch,
		NewEmbedder: func() (domain.Embedder, error) { return hashing.NewEmbedder(0), nil },
		NewStore:    func() (domain.VectorStore, error) { return memory.NewStorage(), nil },
	},
		service.WithClock(func() time.Time { return time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC) }),
		service.WithLogger(log.New(io.Discard, "", 0)),
	)
	require.NoError(t, err)
	if ingest {
		require.NoError(t, svc.Ingest(context.Background()))
	}
	return svc
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is not TextContent")
	require.NoError(t, json.Unmarshal([]byte(text.Text), out))
}

func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, result.IsError, "expected error result")
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	resultJSON(t, result, &payload)
	return payload.Error.Code
}

func TestHandleGenerate(t *testing.T) {
	h := NewHandlers(testService(t, true))
	ctx := context.Background()

	tests := []struct {
		name      string
		args      map[string]any
		errorCode string
	}{
		{name: "full name", args: map[string]any{"name": "Martha Bennett"}},
		{name: "partial name", args: map[string]any{"name": "bennett"}},
		{name: "missing name", args: map[string]any{}, errorCode: "INVALID_REQUEST"},
		{name: "blank name", args: map[string]any{"name": "  "}, errorCode: "INVALID_REQUEST"},
		{name: "wrong type", args: map[string]any{"name": 42}, errorCode: "INVALID_REQUEST"},
		{name: "unknown employee", args: map[string]any{"name": "Nobody"}, errorCode: "EMPLOYEE_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleGenerate(ctx, makeRequest(tt.args))
			require.NoError(t, err)
			if tt.errorCode != "" {
				assert.Equal(t, tt.errorCode, errorCode(t, result))
				return
			}
			require.False(t, result.IsError)
			var out GenerateResponse
			resultJSON(t, result, &out)
			assert.Equal(t, "Martha Bennett", out.Name)
			assert.Equal(t, "Software Engineer", out.Position)
			assert.Equal(t, "Martha_Bennett_Offer_Letter.txt", out.FileName)
			assert.Contains(t, out.Letter, "3 days/week minimum")
			assert.Contains(t, out.Letter, "₹125,000")
			assert.NotEmpty(t, out.Context)
		})
	}
}

func TestHandleGenerate_NotReady(t *testing.T) {
	h := NewHandlers(testService(t, false))
	result, err := h.HandleGenerate(context.Background(), makeRequest(map[string]any{"name": "Martha"}))
	require.NoError(t, err)
	assert.Equal(t, "NOT_READY", errorCode(t, result))
}

func TestHandleRosterList(t *testing.T) {
	h := NewHandlers(testService(t, true))
	result, err := h.HandleRosterList(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		Count     int            `json:"count"`
		Employees []EmployeeItem `json:"employees"`
	}
	resultJSON(t, result, &out)
	require.Equal(t, 4, out.Count)
	assert.Equal(t, EmployeeItem{
		Name: "Martha Bennett", Band: "L3", Department: "Engineering", Location: "Bangalore", JoiningDate: "2025-07-01",
	}, out.Employees[0])
}

func TestHandleRosterList_NotReady(t *testing.T) {
	h := NewHandlers(testService(t, false))
	result, err := h.HandleRosterList(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "NOT_READY", errorCode(t, result))
}

func TestHandleStatus(t *testing.T) {
	h := NewHandlers(testService(t, true))
	result, err := h.HandleStatus(context.Background(), makeRequest(nil))
	require.NoError(t, err)

	var out StatusResponse
	resultJSON(t, result, &out)
	assert.True(t, out.Ready)
	assert.Equal(t, 4, out.Employees)
	assert.Positive(t, out.Chunks)
	assert.Equal(t, "2025-06-10T00:00:00Z", out.IngestedAt)
	assert.Empty(t, out.Error)
}

func TestErrorResult_HidesInternalErrors(t *testing.T) {
	for _, err := range []error{
		io.ErrUnexpectedEOF,
		oerrors.NewInternal(io.ErrUnexpectedEOF),
	} {
		result := errorResult(err)
		assert.True(t, result.IsError)
		assert.Equal(t, "INTERNAL", errorCode(t, result))
		text := result.Content[0].(mcp.TextContent).Text
		assert.NotContains(t, text, "unexpected EOF")
		assert.Contains(t, text, `"status":500`)
	}
}

func TestServerRegistration(t *testing.T) {
	s := NewServer(testService(t, true), "test")
	tools := s.ListTools()
	require.Len(t, tools, len(AllToolNames()))
	for _, name := range []string{"offer_letter_generate", "roster_list", "offer_status"} {
		_, ok := tools[name]
		assert.True(t, ok, "missing registered tool: %s", name)
	}
}
