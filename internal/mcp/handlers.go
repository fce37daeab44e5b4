package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	oerrors "offerletter/internal/errors"
	"offerletter/internal/letter"
	"offerletter/internal/service"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	offers Offers
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(offers Offers) *Handlers {
	return &Handlers{offers: offers}
}

// GenerateRequest represents the arguments for offer_letter_generate.
type GenerateRequest struct {
	Name string `json:"name"`
}

// GenerateResponse is the result of offer_letter_generate.
type GenerateResponse struct {
	Name       string        `json:"name"`
	Position   string        `json:"position"`
	Band       string        `json:"band"`
	Department string        `json:"department"`
	FileName   string        `json:"file_name"`
	Letter     string        `json:"letter"`
	Context    []ContextItem `json:"context"`
}

// ContextItem is one retrieved policy passage, reported for traceability.
type ContextItem struct {
	ChunkID int     `json:"chunk_id"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// EmployeeItem is one roster entry.
type EmployeeItem struct {
	Name        string `json:"name"`
	Band        string `json:"band"`
	Department  string `json:"department"`
	Location    string `json:"location"`
	JoiningDate string `json:"joining_date"`
}

// StatusResponse is the result of offer_status.
type StatusResponse struct {
	Ready      bool   `json:"ready"`
	Employees  int    `json:"employees"`
	Chunks     int    `json:"chunks"`
	IngestedAt string `json:"ingested_at,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HandleGenerate handles the offer_letter_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(oerrors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.Name) == "" {
		return errorResult(oerrors.NewInvalidRequest("name is required")), nil
	}

	offer, err := h.offers.Prepare(ctx, input.Name)
	if err != nil {
		return errorResult(err), nil
	}

	resp := GenerateResponse{
		Name:       offer.Employee.Name,
		Position:   offer.Position,
		Band:       string(offer.Employee.Band),
		Department: string(offer.Employee.Department),
		FileName:   letter.FileName(offer.Employee.Name),
		Letter:     service.Render(offer),
		Context:    make([]ContextItem, 0, len(offer.Context)),
	}
	for _, r := range offer.Context {
		resp.Context = append(resp.Context, ContextItem{ChunkID: r.Chunk.ID, Source: string(r.Chunk.Source), Score: r.Score})
	}
	return successResult(resp)
}

// HandleRosterList handles the roster_list tool call.
func (h *Handlers) HandleRosterList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := h.offers.Status()
	if !st.Ready {
		if st.Err != nil {
			return errorResult(st.Err), nil
		}
		return errorResult(oerrors.NewNotReady("offer service")), nil
	}
	emps := h.offers.Employees()
	items := make([]EmployeeItem, 0, len(emps))
	for _, e := range emps {
		items = append(items, EmployeeItem{
			Name:        e.Name,
			Band:        string(e.Band),
			Department:  string(e.Department),
			Location:    e.Location,
			JoiningDate: e.JoiningDate.Format(time.DateOnly),
		})
	}
	return successResult(map[string]any{"employees": items, "count": len(items)})
}

// HandleStatus handles the offer_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := h.offers.Status()
	resp := StatusResponse{Ready: st.Ready, Employees: st.Employees, Chunks: st.Chunks}
	if !st.IngestedAt.IsZero() {
		resp.IngestedAt = st.IngestedAt.Format(time.RFC3339)
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	return successResult(resp)
}

// errorResult creates an MCP error result from any error. Details of
// internal errors are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var oErr *oerrors.OfferError
	if !errors.As(err, &oErr) {
		oErr = oerrors.NewInternal(err)
	}
	errorObj := map[string]any{
		"code":    oErr.Code,
		"message": oErr.Message,
		"status":  oErr.Status,
	}
	switch oErr.Code {
	case oerrors.ErrInternal:
		errorObj["message"] = "an internal error occurred"
	case oerrors.ErrEmployeeNotFound:
		errorObj["hint"] = "call roster_list to see available employees"
		fallthrough
	default:
		if oErr.Details != nil {
			errorObj["details"] = oErr.Details
		}
	}
	payload := map[string]any{"error": errorObj}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
