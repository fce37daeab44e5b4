// Package mcp exposes offer generation as MCP tools over stdio.
package mcp

import (
	"context"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"offerletter/internal/roster"
	"offerletter/internal/service"
)

// Offers is the part of the offer service the tools need.
type Offers interface {
	Prepare(ctx context.Context, name string) (service.ResolvedOffer, error)
	Employees() []roster.Employee
	Status() service.Status
}

type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"offer_letter_generate": {
		def: mcp.NewTool("offer_letter_generate",
			mcp.WithDescription("Generate the offer letter for an employee in the roster. The name may be any case-insensitive part of the full name; the first match in roster order is used."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Employee name or part of it, e.g. \"Martha Bennett\"")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
	"roster_list": {
		def: mcp.NewTool("roster_list",
			mcp.WithDescription("List the employees available for offer letters, in roster order."),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRosterList },
	},
	"offer_status": {
		def: mcp.NewTool("offer_status",
			mcp.WithDescription("Report whether the roster and policy documents are ingested and ready."),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
}

// AllToolNames returns the registered tool names in sorted order.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewServer creates an MCP server with the offer tools registered.
func NewServer(offers Offers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"offerletter",
		version,
		server.WithToolCapabilities(true),
	)
	h := NewHandlers(offers)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the offer tools on stdin/stdout until the input closes.
func Run(offers Offers, version string) error {
	return server.ServeStdio(NewServer(offers, version))
}
