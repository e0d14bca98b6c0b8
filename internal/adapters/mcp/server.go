package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/core/ports"
	"github.com/kirillkom/papercheck/internal/core/usecase"
)

// Tools exposes the checker to MCP clients.
type Tools struct {
	checker     ports.SubmissionChecker
	defaultType domain.PaperType
}

func NewTools(checker ports.SubmissionChecker, defaultType domain.PaperType) *Tools {
	if defaultType == "" {
		defaultType = domain.PaperLong
	}
	return &Tools{checker: checker, defaultType: defaultType}
}

// NewServer registers the tools on a fresh MCP server.
func NewServer(name, version string, tools *Tools) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("check_paper",
		mcp.WithDescription("Check one PDF submission against page limit, limitations, anonymization, broken reference and ethics rules."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the PDF on the server's filesystem")),
		mcp.WithString("paper_type", mcp.Description("Paper type; short allows 4 content pages, long allows 8"), mcp.Enum("short", "long")),
	), tools.CheckPaper)

	s.AddTool(mcp.NewTool("check_directory",
		mcp.WithDescription("Check every PDF in a directory, in file name order."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory containing PDF files")),
		mcp.WithString("paper_type", mcp.Description("Paper type applied to every file"), mcp.Enum("short", "long")),
	), tools.CheckDirectory)

	return s
}

func (t *Tools) paperType(req mcp.CallToolRequest) (domain.PaperType, error) {
	raw := req.GetString("paper_type", "")
	if raw == "" {
		return t.defaultType, nil
	}
	return domain.ParsePaperType(raw)
}

func (t *Tools) CheckPaper(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paperType, err := t.paperType(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := t.checker.CheckDocument(ctx, path, paperType)
	log.Debug().Str("path", path).Str("status", string(result.Status())).Msg("mcp_check_paper")
	return jsonResult(result)
}

func (t *Tools) CheckDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paperType, err := t.paperType(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paths, err := usecase.ListPDFs(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("No PDF files found in '%s'", dir)), nil
	}

	results := slices.Collect(t.checker.CheckCollection(ctx, paths, paperType))
	return jsonResult(results)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
