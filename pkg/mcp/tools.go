package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/gitattr/pkg/attribution"
	"github.com/Sumatoshi-tech/gitattr/pkg/revision"
)

// Tool name constants.
const (
	ToolNameBlame        = "git_blame"
	ToolNameCommitDetail = "git_commit_detail"
)

// Tool description constants.
const (
	blameToolDescription = "Show which commit and author last modified each line of a file. " +
		"Accepts an absolute file path and an optional inclusive line range."

	commitDetailToolDescription = "Show the metadata, changed files and optionally the diff of a commit. " +
		"Accepts a commit hash or revision and any absolute file path inside the repository."
)

// errToolResult marks a handler that returned an error result without a Go error.
var errToolResult = errors.New("tool returned an error result")

// Attributor is the attribution service as seen by the tools.
type Attributor interface {
	Blame(ctx context.Context, req attribution.BlameRequest) (*attribution.BlameResult, error)
	RevisionDetail(ctx context.Context, req attribution.RevisionDetailRequest) (*revision.Detail, error)
}

// Input types (auto-generate JSON schemas via struct tags).

// BlameInput is the input schema for the git_blame tool.
type BlameInput struct {
	FilePath string `json:"file_path"           jsonschema:"absolute path of the file to blame"`
	LineFrom *int   `json:"line_from,omitempty" jsonschema:"first line to include, 1-based (default: 1)"`
	LineTo   *int   `json:"line_to,omitempty"   jsonschema:"last line to include, inclusive (default: last line)"`
}

// CommitDetailInput is the input schema for the git_commit_detail tool.
type CommitDetailInput struct {
	CommitHash       string `json:"commit_hash"                  jsonschema:"commit hash, abbreviated hash or revision such as HEAD~1"`
	FilePath         string `json:"file_path"                    jsonschema:"absolute path of any file inside the repository"`
	IncludeDiff      bool   `json:"include_diff,omitempty"       jsonschema:"include the full diff text (implies include_file_diffs)"`
	IncludeFileDiffs bool   `json:"include_file_diffs,omitempty" jsonschema:"attach a patch to every changed file"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleBlame(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input BlameInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	result, err := s.attributor.Blame(ctx, attribution.BlameRequest{
		FilePath: input.FilePath,
		LineFrom: input.LineFrom,
		LineTo:   input.LineTo,
	})
	if err != nil {
		return s.errorResult(ctx, ToolNameBlame, err)
	}

	return jsonResult(result)
}

func (s *Server) handleCommitDetail(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input CommitDetailInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	detail, err := s.attributor.RevisionDetail(ctx, attribution.RevisionDetailRequest{
		CommitHash:       input.CommitHash,
		FilePath:         input.FilePath,
		IncludeDiff:      input.IncludeDiff,
		IncludeFileDiffs: input.IncludeFileDiffs,
	})
	if err != nil {
		return s.errorResult(ctx, ToolNameCommitDetail, err)
	}

	return jsonResult(detail)
}

// errorResult builds a CallToolResult with isError set. Request errors are
// logged at INFO, everything else at WARN.
func (s *Server) errorResult(ctx context.Context, tool string, err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	level := s.logger.WarnContext
	if errors.Is(err, attribution.ErrValidation) || errors.Is(err, attribution.ErrNotFound) {
		level = s.logger.InfoContext
	}

	level(ctx, "tool call failed", "tool", tool, "error", err)

	return errorResult(err)
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
