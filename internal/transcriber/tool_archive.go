package transcriber

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"canvas-transcriber/internal/engine/archive"
)

// ArchiveListInput is the input for archive_list.
type ArchiveListInput struct {
	Limit int `json:"limit,omitempty"`
}

// ArchiveListOutput is the output for archive_list.
type ArchiveListOutput struct {
	Batches []archive.Batch `json:"batches"`
	Total   int             `json:"total"`
}

// ArchiveShowInput is the input for archive_show.
type ArchiveShowInput struct {
	BatchID string `json:"batch_id"`
}

// ArchiveShowOutput is the output for archive_show.
type ArchiveShowOutput struct {
	Records []archive.Record `json:"records"`
	Total   int              `json:"total"`
}

func registerArchiveList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "archive_list",
		Description: "List past extraction runs from the local archive (SQLite), newest first. Each entry shows the course URL, video counts, and batch id for archive_show.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ArchiveListInput) (*mcp.CallToolResult, *ArchiveListOutput, error) {
		batches, err := archive.ListBatches(ctx, input.Limit)
		if err != nil {
			return nil, nil, err
		}
		return nil, &ArchiveListOutput{Batches: batches, Total: len(batches)}, nil
	})
}

func registerArchiveShow(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "archive_show",
		Description: "Show per-video results of one archived extraction run: which videos produced transcripts, from which source (network API, DOM panel, VTT track), and what went wrong for the rest. Get batch ids from archive_list.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ArchiveShowInput) (*mcp.CallToolResult, *ArchiveShowOutput, error) {
		if input.BatchID == "" {
			return nil, nil, errors.New("batch_id is required")
		}
		records, err := archive.BatchRecords(ctx, input.BatchID)
		if err != nil {
			return nil, nil, err
		}
		return nil, &ArchiveShowOutput{Records: records, Total: len(records)}, nil
	})
}
