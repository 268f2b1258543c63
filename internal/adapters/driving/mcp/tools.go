package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string  `json:"query" jsonschema:"the search query"`
	ScopeID    string  `json:"scope_id" jsonschema:"the scope to search in"`
	PathPrefix string  `json:"path_prefix,omitempty" jsonschema:"restrict hits to documents under this path prefix"`
	Mode       string  `json:"mode,omitempty" jsonschema:"search mode: semantic, keyword, or hybrid (default hybrid)"`
	TopK       int     `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	MinScore   float64 `json:"min_score,omitempty" jsonschema:"discard hits scoring below this threshold"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Hits       []SearchHitOutput `json:"hits"`
	Total      int               `json:"total"`
	DurationMS int64             `json:"duration_ms"`
}

// SearchHitOutput represents a single search hit.
type SearchHitOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path    string `json:"path" jsonschema:"the logical path to ingest"`
	ScopeID string `json:"scope_id" jsonschema:"the scope to ingest into"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
}

// ReindexInput is the input schema for the reindex tool.
type ReindexInput struct {
	ScopeID     string   `json:"scope_id,omitempty" jsonschema:"limit reindexing to one scope"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"explicit document ids to examine"`
	Force       bool     `json:"force,omitempty" jsonschema:"re-enqueue regardless of drift"`
}

// ReindexOutput is the output schema for the reindex tool.
type ReindexOutput struct {
	Enqueued int            `json:"enqueued"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Reasons  map[string]int `json:"reasons,omitempty"`
}

// JobStatusInput is the input schema for the job_status tool.
type JobStatusInput struct {
	JobID string `json:"job_id" jsonschema:"the job id returned by the ingest tool"`
}

// JobStatusOutput is the output schema for the job_status tool.
type JobStatusOutput struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	State      string `json:"state"`
	Phase      string `json:"phase,omitempty"`
	Percent    int    `json:"percent"`
	Error      string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools backed by an absent port are not registered.
func (s *Server) registerTools() {
	mcp.AddTool(s.inner, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed documents within a scope",
	}, s.handleSearch)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.inner, &mcp.Tool{
			Name:        "ingest",
			Description: "Queue a document for background ingestion",
		}, s.handleIngest)

		mcp.AddTool(s.inner, &mcp.Tool{
			Name:        "job_status",
			Description: "Get the status of an ingestion job",
		}, s.handleJobStatus)
	}

	if s.ports.Reindex != nil {
		mcp.AddTool(s.inner, &mcp.Tool{
			Name:        "reindex",
			Description: "Re-enqueue documents whose content or settings drifted",
		}, s.handleReindex)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		ScopeID:    input.ScopeID,
		PathPrefix: input.PathPrefix,
		TopK:       input.TopK,
		MinScore:   input.MinScore,
		Mode:       domain.SearchMode(input.Mode),
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Hits:       make([]SearchHitOutput, len(results.Hits)),
		Total:      results.Total,
		DurationMS: results.Duration.Milliseconds(),
	}
	for i, hit := range results.Hits {
		output.Hits[i] = SearchHitOutput{
			ChunkID:    hit.ChunkID,
			DocumentID: hit.DocumentID,
			Content:    hit.Content,
			Score:      hit.Score,
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	job, err := s.ports.Ingestion.Enqueue(ctx, driving.IngestRequest{
		Path: input.Path,
		Options: domain.IngestOptions{
			ScopeID: input.ScopeID,
		},
	})
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{JobID: job.ID, DocumentID: job.DocumentID}, nil
}

// handleReindex handles the reindex tool invocation.
func (s *Server) handleReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	result, err := s.ports.Reindex.Reindex(ctx, domain.ReindexRequest{
		DocumentIDs: input.DocumentIDs,
		ScopeID:     input.ScopeID,
		Force:       input.Force,
	})
	if err != nil {
		return nil, ReindexOutput{}, err
	}

	output := ReindexOutput{
		Enqueued: result.Enqueued,
		Skipped:  result.Skipped,
		Failed:   result.Failed,
	}
	if len(result.Reasons) > 0 {
		output.Reasons = make(map[string]int, len(result.Reasons))
		for reason, count := range result.Reasons {
			output.Reasons[string(reason)] = count
		}
	}

	return nil, output, nil
}

// handleJobStatus handles the job_status tool invocation.
func (s *Server) handleJobStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input JobStatusInput,
) (*mcp.CallToolResult, JobStatusOutput, error) {
	status, err := s.ports.Ingestion.JobStatus(input.JobID)
	if err != nil {
		return nil, JobStatusOutput{}, err
	}

	return nil, JobStatusOutput{
		JobID:      status.JobID,
		DocumentID: status.DocumentID,
		State:      string(status.State),
		Phase:      string(status.Phase),
		Percent:    status.Percent,
		Error:      status.Error,
	}, nil
}
