// Package mcp exposes retrieval and sentencing scoring as MCP tools.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

// ServerConfig contains configuration for creating an MCP server.
type ServerConfig struct {
	Name    string
	Version string
	// Corpus backs search_sources. Nil leaves only score_criminal registered.
	Corpus         *retrieval.Service
	TopKLaws       int
	TopKPrecedents int
}

// CreateServer creates the MCP server and registers the tools.
func CreateServer(cfg ServerConfig) *mcp.Server {
	s := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	if cfg.Corpus != nil {
		RegisterSearchTool(s, NewSearchHandler(cfg.Corpus, cfg.TopKLaws, cfg.TopKPrecedents))
	}
	RegisterScoreTool(s, NewScoreHandler())

	return s
}
