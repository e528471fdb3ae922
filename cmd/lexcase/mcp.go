package main

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpTransport "github.com/kailas-cloud/lexcase/internal/transport/mcp"
	"github.com/kailas-cloud/lexcase/internal/version"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve search_sources and score_criminal as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			s := mcpTransport.CreateServer(mcpTransport.ServerConfig{
				Name:           "lexcase",
				Version:        version.Version,
				Corpus:         rt.corpus,
				TopKLaws:       rt.cfg.Retrieval.TopKLaws,
				TopKPrecedents: rt.cfg.Retrieval.TopKPrecedents,
			})

			// Logs go to stderr; stdout belongs to the protocol.
			rt.logger.Info("Starting MCP server", zap.String("transport", "stdio"))
			if err := s.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
