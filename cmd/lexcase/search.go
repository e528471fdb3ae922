package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/lexcase/internal/tui"
	"github.com/kailas-cloud/lexcase/internal/usecase/retrieval"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search",
		Short: "Open the interactive corpus search console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			m := tui.New(rt.corpus, rt.cfg.Retrieval.TopKLaws, rt.cfg.Retrieval.TopKPrecedents, corpusSummary(rt.corpus.Stats()))
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("search console: %w", err)
			}
			return nil
		},
	}
}

func corpusSummary(st retrieval.Stats) string {
	return fmt.Sprintf("%d statutes (%d demo), %d precedents (%d demo), relevance floor %.2f. Up/Down to browse, Esc to quit.",
		st.Laws.Documents, st.Laws.DemoDocuments,
		st.Precedents.Documents, st.Precedents.DemoDocuments,
		st.RelevanceFloor)
}
