package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwaldner/mtts/internal/table"
	"github.com/jwaldner/mtts/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive table browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadResults(cmd.Context())
		if err != nil {
			return err
		}
		state := table.NewViewState()
		if table.ValidPageSize(cfg.Table.DefaultPageSize) {
			state, _ = state.WithPageSize(cfg.Table.DefaultPageSize)
		}
		m := tui.New(res, state, loadResults)
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
