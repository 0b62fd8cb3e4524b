package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-pianoroll/theme"
	"go-pianoroll/tui"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the piano roll editor (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(commandContext(cmd))
	},
}

func runEdit(ctx context.Context) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	palette, err := theme.Load(s.cfg.UI.Palette)
	if err != nil {
		return err
	}

	m := tui.NewModel(s.player, s.exporter, s.cfg, theme.New(palette))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
