package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/petasbytes/marvin/internal/logger"
	"github.com/petasbytes/marvin/memory"
)

const memoryLongDesc = `Inspect the memory file outside a session.

  marvin memory facts      Recent facts
  marvin memory notes      Recent notes
  marvin memory prefs      All preferences
  marvin memory summary    Counts and the summary shared with the service
  marvin memory clear      Delete the memory file`

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect or clear stored facts, notes and preferences",
		Long:  memoryLongDesc,
	}
	var limit int
	cmd.PersistentFlags().IntVarP(&limit, "limit", "n", 10, "Maximum facts or notes to show")

	cmd.AddCommand(
		memorySubcommand("facts", "Show recent facts", func(w io.Writer, s *memory.Store) error {
			facts := s.RecallFacts(limit)
			if len(facts) == 0 {
				fmt.Fprintln(w, memory.NoMemories)
			}
			for i, f := range facts {
				fmt.Fprintf(w, "%d. %s  (%s)\n", i+1, f.Content, f.Timestamp)
			}
			return nil
		}),
		memorySubcommand("notes", "Show recent notes", func(w io.Writer, s *memory.Store) error {
			notes := s.RecallNotes(limit)
			if len(notes) == 0 {
				fmt.Fprintln(w, memory.NoMemories)
			}
			for i, n := range notes {
				fmt.Fprintf(w, "%d. %s  (%s)\n", i+1, n.Content, n.Timestamp)
			}
			return nil
		}),
		memorySubcommand("prefs", "Show preferences", func(w io.Writer, s *memory.Store) error {
			prefs := s.Preferences()
			if len(prefs) == 0 {
				fmt.Fprintln(w, memory.NoMemories)
			}
			for _, p := range prefs {
				fmt.Fprintf(w, "%s = %s\n", p.Key, p.Value)
			}
			return nil
		}),
		memorySubcommand("summary", "Show memory counts and summary", func(w io.Writer, s *memory.Store) error {
			fmt.Fprintln(w, s.Stats())
			fmt.Fprintln(w, s.Summarize())
			return nil
		}),
		memorySubcommand("clear", "Delete the memory file", func(w io.Writer, s *memory.Store) error {
			if err := s.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(w, "Cleared %s\n", s.Path())
			return nil
		}),
	)
	return cmd
}

func memorySubcommand(use, short string, run func(io.Writer, *memory.Store) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}
			log := logger.New(logger.WithWriter(cmd.ErrOrStderr()), logger.WithPretty(true), logger.WithDebug(cfg.Log.Debug))
			return run(cmd.OutOrStdout(), memory.NewStore(cfg.Memory.Path, memory.WithLogger(log)))
		},
	}
}
