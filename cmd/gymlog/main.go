package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pbaille/gymlog/internal/api"
	"github.com/pbaille/gymlog/internal/domain"
	"github.com/pbaille/gymlog/internal/store"
	"github.com/spf13/cobra"
)

var dbPath string

func main() {
	// Default database location
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".gymlog", "gymlog.db")

	rootCmd := &cobra.Command{
		Use:   "gymlog",
		Short: "Workout log with a REST API",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "database path")

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getStore opens the postgres backend when DATABASE_URL is set,
// otherwise the sqlite file at --db.
func getStore() (store.Store, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return store.NewPostgres(url)
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return store.New(dbPath)
}

func addCmd() *cobra.Command {
	var date string
	var weight float64
	var reps, sets int

	cmd := &cobra.Command{
		Use:   "add [exercise]",
		Short: "Record an exercise performance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format(domain.DateFormat)
			}

			// Route through the same validation the API applies
			in, err := domain.ParseCreate(map[string]any{
				"date":     date,
				"exercise": args[0],
				"weight":   weight,
				"reps":     float64(reps),
				"sets":     float64(sets),
			})
			if err != nil {
				return err
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entry, err := s.CreateEntry(in)
			if err != nil {
				return err
			}

			fmt.Printf("Logged %s: %g lbs x %d reps x %d sets (%s)\n",
				entry.Exercise, entry.Weight, entry.Reps, entry.Sets, entry.ID[:8])
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "workout date (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight in pounds")
	cmd.Flags().IntVar(&reps, "reps", 1, "repetitions per set")
	cmd.Flags().IntVar(&sets, "sets", 1, "number of sets")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions and their entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			sessions, err := s.ListSessions()
			if err != nil {
				return err
			}

			if len(sessions) == 0 {
				fmt.Println("No workouts yet. Use 'gymlog add' to record one.")
				return nil
			}

			for _, session := range sessions {
				fmt.Println(session.Date)
				for _, e := range session.Exercises {
					fmt.Printf("  %s  %-20s %g lbs x %d reps x %d sets\n",
						e.ID[:8], e.Exercise, e.Weight, e.Reps, e.Sets)
				}
			}

			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a log entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.DeleteEntry(args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("log entry not found: %s", args[0])
				}
				return err
			}

			fmt.Println("Log deleted")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	// PORT env keeps parity with container setups; the flag wins
	defaultPort := 3000
	if p := os.Getenv("PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			defaultPort = n
		}
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			// Note: don't defer s.Close() as server runs indefinitely

			server := api.New(s, fmt.Sprintf(":%d", port))
			return server.Run()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", defaultPort, "listening port")
	return cmd
}
