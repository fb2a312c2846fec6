package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/rubikal/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show the rotations of a session (default: the last one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and its rotations",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of sessions to show")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := storage.NewSessionRepository(db).List(historyLimit)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-10s  %9s  %s\n", "SESSION", "STARTED", "SOURCE", "ROTATIONS", "DURATION")
	for _, s := range sessions {
		duration := "-"
		if s.EndedAt != nil {
			duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		fmt.Printf("%-36s  %-19s  %-10s  %9d  %s\n",
			s.SessionID,
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Source,
			s.RotationCount,
			duration)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	var sessionID string
	if len(args) > 0 {
		sessionID = args[0]
	} else {
		state, err := openStateFile()
		if err != nil {
			return err
		}
		sessionID = state.LastSessionID()
		if sessionID == "" {
			return errors.New("no session recorded yet")
		}
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	session, err := storage.NewSessionRepository(db).Get(sessionID)
	if err != nil {
		return err
	}

	recs, err := storage.NewRotationRepository(db).GetBySession(sessionID)
	if err != nil {
		return err
	}

	fmt.Printf("Session:   %s\n", session.SessionID)
	fmt.Printf("Source:    %s\n", session.Source)
	fmt.Printf("Started:   %s\n", session.StartedAt.Local().Format(time.RFC1123))
	if session.EndedAt != nil {
		fmt.Printf("Ended:     %s\n", session.EndedAt.Local().Format(time.RFC1123))
	}
	if session.Notes != nil {
		fmt.Printf("Notes:     %s\n", *session.Notes)
	}
	fmt.Printf("Rotations: %d\n", len(recs))

	if len(recs) == 0 {
		return nil
	}

	moves := make([]string, len(recs))
	for i, r := range recs {
		moves[i] = recordToken(r)
	}
	fmt.Printf("\n%s\n", strings.Join(moves, " "))

	if verbose {
		fmt.Println()
		for _, r := range recs {
			fmt.Printf("%4d  %-8s %-3s:%-4s ticks %d-%d\n",
				r.Seq, recordToken(r), r.Slice, r.Direction, r.StartTick, r.CompleteTick)
		}
	}
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.NewSessionRepository(db).Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}

// recordToken returns the face token, or slice:direction for middle slices.
func recordToken(r storage.RotationRecord) string {
	if r.Token != "" {
		return r.Token
	}
	return r.Slice + ":" + r.Direction
}
