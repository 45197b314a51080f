package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/a2a402/gateway/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "inspect persisted gateway state",
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "print a summary of a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotInspect,
}

func init() {
	snapshotCmd.AddCommand(inspectCmd)
}

type inspectSummary struct {
	TotalTasks   uint64         `json:"totalTasks"`
	Sessions     int            `json:"sessions"`
	EventsByKind map[string]int `json:"eventsByKind"`
	StartedAt    string         `json:"startedAt"`
	SavedAt      string         `json:"savedAt"`
}

func runSnapshotInspect(cmd *cobra.Command, args []string) error {
	doc := snapshot.Load(args[0])

	eventsByKind := map[string]int{}
	for _, e := range doc.PaymentLog {
		eventsByKind[string(e.Kind)]++
	}

	summary := inspectSummary{
		TotalTasks:   doc.TotalTasks,
		Sessions:     len(doc.SIWXSessions),
		EventsByKind: eventsByKind,
		StartedAt:    doc.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		SavedAt:      doc.SavedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
