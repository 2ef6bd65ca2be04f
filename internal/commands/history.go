package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/secure-ping/internal/model"
	"github.com/iliyamo/secure-ping/internal/repository"
)

var historyLimit int

var historyCommand = &cobra.Command{
	Use:   "history",
	Short: "Lists recent probes",
	Long:  "Lists recent probes from the SQL history store, or from the Redis recent list when no store is configured.",
	Args:  cobra.NoArgs,
	RunE:  history,
}

func init() {
	historyCommand.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of probes to list")
}

func history(cmd *cobra.Command, _ []string) error {
	s := openStores(logger)
	defer s.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	var (
		records []model.ProbeRecord
		err     error
	)
	switch {
	case s.db != nil:
		records, err = repository.NewProbeRepo(s.db).ListRecent(ctx, historyLimit)
	case s.rdb != nil:
		records, err = s.recent().List(ctx, historyLimit)
	default:
		return fmt.Errorf("no probe store configured: set DB_DRIVER or REDIS_ADDR")
	}
	if err != nil {
		return err
	}
	return printRecords(cmd, records)
}

func printRecords(cmd *cobra.Command, records []model.ProbeRecord) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tHOST\tRESULT\tDURATION\tID")
	for _, r := range records {
		result := "ok"
		if !r.Succeeded {
			result = fmt.Sprintf("failed (%d)", r.ExitCode)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Format(time.RFC3339), r.Host, result, r.Duration.Round(time.Millisecond), r.ID)
	}
	return w.Flush()
}
