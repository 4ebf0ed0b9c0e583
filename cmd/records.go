package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/capture-cli/internal/model"
	"github.com/sells-group/capture-cli/internal/store"
)

var recordsPartition string

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List captured records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snap, err := st.Load(ctx)
		if err != nil {
			return err
		}

		for _, t := range model.ObjectTypes {
			part := t.Partition()
			if recordsPartition != "" && part != recordsPartition {
				continue
			}
			recs := snap.Partitions[part]
			if len(recs) == 0 {
				continue
			}
			fmt.Printf("%s (%d)\n", part, len(recs))
			for _, rec := range recs {
				name, _ := rec.Data["name"].(string)
				fmt.Printf("  %-18s  %-30s  %s\n", rec.ID, name, rec.LastUpdated.Format("2006-01-02 15:04"))
			}
		}

		fmt.Printf("total: %d records", snap.Total())
		if !snap.LastSync.IsZero() {
			fmt.Printf(", last sync %s", snap.LastSync.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
		return nil
	},
}

var recordsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a captured record by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := args[0]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		snap, err := st.Load(ctx)
		if err != nil {
			return err
		}

		removed := false
		for _, t := range model.ObjectTypes {
			if store.RemoveByID(snap, t, id) {
				removed = true
				break
			}
		}
		if !removed {
			return eris.Errorf("no record with id %s", id)
		}

		if err := st.Save(ctx, snap); err != nil {
			return err
		}

		zap.L().Info("record removed", zap.String("id", id))
		fmt.Printf("removed %s\n", id)
		return nil
	},
}

func init() {
	recordsCmd.Flags().StringVar(&recordsPartition, "partition", "", "limit to one partition (opportunities|leads|contacts|accounts|tasks)")
	recordsCmd.AddCommand(recordsRemoveCmd)
	rootCmd.AddCommand(recordsCmd)
}
