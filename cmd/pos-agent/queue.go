package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/panaderia-pos/internal/offline"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reenvía una vez las ventas pendientes y termina",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			res, err := rt.syncer.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sincronizadas: %d  fallidas: %d  total: %d\n", res.Succeeded, res.Failed, res.Total)
			for id, msg := range res.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", id, msg)
			}
			return nil
		},
	}
}

func newQueueCmd() *cobra.Command {
	queue := &cobra.Command{
		Use:   "queue",
		Short: "Inspecciona la cola offline",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Lista las ventas encoladas en orden de llegada",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			entries, err := rt.queue.ListPending(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(offline.Redact(entries))
			}
			return printQueue(cmd.OutOrStdout(), entries)
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "salida en JSON")

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Elimina las entradas ya sincronizadas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			n, err := rt.queue.PurgeSynced(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "entradas eliminadas: %d\n", n)
			return nil
		},
	}

	queue.AddCommand(list, purge)
	return queue
}

func printQueue(w io.Writer, entries []offline.QueuedSale) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "cola vacía")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREADA\tTOTAL\tINTENTOS\tESTADO\tÚLTIMO ERROR")
	for _, e := range entries {
		state := "pendiente"
		if e.Synced {
			state = "sincronizada"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Payload.Total.String(), e.Attempts, state, e.LastError)
	}
	return tw.Flush()
}
