package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"negeri-quiz/internal/config"
	"negeri-quiz/internal/domain"
)

// NewProgressCmd groups maintenance commands for the stored progress slot.
func NewProgressCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or reset stored game progress",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored progress as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			d, err := openDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.close()
			store, err := d.progressStore()
			if err != nil {
				return err
			}
			progress, err := store.Load(cmd.Context())
			if errors.Is(err, domain.ErrSlotEmpty) {
				fmt.Fprintln(cmd.OutOrStdout(), "no progress saved")
				return nil
			}
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(progress, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Erase the stored progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			d, err := openDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.close()
			store, err := d.progressStore()
			if err != nil {
				return err
			}
			if err := store.Erase(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "progress erased")
			return nil
		},
	})
	return cmd
}
