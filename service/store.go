package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"postview/app/config"
	"postview/app/repositories"

	"github.com/spf13/cobra"
)

// errCancelled reports a declined confirmation
var errCancelled = errors.New("operation cancelled")

func newStoreCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Args:  cobra.NoArgs,
		Short: "Session state store maintenance",
	}

	cmd.AddCommand(
		newStoreInitCommand(configPath),
		newStoreCleanCommand(configPath),
		newStoreBackupCommand(configPath),
		newStoreRestoreCommand(configPath),
		newStoreStatsCommand(configPath),
	)

	return cmd
}

func storeConfig(configPath string) (*config.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Store.InMemory {
		return nil, errors.New("store is configured in memory, nothing to maintain")
	}
	return cfg.Store, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// confirm asks question on out and reads the answer from in
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	var response string
	fmt.Fscanln(in, &response)
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}

func newStoreInitCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := storeConfig(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if exists(cfg.Path) {
				fmt.Fprintln(out, "Store already exists. Use 'clean' first if you want to reinitialize.")
				return nil
			}

			if err := os.MkdirAll(cfg.Path, 0755); err != nil {
				return fmt.Errorf("failed to create store directory: %w", err)
			}
			db, err := repositories.Open(repositories.Options{Path: cfg.Path})
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintln(out, "Store initialized successfully")
			return nil
		},
	}
}

func newStoreCleanCommand(configPath *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the store and every session in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := storeConfig(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !exists(cfg.Path) {
				fmt.Fprintln(out, "Store is already clean (does not exist)")
				return nil
			}

			if !yes && !confirm(cmd.InOrStdin(), out, "Are you sure you want to clean the store? This cannot be undone.") {
				return errCancelled
			}
			if err := os.RemoveAll(cfg.Path); err != nil {
				return fmt.Errorf("failed to clean store: %w", err)
			}
			fmt.Fprintln(out, "Store cleaned successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}

func newStoreBackupCommand(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := storeConfig(*configPath)
			if err != nil {
				return err
			}
			if !exists(cfg.Path) {
				return errors.New("no store exists to backup")
			}

			if output == "" {
				output = filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("failed to create backup directory: %w", err)
			}

			db, err := repositories.Open(repositories.Options{Path: cfg.Path})
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer f.Close()

			if _, err := db.Backup(f, 0); err != nil {
				return fmt.Errorf("failed to backup store: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Store backed up successfully to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file, defaults to a timestamped file in store.backup_dir")

	return cmd
}

func newStoreRestoreCommand(configPath *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the store from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := storeConfig(*configPath)
			if err != nil {
				return err
			}
			return restore(cmd, cfg, args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace an existing store without asking")

	return cmd
}

func restore(cmd *cobra.Command, cfg *config.Store, backupFile string, yes bool) (err error) {
	// A backup of an empty store is an empty file and restores to an empty store.
	if _, err := os.Stat(backupFile); err != nil {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}

	out := cmd.OutOrStdout()
	if exists(cfg.Path) {
		if !yes && !confirm(cmd.InOrStdin(), out, "Existing store found. Do you want to replace it?") {
			return errCancelled
		}
		if err := os.RemoveAll(cfg.Path); err != nil {
			return fmt.Errorf("failed to remove existing store: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	db, err := repositories.Open(repositories.Options{Path: cfg.Path})
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	if err := db.Load(f, 4); err != nil {
		return fmt.Errorf("failed to restore store: %w", err)
	}

	fmt.Fprintln(out, "Store restored successfully")
	return nil
}

func newStoreStatsCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how many sessions the store holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := storeConfig(*configPath)
			if err != nil {
				return err
			}
			if !exists(cfg.Path) {
				return errors.New("no store exists")
			}
			db, err := repositories.Open(repositories.Options{Path: cfg.Path})
			if err != nil {
				return err
			}
			defer db.Close()

			count, err := repositories.NewBadgerStateRepository(db).Count()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sessions: %d\n", count)
			return nil
		},
	}
}
