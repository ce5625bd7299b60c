package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rsbundle/internal/cache"
	"rsbundle/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the on-disk bundle cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dir [path]",
		Short: "Print the cache directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clean [path]",
		Short: "Remove every cached bundle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir(args)
			if err != nil {
				return err
			}
			c, err := cache.OpenDiskCache(dir)
			if err != nil {
				return err
			}
			if err := c.DropAll(); err != nil {
				return err
			}
			if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "cleared %s\n", c.Dir())
			}
			return nil
		},
	})
	return cmd
}

// cacheDir honours rsbundle.toml of the package at args[0] when there is
// one; outside a package only the environment applies.
func cacheDir(args []string) (string, error) {
	cfg := config.Default()
	if root, err := resolveRoot(args); err == nil {
		if cfg, err = config.Load(root); err != nil {
			return "", err
		}
	} else if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return "", err
	}
	return cfg.CacheDir()
}
