package main

import (
	"context"
	"fmt"

	"github.com/wvdveer/fwpack/internal/settings"
	"github.com/wvdveer/fwpack/internal/syncer"
)

// runSync publishes the packaged project, with flags overriding any
// .fwpack.yaml defaults.
func runSync(ctx context.Context, projectsRoot, projectName string, opts *packOptions, cfg *settings.Settings) error {
	defaults := cfg.SyncDefaults()
	syncOpts := syncer.Options{
		Server:  opts.server,
		Target:  opts.target,
		KeyFile: opts.keyFile,
		DryRun:  opts.syncDryRun,
	}
	if syncOpts.Server == "" {
		syncOpts.Server = defaults.Server
	}
	if syncOpts.Target == "" {
		syncOpts.Target = defaults.Target
	}
	if syncOpts.KeyFile == "" {
		syncOpts.KeyFile = defaults.KeyFile
	}

	if syncOpts.KeyFile != "" {
		syncOpts.KeyFile = expandUser(syncOpts.KeyFile)
		if !fileExists(syncOpts.KeyFile) {
			return fmt.Errorf("ssh key not found: %s", syncOpts.KeyFile)
		}
	}

	client, err := syncer.NewClient()
	if err != nil {
		return err
	}
	return client.Sync(ctx, projectsRoot, projectName, syncOpts)
}
