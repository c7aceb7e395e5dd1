// Package syncer publishes a packaged project to the flasher website
// host over rsync. Transfers are add-only: remote files are never
// deleted, and files that are newer on the server are left alone.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNotConfigured means no sync destination was given.
	ErrNotConfigured = errors.New("sync destination not configured")

	// ErrProjectMissing means the local project directory to upload
	// does not exist.
	ErrProjectMissing = errors.New("project directory not found")

	// ErrToolNotFound means rsync or ssh is not installed.
	ErrToolNotFound = errors.New("required tool not found")
)

// syncExcludes are editor and scratch files that never belong on the
// website host.
var syncExcludes = []string{".DS_Store", "*.tmp", "*.bak", ".venv/"}

// Options selects the remote side of a sync.
type Options struct {
	Server  string // ssh destination, e.g. deploy@example.com
	Target  string // website root on the server
	KeyFile string // optional ssh identity file
	DryRun  bool   // report what would transfer without doing it
}

// Client runs rsync and ssh.
type Client struct {
	rsyncBin string
	sshBin   string
	stdout   io.Writer
	stderr   io.Writer
}

// NewClient locates rsync and ssh on the local machine.
func NewClient() (*Client, error) {
	rsyncBin, err := resolveExecutable("rsync")
	if err != nil {
		return nil, err
	}
	sshBin, err := resolveExecutable("ssh")
	if err != nil {
		return nil, err
	}
	return &Client{rsyncBin: rsyncBin, sshBin: sshBin}, nil
}

// Sync uploads projects/<projectName> from projectsRoot to
// <target>/projects/<projectName> on the server, creating the remote
// directory first.
func (c *Client) Sync(ctx context.Context, projectsRoot, projectName string, opts Options) error {
	if opts.Server == "" || opts.Target == "" {
		return fmt.Errorf("%w: server and target are required", ErrNotConfigured)
	}

	src := filepath.Join(projectsRoot, projectName)
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrProjectMissing, src)
	}

	remoteDir := strings.TrimRight(opts.Target, "/") + "/projects/" + projectName
	if err := c.ensureRemoteDir(ctx, opts, remoteDir); err != nil {
		return err
	}

	args := rsyncArgs(c.sshTransport(opts.KeyFile), src, opts.Server, remoteDir, opts.DryRun)
	cmd := exec.CommandContext(ctx, c.rsyncBin, args...)
	cmd.Stdout = c.out()
	cmd.Stderr = c.errOut()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rsync to %s: %w", opts.Server, err)
	}
	return nil
}

func (c *Client) ensureRemoteDir(ctx context.Context, opts Options, remoteDir string) error {
	args := sshArgs(opts.KeyFile)
	args = append(args, opts.Server, "mkdir -p "+shellQuote(remoteDir))

	cmd := exec.CommandContext(ctx, c.sshBin, args...)
	cmd.Stdout = c.out()
	cmd.Stderr = c.errOut()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("create remote directory %s: %w", remoteDir, err)
	}
	return nil
}

// sshTransport builds the rsync -e value. The key file is quoted
// because rsync splits this string on whitespace.
func (c *Client) sshTransport(keyFile string) string {
	transport := c.sshBin + " -o BatchMode=yes -o ConnectTimeout=10"
	if keyFile != "" {
		transport += " -i " + shellQuote(keyFile)
	}
	return transport
}

func (c *Client) out() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}

func (c *Client) errOut() io.Writer {
	if c.stderr != nil {
		return c.stderr
	}
	return os.Stderr
}

func sshArgs(keyFile string) []string {
	args := []string{"-o", "BatchMode=yes", "-o", "ConnectTimeout=10"}
	if keyFile != "" {
		args = append(args, "-i", keyFile)
	}
	return args
}

// rsyncArgs builds the rsync argv. Trailing slashes on both sides make
// rsync merge directory contents instead of nesting the source under
// the destination.
func rsyncArgs(transport, src, server, remoteDir string, dryRun bool) []string {
	args := []string{"-avz", "--update", "-e", transport}
	for _, pattern := range syncExcludes {
		args = append(args, "--exclude", pattern)
	}
	if dryRun {
		args = append(args, "--dry-run", "--itemize-changes")
	}
	return append(args, src+"/", server+":"+remoteDir+"/")
}

func resolveExecutable(name string) (string, error) {
	preferred := "/usr/bin/" + name
	if info, err := os.Stat(preferred); err == nil && info.Mode().IsRegular() {
		return preferred, nil
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
}

var safeShellPattern = regexp.MustCompile(`^[a-zA-Z0-9_@%+=:,./-]+$`)

// shellQuote makes s safe to embed in a remote shell command line.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if safeShellPattern.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
