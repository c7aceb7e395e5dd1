package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wvdveer/fwpack/internal/artifact"
	"github.com/wvdveer/fwpack/internal/flash"
	"github.com/wvdveer/fwpack/internal/layout"
	"github.com/wvdveer/fwpack/internal/partition"
	"github.com/wvdveer/fwpack/internal/pio"
	"github.com/wvdveer/fwpack/internal/pioconf"
	"github.com/wvdveer/fwpack/internal/project"
	"github.com/wvdveer/fwpack/internal/report"
	"github.com/wvdveer/fwpack/internal/settings"
	"github.com/wvdveer/fwpack/internal/sign"
	"github.com/wvdveer/fwpack/internal/version"
)

// packOptions holds the parsed command line for a packaging run.
type packOptions struct {
	projectDir string
	outputRoot string
	pioBin     string
	signKey    string
	server     string
	target     string
	keyFile    string
	skipBuild  bool
	doSync     bool
	syncDryRun bool
	verbose    bool
	showHelp   bool
}

func parsePackArgs(args []string) (*packOptions, error) {
	opts := &packOptions{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--help", "-h":
			opts.showHelp = true
		case "--output", "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			opts.outputRoot = args[i]
		case "--pio":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			opts.pioBin = args[i]
		case "--sign-key":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			opts.signKey = args[i]
		case "--server":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			opts.server = args[i]
		case "--target":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			opts.target = args[i]
		case "--key":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			opts.keyFile = args[i]
		case "--skip-build":
			opts.skipBuild = true
		case "--sync":
			opts.doSync = true
		case "--sync-dry-run":
			opts.doSync = true
			opts.syncDryRun = true
		case "--verbose", "-v":
			opts.verbose = true
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option: %s\nRun 'fwpack --help' for usage", arg)
			}
			if opts.projectDir != "" {
				return nil, fmt.Errorf("unexpected argument: %s", arg)
			}
			opts.projectDir = arg
		}
	}

	return opts, nil
}

// runPack handles a full fwpack invocation.
func runPack(args []string) error {
	opts, err := parsePackArgs(args)
	if err != nil {
		return err
	}
	if opts.showHelp {
		printPackHelp()
		return nil
	}

	setupLogging(opts.verbose)

	projectRoot, err := resolveProjectRoot(opts.projectDir, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	cfg, err := settings.Load(projectRoot)
	if err != nil {
		return err
	}
	if cfg == nil {
		slog.Debug("no settings file found", "project", projectRoot)
	}

	return pack(context.Background(), projectRoot, opts, cfg)
}

// setupLogging routes slog to stderr. Debug level is opt-in.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// resolveProjectRoot validates the given project path, prompting for
// one when the command line had none.
func resolveProjectRoot(path string, in io.Reader, out io.Writer) (string, error) {
	if path == "" {
		fmt.Fprint(out, "Path to PlatformIO project: ")
		scanner := bufio.NewScanner(in)
		if scanner.Scan() {
			path = strings.TrimSpace(scanner.Text())
		}
		if path == "" {
			return "", fmt.Errorf("no project path given")
		}
	}

	abs, err := filepath.Abs(expandUser(path))
	if err != nil {
		return "", fmt.Errorf("resolve project path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("invalid project path: %s", abs)
	}
	if !fileExists(filepath.Join(abs, "platformio.ini")) {
		return "", fmt.Errorf("platformio.ini not found in %s", abs)
	}
	return abs, nil
}

// pack packages every environment of the project and optionally syncs
// the result. Environment failures are isolated: later environments
// still run, and the aggregate failure comes back as the final error.
func pack(ctx context.Context, projectRoot string, opts *packOptions, cfg *settings.Settings) error {
	doc, err := pioconf.ParseFile(filepath.Join(projectRoot, "platformio.ini"))
	if err != nil {
		return fmt.Errorf("read platformio.ini: %w", err)
	}
	envs := doc.Environments()
	if len(envs) == 0 {
		return pioconf.ErrNoEnvironments
	}

	var builder pio.Builder
	if !opts.skipBuild {
		runner, err := pio.NewRunner(projectRoot, opts.pioBin)
		if err != nil {
			return err
		}
		builder = runner
	}

	var signer *sign.Signer
	if opts.signKey != "" {
		signer, err = sign.LoadKey(expandUser(opts.signKey))
		if err != nil {
			return err
		}
		slog.Debug("loaded signing key", "identity", signer.Identity())
	}

	ver := version.Detect(filepath.Join(projectRoot, "src"))
	targets := layout.Plan(doc, ver)
	workspaceDir := doc.ResolveWorkspaceDir(projectRoot)

	outputRoot := opts.outputRoot
	if outputRoot == "" {
		outputRoot = cfg.Output()
	}
	if outputRoot == "" {
		outputRoot = projectRoot
	} else if outputRoot, err = filepath.Abs(expandUser(outputRoot)); err != nil {
		return fmt.Errorf("resolve output root: %w", err)
	}
	projectsRoot := filepath.Join(outputRoot, "projects")
	projectName := filepath.Base(projectRoot)

	dir, removed, err := project.Prepare(projectsRoot, projectName)
	if err != nil {
		return err
	}
	if removed {
		fmt.Printf("Removed previous project output: %s\n", dir.Path())
	}

	templateImage, _ := project.FindTemplateImage(projectRoot)
	if err := dir.EnsureMetadata(templateImage); err != nil {
		return err
	}

	fmt.Printf("Project: %s\n", projectName)
	fmt.Printf("Version: %s\n", ver)
	fmt.Printf("Environments: %s\n", strings.Join(envs, ", "))
	fmt.Println("Boards per environment:")
	for _, tgt := range targets {
		fmt.Printf("  - %s -> %s\n", tgt.Env, tgt.BoardID)
	}
	fmt.Printf("Output: %s\n", dir.Path())
	fmt.Printf("Workspace dir: %s\n", workspaceDir)

	p := &packer{
		projectRoot:  projectRoot,
		workspaceDir: workspaceDir,
		doc:          doc,
		builder:      builder,
		signer:       signer,
		hasData:      dirExists(filepath.Join(projectRoot, "data")),
		version:      ver,
	}

	var failed []string
	for _, tgt := range targets {
		dest := filepath.Join(dir.Path(), tgt.Path())
		if err := p.packEnv(ctx, tgt, dest); err != nil {
			slog.Error("environment failed", "env", tgt.Env, "error", err)
			failed = append(failed, tgt.Env)
			continue
		}
		fmt.Printf("Done with environment '%s': %s\n", tgt.Env, dest)
	}

	if opts.doSync {
		if len(failed) == len(targets) {
			slog.Warn("skipping sync, every environment failed")
		} else if err := runSync(ctx, projectsRoot, projectName, opts, cfg); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d environments failed: %s",
			len(failed), len(targets), strings.Join(failed, ", "))
	}
	fmt.Println("Packaging complete.")
	return nil
}

// packer carries the run-wide state of one packaging invocation.
type packer struct {
	projectRoot  string
	workspaceDir string
	doc          *pioconf.Document
	builder      pio.Builder // nil under --skip-build
	signer       *sign.Signer
	hasData      bool
	version      string
}

// packEnv builds and stages a single environment into dest. The build
// log is written whether the environment succeeds or fails.
func (p *packer) packEnv(ctx context.Context, tgt layout.Target, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create environment directory: %w", err)
	}

	log := report.NewLog(tgt.Env)
	log.Host = report.HostLine(ctx)
	if rev, ok := report.Revision(p.projectRoot); ok {
		log.Revision = rev
	}
	defer func() {
		if err := log.WriteFile(filepath.Join(dest, "build_log.md")); err != nil {
			slog.Warn("write build log", "env", tgt.Env, "error", err)
		}
	}()

	if p.builder == nil {
		log.Note("Build skipped, packaging existing output")
	} else {
		if err := p.builder.Build(ctx, log, tgt.Env); err != nil {
			return err
		}
		if p.hasData {
			if err := p.builder.BuildFilesystem(ctx, log, tgt.Env); err != nil {
				log.Warnf("buildfs failed for %s: %v", tgt.Env, err)
				slog.Warn("filesystem image build failed", "env", tgt.Env, "error", err)
			}
		}
	}

	buildDir, err := artifact.DiscoverBuildDir(p.projectRoot, p.workspaceDir, tgt.Env)
	if err != nil {
		return err
	}
	log.BuildDir = buildDir
	slog.Debug("resolved build directory", "env", tgt.Env, "dir", buildDir)

	partitionsSource, _ := p.doc.ResolvePartitionsSource(p.projectRoot, tgt.Env)
	res, err := artifact.Collect(buildDir, dest, partitionsSource)
	if err != nil {
		return err
	}
	for _, note := range res.Notes {
		log.Note(note)
	}
	if p.hasData && res.FilesystemImage == "" {
		log.Warnf("no filesystem image found in build output")
		slog.Warn("no filesystem image found in build output", "env", tgt.Env)
	}

	var table *partition.Table
	if csvPath := filepath.Join(dest, "partitions.csv"); fileExists(csvPath) {
		table, err = partition.ParseFile(csvPath)
		if err != nil {
			log.Warnf("cannot read partition table: %v", err)
			table = nil
		}
	}

	desc, warnings := flash.Synthesize(dest, tgt.BoardID, p.version, table)
	for _, warning := range warnings {
		log.Warnf("%s", warning)
		slog.Warn(warning, "env", tgt.Env)
	}
	if err := desc.WriteFile(filepath.Join(dest, "flash.json")); err != nil {
		return err
	}

	files := append(slices.Clone(res.Files), "flash.json")
	if err := artifact.WriteChecksums(dest, files); err != nil {
		return err
	}

	if p.signer != nil {
		if _, err := p.signer.SignFile(filepath.Join(dest, artifact.ChecksumManifest)); err != nil {
			return err
		}
		note := "Signed " + artifact.ChecksumManifest
		if id := p.signer.Identity(); id != "" {
			note += " as " + id
		}
		log.Note(note)
	}

	return nil
}

func expandUser(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
