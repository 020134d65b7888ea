package binary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/go-logr/logr"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/lock"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/paths"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
	"github.com/mjfwebb/neo4j-mcp-installer/internal/release"
)

// ArchiveExtractor pulls the binary out of a downloaded archive.
type ArchiveExtractor interface {
	Extract(archivePath, outPath string, target platform.Target) error
}

// Installer runs the resolve, download, verify, extract and install pipeline.
type Installer struct {
	detector  platform.Detector
	locator   *paths.Locator
	fetcher   *Fetcher
	resolver  *release.Resolver
	verifier  *Verifier
	extractor ArchiveExtractor
	distro    func(context.Context) *platform.Distro
	logger    logr.Logger
}

// Config holds the collaborators of an Installer.
type Config struct {
	// Detector reports the host platform (default: platform.NewDetector()).
	Detector platform.Detector
	// Locator places the version cache (required).
	Locator *paths.Locator
	// Fetcher talks to the release host (default: NewFetcher()).
	Fetcher *Fetcher
	// APIBaseURL is the GitHub API root used for latest-release lookups.
	APIBaseURL string
	// GitHubToken authenticates latest-release lookups.
	GitHubToken string
	// Keyring, when non-empty, requires a signed checksums manifest.
	Keyring openpgp.EntityList
	// Extractor defaults to NewExtractor().
	Extractor ArchiveExtractor
	Logger    logr.Logger
}

// Options describe a single install run.
type Options struct {
	// Version is the tag the caller asked for; empty means latest.
	Version string
	// EnvVersion is the NEO4J_MCP_VERSION value. It overrides Version.
	EnvVersion string
	// Repo is the GitHub owner/name used for latest-release lookups.
	Repo string
	// BaseURL is the release asset root; empty derives it from Repo.
	BaseURL string
	// Verify enables checksum verification of the downloaded archive.
	Verify bool
	// RequireChecksum fails the run when verification would be skipped
	// because no digest is available.
	RequireChecksum bool
	// Force re-downloads even when the version is already cached.
	Force bool
	// InstallDir overrides the platform default install directory.
	InstallDir string
}

// NewInstaller creates a new installer
func NewInstaller(config Config) (*Installer, error) {
	if config.Locator == nil {
		return nil, fmt.Errorf("Locator is required")
	}

	logger := config.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	detector := config.Detector
	if detector == nil {
		detector = platform.NewDetector()
	}

	fetcher := config.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher()
	}

	extractor := config.Extractor
	if extractor == nil {
		extractor = NewExtractor()
	}

	return &Installer{
		detector:  detector,
		locator:   config.Locator,
		fetcher:   fetcher,
		resolver:  release.NewResolver(fetcher, config.APIBaseURL, logger.WithName("release")).WithToken(config.GitHubToken),
		verifier:  NewVerifier(fetcher, config.Keyring, logger.WithName("verify")),
		extractor: extractor,
		distro:    platform.DetectDistro,
		logger:    logger,
	}, nil
}

// Install runs the pipeline and returns where the binary was placed.
//
// Every canonical file it writes (cached archive, cached binary, installed
// binary) is first written under a ".tmp" name and renamed into place, so
// an interrupted run leaves at most stale temp files. Runs sharing a cache
// root are serialized by a lock file.
func (in *Installer) Install(ctx context.Context, opts Options) (*Result, error) {
	startTime := time.Now()

	target, err := in.detector.Detect(ctx)
	if err != nil {
		return nil, err
	}
	in.logger.V(1).Info("detected platform", "target", target.String())
	if debug := in.logger.V(1); debug.Enabled() {
		if distro := in.distro(ctx); distro != nil {
			debug.Info("detected distribution", "id", distro.ID, "family", distro.Family, "version", distro.Version)
		}
	}

	version, source, err := in.resolver.Resolve(ctx, opts.Version, opts.EnvVersion, opts.Repo)
	if err != nil {
		return nil, err
	}
	if err := paths.ValidateVersion(version); err != nil {
		return nil, err
	}
	in.logger.Info("resolved version", "version", version, "source", string(source))

	installDir, err := paths.InstallDir(opts.InstallDir)
	if err != nil {
		return nil, err
	}

	cacheLock, err := lock.Acquire(ctx, in.locator.LockPath())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cacheLock.Release(); err != nil {
			in.logger.Error(err, "release cache lock")
		}
	}()

	result := &Result{
		Version:          version,
		CachedBinaryPath: in.locator.BinaryPath(version, target),
	}

	cached, err := isRegularFile(result.CachedBinaryPath)
	if err != nil {
		return nil, err
	}

	if cached && !opts.Force {
		in.logger.Info("using cached binary", "path", result.CachedBinaryPath)
		result.CacheHit = true
		result.Verification = &VerificationResult{Skipped: SkipCacheHit}
	} else {
		verification, err := in.fetchVerified(ctx, opts, version, target)
		if err != nil {
			return nil, err
		}
		result.Verification = verification

		archivePath := in.locator.ArchivePath(version, target)
		if err := in.extractor.Extract(archivePath, result.CachedBinaryPath, target); err != nil {
			return nil, fmt.Errorf("extract binary: %w", err)
		}
		in.logger.V(1).Info("extracted binary", "path", result.CachedBinaryPath)
	}

	installedPath, err := placeBinary(result.CachedBinaryPath, installDir, target.BinaryName())
	if err != nil {
		return nil, fmt.Errorf("install binary: %w", err)
	}
	result.InstalledPath = installedPath
	result.Duration = time.Since(startTime)

	in.logger.Info("installed", "path", installedPath, "version", version, "duration", result.Duration.String())
	return result, nil
}

// fetchVerified downloads the release archive to its canonical cache path,
// checking it against the manifest before the rename.
func (in *Installer) fetchVerified(ctx context.Context, opts Options, version string, target platform.Target) (*VerificationResult, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = release.DownloadBaseURL(opts.Repo)
	}

	asset := target.AssetName()
	assetURL := release.AssetURL(baseURL, version, asset)
	archivePath := in.locator.ArchivePath(version, target)
	tmpArchive := archivePath + ".tmp"

	if err := removeIfExists(tmpArchive); err != nil {
		return nil, fmt.Errorf("remove stale download: %w", err)
	}

	in.logger.Info("downloading", "asset", asset, "version", version)
	in.logger.V(1).Info("download url", "url", assetURL, "dest", tmpArchive)
	if err := in.fetcher.FetchToFile(ctx, assetURL, tmpArchive, nil); err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}

	verification := &VerificationResult{Skipped: SkipDisabled}
	if opts.Verify {
		var err error
		verification, err = in.verifier.VerifyArchive(ctx, tmpArchive, version, baseURL, asset, assetURL)
		if err != nil {
			os.Remove(tmpArchive)
			var mismatch *ChecksumMismatchError
			if errors.As(err, &mismatch) {
				os.Remove(archivePath)
			}
			return nil, err
		}
	}

	if verification.Verified() {
		in.logger.Info("checksum verified", "method", verification.Method.String())
		in.logger.V(1).Info("digest", "sha256", verification.Actual)
	} else {
		in.logger.Info("checksum verification skipped", "reason", string(verification.Skipped))
		if opts.Verify && opts.RequireChecksum {
			os.Remove(tmpArchive)
			return nil, &ChecksumUnavailableError{Asset: asset, Reason: verification.Skipped}
		}
	}

	if err := os.Rename(tmpArchive, archivePath); err != nil {
		os.Remove(tmpArchive)
		return nil, fmt.Errorf("rename archive: %w", err)
	}

	return verification, nil
}

// placeBinary copies src into dir as name via a ".tmp" sibling and rename.
func placeBinary(src, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create install dir: %w", err)
	}

	finalPath := filepath.Join(dir, name)
	tmpPath := finalPath + ".tmp"

	if err := copyFile(src, tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := SetExecutable(tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename binary: %w", err)
	}

	return finalPath, nil
}

// copyFile copies src to dst, keeping src's permission bits.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if err := copyChunked(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	// O_CREATE honours umask, and an existing tmp file keeps its old mode.
	return os.Chmod(dst, info.Mode().Perm())
}

func isRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
