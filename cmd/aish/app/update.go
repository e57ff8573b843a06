package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mholt/archives"
	"github.com/spf13/cobra"
)

// Domain: Self-Update
// This file contains logic for updating the aish binary from GitHub
// releases.

const releaseURL = "https://api.github.com/repos/siliconlad/aish/releases/latest"

// GitHubRelease represents a GitHub release response
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// createUpdateCommand creates the update subcommand
func (a *App) createUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Update aish to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfUpdate(a.version)
		},
	}
}

// runSelfUpdate checks the latest release and replaces the running binary.
func runSelfUpdate(versionStr string) error {
	fmt.Println("Checking for aish updates...")

	currentExe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get current executable path: %w", err)
	}

	release, err := fetchLatestRelease()
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	if normalizeVersion(versionStr) == normalizeVersion(release.TagName) {
		fmt.Printf("Already running the latest version: %s\n", versionStr)
		return nil
	}
	fmt.Printf("New version available: %s (current: %s)\n", release.TagName, versionStr)

	assetURL, err := findAsset(release)
	if err != nil {
		return err
	}

	backupPath := currentExe + ".bak"
	if err := copyFile(currentExe, backupPath, 0o755); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	fmt.Printf("Created backup at: %s\n", backupPath)

	if err := downloadAndInstall(assetURL, currentExe); err != nil {
		fmt.Printf("Update failed: %v\n", err)
		fmt.Println("Restoring backup...")
		if restoreErr := copyFile(backupPath, currentExe, 0o755); restoreErr != nil {
			return fmt.Errorf("update failed and backup restoration failed: %v (original error: %w)", restoreErr, err)
		}
		return err
	}

	fmt.Printf("Updated to version %s.\n", release.TagName)
	return nil
}

// fetchLatestRelease queries the GitHub releases API.
func fetchLatestRelease() (*GitHubRelease, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(releaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release information: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release information: %w", err)
	}
	return &release, nil
}

// findAsset picks the archive for this platform.
func findAsset(release *GitHubRelease) (string, error) {
	want := fmt.Sprintf("aish_%s_%s", runtime.GOOS, runtime.GOARCH)
	for _, asset := range release.Assets {
		if strings.HasPrefix(asset.Name, want) {
			return asset.BrowserDownloadURL, nil
		}
	}
	return "", fmt.Errorf("no release asset for %s/%s", runtime.GOOS, runtime.GOARCH)
}

// downloadAndInstall fetches the release archive, extracts the aish binary
// and swaps it in place of the running executable.
func downloadAndInstall(url, targetPath string) error {
	tmpDir, err := os.MkdirTemp("", "aish-update-")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	archivePath := filepath.Join(tmpDir, "release"+filepath.Ext(url))
	if err := downloadFile(url, archivePath); err != nil {
		return err
	}

	binaryPath, err := extractBinary(archivePath, tmpDir)
	if err != nil {
		return err
	}
	return copyFile(binaryPath, targetPath, 0o755)
}

// downloadFile fetches url into path.
func downloadFile(url, path string) error {
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, resp.Body)
	return err
}

// extractBinary unpacks the archive and returns the path of the aish
// binary inside it.
func extractBinary(archivePath, extractTo string) (string, error) {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = archiveFile.Close() }()

	format, archiveReader, err := archives.Identify(context.Background(), archivePath, archiveFile)
	if err != nil {
		return "", fmt.Errorf("failed to identify archive format: %w", err)
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return "", fmt.Errorf("format does not support extraction: %s", archivePath)
	}

	binaryName := "aish"
	if runtime.GOOS == "windows" {
		binaryName = "aish.exe"
	}

	var binaryPath string
	handler := func(ctx context.Context, f archives.FileInfo) error {
		if f.IsDir() || filepath.Base(f.NameInArchive) != binaryName {
			return nil
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open file in archive: %w", err)
		}
		defer func() { _ = rc.Close() }()

		outputPath := filepath.Join(extractTo, binaryName)
		outFile, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = outFile.Close() }()

		if _, err := io.Copy(outFile, rc); err != nil {
			return fmt.Errorf("failed to extract file: %w", err)
		}
		binaryPath = outputPath
		return nil
	}

	if err := extractor.Extract(context.Background(), archiveReader, handler); err != nil {
		return "", fmt.Errorf("extraction failed: %w", err)
	}
	if binaryPath == "" {
		return "", fmt.Errorf("archive did not contain %s", binaryName)
	}
	return binaryPath, nil
}

// copyFile copies src to dst with the given mode.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}

// normalizeVersion strips a leading v for comparison.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
