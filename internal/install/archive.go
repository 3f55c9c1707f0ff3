package install

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
)

const (

	// Name of the permissions keyfile at the root of a game archive.
	metadataName = "metadata"

	// Directory the archive is unpacked into, relative to the install dir.
	publishDir = "publish"
)

// Installs games shipped as zip archives.
//
// The archive is checked against the policy, then unpacked into
// <installDir>/publish. The returned install reference is that directory.
// A previous install is replaced only after the new one unpacked cleanly.
type Archive struct {
	Policy Policy
}

// Creates an archive installer enforcing the given policy.
func NewArchive(policy Policy) *Archive {
	return &Archive{Policy: policy}
}

// Unpacks the archive at bundlePath into installDir and returns the install
// reference.
func (a *Archive) Install(ctx context.Context, bundlePath, installDir string) (string, error) {
	zr, err := zip.OpenReader(bundlePath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInstall, err)
	}
	defer zr.Close()

	if err := a.checkMetadata(&zr.Reader); err != nil {
		return "", err
	}

	dest := filepath.Join(installDir, publishDir)
	staging := dest + ".partial"

	if err := os.RemoveAll(staging); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInstall, err)
	}

	if err := extract(ctx, &zr.Reader, staging); err != nil {
		os.RemoveAll(staging)
		return "", err
	}

	if err := os.RemoveAll(dest); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("%w: %w", ErrInstall, err)
	}
	if err := os.Rename(staging, dest); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("%w: %w", ErrInstall, err)
	}

	slog.Debug("archive installed", "bundle", bundlePath, "dest", dest, "files", len(zr.File))

	return dest, nil
}

// Applies the policy to the archive's metadata file, if it has one.
func (a *Archive) checkMetadata(zr *zip.Reader) error {
	var meta *zip.File
	for _, f := range zr.File {
		if f.Name == metadataName {
			meta = f
			break
		}
	}
	if meta == nil {
		return nil
	}

	f, err := meta.Open()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMetadata, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMetadata, err)
	}

	return a.Policy.Check(data)
}

// Unpacks every entry of zr under dir.
func extract(ctx context.Context, zr *zip.Reader, dir string) error {
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractFile(f, dir); err != nil {
			return err
		}
	}
	return nil
}

// Writes a single archive entry under dir. Symlinks are skipped.
func extractFile(f *zip.File, dir string) error {
	name := filepath.FromSlash(f.Name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrUnsafePath, f.Name)
	}
	target := filepath.Join(dir, name)

	mode := f.Mode()
	switch {
	case mode.IsDir():
		if err := os.MkdirAll(target, paths.DefaultDirMode); err != nil {
			return fmt.Errorf("%w: %w", ErrInstall, err)
		}
		return nil
	case mode&fs.ModeSymlink != 0:
		slog.Debug("skipping symlink in archive", "name", f.Name)
		return nil
	case !mode.IsRegular():
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInstall, f.Name, err)
	}
	defer rc.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = paths.DefaultFileMode
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("%w: %s: %w", ErrInstall, f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}
	return nil
}
