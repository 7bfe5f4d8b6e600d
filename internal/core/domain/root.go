package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RootKind identifies which kind of source a Root describes.
type RootKind int

const (
	// RootFiles is a local file tree.
	RootFiles RootKind = iota

	// RootGitHub is a cloned git repository.
	RootGitHub

	// RootGoogleDrive is a cloud drive folder.
	RootGoogleDrive
)

// String returns the string representation.
func (k RootKind) String() string {
	switch k {
	case RootFiles:
		return "files"
	case RootGitHub:
		return "github"
	case RootGoogleDrive:
		return "gdrive"
	default:
		return "unknown"
	}
}

// Provenance schemes. Every encoded root starts with one of these.
const (
	FileScheme  = "file://"
	DriveScheme = "gdrive://"

	// legacyRootScheme was written by older releases for local files.
	legacyRootScheme = "root://"
)

// Root describes where a document came from.
// Its canonical string form (String) is both the hash input for
// DocumentID and the provenance value persisted alongside the document.
type Root struct {
	// Kind selects which of the remaining fields are meaningful.
	Kind RootKind

	// FolderPath is the slash-separated folder relative to the source base.
	FolderPath string

	// Origin is the remote URL of a git repository (RootGitHub only).
	Origin string

	// Branch is the checked-out branch of a git repository (RootGitHub only).
	Branch string

	// DriveName names the drive (RootGoogleDrive only).
	DriveName string
}

// FilesRoot returns a root for a folder in a local file tree.
func FilesRoot(folderPath string) Root {
	return Root{Kind: RootFiles, FolderPath: folderPath}
}

// GitHubRoot returns a root for a folder inside a cloned repository.
func GitHubRoot(origin, branch, folderPath string) Root {
	return Root{Kind: RootGitHub, Origin: origin, Branch: branch, FolderPath: folderPath}
}

// DriveRoot returns a root for a folder on a cloud drive.
func DriveRoot(driveName, folderPath string) Root {
	return Root{Kind: RootGoogleDrive, DriveName: driveName, FolderPath: folderPath}
}

// String returns the canonical encoding of the root.
//
// GitHub roots deliberately share the file:// encoding so that the IDs of
// git-sourced documents do not depend on the remote or branch name.
func (r Root) String() string {
	folder := normaliseFolder(r.FolderPath)
	if folder != "" {
		folder += "/"
	}

	switch r.Kind {
	case RootGoogleDrive:
		return DriveScheme + r.DriveName + "/" + folder
	default:
		return FileScheme + folder
	}
}

// ParseRoot decodes a canonical root string.
// Git roots decode as RootFiles since their encoding carries no remote.
func ParseRoot(s string) (Root, error) {
	switch {
	case strings.HasPrefix(s, FileScheme):
		return FilesRoot(normaliseFolder(strings.TrimPrefix(s, FileScheme))), nil

	case strings.HasPrefix(s, legacyRootScheme):
		return FilesRoot(normaliseFolder(strings.TrimPrefix(s, legacyRootScheme))), nil

	case strings.HasPrefix(s, DriveScheme):
		rest := strings.TrimPrefix(s, DriveScheme)
		drive, folder, _ := strings.Cut(rest, "/")
		return DriveRoot(drive, normaliseFolder(folder)), nil

	default:
		return Root{}, fmt.Errorf("%w: %q", ErrMalformedRoot, s)
	}
}

// NewFileRoot computes the root of a local file relative to base.
//
// The parent directory of path and base are both canonicalised (symlinks
// and ".." resolved) before comparison, so every way of reaching the same
// file yields the same root. The file itself need not exist any more,
// which lets removal events compute the same root as creation did.
func NewFileRoot(path, base string) (Root, error) {
	dir, err := canonicalDir(filepath.Dir(path))
	if err != nil {
		return Root{}, fmt.Errorf("canonicalise %s: %w", path, err)
	}

	canonBase, err := canonicalDir(base)
	if err != nil {
		return Root{}, fmt.Errorf("canonicalise base %s: %w", base, err)
	}

	rel, err := filepath.Rel(canonBase, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Root{}, fmt.Errorf("%w: %s is not under %s", ErrOutsideBase, path, base)
	}
	if rel == "." {
		rel = ""
	}

	return FilesRoot(filepath.ToSlash(rel)), nil
}

// canonicalDir resolves symlinks in dir. Trailing components that no longer
// exist are re-appended to the canonical form of their nearest existing ancestor.
func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(abs)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", err
		}
		missing = append([]string{filepath.Base(abs)}, missing...)
		abs = parent
	}
}

// normaliseFolder trims surrounding slashes and collapses runs of slashes.
func normaliseFolder(folder string) string {
	folder = strings.ReplaceAll(folder, string(os.PathSeparator), "/")

	var b strings.Builder
	b.Grow(len(folder))
	prevSlash := false
	for _, c := range folder {
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(c)
	}

	return strings.Trim(b.String(), "/")
}
