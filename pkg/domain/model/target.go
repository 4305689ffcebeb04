package model

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// PackageExt is the file extension of a downloaded package.
const PackageExt = ".vsix"

// DownloadTarget identifies one concrete package to fetch and the directory
// it is written into. Built once resolution completes; immutable.
type DownloadTarget struct {
	Publisher   string
	ExtensionID string
	Version     string
	Destination string // output directory
}

// NewDownloadTarget builds a target from a resolved candidate. An empty
// version selects the candidate's latest. Construction fails when the
// candidate has no published versions.
func NewDownloadTarget(c *Candidate, version, destDir string) (*DownloadTarget, error) {
	if version == "" {
		latest, ok := c.Latest()
		if !ok {
			return nil, goerr.New("candidate has no published versions",
				goerr.V("extension", c.UniqueID()))
		}
		version = latest.Version
	}

	return &DownloadTarget{
		Publisher:   c.Publisher,
		ExtensionID: c.ID,
		Version:     version,
		Destination: destDir,
	}, nil
}

// Filename returns the deterministic package file name for the target triple.
func (t *DownloadTarget) Filename() string {
	return fmt.Sprintf("%s.%s-%s%s", t.Publisher, t.ExtensionID, t.Version, PackageExt)
}

// Path returns the full destination path. The same (publisher, id, version)
// triple always maps to the same path, so repeated runs overwrite.
func (t *DownloadTarget) Path() string {
	return filepath.Join(t.Destination, t.Filename())
}

// TransferResult reports one completed package transfer.
type TransferResult struct {
	Path     string        // where the package was written
	Bytes    int64         // payload size on disk
	Duration time.Duration // wall time of the transfer phase
}
