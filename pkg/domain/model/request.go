package model

// DownloadRequest describes one end-to-end retrieval: find the extension
// matching Term, pick the best candidate, and store the package under
// DestDir.
type DownloadRequest struct {
	// Term is the user's search term. Must not be blank.
	Term string
	// Version pins a specific extension version instead of the latest.
	Version string
	// DestDir is the directory the package file is written to.
	DestDir string
	// AssumeYes skips the final confirmation prompt.
	AssumeYes bool
}
