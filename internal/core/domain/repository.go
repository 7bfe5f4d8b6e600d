package domain

// Repository is a remote git repository that can be cloned into the
// git-repositories directory.
type Repository struct {
	// FullName is "owner/name".
	FullName string

	// CloneURL is the HTTPS clone URL.
	CloneURL string

	// DefaultBranch is the branch checked out by a fresh clone.
	DefaultBranch string

	// Private reports whether the repository needs credentials to clone.
	Private bool
}

// DirName returns the directory name used for a local clone.
func (r Repository) DirName() string {
	for i := len(r.FullName) - 1; i >= 0; i-- {
		if r.FullName[i] == '/' {
			return r.FullName[i+1:]
		}
	}
	return r.FullName
}
