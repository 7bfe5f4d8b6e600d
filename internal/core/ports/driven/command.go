package driven

import "context"

// CommandRunner executes external programs.
type CommandRunner interface {
	// Run executes name with args in dir and returns its standard output.
	// A non-zero exit status is returned as an error that includes stderr.
	// An empty dir runs in the current working directory.
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// EnvCommandRunner is a CommandRunner that can add environment variables.
type EnvCommandRunner interface {
	CommandRunner

	// RunWithEnv is Run with env ("KEY=value" entries) appended to the
	// process environment. Env values never appear in returned errors.
	RunWithEnv(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error)
}

// GitSynchronizer re-extracts every tracked repository.
type GitSynchronizer interface {
	// Sync resets the git index and emits every tracked file.
	// Returns the number of documents emitted.
	Sync(ctx context.Context) (int, error)
}
