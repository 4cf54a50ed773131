package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateRepoPath validates a local repository path for safety and correctness.
// It rejects values that could be used for injection through shell-outs or
// crafted filesystem access.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters
//   - No null bytes
//   - Maximum length of 4096 characters
//
// Absolute paths are allowed; repositories live anywhere on the local disk.
// Existence checks are done separately by the repository backends.
func ValidateRepoPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidRepo, "repository path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidRepo, "repository path too long (max %d characters)", maxPathLength)
	}

	// Check for control characters and null bytes
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidRepo, "repository path contains invalid control characters")
		}
	}

	// A leading dash would be parsed as a flag by git subprocesses
	if strings.HasPrefix(path, "-") {
		return New(ErrCodeInvalidRepo, "repository path cannot start with a dash")
	}

	return nil
}

// backendNameRegex matches valid repository backend names.
var backendNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateBackendName validates a repository backend name.
// Membership in the registered set is checked separately by the source registry.
func ValidateBackendName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBackend, "backend name cannot be empty")
	}

	if len(name) > 32 {
		return New(ErrCodeInvalidBackend, "backend name too long (max 32 characters)")
	}

	if !backendNameRegex.MatchString(name) {
		return New(ErrCodeInvalidBackend, "invalid backend name: %q", name)
	}

	return nil
}

// ValidateRefName validates a branch or tag name against the git refname rules
// enforced by git-check-ref-format. The subset checked here covers the inputs
// Gitlanes accepts over the API and CLI.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 256 characters
//   - No control characters, spaces, or the characters ~ ^ : ? * [ \
//   - No ".." or "@{" sequences
//   - No leading dash, dot, or slash
//   - No trailing dot, slash, or ".lock" suffix
func ValidateRefName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRef, "ref name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidRef, "ref name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRef, "ref name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, " ~^:?*[\\") {
		return New(ErrCodeInvalidRef, "ref name contains invalid characters: %q", name)
	}

	forbiddenSequences := []string{
		"..", // Range operator
		"@{", // Reflog selector
		"//", // Empty path component
	}
	for _, seq := range forbiddenSequences {
		if strings.Contains(name, seq) {
			return New(ErrCodeInvalidRef, "ref name cannot contain %q", seq)
		}
	}

	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidRef, "ref name cannot start with %q", name[:1])
	}

	if strings.HasSuffix(name, ".") || strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".lock") {
		return New(ErrCodeInvalidRef, "invalid ref name suffix: %q", name)
	}

	return nil
}

// shaRegex matches full and abbreviated hex commit hashes.
var shaRegex = regexp.MustCompile(`^[0-9a-f]{4,64}$`)

// ValidateSHA validates a commit hash as lowercase hex.
// Abbreviated hashes of at least four characters are accepted; SHA-256
// repositories produce up to 64.
func ValidateSHA(sha string) error {
	if sha == "" {
		return New(ErrCodeInvalidRef, "commit hash cannot be empty")
	}

	if !shaRegex.MatchString(sha) {
		return New(ErrCodeInvalidRef, "invalid commit hash: %q", sha)
	}

	return nil
}
