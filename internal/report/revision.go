package report

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// Revision describes the project's git state when the project lives in
// a work tree: short commit hash, branch, and a dirty marker for
// uncommitted changes. The bool reports whether a repository with a
// commit was found; packaging works the same either way.
func Revision(projectRoot string) (string, bool) {
	repo, err := gogit.PlainOpenWithOptions(projectRoot, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}

	head, err := repo.Head()
	if err != nil {
		return "", false
	}

	short := head.Hash().String()[:7]
	branch := "detached"
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	dirty := ""
	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil && !status.IsClean() {
			dirty = ", dirty"
		}
	}

	return fmt.Sprintf("%s (%s%s)", short, branch, dirty), true
}
