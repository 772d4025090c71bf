package gitx

import "fmt"

// Mutations are kept separate from queries: every operation here changes
// repository or remote state and any failure must abort the release.

// Add stages the given paths.
func (g *Repo) Add(paths ...string) error {
	args := append([]string{"add"}, paths...)
	if _, err := g.run.Run(args...); err != nil {
		return &MutationError{Op: "add", Err: err}
	}
	return nil
}

// Commit records the currently staged changes with the given message.
func (g *Repo) Commit(message string) error {
	if _, err := g.run.Run("commit", "-m", message); err != nil {
		return &MutationError{Op: "commit", Err: err}
	}
	return nil
}

// Push pushes the given ref to the named remote.
func (g *Repo) Push(remote, ref string) error {
	if _, err := g.run.Run("push", remote, ref); err != nil {
		return &MutationError{Op: "push", Err: err}
	}
	return nil
}

// Tag creates an annotated tag at HEAD.
func (g *Repo) Tag(name, message string) error {
	if _, err := g.run.Run("tag", "-a", name, "-m", message); err != nil {
		return &MutationError{Op: "tag", Err: err}
	}
	return nil
}

// PushTag pushes a single tag to the named remote.
func (g *Repo) PushTag(remote, name string) error {
	if _, err := g.run.Run("push", remote, fmt.Sprintf("refs/tags/%s", name)); err != nil {
		return &MutationError{Op: "push tag", Err: err}
	}
	return nil
}
