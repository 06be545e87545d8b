// Package cmd provides helpers for executing shell commands with proper error handling.
//
// This package wraps [os/exec.Cmd] to capture stderr and include it in error
// messages, making command failures more informative for users. Every command
// is logged through the context logger in verbose mode, including its duration.
//
// # Usage
//
//	if err := cmd.RunContext(ctx, repoPath, "git", "fetch", "origin"); err != nil {
//	    // err contains stderr output if available
//	    return fmt.Errorf("fetch failed: %w", err)
//	}
//
//	out, err := cmd.OutputContext(ctx, repoPath, "git", "worktree", "list", "--porcelain")
//
//	code, err := cmd.RunAttached(ctx, dir, cmd.Streams{Stdout: os.Stdout}, "make", "bench")
//
// # Design Notes
//
// benchsrc shells out to the git CLI for clone, fetch and worktree operations
// so that user configuration (credential helpers, SSH keys, proxies) applies
// unchanged.
package cmd
