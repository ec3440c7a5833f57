// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/kballard/go-shellquote"
)

// Environment variables set for every hook and command script.
const (
	EnvPluginName  = "HYPRSUPREME_PLUGIN_NAME"
	EnvPluginDir   = "HYPRSUPREME_PLUGIN_DIR"
	EnvHook        = "HYPRSUPREME_HOOK"
	EnvCommand     = "HYPRSUPREME_COMMAND"
	EnvExecutionID = "HYPRSUPREME_EXECUTION_ID"
)

// resolveScript splits a manifest script field ("bin/run.sh --fast") into
// the script path, resolved inside dir, and its leading arguments. Paths
// that would escape dir through ".." or symlinks are clamped to it.
func resolveScript(dir, script string) (string, []string, error) {
	words, err := shellquote.Split(script)
	if err != nil {
		return "", nil, fmt.Errorf("invalid script %q: %w", script, err)
	}
	if len(words) == 0 {
		return "", nil, fmt.Errorf("%w: empty script", ErrScriptNotFound)
	}

	path, err := securejoin.SecureJoin(dir, words[0])
	if err != nil {
		return "", nil, fmt.Errorf("resolve script %q: %w", words[0], err)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", nil, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
	}
	return path, words[1:], nil
}

// copyDir recursively copies src to dst, keeping file modes.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source directory: %w", err)
	}

	if err = os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				return fmt.Errorf("failed to read symlink: %w", err)
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
		default:
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func copyFile(src, dst string) (err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = srcFile.Close() }()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dstFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}
