package config

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// BundleDirName is the name of the default configuration bundle shipped next
// to the executable.
const BundleDirName = "default.config"

// bundleEnv points at an on-disk bundle, overriding the search.
const bundleEnv = "REPOMAN_DEFAULT_CONFIG"

//go:embed all:bundle
var embedded embed.FS

// Bundle is a default configuration directory ready to be copied.
type Bundle struct {
	FS fs.FS
	// Origin is the on-disk path, or "embedded".
	Origin string
}

// EmbeddedBundle returns the bundle compiled into the binary.
func EmbeddedBundle() Bundle {
	sub, err := fs.Sub(embedded, "bundle")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(fmt.Sprintf("embedded bundle: %v", err))
	}
	return Bundle{FS: sub, Origin: "embedded"}
}

// FindBundle returns the default configuration bundle. An on-disk bundle is
// preferred: $REPOMAN_DEFAULT_CONFIG, then default.config next to the
// executable, in ../share/repoman, or two levels up for binaries run from a
// build output directory. Otherwise the embedded bundle is used.
func FindBundle(lookupEnv LookupEnvFunc) Bundle {
	for _, dir := range bundleCandidates(lookupEnv) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return Bundle{FS: os.DirFS(dir), Origin: dir}
		}
	}
	return EmbeddedBundle()
}

func bundleCandidates(lookupEnv LookupEnvFunc) []string {
	var dirs []string
	if dir, ok := lookupEnv(bundleEnv); ok && dir != "" {
		dirs = append(dirs, dir)
	}

	exe, err := os.Executable()
	if err != nil {
		return dirs
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	exeDir := filepath.Dir(exe)

	return append(dirs,
		filepath.Join(exeDir, BundleDirName),
		filepath.Join(exeDir, "..", "share", AppName, BundleDirName),
		filepath.Join(exeDir, "..", "..", BundleDirName),
	)
}

// Bootstrap copies the bundle into dir, creating dir and its parents.
// Existing files are never overwritten.
func Bootstrap(dir string, b Bundle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Op: OpBootstrap, Path: dir, Err: err}
	}
	if err := os.CopyFS(dir, b.FS); err != nil {
		return &Error{Op: OpBootstrap, Path: dir, Err: fmt.Errorf("copying default config from %s: %w", b.Origin, err)}
	}
	return nil
}
