package core

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Build-command template macros. Each expands relative to the source file
// being compiled.
const (
	MacroFile     = "$(FILE)"     // full source path
	MacroFilename = "$(FILENAME)" // base name, extension included
	MacroDir      = "$(DIR)"      // parent directory path
	MacroDirname  = "$(DIRNAME)"  // parent directory's own name
	MacroBinDir   = "$(BIN_DIR)"  // configured binary directory
	MacroExeExt   = "$(EXE_EXT)"  // platform binary extension, no dot
)

// ExeExt returns the platform binary extension without the leading dot:
// "exe" on Windows, "out" elsewhere.
func ExeExt() string {
	if runtime.GOOS == "windows" {
		return "exe"
	}
	return "out"
}

// BinaryName returns the binary base name a source file compiles to. The
// platform extension is appended to the full source name, so "sol.cpp"
// yields "sol.cpp.out"; binaries from same-named sources with different
// extensions cannot shadow each other.
func BinaryName(sourcePath string) string {
	return filepath.Base(sourcePath) + "." + ExeExt()
}

// BinaryPath returns the full path of the binary a source file compiles to,
// inside the configured binary directory.
func BinaryPath(binDir, sourcePath string) string {
	return filepath.Join(binDir, BinaryName(sourcePath))
}

// ExpandTemplate substitutes every macro in a build-command template.
// Unknown $(...) sequences are left untouched.
func ExpandTemplate(template, sourcePath, binDir string) string {
	dir := filepath.Dir(sourcePath)
	pairs := []string{
		MacroFile, sourcePath,
		MacroFilename, filepath.Base(sourcePath),
		MacroDir, dir,
		MacroDirname, filepath.Base(dir),
		MacroBinDir, binDir,
		MacroExeExt, ExeExt(),
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Extension returns the source file's extension without the dot, used as the
// key into the per-language build command map.
func Extension(sourcePath string) (string, error) {
	ext := filepath.Ext(sourcePath)
	if ext == "" || ext == "." {
		return "", fmt.Errorf("%s has no file extension", sourcePath)
	}
	return strings.TrimPrefix(ext, "."), nil
}
