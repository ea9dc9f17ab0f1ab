package pipeline

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/anime-shed/lineart-prep/internal/strategy"
)

const remoteRootFallback = "."

// ProcessOutputRef names the PNG written for a processed input:
// <root>/output_<mode>/<stem>.png. An empty root means the input's directory.
func ProcessOutputRef(inputRef, root string, mode strategy.Mode) string {
	if root == "" {
		root = parentOf(inputRef)
	}
	return joinRef(root, "output_"+string(mode), stemOf(inputRef)+".png")
}

// EmbedOutputRef names the PNG written for a line-art/background pair:
// <root>/output/<subdir>/<background stem>_<image stem>.png.
func EmbedOutputRef(imageRef, backgroundRef, root, subdir string) string {
	if root == "" {
		root = parentOf(imageRef)
	}
	name := stemOf(backgroundRef) + "_" + stemOf(imageRef) + ".png"
	if subdir == "" {
		return joinRef(root, "output", name)
	}
	return joinRef(root, "output", subdir, name)
}

// isSlashRef reports whether ref uses URL-style separators regardless of OS.
func isSlashRef(ref string) bool {
	return strings.Contains(ref, "://")
}

func stemOf(ref string) string {
	ref = trimQuery(ref)
	var base string
	if isSlashRef(ref) {
		base = path.Base(ref)
	} else {
		base = filepath.Base(ref)
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parentOf(ref string) string {
	ref = trimQuery(ref)
	if !isSlashRef(ref) {
		return filepath.Dir(ref)
	}
	// Outputs for web inputs land locally; blob inputs stay in their container.
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return remoteRootFallback
	}
	scheme, rest, _ := strings.Cut(ref, "://")
	dir := path.Dir(rest)
	return scheme + "://" + dir
}

func joinRef(root string, elems ...string) string {
	if isSlashRef(root) {
		scheme, rest, _ := strings.Cut(root, "://")
		return scheme + "://" + path.Join(append([]string{rest}, elems...)...)
	}
	return filepath.Join(append([]string{root}, elems...)...)
}

func trimQuery(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 && isSlashRef(ref) {
		return ref[:i]
	}
	return ref
}
