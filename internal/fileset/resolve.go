package fileset

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fitcsv/internal/config"
	"fitcsv/internal/services"
)

// Kind identifies what the input files contain.
type Kind string

const (
	KindFit  Kind = "fit"
	KindRoot Kind = "root"
)

// Format distinguishes the layout of ROOT inputs.
type Format string

const (
	FormatNone   Format = ""
	FormatPlain  Format = "plain"
	FormatFSRoot Format = "fsroot"
)

const (
	extFit  = ".fit"
	extRoot = ".root"
)

// Set is a resolved list of inputs. The index in Paths is the ordinal
// position of each file.
type Set struct {
	Paths  []string
	Kind   Kind
	Format Format
}

// Len reports the number of files in the set.
func (s Set) Len() int { return len(s.Paths) }

// Resolve validates raw path arguments. A single argument that is neither a
// .fit nor a .root file is read as a manifest listing one path per line.
// fsroot selects the FSRoot layout for ROOT inputs and is ignored for fits.
func Resolve(args []string, fsroot bool) (Set, error) {
	paths, err := expand(args)
	if err != nil {
		return Set{}, err
	}

	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := checkExists(path)
		if err != nil {
			return Set{}, err
		}
		resolved = append(resolved, abs)
	}

	kind, err := detectKind(resolved)
	if err != nil {
		return Set{}, err
	}

	set := Set{Paths: resolved, Kind: kind}
	if kind == KindRoot {
		set.Format = FormatPlain
		if fsroot {
			set.Format = FormatFSRoot
		}
	}
	return set, nil
}

func expand(args []string) ([]string, error) {
	cleaned := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			cleaned = append(cleaned, arg)
		}
	}
	switch {
	case len(cleaned) == 0:
		return nil, &services.MissingInputError{Reason: "no input files given"}
	case len(cleaned) == 1 && !hasInputExt(cleaned[0]):
		return ReadManifest(cleaned[0])
	default:
		return cleaned, nil
	}
}

// ReadManifest returns the non-blank, trimmed lines of a manifest file.
func ReadManifest(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &services.MissingInputError{Path: path}
		}
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer file.Close()

	var paths []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if len(paths) == 0 {
		return nil, &services.MissingInputError{Path: path, Reason: "lists no input files"}
	}
	return paths, nil
}

func checkExists(path string) (string, error) {
	abs, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &services.MissingInputError{Path: path}
		}
		return "", fmt.Errorf("inspect %s: %w", path, err)
	}
	if info.IsDir() {
		return "", &services.MissingInputError{Path: path, Reason: "is a directory"}
	}
	return abs, nil
}

func detectKind(paths []string) (Kind, error) {
	counts := make(map[string]int)
	for _, path := range paths {
		ext := filepath.Ext(path)
		if ext == "" {
			ext = "(none)"
		}
		counts[ext]++
	}
	if len(counts) == 1 {
		switch {
		case counts[extFit] > 0:
			return KindFit, nil
		case counts[extRoot] > 0:
			return KindRoot, nil
		}
	}
	exts := make([]string, 0, len(counts))
	for ext := range counts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return "", &services.MixedInputTypeError{Extensions: exts}
}

func hasInputExt(path string) bool {
	return strings.HasSuffix(path, extFit) || strings.HasSuffix(path, extRoot)
}
