package schematic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

const (
	// Ext is the schematic file extension.
	Ext = ".asc"

	// textDirective is the first token of a schematic text annotation line.
	textDirective = "TEXT"

	// paramMarker introduces the .param token list on a text annotation.
	paramMarker = "!.param"

	// newSuffix is appended to the base name when an edit does not overwrite.
	newSuffix = "_new"

	// AnnotationPrefix starts the annotation line written above extracted tables.
	AnnotationPrefix = "SPICE simulation result. Parameters: "
)

// ErrInvalidParamName indicates a parameter name that cannot appear as a single name=value token
var ErrInvalidParamName = errors.New("invalid parameter name")

// Param is a name=value token from a .param annotation.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Edit describes the outcome of SetParam.
type Edit struct {
	Path     string // file that was written
	Replaced int    // number of tokens rewritten
}

// NewPath returns the sibling path SetParam writes to when not overwriting:
// "circuit.asc" becomes "circuit_new.asc".
func NewPath(path string) string {
	return strings.TrimSuffix(path, Ext) + newSuffix + Ext
}

// BasePath strips the schematic extension.
func BasePath(path string) string {
	return strings.TrimSuffix(path, Ext)
}

// SetParam rewrites every name=<anything> token on the schematic's TEXT
// lines to name=value. Other lines are copied verbatim; rewritten lines always
// end with a newline. The result replaces path when overwrite is set and is
// written to NewPath(path) otherwise.
func SetParam(path, name, value string, overwrite bool) (*Edit, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schematic: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat schematic: %w", err)
	}

	dest := path
	if !overwrite {
		dest = NewPath(path)
	}

	// Write next to the destination so the rename stays on one filesystem
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".ltspice-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	replaced, err := rewrite(src, tmp, name, value)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to rewrite %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	// CreateTemp uses 0600; the edit keeps the schematic's own mode
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to set permissions: %w", err)
	}
	src.Close()

	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, fmt.Errorf("failed to replace %s: %w", dest, err)
	}

	return &Edit{Path: dest, Replaced: replaced}, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidParamName)
	}
	if strings.ContainsAny(name, " \t\r\n=") {
		return fmt.Errorf("%w: %q contains whitespace or '='", ErrInvalidParamName, name)
	}
	return nil
}

// rewrite copies r to w, substituting name=value on TEXT lines.
func rewrite(r io.Reader, w io.Writer, name, value string) (int, error) {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	replaced := 0

	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return replaced, readErr
		}
		if line != "" {
			out, n := rewriteLine(line, name, value)
			replaced += n
			if _, err := bw.WriteString(out); err != nil {
				return replaced, err
			}
		}
		if readErr != nil {
			break
		}
	}

	return replaced, bw.Flush()
}

// rewriteLine splits on single spaces so untouched spacing survives the join.
func rewriteLine(line, name, value string) (string, int) {
	tokens := strings.Split(line, " ")
	if tokens[0] != textDirective {
		return line, 0
	}

	n := 0
	for i, tok := range tokens {
		key, _, _ := strings.Cut(tok, "=")
		if key == name {
			tokens[i] = name + "=" + value
			n++
		}
	}

	out := strings.Join(tokens, " ")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, n
}

// GetParams returns the tokens following !.param on every TEXT line of the
// schematic, in file order.
func GetParams(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schematic: %w", err)
	}
	defer f.Close()

	tokens, err := ScanParams(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return tokens, nil
}

// ScanParams is GetParams over a stream.
func ScanParams(r io.Reader) ([]string, error) {
	tokens := []string{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != textDirective {
			continue
		}
		for i, f := range fields {
			if f == paramMarker {
				tokens = append(tokens, fields[i+1:]...)
				break
			}
		}
	}

	return tokens, scanner.Err()
}

// ParseParams splits name=value tokens. A token without '=' becomes a
// Param with an empty value.
func ParseParams(tokens []string) []Param {
	params := make([]Param, 0, len(tokens))
	for _, tok := range tokens {
		name, value, _ := strings.Cut(tok, "=")
		params = append(params, Param{Name: name, Value: value})
	}
	return params
}

// FilterParams keeps the tokens whose parameter name matches a glob pattern.
func FilterParams(tokens []string, pattern string) ([]string, error) {
	if pattern == "" {
		return tokens, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	kept := []string{}
	for _, tok := range tokens {
		name, _, _ := strings.Cut(tok, "=")
		if g.Match(name) {
			kept = append(kept, tok)
		}
	}
	return kept, nil
}

// Annotation builds the human-readable line placed above an extracted table.
func Annotation(tokens []string) string {
	return AnnotationPrefix + strings.Join(tokens, ", ") + "\n"
}
