package guidepack

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// stagingDir holds uploads before they are normalized into a guidepack
const stagingDir = "_tmp"

// Store locates guidepack directories under one root. It holds no state
// besides the root; the directory listing is the index.
type Store struct {
	Root string
}

// ArtifactInfo is the result of a readiness probe on one artifact
type ArtifactInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Present bool      `json:"present"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time,omitempty"`
}

// Summary describes one guidepack found on disk
type Summary struct {
	ID        string    `json:"id"`
	Dir       string    `json:"dir"`
	CreatedAt time.Time `json:"created_at"`
	Artifacts []string  `json:"artifacts"`
}

// NewStore creates the root directory if needed.
func NewStore(root string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, apperrors.InputError("guidepack root directory")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guidepack root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create guidepack root: %w", err)
	}
	return &Store{Root: abs}, nil
}

// Create allocates a new guidepack id and its directory.
func (s *Store) Create() (string, string, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.Root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create guidepack directory: %w", err)
	}
	return id, dir, nil
}

// ValidateID rejects anything that is not a canonical UUID so ids can never
// escape the root.
func ValidateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != strings.ToLower(id) {
		return apperrors.ValidationError("id", "must be a guidepack UUID")
	}
	return nil
}

// Dir returns the directory of an existing guidepack.
func (s *Store) Dir(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	dir := filepath.Join(s.Root, strings.ToLower(id))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", apperrors.NotFound("guidepack", id)
	}
	return dir, nil
}

// Resolve returns the path of artifact inside guidepack id.
func (s *Store) Resolve(id, artifact string) (string, error) {
	if !IsArtifact(artifact) {
		return "", apperrors.ValidationError("artifact", fmt.Sprintf("unknown artifact %q", artifact))
	}
	dir, err := s.Dir(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, artifact), nil
}

// Exists reports whether path is a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Probe stats one artifact without reading it. A missing artifact is not
// an error; Present is false.
func (s *Store) Probe(id, artifact string) (ArtifactInfo, error) {
	path, err := s.Resolve(id, artifact)
	if err != nil {
		return ArtifactInfo{}, err
	}
	return probePath(artifact, path), nil
}

func probePath(name, path string) ArtifactInfo {
	info := ArtifactInfo{Name: name, Path: path}
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() {
		return info
	}
	info.Present = true
	info.Size = st.Size()
	info.ModTime = st.ModTime()
	return info
}

// Inventory probes every declared artifact of guidepack id.
func (s *Store) Inventory(id string) ([]ArtifactInfo, error) {
	dir, err := s.Dir(id)
	if err != nil {
		return nil, err
	}
	out := make([]ArtifactInfo, 0, len(Artifacts))
	for _, name := range Artifacts {
		out = append(out, probePath(name, filepath.Join(dir, name)))
	}
	return out, nil
}

// List returns every guidepack under the root, newest first.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("failed to list guidepacks: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || ValidateID(entry.Name()) != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dir := filepath.Join(s.Root, entry.Name())
		present := make([]string, 0, len(Artifacts))
		for _, name := range Artifacts {
			if Exists(filepath.Join(dir, name)) {
				present = append(present, name)
			}
		}
		summaries = append(summaries, Summary{
			ID:        entry.Name(),
			Dir:       dir,
			CreatedAt: info.ModTime(),
			Artifacts: present,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// StagingDir is where uploads wait until they are normalized
func (s *Store) StagingDir() string {
	return filepath.Join(s.Root, stagingDir)
}

// StageUpload copies an uploaded source file into the staging area and
// returns its path.
func (s *Store) StageUpload(filename string, r io.Reader) (string, error) {
	dir := s.StagingDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	name := sanitizeFilename(filename)
	path := filepath.Join(dir, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close staged file: %w", err)
	}
	return path, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
