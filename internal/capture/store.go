package capture

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"unitcap/internal/tempdir"
)

// Store is the built-in translator/capture collaborator: it validates a
// unit and persists its textual content as one artifact file per source
// file under the results directory. External integrations can replace it
// with their own Translator/Sink pair.
type Store struct {
	dir string
}

// NewStore creates the results directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the results directory.
func (s *Store) Dir() string {
	return s.dir
}

type storedArtifact struct {
	sourcePath string
	content    string
}

// Translate validates the unit. It does not interpret the content beyond
// rejecting units that cannot produce a meaningful artifact.
func (s *Store) Translate(sourcePath, content string, lineMap []int) (Artifact, error) {
	var diags []Diagnostic
	if strings.TrimSpace(sourcePath) == "" {
		diags = append(diags, Diagnostic{Message: "unit has no source path"})
	}
	if content == "" {
		line := 0
		if len(lineMap) > 0 {
			line = lineMap[0]
		}
		diags = append(diags, Diagnostic{Line: line, Message: "unit has no content"})
	}
	if len(diags) > 0 {
		return nil, &TranslateError{SourcePath: sourcePath, Diagnostics: diags}
	}
	return &storedArtifact{sourcePath: sourcePath, content: content}, nil
}

// artifactName flattens the source path and appends a short hash of the
// original path. Flattening alone can map distinct sources to the same
// token ("a/b.hack" and "a_b.hack"); the hash keeps their artifacts
// apart while recapturing the same source stays idempotent.
func artifactName(sourcePath string) string {
	sum := sha256.Sum256([]byte(sourcePath))
	return fmt.Sprintf("%s-%s.sil", tempdir.Flatten(sourcePath), hex.EncodeToString(sum[:4]))
}

// Capture writes the artifact into the results directory.
func (s *Store) Capture(artifact Artifact) error {
	art, ok := artifact.(*storedArtifact)
	if !ok {
		return fmt.Errorf("unexpected artifact type %T", artifact)
	}
	path := filepath.Join(s.dir, artifactName(art.sourcePath))
	if err := os.WriteFile(path, []byte(art.content), 0600); err != nil {
		return fmt.Errorf("failed to write artifact for %s: %w", art.sourcePath, err)
	}
	return nil
}
