package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"email-classifier/internal/model"
	"email-classifier/internal/repository"

	"github.com/google/uuid"
)

// FileEmailRepository keeps one JSON file per email under root/<category>/.
// Writes go through a temp file and a rename, so readers never see a partial file. Two saves in the
// same second and category share a filename and the later one wins.
type FileEmailRepository struct {
	root string
	now  func() time.Time
}

func NewFileEmailRepository(root string) *FileEmailRepository {
	return &FileEmailRepository{root: root, now: time.Now}
}

// NewFileEmailRepositoryWithClock is used by tests to control generated filenames.
func NewFileEmailRepositoryWithClock(root string, now func() time.Time) *FileEmailRepository {
	return &FileEmailRepository{root: root, now: now}
}

func (r *FileEmailRepository) Root() string {
	return r.root
}

// EnsureLayout creates the root directory and one directory per category.
func (r *FileEmailRepository) EnsureLayout() error {
	for _, c := range model.Categories {
		if err := os.MkdirAll(filepath.Join(r.root, c.Dir()), 0o755); err != nil {
			return fmt.Errorf("%w: %v", repository.ErrStorage, err)
		}
	}
	return nil
}

func (r *FileEmailRepository) Save(ctx context.Context, text string, category model.Category, metadata map[string]interface{}) (string, error) {
	email := model.NewStoredEmail(text, category, metadata, r.now())

	dir := filepath.Join(r.root, category.Dir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create category directory: %v", repository.ErrStorage, err)
	}

	data, err := encode(email)
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode email: %v", repository.ErrStorage, err)
	}

	path := filepath.Join(dir, fileName(email.CreatedAt))
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}
	return path, nil
}

func (r *FileEmailRepository) List(ctx context.Context, category string) ([]*model.StoredEmail, error) {
	dirs, err := r.categoryDirs(category)
	if err != nil {
		return nil, err
	}

	emails := []*model.StoredEmail{}
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emails = append(emails, readDir(filepath.Join(r.root, dir))...)
	}
	return emails, nil
}

// categoryDirs resolves which directories to read. A named category that is not one of the fixed
// labels resolves to nothing rather than to an arbitrary path.
func (r *FileEmailRepository) categoryDirs(category string) ([]string, error) {
	if category != "" {
		c, err := model.ParseCategory(category)
		if err != nil {
			return nil, nil
		}
		return []string{c.Dir()}, nil
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", repository.ErrStorage, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// readDir decodes every email file in dir, newest filename first. Entries that cannot be read or
// decoded are skipped.
func readDir(dir string) []*model.StoredEmail {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var emails []*model.StoredEmail
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		email, ok := decodeEmail(data)
		if !ok {
			continue
		}
		email.Path = path
		emails = append(emails, email)
	}
	return emails
}

// decodeEmail accepts only JSON objects carrying both "texto" and "categoria". Scalars such as
// null decode without error and are rejected here.
func decodeEmail(data []byte) (*model.StoredEmail, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, false
	}
	if _, ok := fields["texto"]; !ok {
		return nil, false
	}
	if _, ok := fields["categoria"]; !ok {
		return nil, false
	}

	var email model.StoredEmail
	if err := json.Unmarshal(data, &email); err != nil {
		return nil, false
	}
	return &email, true
}

func fileName(ts model.Timestamp) string {
	return "email_" + ts.String() + ".json"
}

// encode renders the email as indented JSON with non-ASCII text left as is.
func encode(email *model.StoredEmail) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(email); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move email into place: %w", err)
	}
	return nil
}
