package palette

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Load picks a loader by file extension. An empty path yields the built-in
// catalog.
func Load(ctx context.Context, path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Builtin(), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".sqlite", ".sqlite3", ".db":
		return LoadSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported catalog file %q (want .yaml or .sqlite)", path)
	}
}
