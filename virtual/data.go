package virtual

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ancientlore/quire/config"
)

// dataDecoders maps data file extensions to their decoders.
var dataDecoders = map[string]func([]byte, any) error{
	".json": json.Unmarshal,
	".toml": toml.Unmarshal,
	".yaml": yaml.Unmarshal,
	".yml":  yaml.Unmarshal,
}

// dataContext is passed to the data template engine.
type dataContext struct {
	Env        string
	PathPrefix string
}

// loadData reads the global data files. Each file is run through the data
// template engine before it is decoded. It is not an error if the data
// folder does not exist.
func (vfs *FS) loadData() (map[string]any, error) {
	result := make(map[string]any)
	dir := vfs.cfg.Dirs.Data
	entries, err := fs.ReadDir(vfs.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("loadData: %w", err)
	}
	ctx := dataContext{Env: vfs.cfg.Environment, PathPrefix: vfs.cfg.PathPrefix}
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		decode, ok := dataDecoders[ext]
		if entry.IsDir() || !ok || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := path.Join(dir, entry.Name())
		b, err := fs.ReadFile(vfs.fs, name)
		if err != nil {
			return nil, fmt.Errorf("loadData: %w", err)
		}
		b, err = vfs.execute(config.CategoryData, name, b, ctx)
		if err != nil {
			return nil, fmt.Errorf("loadData %s: %w", name, err)
		}
		var v any
		if err := decode(b, &v); err != nil {
			return nil, fmt.Errorf("loadData %s: %w", name, err)
		}
		key := strings.TrimSuffix(entry.Name(), ext)
		if _, dup := result[key]; dup {
			vfs.log.Warn("data file shadows another with the same name", zap.String("file", name))
		}
		result[key] = v
		vfs.log.Debug("loaded data", zap.String("file", name))
	}
	return result, nil
}
