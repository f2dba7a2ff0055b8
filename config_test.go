package convextypes_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/convextypes"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "convex", "chat")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	content := `schema: convex/schema.ts
out: src/generated/types.go
functions:
  - convex/messages.ts
  - /abs/convex/users.ts
lang: go
package: api
filter: "!internal"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".convextypes.yaml"), []byte(content), 0o600))

	cfg, err := convextypes.LoadConfig(nested)
	require.NoError(t, err)

	assert.Equal(t, &convextypes.Config{
		SchemaPath:    filepath.Join(root, "convex", "schema.ts"),
		OutFile:       filepath.Join(root, "src", "generated", "types.go"),
		FunctionPaths: []string{filepath.Join(root, "convex", "messages.ts"), "/abs/convex/users.ts"},
		Lang:          "go",
		Package:       "api",
		Filter:        "!internal",
	}, cfg)
}

func TestFindConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	child := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(child, 0o755))

	_, err := convextypes.FindConfig(child)
	require.ErrorIs(t, err, convextypes.ErrConfigNotFound)

	// Later names in DefaultConfigNames lose to earlier ones in the same
	// directory, and a nearer directory wins over a farther one.
	require.NoError(t, os.WriteFile(filepath.Join(root, "convextypes.yml"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".convextypes.yaml"), nil, 0o600))

	path, err := convextypes.FindConfig(child)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".convextypes.yaml"), path)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "convextypes.yaml"), nil, 0o600))

	path, err = convextypes.FindConfig(child)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "convextypes.yaml"), path)
}

func TestLoadConfigFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := convextypes.LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, convextypes.ErrIO)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("functions: {not: [a list"), 0o600))

	_, err = convextypes.LoadConfigFile(bad)
	require.ErrorIs(t, err, convextypes.ErrInvalidConfig)
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, &convextypes.Config{
		SchemaPath: "convex/schema.ts",
		OutFile:    "src/convex_types.rs",
	}, convextypes.DefaultConfig())

	cfg := &convextypes.Config{OutFile: "types.go", FunctionPaths: []string{"a.ts"}}
	withDefaults := cfg.WithDefaults()
	assert.Equal(t, convextypes.DefaultSchemaPath, withDefaults.SchemaPath)
	assert.Equal(t, "types.go", withDefaults.OutFile)

	withDefaults.FunctionPaths[0] = "changed.ts"
	assert.Equal(t, "a.ts", cfg.FunctionPaths[0], "WithDefaults copies the function list")

	resolved := cfg.Resolve("/project")
	assert.Equal(t, filepath.Join("/project", "types.go"), resolved.OutFile)
	assert.Empty(t, resolved.SchemaPath, "empty paths stay empty")
	assert.Equal(t, []string{filepath.Join("/project", "a.ts")}, resolved.FunctionPaths)
}
