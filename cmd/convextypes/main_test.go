package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rlch/convextypes"
	"github.com/rlch/convextypes/analysis"
	"github.com/rlch/convextypes/typegen"
)

const testSchema = `import { defineSchema, defineTable } from "convex/server";
import { v } from "convex/values";

export default defineSchema({
  users: defineTable({ name: v.string() }),
});
`

const testFunctions = `import { query } from "./_generated/server";
import { v } from "convex/values";

export const get = query({ args: { id: v.id("users") }, handler: async () => null });
`

func writeProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	files := map[string]string{
		"convex/schema.ts":              testSchema,
		"convex/users.ts":               testFunctions,
		"convex/admin/users.ts":         testFunctions,
		"convex/_generated/server.d.ts": "export declare const query: any;",
		"convex/_generated/api.js":      "export const api = {};",
		"convex/convex.config.ts":       "export default {};",
		"convex/types.d.ts":             "export type X = string;",
		"convex/README.md":              "# functions",
		".convextypes.yaml":             "out: gen/types.rs\n",
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}

func TestDiscoverFunctions(t *testing.T) {
	t.Parallel()

	dir := writeProject(t)

	found, err := discoverFunctions(filepath.Join(dir, "convex", "schema.ts"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "convex", "admin", "users.ts"),
		filepath.Join(dir, "convex", "users.ts"),
	}, found)
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "flag", firstNonEmpty("flag", "config", "default"))
	assert.Equal(t, "config", firstNonEmpty("", "config", "default"))
	assert.Equal(t, "default", firstNonEmpty("", "", "default"))
	assert.Empty(t, firstNonEmpty())
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, hasErrors(nil))
	assert.False(t, hasErrors([]analysis.Diagnostic{{Severity: analysis.SeverityWarning}}))
	assert.True(t, hasErrors([]analysis.Diagnostic{{Severity: analysis.SeverityHint}, {Severity: analysis.SeverityError}}))
}

func TestWriteInspection(t *testing.T) {
	t.Parallel()

	res := &typegen.Result{
		Schema: &convextypes.Schema{Tables: []*convextypes.Table{{
			Name:    "users",
			Columns: []*convextypes.Column{{Name: "name", Type: convextypes.Scalar(convextypes.TagString)}},
		}}},
		Diagnostics: []analysis.Diagnostic{{
			Rule: "empty-union", Severity: analysis.SeverityWarning, Context: "users.name", Message: "union has no variants",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeInspection(&buf, res))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, doc, "schema")
	assert.NotContains(t, doc, "functions")
	assert.Equal(t, []any{"warning: users.name: union has no variants [empty-union]"}, doc["diagnostics"])
	assert.Contains(t, buf.String(), "type: string")
}

// The command tests change the working directory and cannot run in parallel.

func TestGenerateCommand(t *testing.T) {
	dir := writeProject(t)
	t.Chdir(dir)

	err := rootCommand().Run(context.Background(), []string{"convextypes", "generate", "--discover"})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "gen", "types.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "pub struct UsersTable {")
	// Discovered modules are sorted, so admin/users claims the short name.
	assert.Contains(t, string(out), "pub struct GetArgs {")
	assert.Contains(t, string(out), "pub struct UsersGetArgs {")
	assert.Contains(t, string(out), `"admin/users:get"`)

	err = rootCommand().Run(context.Background(), []string{"convextypes", "check", "--discover"})
	require.NoError(t, err)
}

func TestGenerateCommandFlagsOverrideConfig(t *testing.T) {
	dir := writeProject(t)
	t.Chdir(dir)

	err := rootCommand().Run(context.Background(), []string{
		"convextypes", "generate", "--out", "internal/api/types.go", "--filter", `module == "users"`, "convex/users.ts",
	})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "internal", "api", "types.go"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "package api\n")
	assert.Contains(t, string(out), `const GetPath = "users:get"`)

	_, err = os.Stat(filepath.Join(dir, "gen", "types.rs"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateCommandMissingSchema(t *testing.T) {
	dir := writeProject(t)
	t.Chdir(dir)

	err := rootCommand().Run(context.Background(), []string{"convextypes", "generate", "--schema", "nope/schema.ts"})
	require.ErrorIs(t, err, convextypes.ErrMissingSchemaFile)
}
