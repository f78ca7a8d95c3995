package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git1file/git1file/am"
)

var (
	rootOnce sync.Once
	testRoot *cobra.Command
)

// newTestRoot isolates config loading in temp dirs and returns a root
// carrying the global flags the commands read. Flag values left by earlier
// tests are reset.
func newTestRoot(t *testing.T) *cobra.Command {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	am.Reset()
	t.Cleanup(am.Reset)

	rootOnce.Do(func() {
		testRoot = &cobra.Command{Use: "git1file", SilenceUsage: true, SilenceErrors: true}
		testRoot.PersistentFlags().Bool("json", false, "")
		testRoot.PersistentFlags().String("url", "", "")
		testRoot.AddCommand(AmCmd, HealthCmd, IngestCmd, StatsCmd, VersionCmd)
	})
	resetFlags(testRoot)
	return testRoot
}

// resetFlags undoes flag values left by earlier executions
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(root *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeIngestService serves the ingestion API under /api/v1
func fakeIngestService(t *testing.T) (*httptest.Server, *[]map[string]interface{}) {
	t.Helper()
	var bodies []map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"total_files":12,"total_characters":2048,"languages":[{"name":"Go","files":10}],"markdown_files":2,"markdown_characters":300,"git_branch":"main","git_commit":"0123456789abcdef"}`)
	})
	mux.HandleFunc("/api/v1/ingest", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		if body["source"] == "too/large" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail":"Repository too large"}`)
			return
		}
		_, _ = io.WriteString(w, "flattened "+body["source"].(string))
	})
	mux.HandleFunc("/api/v1/ingest/markdown", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "# README")
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"healthy","version":"1.2.0"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func TestIngest_PrintsOutput(t *testing.T) {
	srv, bodies := fakeIngestService(t)
	root := newTestRoot(t)

	stdout, stderr, err := execute(root, "ingest", "github.com/user/repo", "--url", srv.URL+"/api/v1", "--format", "markdown", "--include-markdown")
	require.NoError(t, err)

	assert.Contains(t, stdout, "flattened github.com/user/repo")
	assert.Contains(t, stderr, "Estimated tokens")

	require.Len(t, *bodies, 1)
	body := (*bodies)[0]
	assert.Equal(t, "markdown", body["format"])
	assert.Equal(t, "smart", body["mode"])
	assert.Equal(t, true, body["include_markdown"])
	assert.Equal(t, true, body["compress"])
}

func TestIngest_SavesOutputAndMarkdown(t *testing.T) {
	srv, _ := fakeIngestService(t)
	root := newTestRoot(t)
	outDir := filepath.Join(t.TempDir(), "out")

	stdout, _, err := execute(root, "ingest", "github.com/user/repo.git", "--url", srv.URL+"/api/v1", "-f", "json", "-o", outDir, "--markdown", "-q")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "flattened")

	data, err := os.ReadFile(filepath.Join(outDir, "git1file-repo.json"))
	require.NoError(t, err)
	assert.Equal(t, "flattened github.com/user/repo.git", string(data))

	md, err := os.ReadFile(filepath.Join(outDir, "git1file-repo-markdown.md"))
	require.NoError(t, err)
	assert.Equal(t, "# README", string(md))

	leftovers, err := filepath.Glob(filepath.Join(outDir, ".git1file-export-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestIngest_ServiceErrorDetail(t *testing.T) {
	srv, _ := fakeIngestService(t)
	root := newTestRoot(t)

	_, stderr, err := execute(root, "ingest", "too/large", "--url", srv.URL+"/api/v1")
	require.Error(t, err)
	assert.Equal(t, "Repository too large", err.Error())
	assert.Contains(t, stderr, "Repository too large")
}

func TestIngest_JSON(t *testing.T) {
	srv, _ := fakeIngestService(t)
	root := newTestRoot(t)

	stdout, _, err := execute(root, "ingest", "github.com/user/repo", "--url", srv.URL+"/api/v1", "--json")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "git1file-repo.txt", doc["filename"])
	assert.Equal(t, "flattened github.com/user/repo", doc["content"])
}

func TestIngest_InvalidURL(t *testing.T) {
	root := newTestRoot(t)

	_, _, err := execute(root, "ingest", "repo", "--url", "ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --url")
}

func TestStats_JSON(t *testing.T) {
	srv, _ := fakeIngestService(t)
	root := newTestRoot(t)

	stdout, _, err := execute(root, "stats", "github.com/user/repo", "--url", srv.URL+"/api/v1", "--json")
	require.NoError(t, err)

	var doc struct {
		Stats struct {
			TotalFiles int `json:"total_files"`
		} `json:"stats"`
		Cards []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, 12, doc.Stats.TotalFiles)
	require.NotEmpty(t, doc.Cards)
	assert.Equal(t, "12", doc.Cards[0].Value)
}

func TestStats_Table(t *testing.T) {
	srv, _ := fakeIngestService(t)
	root := newTestRoot(t)

	stdout, _, err := execute(root, "stats", "github.com/user/repo", "--url", srv.URL+"/api/v1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Branch")
	assert.Contains(t, stdout, "0123456")
}

func TestHealth(t *testing.T) {
	srv, _ := fakeIngestService(t)
	root := newTestRoot(t)

	stdout, _, err := execute(root, "health", "--url", srv.URL+"/api/v1", "--json")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "healthy", doc["status"])
	assert.Equal(t, true, doc["compatible"])
}

func TestHealth_IncompatibleVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"healthy","version":"3.0.0"}`)
	}))
	defer srv.Close()
	root := newTestRoot(t)

	_, _, err := execute(root, "health", "--url", srv.URL+"/api/v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestAm_InitShowGet(t *testing.T) {
	root := newTestRoot(t)

	stdout, _, err := execute(root, "am", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, am.ProjectConfigName)
	_, err = os.Stat(am.ProjectConfigName)
	require.NoError(t, err)

	_, _, err = execute(root, "am", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	am.Reset()
	stdout, _, err = execute(root, "am", "show", "--format", "json")
	require.NoError(t, err)
	var cfg am.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, am.DefaultBaseURL, cfg.Service.BaseURL)

	stdout, _, err = execute(root, "am", "get", "preview.debounce_ms")
	require.NoError(t, err)
	assert.Equal(t, "500\n", stdout)

	_, _, err = execute(root, "am", "get", "no.such.key")
	assert.Error(t, err)
}

func TestAm_Where(t *testing.T) {
	root := newTestRoot(t)
	require.NoError(t, os.WriteFile(am.ProjectConfigName, []byte("[preview]\ndebounce_ms = 200\n"), 0644))

	stdout, _, err := execute(root, "am", "where")
	require.NoError(t, err)
	assert.Contains(t, stdout, "loaded")
	assert.Contains(t, stdout, am.ProjectConfigName)
	assert.Contains(t, stdout, "missing")
}

func TestAm_ShowUnsupportedFormat(t *testing.T) {
	root := newTestRoot(t)

	_, _, err := execute(root, "am", "show", "--format", "ini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestVersion_JSON(t *testing.T) {
	root := newTestRoot(t)

	stdout, _, err := execute(root, "version", "--json")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Contains(t, doc, "go_version")
}
