package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cinephile/internal/catalog"
	"cinephile/internal/config"
	"cinephile/internal/services"
	"cinephile/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("CINEPHILE_DATASET", "")
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Format = "discard"
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestPrepThenQuery(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCSV(t, env.cfg.Paths.MetadataCSV,
		[]string{"id", "title", "genres", "vote_average", "release_date", "overview"},
		[]string{"27205", "Inception", `[{'name': 'Action'}, {'name': 'Science Fiction'}]`, "8.8", "2010-07-15", "Dreams within dreams."},
		[]string{"157336", "Interstellar", `[{'name': 'Adventure'}, {'name': 'Drama'}]`, "8.6", "2014-11-05", "Space travel."},
	)
	testsupport.WriteCSV(t, env.cfg.Paths.CreditsCSV,
		[]string{"id", "cast", "crew"},
		[]string{"27205", `[{'name': 'Leonardo DiCaprio'}]`, `[{'job': 'Director', 'name': 'Christopher Nolan'}]`},
		[]string{"157336", `[{'name': 'Matthew McConaughey'}]`, `[{'job': 'Director', 'name': 'Christopher Nolan'}]`},
	)

	out, _, err := runCLI(t, []string{"prep"}, env.configPath)
	if err != nil {
		t.Fatalf("prep: %v", err)
	}
	requireContains(t, out, "2 written")

	out, _, err = runCLI(t, []string{"info", "Inception"}, env.configPath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	requireContains(t, out, "🎬 'Inception' (2010) — Action, Science Fiction")

	out, _, err = runCLI(t, []string{"compare", "Inception", "Interstelar"}, env.configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "Fun fact: both are by Christopher Nolan")
}

func TestQueryWithoutDatasetFails(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"info", "Inception"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing dataset error")
	}
	requireContains(t, err.Error(), "cinephile prep")
	if code := exitCode(err); code != exitFatal {
		t.Fatalf("missing dataset should exit %d, got %d", exitFatal, code)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"missing resource", services.Wrap(services.ErrNotFound, "catalog", "open", "dataset missing", nil), exitFatal},
		{"bad config", services.Wrap(services.ErrConfiguration, "config", "load", "bad bind", nil), exitFatal},
		{"upstream failure", services.Wrap(services.ErrExternal, "llm", "generate", "", errors.New("boom")), exitFailure},
		{"plain error", errors.New("usage"), exitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestRecommendSeededOutputIsStable(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCatalog(testsupport.SampleMovies()...))
	first, _, err := runCLI(t, []string{"recommend", "--seed", "9"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	second, _, err := runCLI(t, []string{"recommend", "--seed", "9"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if first != second {
		t.Fatalf("seeded output differs:\n%s\n---\n%s", first, second)
	}
	requireContains(t, first, "Here are some fresh picks:")
}

func TestRecommendJSON(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCatalog(testsupport.SampleMovies()...))
	out, _, err := runCLI(t, []string{"recommend", "--genre", "comedy", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var picks []catalog.MovieRecord
	if err := json.Unmarshal([]byte(out), &picks); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(picks) != 1 || picks[0].Title != "Paddington" {
		t.Fatalf("unexpected picks %+v", picks)
	}
}

func TestSearchAndList(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCatalog(testsupport.SampleMovies()...))
	out, _, err := runCLI(t, []string{"search", "Inceptoin"}, env.configPath)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "Inception")

	out, _, err = runCLI(t, []string{"list", "--genre", "drama"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "Interstellar")
	if strings.Contains(out, "Paddington") {
		t.Fatalf("genre filter ignored: %s", out)
	}
}

func TestTriviaWithoutKeyPrintsError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	env := setupCLITestEnv(t, testsupport.WithAPIKey(""))
	out, _, err := runCLI(t, []string{"trivia", "Heat"}, env.configPath)
	if err != nil {
		t.Fatalf("trivia should not fail: %v", err)
	}
	requireContains(t, out, "🎬 Here's a juicy secret about 'Heat': ❌ Error calling trivia service:")
}

func TestMoodsListing(t *testing.T) {
	out, _, err := runCLI(t, []string{"moods"}, "")
	if err != nil {
		t.Fatalf("moods: %v", err)
	}
	requireContains(t, out, "mind-bending")
	requireContains(t, out, "Mind-Bending")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Trivia cache is disabled")
}

func TestCacheStatsEnabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithTriviaCache())
	out, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries: 0")
}
