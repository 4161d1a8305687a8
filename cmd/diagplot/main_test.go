package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/diagplot/core/model"
	"github.com/YuminosukeSato/diagplot/pkg/log"
)

// writeDataset writes a small regression table with an id column and a
// class column separable on x1.
func writeDataset(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,x1,x2,class,y\n")
	for i := 0; i < 30; i++ {
		x1 := float64(i)
		x2 := float64((i * 7) % 5)
		class := 0
		if i >= 15 {
			class = 1
		}
		y := 2 + 0.8*x1 - x2 + 0.4*math.Sin(float64(i))
		fmt.Fprintf(&b, "r%d,%g,%g,%d,%g\n", i+1, x1, x2, class, y)
	}
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRender_StaticFile(t *testing.T) {
	data := writeDataset(t)
	out := filepath.Join(t.TempDir(), "charts", "cooks.svg")

	logs, err := run(t, "render", "-d", data, "--id-column", "id", "-m", "lm",
		"-k", "cooks", "-o", out, "--create-dir")
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<svg")
	assert.Contains(t, logs, "fitted model")
	assert.Contains(t, logs, "r2=")
	assert.Contains(t, logs, "rmse=")
	assert.Contains(t, logs, "mae=")
	assert.Contains(t, logs, "saved chart")
}

func TestRender_HTML(t *testing.T) {
	data := writeDataset(t)
	out := filepath.Join(t.TempDir(), "boundary.html")

	_, err := run(t, "render", "-q", "-d", data, "--id-column", "id", "--response", "class",
		"-m", "svm", "-k", "decision_boundary", "--grid-resolution", "25", "--html", out)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Decision Boundary")
}

func TestRender_Errors(t *testing.T) {
	data := writeDataset(t)

	_, err := run(t, "render", "-q")
	assert.ErrorContains(t, err, "--data")

	_, err = run(t, "render", "-q", "-d", data, "--id-column", "id", "-m", "mixed")
	assert.Error(t, err)

	_, err = run(t, "render", "-q", "-d", data, "--id-column", "id", "-k", "banana")
	assert.Error(t, err)

	_, err = run(t, "render", "-q", "-d", data, "--id-column", "id", "--size", "10")
	assert.Error(t, err)
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv(envKind, "qq")
	t.Setenv(envColor, "red")

	cmd := newRootCmd()
	kind, err := cmd.PersistentFlags().GetString("kind")
	require.NoError(t, err)
	assert.Equal(t, "qq", kind)
	color, err := cmd.PersistentFlags().GetString("color")
	require.NoError(t, err)
	assert.Equal(t, "red", color)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DIAGPLOT_SIZE=8x4\n"), 0o644))
	t.Setenv(envSize, "")
	os.Unsetenv(envSize)

	require.NoError(t, loadEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "8x4", envOr(envSize, "10x6"))
}

func TestNewEstimator(t *testing.T) {
	for _, f := range model.Families() {
		est, err := newEstimator(f, false, 1)
		if f == model.FamilyMixedEffects {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err, f.String())
		member, ok := est.(model.FamilyMember)
		require.True(t, ok)
		assert.Equal(t, f, member.Family())
	}
}

func TestRouter(t *testing.T) {
	o := &options{
		data:     writeDataset(t),
		family:   "linear",
		idColumn: "id",
		kind:     "residual",
		size:     "6x4",
		color:    "blue",
		quiet:    true,
	}
	logger, _ := log.NewTestLogger(log.LevelInfo)
	fm, err := o.fit(logger)
	require.NoError(t, err)
	srv := httptest.NewServer(newRouter(o, fm, logger))
	defer srv.Close()

	get := func(path string) (*http.Response, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body bytes.Buffer
		_, err = body.ReadFrom(resp.Body)
		require.NoError(t, err)
		return resp, body.String()
	}

	resp, body := get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)

	resp, body = get("/charts")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Family string   `json:"family"`
		Kinds  []string `json:"kinds"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &listing))
	assert.Equal(t, "linear", listing.Family)
	assert.Len(t, listing.Kinds, 6)

	resp, body = get("/charts/qq?title=Tails")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Tails")

	resp, _ = get("/charts/banana")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get("/charts/decision_boundary")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get("/charts/cooks?size=0x4")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get("/charts/cooks?feature=x")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Contains(t, logger.Messages(), "fitted model")
}
