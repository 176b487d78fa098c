package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-astopo/pkg/config"
)

func writeInputs(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"classes.txt": "1|CAIDA_class|Transit/Access\n2|CAIDA_class|Content\n3|CAIDA_class|Enterprise\n",
		"rels.txt":    "1|2|-1\n1|3|-1\n2|3|0\n",
		"pfx4.txt":    "10.0.0.0\t24\t2\n10.0.1.0\t24\t3\n",
		"pfx6.txt":    "2001:db8::\t32\t3\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return []string{
		"--classification", filepath.Join(dir, "classes.txt"),
		"--relationships", filepath.Join(dir, "rels.txt"),
		"--prefix2as-v4", filepath.Join(dir, "pfx4.txt"),
		"--prefix2as-v6", filepath.Join(dir, "pfx6.txt"),
	}
}

func TestFlagOverrides(t *testing.T) {
	args := append(writeInputs(t), "--top", "5", "--max-rejections", "0", "--workers", "2", "--strict")
	require.NoError(t, rootCmd.ParseFlags(args))

	cfg := config.Default()
	overrides.apply(rootCmd, cfg)

	assert.Equal(t, 5, cfg.Ranking.TopN)
	assert.Equal(t, 0, cfg.Tier1.MaxRejections)
	assert.Equal(t, 2, cfg.Cone.Workers)
	assert.True(t, cfg.Inputs.Strict)
	assert.Equal(t, "INFO", cfg.Log.Level, "unset flags keep the config value")
	assert.NoError(t, cfg.Validate())
}

func TestRunCommand_JSONReport(t *testing.T) {
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	defer rootCmd.SetOut(nil)

	args := append([]string{"run", "--format", "json", "--no-progress", "--log-level", "ERROR"}, writeInputs(t)...)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())

	var decoded struct {
		TopByCone []struct {
			ASN      int64 `json:"asn"`
			ConeSize int   `json:"cone_size"`
		} `json:"top_by_cone"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	require.NotEmpty(t, decoded.TopByCone)
	assert.Equal(t, int64(1), decoded.TopByCone[0].ASN)
	assert.Equal(t, 3, decoded.TopByCone[0].ConeSize)
}

func TestRunCommand_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetArgs([]string{"run", "--no-progress",
		"--classification", filepath.Join(dir, "absent.txt"),
		"--relationships", filepath.Join(dir, "absent.txt"),
		"--prefix2as-v4", filepath.Join(dir, "absent.txt"),
		"--prefix2as-v6", filepath.Join(dir, "absent.txt"),
	})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
