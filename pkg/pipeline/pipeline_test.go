package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-astopo/pkg/config"
	"github.com/dd0wney/cluso-astopo/pkg/export"
	"github.com/dd0wney/cluso-astopo/pkg/records"
	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// scenarioConfig writes the three-node provider/peer datasets
func scenarioConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Inputs.Classification = writeFile(t, dir, "classes.txt",
		"# format: as|source|type\n1|CAIDA_class|Transit/Access\n2|CAIDA_class|Content\n3|CAIDA_class|Enterprise\n")
	cfg.Inputs.Relationships = writeFile(t, dir, "rels.txt",
		"# inferred\n1|2|-1\n1|3|-1\n2|3|0\n")
	cfg.Inputs.Prefix2ASv4 = writeFile(t, dir, "pfx4.txt",
		"10.0.0.0\t24\t2\n10.0.1.0\t24\t3\n")
	cfg.Inputs.Prefix2ASv6 = writeFile(t, dir, "pfx6.txt", "")
	cfg.Report.Format = config.FormatJSON
	return cfg
}

func testDeps(stdout *bytes.Buffer) Deps {
	return Deps{
		Stdout:   stdout,
		Now:      fixedNow,
		NewRunID: func() string { return "run-1" },
	}
}

type fakeUploader struct {
	path       string
	compressed bool
	err        error
}

func (f *fakeUploader) Upload(ctx context.Context, path string, compressed bool) error {
	f.path = path
	f.compressed = compressed
	return f.err
}

func (f *fakeUploader) Location() string { return "s3://bucket/key" }

func TestAnalyze_Scenario(t *testing.T) {
	cfg := scenarioConfig(t)

	res, err := Analyze(context.Background(), cfg, testDeps(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 3, res.Graph.Len())

	one, err := res.Graph.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 3, one.ConeSize)
	assert.Equal(t, 2, one.PrefixOutreach)
	assert.Equal(t, 512.0, one.IPv4Outreach)

	two, err := res.Graph.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 1, two.ConeSize, "peers are not part of the cone")

	assert.Equal(t, []topology.ASN{1, 2, 3}, res.Tier1.ASNs())
	assert.Equal(t, topology.ASN(1), res.Rankings.ByCone[0].ASN)
	assert.NotNil(t, res.Distributions)

	assert.Equal(t, 4, res.Streams[records.StreamRelationships].Lines)
	assert.Equal(t, 3, res.Streams[records.StreamRelationships].Records)
	assert.Equal(t, 0, res.NamedOrgs)
}

func TestAnalyze_ParallelMatchesSequential(t *testing.T) {
	cfg := scenarioConfig(t)
	seq, err := Analyze(context.Background(), cfg, testDeps(&bytes.Buffer{}))
	require.NoError(t, err)

	cfg.Cone.Workers = 4
	cfg.Cone.ChunkSize = 1
	par, err := Analyze(context.Background(), cfg, testDeps(&bytes.Buffer{}))
	require.NoError(t, err)

	for _, n := range seq.Graph.Nodes() {
		other, err := par.Graph.Get(n.ASN)
		require.NoError(t, err)
		assert.Equal(t, n.ConeSize, other.ConeSize, "cone of %s", n.ASN)
		assert.Equal(t, n.IPv4Outreach, other.IPv4Outreach, "outreach of %s", n.ASN)
	}
}

func TestAnalyze_MissingSourceIsFatal(t *testing.T) {
	cfg := scenarioConfig(t)
	cfg.Inputs.Relationships = filepath.Join(t.TempDir(), "absent.txt")

	_, err := Analyze(context.Background(), cfg, testDeps(&bytes.Buffer{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestAnalyze_StrictRejectsMalformedLine(t *testing.T) {
	cfg := scenarioConfig(t)
	cfg.Inputs.Relationships = writeFile(t, t.TempDir(), "rels.txt", "1|2|-1\nbroken\n")
	cfg.Inputs.Strict = true

	_, err := Analyze(context.Background(), cfg, testDeps(&bytes.Buffer{}))
	var pe *records.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, records.StreamRelationships, pe.Stream)
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, scenarioConfig(t), testDeps(&bytes.Buffer{}))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyze_Organizations(t *testing.T) {
	cfg := scenarioConfig(t)
	dir := t.TempDir()
	cfg.Inputs.AS2Org = writeFile(t, dir, "as2org.txt",
		"# format:aut|changed|aut_name|org_id|opaque_id|source\n"+
			"1|20170128|ONE|ORG-ONE|x|ARIN\n"+
			"3|20170128|THREE|ORG-THREE|x|RIPE\n"+
			"99|20170128|UNRANKED|ORG-ONE|x|ARIN\n")
	cfg.Inputs.Organizations = writeFile(t, dir, "orgs.txt",
		"ORG-ONE|20170128|Org One|US|ARIN\nORG-THREE|20170128|Org Three|NL|RIPE\n")

	res, err := Analyze(context.Background(), cfg, testDeps(&bytes.Buffer{}))
	require.NoError(t, err)

	one, _ := res.Graph.Get(1)
	assert.Equal(t, "ORG-ONE", one.OrgID)
	assert.Equal(t, "Org One", one.OrgName)
	three, _ := res.Graph.Get(3)
	assert.Equal(t, "Org Three", three.OrgName)
	two, _ := res.Graph.Get(2)
	assert.Empty(t, two.OrgName)

	assert.Equal(t, 2, res.NamedOrgs)
	assert.Contains(t, res.Streams, records.StreamAS2Org)
	assert.Contains(t, res.Streams, records.StreamOrganizations)
}

func TestRun_WritesReportToStdout(t *testing.T) {
	var stdout bytes.Buffer
	_, err := Run(context.Background(), scenarioConfig(t), testDeps(&stdout))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Contains(t, decoded, "top_by_cone")
}

func TestRun_WritesOutputs(t *testing.T) {
	cfg := scenarioConfig(t)
	dir := t.TempDir()
	cfg.Report.Format = config.FormatLaTeX
	cfg.Report.Output = filepath.Join(dir, "report.tex")
	cfg.Export.Path = filepath.Join(dir, "nodes.ndjson.sz")
	cfg.Export.Compress = true
	cfg.Metrics.Textfile = filepath.Join(dir, "astopo.prom")

	var stdout bytes.Buffer
	_, err := Run(context.Background(), cfg, testDeps(&stdout))
	require.NoError(t, err)
	assert.Zero(t, stdout.Len(), "report goes to the output file")

	tex, err := os.ReadFile(cfg.Report.Output)
	require.NoError(t, err)
	assert.Contains(t, string(tex), `\\`)

	f, err := os.Open(cfg.Export.Path)
	require.NoError(t, err)
	defer f.Close()
	header, nodes, err := export.ReadNodes(f, true)
	require.NoError(t, err)
	assert.Equal(t, "run-1", header.RunID)
	assert.Len(t, nodes, 3)

	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "astopo_nodes_total 3")
	assert.Contains(t, string(prom), `astopo_phase_duration_seconds_count{phase="cones"} 1`)
}

func TestRun_UploadsExport(t *testing.T) {
	cfg := scenarioConfig(t)
	cfg.Export.Path = filepath.Join(t.TempDir(), "nodes.ndjson")
	cfg.Export.S3.Bucket = "bucket"
	cfg.Export.S3.Key = "key"

	uploader := &fakeUploader{}
	var got export.S3Options
	deps := testDeps(&bytes.Buffer{})
	deps.NewUploader = func(ctx context.Context, opts export.S3Options) (Uploader, error) {
		got = opts
		return uploader, nil
	}

	_, err := Run(context.Background(), cfg, deps)
	require.NoError(t, err)
	assert.Equal(t, "bucket", got.Bucket)
	assert.Equal(t, cfg.Export.Path, uploader.path)
	assert.False(t, uploader.compressed)
}

func TestRun_UploadFailure(t *testing.T) {
	cfg := scenarioConfig(t)
	cfg.Export.Path = filepath.Join(t.TempDir(), "nodes.ndjson")
	cfg.Export.S3.Bucket = "bucket"
	cfg.Export.S3.Key = "key"

	deps := testDeps(&bytes.Buffer{})
	deps.NewUploader = func(ctx context.Context, opts export.S3Options) (Uploader, error) {
		return &fakeUploader{err: errors.New("access denied")}, nil
	}

	_, err := Run(context.Background(), cfg, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export")
}

func TestRun_UnknownFormat(t *testing.T) {
	cfg := scenarioConfig(t)
	cfg.Report.Format = "yaml"

	_, err := Run(context.Background(), cfg, testDeps(&bytes.Buffer{}))
	assert.Error(t, err)
}
