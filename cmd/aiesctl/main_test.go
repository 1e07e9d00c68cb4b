package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aiesociety/aiesweb/internal/app/system/auth"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/aiesociety/aiesweb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHashPassword_FromArg(t *testing.T) {
	out, err := run(t, "", "hash-password", "--cost", "4", "s3cret!")
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(strings.TrimSpace(out), "s3cret!"))
}

func TestHashPassword_FromStdin(t *testing.T) {
	out, err := run(t, "from-stdin\n", "hash-password", "--cost", "4")
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword(strings.TrimSpace(out), "from-stdin"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := run(t, "\n", "hash-password", "--cost", "4")
	assert.ErrorContains(t, err, "password is empty")
}

func TestCounters_SetThenGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	conn := []string{"--mongo-uri", testutil.MongoURI(), "--database", db.Name()}

	_, err := run(t, "", append([]string{"counters", "set", "--members", "10", "--projects", "2", "--journals", "3", "--subscribers", "40"}, conn...)...)
	require.NoError(t, err)

	out, err := run(t, "", append([]string{"counters", "get"}, conn...)...)
	require.NoError(t, err)
	var got models.Counters
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 10, got.Members)
	assert.Equal(t, 40, got.Subscribers)
}

func TestCounters_SetRejectsNegative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, err := run(t, "", "counters", "set", "--members", "-1",
		"--mongo-uri", testutil.MongoURI(), "--database", db.Name())
	assert.Error(t, err)
}

func TestImportPapers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	path := filepath.Join(t.TempDir(), "papers.csv")
	csv := "paperTitle,authorName,journalName,volumeIssue,link,image\n" +
		"Attention Is All You Need,Vaswani et al.,NeurIPS,30,https://papers.example.org/attention,\n" +
		"Deep Residual Learning,He et al.,CVPR,2016,https://papers.example.org/resnet,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out, err := run(t, "", "import-papers", path, "--mongo-uri", testutil.MongoURI(), "--database", db.Name())
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 papers")

	ctx, cancel := testutil.TestContext()
	defer cancel()
	assert.Equal(t, int64(2), testutil.NewFixtures(t, db).Count(ctx, models.KindPaper.Collection()))
}
