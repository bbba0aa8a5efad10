package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vdavid/mailthread/internal/config"
	"github.com/vdavid/mailthread/internal/models"
)

const mailbox = `[
  {"message_id_header": "<a@x>", "subject": "Plans", "imap_folder_name": "INBOX", "imap_uid": 11},
  {"message_id_header": "<b@x>", "subject": "Re: Plans", "references": ["<a@x>"], "imap_folder_name": "INBOX", "imap_uid": 12},
  {"message_id_header": "<c@x>", "subject": "Re: Plans", "in_reply_to": "<a@x>", "imap_folder_name": "INBOX", "imap_uid": 13},
  {"message_id_header": "<d@x>", "subject": "Lunch", "imap_folder_name": "INBOX", "imap_uid": 14},
  {"message_id_header": "<e@x>", "subject": "Lunch", "imap_folder_name": "INBOX", "imap_uid": 15}
]`

func defaultConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Algorithm:   config.AlgorithmReferences,
		InsistOnRe:  true,
	}
}

func runThreader(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, args, strings.NewReader(mailbox), &out)
	return out.String(), err
}

func TestRun_IMAPFormat(t *testing.T) {
	out, err := runThreader(t, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "(1(2)(3))(4)(5)\n", out)
}

func TestRun_Flags(t *testing.T) {
	t.Run("uid", func(t *testing.T) {
		out, err := runThreader(t, defaultConfig(), "-uid")
		require.NoError(t, err)
		assert.Equal(t, "(11(12)(13))(14)(15)\n", out)
	})

	t.Run("insist on re disabled groups same subjects", func(t *testing.T) {
		out, err := runThreader(t, defaultConfig(), "-insist-on-re=false")
		require.NoError(t, err)
		assert.Equal(t, "(1(2)(3))(4 5)\n", out)
	})

	t.Run("config supplies defaults", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.UseUID = true
		out, err := runThreader(t, cfg)
		require.NoError(t, err)
		assert.Equal(t, "(11(12)(13))(14)(15)\n", out)
	})

	t.Run("allow list", func(t *testing.T) {
		out, err := runThreader(t, defaultConfig(), "-allow", "1, 3,5")
		require.NoError(t, err)
		assert.Equal(t, "(1 3)(5)\n", out)
	})

	t.Run("ordered subject", func(t *testing.T) {
		out, err := runThreader(t, defaultConfig(), "-algorithm", "orderedsubject")
		require.NoError(t, err)
		assert.Equal(t, "(1(2)(3))(4 5)\n", out)
	})
}

func TestRun_UIDFlagWithoutUIDs(t *testing.T) {
	var out bytes.Buffer
	input := `[{"message_id_header": "<a@x>", "subject": "Plans"}, {"message_id_header": "<b@x>", "references": ["<a@x>"]}]`
	err := run(context.Background(), defaultConfig(), []string{"-uid"}, strings.NewReader(input), &out)
	require.NoError(t, err)
	assert.Equal(t, "(1 2)\n", out.String())
}

func TestRun_TreeFormat(t *testing.T) {
	out, err := runThreader(t, defaultConfig(), "-format", "tree")
	require.NoError(t, err)

	expected := strings.Join([]string{
		"INBOX:1 Plans",
		"  INBOX:2 Re: Plans",
		"  INBOX:3 Re: Plans",
		"INBOX:4 Lunch",
		"INBOX:5 Lunch",
		"",
	}, "\n")
	assert.Equal(t, expected, out)
}

func TestRun_JSONFormat(t *testing.T) {
	out, err := runThreader(t, defaultConfig(), "-format", "json")
	require.NoError(t, err)

	var threads []models.Thread
	require.NoError(t, json.Unmarshal([]byte(out), &threads))
	require.Len(t, threads, 3)
	assert.Equal(t, "<a@x>", threads[0].StableThreadID)
	assert.Equal(t, 3, threads[0].MessageCount)
	assert.Equal(t, "Lunch", threads[1].Subject)
}

func TestRun_InputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, os.WriteFile(path, []byte(mailbox), 0o600))

	var out bytes.Buffer
	err := run(context.Background(), defaultConfig(), []string{path}, strings.NewReader("not read"), &out)
	require.NoError(t, err)
	assert.Equal(t, "(1(2)(3))(4)(5)\n", out.String())
}

func TestRun_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), defaultConfig(), nil, strings.NewReader("[]"), &out)
	require.NoError(t, err)
	assert.Equal(t, "\n", out.String())
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		input  string
		errMsg string
	}{
		{name: "bad format", args: []string{"-format", "xml"}, input: "[]", errMsg: `unknown format "xml"`},
		{name: "bad allow", args: []string{"-allow", "1,x"}, input: "[]", errMsg: `invalid message number "x" in -allow`},
		{name: "bad algorithm", args: []string{"-algorithm", "bogus"}, input: "[]", errMsg: "unsupported threading algorithm"},
		{name: "too many files", args: []string{"a.json", "b.json"}, input: "[]", errMsg: "expected at most one input file"},
		{name: "missing file", args: []string{filepath.Join(os.TempDir(), "no-such-threader-input.json")}, errMsg: "failed to open input"},
		{name: "bad json", input: "{", errMsg: "failed to decode messages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(context.Background(), defaultConfig(), tt.args, strings.NewReader(tt.input), &out)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestReadMessages_KeepsSequenceNumbers(t *testing.T) {
	records, err := readMessages(strings.NewReader(`[{"message_id_header": "<a@x>", "seq_num": 42}, null, {"message_id_header": "<b@x>"}]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint32(42), records[0].(*models.Message).SeqNum)
	assert.Equal(t, uint32(3), records[1].(*models.Message).SeqNum)
}
