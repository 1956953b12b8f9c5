package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/intent"
	"defi-nlu/internal/nlu/service"
	"defi-nlu/internal/nlu/snapshot"
)

// ==========================
// Test Helper Functions
// ==========================

var fastFlags = []string{"--epochs", "30", "--learning-rate", "0.5", "--log-level", "error"}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, fastFlags...))
	err := cmd.Execute()
	return out.String(), err
}

func decodeLines[T any](t *testing.T, out string) []T {
	t.Helper()
	var items []T
	sc := bufio.NewScanner(bytes.NewBufferString(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var item T
		require.NoError(t, json.Unmarshal(sc.Bytes(), &item), sc.Text())
		items = append(items, item)
	}
	require.NoError(t, sc.Err())
	return items
}

// ==========================
// Command Tests
// ==========================

func TestCorpusCmd(t *testing.T) {
	out, err := runCmd(t, "corpus", "--base", "--intent", "balance")
	require.NoError(t, err)

	examples := decodeLines[corpus.Example](t, out)
	require.NotEmpty(t, examples)
	for _, ex := range examples {
		assert.Equal(t, intent.Balance, ex.Intent)
		assert.False(t, ex.Augmented)
	}

	out, err = runCmd(t, "corpus", "--typo-rate", "1")
	require.NoError(t, err)
	var augmented int
	for _, ex := range decodeLines[corpus.Example](t, out) {
		if ex.Augmented {
			augmented++
		}
	}
	assert.Positive(t, augmented)
}

func TestCorpusCmd_UnknownIntent(t *testing.T) {
	_, err := runCmd(t, "corpus", "--intent", "BUY_NFT")
	assert.ErrorIs(t, err, intent.ErrUnknownIntent)
}

func TestTrainCmd_WritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	out, err := runCmd(t, "train", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Model ID")
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	m, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Len(t, m.Classes(), intent.Count)
	assert.Contains(t, out, m.ID)
}

func TestEvalCmd(t *testing.T) {
	out, err := runCmd(t, "eval", "--confusion")
	require.NoError(t, err)

	assert.Contains(t, out, "keyword baseline")
	assert.Contains(t, out, "accuracy gain")
	assert.Contains(t, out, "STAKE_NATIVE")
	assert.Contains(t, out, "actual \\ predicted")
}

func TestClassifyCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	out, err := runCmd(t, "classify", "--model", path, "what is my balance", "")
	require.NoError(t, err)

	results := decodeLines[service.Result](t, out)
	require.Len(t, results, 2)
	assert.Equal(t, "what is my balance", results[0].OriginalText)
	assert.Equal(t, intent.Balance, results[0].Intent)
	assert.True(t, results[0].Valid)
	assert.Equal(t, "", results[1].OriginalText)

	// the first run trains and persists; the second loads the same model
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = runCmd(t, "classify", "--model", path, "stake 5 sol")
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero epochs", []string{"train", "--epochs", "0"}},
		{"typo rate above one", []string{"corpus", "--typo-rate", "1.5"}},
		{"test fraction of one", []string{"eval", "--test-fraction", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid flags")
		})
	}
}

func TestClassifyCmd_RequiresText(t *testing.T) {
	_, err := runCmd(t, "classify")
	assert.Error(t, err)
}

func TestActivitiesCmd(t *testing.T) {
	out, err := runCmd(t, "activities", "--registry", filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "parse-user-intent")
	assert.Contains(t, out, "route-chat-command")
	assert.Contains(t, out, "llm-synthesis")

	_, err = runCmd(t, "activities", "--registry", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
