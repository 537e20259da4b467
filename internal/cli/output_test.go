package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristianJusjong/FishLog-sub000/internal/contest"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"contest": "jan-pike"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_FOUND", "contest not found", map[string]string{"id": "x"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "contest not found", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error("E001", "something broke", map[string]string{"k": "v"}))
	assert.Contains(t, buf.String(), "Error [E001]: something broke")
	assert.NotContains(t, buf.String(), "Details:")

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error("E001", "something broke", map[string]string{"k": "v"}))
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Render(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Render(42, func(w io.Writer) { fmt.Fprint(w, "forty-two") }))
	assert.Equal(t, "forty-two", buf.String())

	buf.Reset()
	formatter.Format = "json"
	require.NoError(t, formatter.Render(42, func(w io.Writer) { fmt.Fprint(w, "forty-two") }))
	assert.JSONEq(t, `{"status":"ok","data":42}`, buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			diag := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: diag,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Processing %s", "contest.yaml")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, diag.String(), "Processing contest.yaml")
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error", NewExitError(ExitCommandError, "bad"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ExitFailure, "x")), ExitFailure},
		{"not found", contest.NewContestNotFound("c"), ExitNotFound},
		{"invalid decision", contest.NewInvalidDecision("no reason"), ExitInvalidDecision},
		{"store unavailable", contest.NewStoreUnavailable("append", errors.New("disk full")), ExitStoreUnavailable},
		{"plain error", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Fail(contest.NewCatchNotFound("ghost"), ErrCodeGeneric, ExitFailure, nil)
	assert.Equal(t, ExitNotFound, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	buf.Reset()
	err = formatter.Fail(errors.New("bad flag"), ErrCodeInvalidArg, ExitCommandError, nil)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, ErrCodeInvalidArg, resp.Error.Code)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.True(t, exitErr.reported)
}
