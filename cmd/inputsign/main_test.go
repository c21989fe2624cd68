package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahdiidarabi/inputsign/internal/decode"
	"github.com/mahdiidarabi/inputsign/pkg/inputsign"
)

const (
	testTxHex = "0100000001c997a5e56e104102fa209c6a852dd90660a20b2d9c35" +
		"2423edce25857fcd37040000000000ffffffff0100ca9a3b000000001976" +
		"a9141234567890abcdef1234567890abcdef1234567888ac00000000"

	testKeyHex = "e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35"

	testScript = "dup hash160 [1234567890abcdef1234567890abcdef12345678] " +
		"equalverify checksig"
)

func runArgs(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin),
		&stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func expectedEndorsement(t *testing.T, hashType inputsign.SighashType) string {
	t.Helper()

	tx, err := decode.Transaction(testTxHex)
	require.NoError(t, err)
	key, err := decode.PrivateKey(testKeyHex)
	require.NoError(t, err)
	script, err := decode.Script(testScript)
	require.NoError(t, err)

	sig, err := inputsign.NewSigner().SignInput(&inputsign.Request{
		Tx:            tx,
		PrevoutScript: script,
		HashType:      hashType,
		PrivateKey:    key,
	})
	require.NoError(t, err)
	return hex.EncodeToString(sig) + "\n"
}

func TestRun_Sign(t *testing.T) {
	code, stdout, stderr := runArgs(t, "", "sign", testKeyHex, testScript,
		testTxHex)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Equal(t, expectedEndorsement(t, inputsign.SighashAll), stdout)
}

func TestRun_Sign_TransactionFromStdin(t *testing.T) {
	code, stdout, stderr := runArgs(t, testTxHex+"\n", "sign",
		"--sign_type=none|anyonecanpay", testKeyHex, testScript)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Equal(t, expectedEndorsement(t,
		inputsign.SighashNone|inputsign.SighashAnyoneCanPay), stdout)
}

func TestRun_Sign_Raw(t *testing.T) {
	code, stdout, _ := runArgs(t, "", "sign", "--raw", testKeyHex,
		testScript, testTxHex)
	require.Equal(t, 0, code)

	endorsement := expectedEndorsement(t, inputsign.SighashAll)
	assert.Equal(t, endorsement[:len(endorsement)-3]+"\n", stdout)
}

func TestRun_Sign_Failures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{{
		name: "index",
		args: []string{"sign", "-i", "1", testKeyHex, testScript, testTxHex},
		want: "The index does not refer to an existing input.\n",
	}, {
		name: "short nonce",
		args: []string{"sign", "-i", "1", "-n", "0102", testKeyHex,
			testScript, testTxHex},
		want: "The nonce is less than 128 bits long.\n",
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, stdout, stderr := runArgs(t, "", test.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Equal(t, test.want, stderr)
		})
	}
}

func TestRun_Sign_LongNonce(t *testing.T) {
	code, stdout, stderr := runArgs(t, "", "sign", "-n",
		strings.Repeat("ab", 65), testKeyHex, testScript, testTxHex)

	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.True(t, strings.HasSuffix(stdout, "01\n"))
	assert.NotEqual(t, expectedEndorsement(t, inputsign.SighashAll), stdout)
}

func TestRun_BadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"verify"}},
		{"missing script", []string{"sign", testKeyHex}},
		{"bad key", []string{"sign", "nope", testScript, testTxHex}},
		{"bad script", []string{"sign", testKeyHex, "dup frob", testTxHex}},
		{"bad sign type", []string{"sign", "-s", "most", testKeyHex,
			testScript, testTxHex}},
		{"bad transaction", []string{"sign", testKeyHex, testScript, "00"}},
		{"bad debug level", []string{"-d", "loud", "sign", testKeyHex,
			testScript, testTxHex}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, stdout, stderr := runArgs(t, "", test.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.NotEmpty(t, stderr)
		})
	}
}

func TestRun_Help(t *testing.T) {
	code, stdout, stderr := runArgs(t, "", "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")
	assert.Empty(t, stderr)
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputsign.conf")
	conf := "[Application Options]\ndebuglevel = loud\n"
	require.NoError(t, os.WriteFile(path, []byte(conf), 0600))

	code, _, _ := runArgs(t, "", "--configfile", path, "sign", testKeyHex,
		testScript, testTxHex)
	assert.Equal(t, 1, code)

	// The command line takes precedence over the file.
	code, _, _ = runArgs(t, "", "--configfile", path, "-d", "info", "sign",
		testKeyHex, testScript, testTxHex)
	assert.Equal(t, 0, code)

	code, _, _ = runArgs(t, "", "--configfile",
		filepath.Join(t.TempDir(), "missing.conf"), "sign", testKeyHex,
		testScript, testTxHex)
	assert.Equal(t, 1, code)
}

func TestRun_DebugLevelFromEnvironment(t *testing.T) {
	t.Setenv("INPUTSIGN_DEBUGLEVEL", "loud")

	code, _, _ := runArgs(t, "", "sign", testKeyHex, testScript, testTxHex)
	assert.Equal(t, 1, code)
}

func TestRun_Batch(t *testing.T) {
	jobs := filepath.Join("..", "..", "pkg", "inputsign", "testdata")

	for _, format := range []string{"json", "csv"} {
		t.Run(format, func(t *testing.T) {
			code, stdout, stderr := runArgs(t, "", "batch", "--format",
				format, "--workers", "2",
				filepath.Join(jobs, "jobs."+format))

			assert.Equal(t, 1, code)

			lines := strings.Split(strings.TrimSpace(stdout), "\n")
			require.Len(t, lines, 2)
			assert.Equal(t, "0 "+expectedEndorsement(t,
				inputsign.SighashAll), lines[0]+"\n")

			assert.Equal(t, "2 The index does not refer to an existing "+
				"input.\n3 The nonce is less than 128 bits long.\n",
				stderr)
		})
	}
}
