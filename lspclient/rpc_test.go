package lspclient

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFrameThenReadFrameRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	require.NoError(t, writeFrame(&buf, payload))

	got, err := readFrame(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestReadFrameMultipleHeaderLinesIgnoresUnknown(t *testing.T) {
	raw := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\nContent-Length: 2\r\n\r\n{}"
	got, err := readFrame(bufio.NewReader(bytes.NewBufferString(raw)))
	require.NoError(t, err)
	require.Equal(t, []byte("{}"), got)
}

func TestReadFrameMissingContentLengthErrors(t *testing.T) {
	raw := "Content-Type: application/vscode-jsonrpc\r\n\r\n{}"
	_, err := readFrame(bufio.NewReader(bytes.NewBufferString(raw)))
	require.Error(t, err)
}

func TestReadFrameTwoFramesInSequence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte(`{"a":1}`)))
	require.NoError(t, writeFrame(&buf, []byte(`{"b":2}`)))

	r := bufio.NewReader(&buf)
	first, err := readFrame(r)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(first))

	second, err := readFrame(r)
	require.NoError(t, err)
	require.Equal(t, `{"b":2}`, string(second))
}
