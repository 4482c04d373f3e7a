package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	idx := 3
	req := Request{Op: OpAddToList, DB: "d", List: "l", Index: &idx, Value: "v"}

	require.NoError(t, WriteRequest(&buf, req))
	got, err := ReadRequest(&buf)
	require.NoError(t, err)

	require.Equal(t, req.Op, got.Op)
	require.Equal(t, req.DB, got.DB)
	require.Equal(t, req.List, got.List)
	require.Equal(t, req.Value, got.Value)
	require.NotNil(t, got.Index)
	require.Equal(t, 3, *got.Index)
}

func TestResponseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	resp := Reply("42")
	require.NoError(t, WriteResponse(&buf, resp))
	got, err := ReadResponse(&buf)
	require.NoError(t, err)
	require.Equal(t, resp, got)
}

func TestFrameTooLargeRejected(t *testing.T) {
	var buf bytes.Buffer
	big := make([]byte, MaxFrameSize+1)
	require.ErrorIs(t, WriteFrame(&buf, big), ErrFrameTooLarge)
}

func TestStreamItemEndErrorTagsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStreamItem(&buf, StreamItem{Key: "k", Value: "v"}))
	frame, err := ReadStreamFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, StreamTagItem, frame.Tag)
	require.Equal(t, "k", frame.Item.Key)
	require.Equal(t, "v", frame.Item.Value)

	buf.Reset()
	require.NoError(t, WriteStreamEnd(&buf, NoData()))
	frame, err = ReadStreamFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, StreamTagEnd, frame.Tag)
	require.Equal(t, KindSuccessNoData, frame.Final.Kind)

	buf.Reset()
	require.NoError(t, WriteStreamErr(&buf, ErrListNotFound))
	frame, err = ReadStreamFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, StreamTagError, frame.Tag)
	require.Equal(t, KindError, frame.Final.Kind)
	require.Equal(t, ErrListNotFound, frame.Final.Error)
}
