package zfs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

// fakeTransport is a test double for transport.Transport, grounded on the
// abstract transport contract in §9 ("any transport satisfying these
// contracts ... should compose").
type fakeTransport struct {
	collect func(args []string) (int, []byte, []byte, error)
}

func (f *fakeTransport) RunCollect(_ context.Context, _ transport.Endpoint, args []string) (int, []byte, []byte, error) {
	return f.collect(args)
}

func (f *fakeTransport) RunStatus(ctx context.Context, ep transport.Endpoint, args []string) (int, error) {
	code, _, _, err := f.collect(args)
	return code, err
}

func (f *fakeTransport) RunStreamed(context.Context, transport.Endpoint, []string) (*transport.Stream, error) {
	panic("not used in this test")
}

func TestEstimateSendSizeParsesSizeLine(t *testing.T) {
	tcs := []struct {
		name    string
		stdout  string
		want    uint64
		wantErr bool
	}{
		{
			name: "ok",
			stdout: "incremental\tpool/x@a\tpool/x@b\n" +
				"size\t4096\n",
			want: 4096,
		},
		{
			name:    "missing size line",
			stdout:  "incremental\tpool/x@a\tpool/x@b\n",
			wantErr: true,
		},
		{
			name:    "malformed size line",
			stdout:  "size\tnotanumber\n",
			wantErr: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeTransport{collect: func(args []string) (int, []byte, []byte, error) {
				return 0, []byte(tc.stdout), nil, nil
			}}
			k := zfs.NewToolkit(ft)

			got, err := k.EstimateSendSize(context.Background(), transport.Endpoint{}, "a", "b")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestListSnapshotsSkipsHeader(t *testing.T) {
	ft := &fakeTransport{collect: func(args []string) (int, []byte, []byte, error) {
		return 0, []byte("NAME\npool/x@brig-20240101000000\npool/x@brig-20240102000000\n"), nil, nil
	}}
	k := zfs.NewToolkit(ft)

	got, err := k.ListSnapshotsDesc(context.Background(), transport.Endpoint{}, "pool", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"pool/x@brig-20240101000000", "pool/x@brig-20240102000000"}, got)
}

func TestListSnapshotsEmptyIsNoSnapshotsFound(t *testing.T) {
	ft := &fakeTransport{collect: func(args []string) (int, []byte, []byte, error) {
		return 0, []byte(""), nil, nil
	}}
	k := zfs.NewToolkit(ft)

	_, err := k.ListSnapshotsDesc(context.Background(), transport.Endpoint{}, "pool", "x")
	assert.Error(t, err)
}

func TestTagOf(t *testing.T) {
	assert.Equal(t, "brig-20240101000000", zfs.TagOf("pool/x@brig-20240101000000"))
	assert.Equal(t, "nodelimiter", zfs.TagOf("nodelimiter"))
}

func TestListSnapshotsStderrIsZfsCommandError(t *testing.T) {
	ft := &fakeTransport{collect: func(args []string) (int, []byte, []byte, error) {
		return 1, nil, []byte("dataset does not exist"), nil
	}}
	k := zfs.NewToolkit(ft)

	_, err := k.ListSnapshotsAsc(context.Background(), transport.Endpoint{}, "pool", "x")
	assert.Error(t, err)
}
