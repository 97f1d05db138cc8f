package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"hostset/internal/domain"
	"hostset/internal/registry"
)

func newTestGRPCHolder(t *testing.T) *registry.Holder {
	t.Helper()
	reg := domain.NewRegistry()
	for _, e := range []string{".blocked.com", "exact.org", ".a.example.net", "b.example.net"} {
		require.NoError(t, reg.Domains.Add(e, e[0] == '.', "test"))
	}
	reg.Version = 1

	h := registry.NewHolder()
	h.Set(reg)
	return h
}

func startTestGRPCServer(t *testing.T, holder *registry.Holder) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer(holder)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.GracefulStop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn)
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestGRPCCheck(t *testing.T) {
	client := startTestGRPCServer(t, newTestGRPCHolder(t))
	ctx := testContext(t)

	for url, want := range map[string]bool{
		"https://blocked.com":            true,
		"http://cdn.blocked.com/a.js":    true,
		"exact.org":                      true,
		"https://sub.exact.org":          false,
		"https://notblocked.com":         false,
		"https://user@BLOCKED.com:8443/": true,
	} {
		got, err := client.Check(ctx, url)
		require.NoError(t, err, url)
		assert.Equal(t, want, got, url)
	}
}

func TestGRPCCheck_InvalidArgument(t *testing.T) {
	client := startTestGRPCServer(t, newTestGRPCHolder(t))
	ctx := testContext(t)

	for _, url := range []string{"", "   ", "ftp://blocked.com"} {
		_, err := client.Check(ctx, url)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), url)
	}
}

func TestGRPCFindAndExport(t *testing.T) {
	client := startTestGRPCServer(t, newTestGRPCHolder(t))
	ctx := testContext(t)

	got, err := client.Find(ctx, "example.net")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".a.example.net", "b.example.net"}, got)

	got, err = client.Find(ctx, "nothing.io")
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := client.Export(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".blocked.com", "exact.org", ".a.example.net", "b.example.net"}, all)
}

func TestGRPC_NotReady(t *testing.T) {
	client := startTestGRPCServer(t, registry.NewHolder())
	ctx := testContext(t)

	_, err := client.Check(ctx, "https://blocked.com")
	assert.Equal(t, codes.Unavailable, status.Code(err))

	_, err = client.Export(ctx)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
