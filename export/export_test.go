package export

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-storefront/models"
	"food-storefront/store"
	"food-storefront/store/sqlstore"
	"food-storefront/store/storetest"
)

func seededStore(t *testing.T, n int) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	for i := 0; i < n; i++ {
		status := models.StatusDelivered
		if i%2 == 1 {
			status = models.StatusPending
		}
		require.NoError(t, s.CreateOrder(context.Background(), storetest.Order(models.NewID(), models.NewID(), status)))
	}
	return s
}

func countLines(t *testing.T, r io.Reader) int {
	t.Helper()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
	}
	require.NoError(t, sc.Err())
	return n
}

func TestOrdersSpansBatches(t *testing.T) {
	s := seededStore(t, batchSize+5)

	var buf bytes.Buffer
	n, err := Orders(context.Background(), s, storeFilter(""), &buf)
	require.NoError(t, err)
	assert.Equal(t, batchSize+5, n)
	assert.Equal(t, batchSize+5, countLines(t, &buf))
}

func TestOrdersByStatusToFile(t *testing.T) {
	s := seededStore(t, 6)
	dir := t.TempDir()

	n, err := ToSink(context.Background(), s, storeFilter(models.StatusDelivered), FileSinkFactory{Dir: dir}, "out/delivered.ndjson")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := os.Open(filepath.Join(dir, "out", "delivered.ndjson"))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 3, countLines(t, f))
}

type fakeS3 struct {
	bucket, key string
	body        []byte
	err         error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket, f.key = aws.ToString(in.Bucket), aws.ToString(in.Key)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3SinkUploadsOnClose(t *testing.T) {
	s := seededStore(t, 4)
	client := &fakeS3{}
	factory := NewS3SinkFactoryWithClient(context.Background(), client, "exports")

	n, err := ToSink(context.Background(), s, storeFilter(""), factory, "orders/all.ndjson")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "exports", client.bucket)
	assert.Equal(t, "orders/all.ndjson", client.key)
	assert.Equal(t, 4, countLines(t, bytes.NewReader(client.body)))
}

func TestS3SinkUploadFailure(t *testing.T) {
	s := seededStore(t, 1)
	factory := NewS3SinkFactoryWithClient(context.Background(), &fakeS3{err: errors.New("access denied")}, "exports")
	_, err := ToSink(context.Background(), s, storeFilter(""), factory, "x.ndjson")
	assert.ErrorContains(t, err, "access denied")
}

func TestS3SinkRequiresBucket(t *testing.T) {
	_, err := NewS3SinkFactoryWithClient(context.Background(), &fakeS3{}, "").NewSink("x")
	assert.Error(t, err)
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "exports/orders-delivered-20240101.ndjson", ObjectName("exports", models.StatusDelivered, "20240101"))
	assert.Equal(t, "orders-20240101.ndjson", ObjectName("", "", "20240101"))
}

func storeFilter(status models.OrderStatus) store.OrderFilter {
	return store.OrderFilter{Status: status}
}
