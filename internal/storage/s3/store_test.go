package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/alikhantareen/natural-language-query-finder/internal/storage"
)

func TestPutUsesPrefixAndNormalizedKey(t *testing.T) {
	fake := &fakeClient{objects: map[string][]byte{}}
	store, err := NewWithClient("nlq-history", "nlq/prod", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}

	_, err = store.Put(context.Background(), "/history/abc.parquet", bytes.NewBufferString("abc"), 3, storage.PutOptions{ContentType: "application/vnd.apache.parquet"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if fake.lastPutBucket != "nlq-history" {
		t.Fatalf("bucket = %q", fake.lastPutBucket)
	}
	if fake.lastPutKey != "nlq/prod/history/abc.parquet" {
		t.Fatalf("key = %q", fake.lastPutKey)
	}
	if fake.lastContentType != "application/vnd.apache.parquet" {
		t.Fatalf("content type = %q", fake.lastContentType)
	}
}

func TestGetReadsBackStoredObject(t *testing.T) {
	fake := &fakeClient{objects: map[string][]byte{"history/abc.parquet": []byte("payload")}}
	store, err := NewWithClient("nlq-history", "", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	reader, err := store.Get(context.Background(), "history/abc.parquet")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = reader.Close() }()
	body, _ := io.ReadAll(reader)
	if string(body) != "payload" {
		t.Fatalf("body = %q", body)
	}

	if _, err := store.Get(context.Background(), "history/missing.parquet"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrObjectNotFound", err)
	}
}

func TestPutRejectsPathTraversal(t *testing.T) {
	store, err := NewWithClient("nlq-history", "", &fakeClient{})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	_, err = store.Put(context.Background(), "../secrets.txt", bytes.NewBufferString("x"), 1, storage.PutOptions{})
	if err == nil {
		t.Fatal("expected path traversal validation error")
	}
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	fake := &fakeClient{bucketExists: false}
	store, err := NewWithClient("nlq-history", "", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if err := store.ensureBucket(context.Background(), "us-east-1"); err != nil {
		t.Fatalf("ensureBucket() error = %v", err)
	}
	if !fake.createBucketCalled {
		t.Fatal("expected CreateBucket to be called")
	}
}

func TestReadyRequiresExistingBucket(t *testing.T) {
	fake := &fakeClient{bucketExists: false}
	store, err := NewWithClient("nlq-history", "", fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if err := store.Ready(context.Background()); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("Ready() error = %v", err)
	}
	fake.bucketExists = true
	if err := store.Ready(context.Background()); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}
}

func TestParseEndpoint(t *testing.T) {
	endpoint, secure, err := parseEndpoint("https://minio.example.com", false)
	if err != nil {
		t.Fatalf("parseEndpoint() error = %v", err)
	}
	if endpoint != "minio.example.com" || !secure {
		t.Fatalf("endpoint/secure = %q/%v", endpoint, secure)
	}
	endpoint, secure, err = parseEndpoint("localhost:9000", false)
	if err != nil || endpoint != "localhost:9000" || secure {
		t.Fatalf("parseEndpoint() = %q/%v/%v", endpoint, secure, err)
	}
}

type fakeClient struct {
	objects            map[string][]byte
	lastPutBucket      string
	lastPutKey         string
	lastContentType    string
	bucketExists       bool
	createBucketCalled bool
}

func (f *fakeClient) Put(_ context.Context, bucket, key string, reader io.Reader, size int64, contentType string) (storage.ObjectInfo, error) {
	f.lastPutBucket = bucket
	f.lastPutKey = key
	f.lastContentType = contentType
	body, _ := io.ReadAll(reader)
	if f.objects != nil {
		f.objects[key] = body
	}
	return storage.ObjectInfo{Key: key, Size: size, ETag: "etag-1"}, nil
}

func (f *fakeClient) Get(_ context.Context, _, key string) (io.ReadCloser, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (f *fakeClient) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeClient) CreateBucket(_ context.Context, _, _ string) error {
	f.createBucketCalled = true
	return nil
}
