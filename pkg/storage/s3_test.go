package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 keeps objects in memory, keyed by bucket/key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	failPut error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Prefix)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out.Contents = append(out.Contents, types.Object{
				Key: aws.String(strings.TrimPrefix(k, aws.ToString(in.Bucket)+"/")),
			})
		}
	}
	return out, nil
}

func TestS3Storage_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := NewS3Storage(fake, "bucket", WithS3Prefix("prefs/"))

	if _, ok, err := s.GetItem("theme"); ok || err != nil {
		t.Fatalf("GetItem on missing object = ok=%v err=%v", ok, err)
	}

	if err := s.SetItem("theme", `"dark"`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	if _, ok := fake.objects["bucket/prefs/theme"]; !ok {
		t.Fatalf("object not stored under prefix: %v", fake.objects)
	}

	v, ok, err := s.GetItem("theme")
	if err != nil || !ok || v != `"dark"` {
		t.Fatalf("GetItem = %q, %v, %v", v, ok, err)
	}

	if err := s.RemoveItem("theme"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if _, ok, _ := s.GetItem("theme"); ok {
		t.Fatal("object still present after RemoveItem")
	}
}

func TestS3Storage_KeysAndClear(t *testing.T) {
	fake := newFakeS3()
	fake.objects["bucket/other/x"] = "1"
	s := NewS3Storage(fake, "bucket", WithS3Prefix("prefs/"))
	_ = s.SetItem("a", "1")
	_ = s.SetItem("b", "2")

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Keys = %v, want [a b]", keys)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(fake.objects) != 1 {
		t.Fatalf("Clear removed objects outside the prefix: %v", fake.objects)
	}
}

func TestS3Storage_WrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	fake := newFakeS3()
	fake.failPut = boom
	s := NewS3Storage(fake, "bucket")

	err := s.SetItem("k", "v")
	if !errors.Is(err, boom) {
		t.Fatalf("SetItem err = %v, want wrapped boom", err)
	}
}
