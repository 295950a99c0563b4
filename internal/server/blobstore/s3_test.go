package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/anveshm/vidtube/internal/common"
	sc "github.com/anveshm/vidtube/internal/server/config"
)

func newTestStore() *S3Store {
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000/",
		S3Bucket:       "media",
	}
	return NewS3Store(cfg)
}

func stubClient(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000/" {
			t.Fatalf("BaseEndpoint not set: %+v", opts.BaseEndpoint)
		}
		return &s3.Client{}
	}
}

func TestRandomStorageKey_KeepsExtensionAndIsUnique(t *testing.T) {
	a := randomStorageKey("avatar.png")
	b := randomStorageKey("avatar.png")

	if !strings.HasPrefix(a, "users/") || !strings.HasSuffix(a, ".png") {
		t.Fatalf("unexpected key shape: %q", a)
	}
	if a == b {
		t.Fatalf("two keys are identical: %q", a)
	}
	if c := randomStorageKey("noext"); strings.Contains(c, ".") {
		t.Fatalf("expected no extension in %q", c)
	}
}

func TestUpload_Success(t *testing.T) {
	stubClient(t)
	store := newTestStore()

	var gotBucket, gotKey string
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotBucket = *in.Bucket
		gotKey = *in.Key
		if _, err := io.ReadAll(in.Body); err != nil {
			t.Fatalf("reading body: %v", err)
		}
		return &s3.PutObjectOutput{}, nil
	}

	ref, err := store.Upload(context.Background(), strings.NewReader("bytes"), "cover.jpg")
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if gotBucket != "media" {
		t.Fatalf("bucket mismatch: %q", gotBucket)
	}
	if ref.Key != gotKey {
		t.Fatalf("ref key %q differs from uploaded key %q", ref.Key, gotKey)
	}
	want := "http://127.0.0.1:9000/media/" + gotKey
	if ref.URL != want {
		t.Fatalf("url mismatch: got %q want %q", ref.URL, want)
	}
}

func TestUpload_PutError(t *testing.T) {
	stubClient(t)
	store := newTestStore()

	origPut := putObject
	t.Cleanup(func() { putObject = origPut })
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("storage down")
	}

	_, err := store.Upload(context.Background(), strings.NewReader("bytes"), "cover.jpg")
	if !errors.Is(err, common.ErrorUpload) {
		t.Fatalf("want common.ErrorUpload, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	stubClient(t)
	store := newTestStore()

	var gotKey string
	origDel := deleteObject
	t.Cleanup(func() { deleteObject = origDel })
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		gotKey = *in.Key
		return &s3.DeleteObjectOutput{}, nil
	}

	if err := store.Delete(context.Background(), "users/2026/9/1/k.png"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if gotKey != "users/2026/9/1/k.png" {
		t.Fatalf("key mismatch: %q", gotKey)
	}
}

func TestDelete_Error(t *testing.T) {
	stubClient(t)
	store := newTestStore()

	origDel := deleteObject
	t.Cleanup(func() { deleteObject = origDel })
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return nil, errors.New("nope")
	}

	if err := store.Delete(context.Background(), "k"); err == nil {
		t.Fatalf("expected error")
	}
}
