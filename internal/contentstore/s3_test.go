package contentstore

import "testing"

func TestNewS3(t *testing.T) {
	if _, err := NewS3(S3Options{Endpoint: "localhost:9000"}); err == nil {
		t.Fatal("NewS3() without bucket should fail")
	}

	s, err := NewS3(S3Options{Endpoint: "localhost:9000", Bucket: "workflows", AccessKey: "a", SecretKey: "b"})
	if err != nil {
		t.Fatalf("NewS3() error: %v", err)
	}
	if s.bucket != "workflows" {
		t.Errorf("bucket = %q", s.bucket)
	}
}
