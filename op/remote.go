package op

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nickyhof/TypedSQL/core"
)

// RemoteConfig holds S3 settings. Empty fields fall back to the default
// AWS credential chain and region.
type RemoteConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string // S3-compatible endpoint, addressed path-style
}

type locationKind int

const (
	localLocation locationKind = iota
	httpLocation
	s3Location
)

// location is a parsed CSV source or destination.
type location struct {
	kind   locationKind
	path   string // file path or HTTP URL
	bucket string
	key    string
}

func parseLocation(raw string) (location, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return location{kind: localLocation, path: raw}, nil
	}

	switch strings.ToLower(scheme) {
	case "file":
		return location{kind: localLocation, path: rest}, nil
	case "http", "https":
		return location{kind: httpLocation, path: raw}, nil
	case "s3":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return location{}, fmt.Errorf("%w: S3 location needs a bucket and a key: %s", core.ErrInvalidArgument, raw)
		}
		return location{kind: s3Location, bucket: bucket, key: key}, nil
	default:
		return location{}, fmt.Errorf("%w: unsupported scheme %s", core.ErrInvalidArgument, scheme)
	}
}

func (l location) String() string {
	if l.kind == s3Location {
		return "s3://" + l.bucket + "/" + l.key
	}
	return l.path
}

// openReader opens raw for reading. Missing files and objects fail with
// core.ErrNotFound, transport failures with core.ErrStore.
func openReader(raw string, cfg *RemoteConfig) (io.ReadCloser, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return nil, err
	}

	switch loc.kind {
	case httpLocation:
		return openHTTP(loc)
	case s3Location:
		return openS3(loc, cfg)
	default:
		f, err := os.Open(loc.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, loc)
		}
		return f, err
	}
}

// createWriter opens raw for writing. HTTP locations are read-only.
func createWriter(raw string, cfg *RemoteConfig) (io.WriteCloser, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return nil, err
	}

	switch loc.kind {
	case httpLocation:
		return nil, fmt.Errorf("%w: cannot write to %s", core.ErrInvalidArgument, loc)
	case s3Location:
		client, err := s3Client(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		w, err := newSpoolWriter(func(body io.ReadSeeker) error {
			_, err := client.PutObject(context.Background(), &s3.PutObjectInput{
				Bucket:      aws.String(loc.bucket),
				Key:         aws.String(loc.key),
				Body:        body,
				ContentType: aws.String("text/csv"),
			})
			if err != nil {
				return fmt.Errorf("%w: upload %s: %w", core.ErrStore, loc, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return os.Create(loc.path)
	}
}

var httpClient = &http.Client{Timeout: 5 * time.Minute}

func openHTTP(loc location) (io.ReadCloser, error) {
	resp, err := httpClient.Get(loc.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStore, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, loc)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", core.ErrStore, loc, resp.Status)
	}
}

func s3Client(ctx context.Context, cfg *RemoteConfig) (*s3.Client, error) {
	var c RemoteConfig
	if cfg != nil {
		c = *cfg
	}

	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: AWS config: %w", core.ErrStore, err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func openS3(loc location, cfg *RemoteConfig) (io.ReadCloser, error) {
	ctx := context.Background()
	client, err := s3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.bucket),
		Key:    aws.String(loc.key),
	})
	var missing *types.NoSuchKey
	if errors.As(err, &missing) {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", core.ErrStore, loc, err)
	}
	return resp.Body, nil
}

// spoolWriter collects a CSV stream in a temporary file and hands the file
// to upload on Close. The upload needs a seekable body of known length.
type spoolWriter struct {
	file   *os.File
	upload func(io.ReadSeeker) error
	closed bool
}

func newSpoolWriter(upload func(io.ReadSeeker) error) (*spoolWriter, error) {
	f, err := os.CreateTemp("", "typedsql-*.csv")
	if err != nil {
		return nil, err
	}
	return &spoolWriter{file: f, upload: upload}, nil
}

func (w *spoolWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.file.Write(p)
}

func (w *spoolWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer os.Remove(w.file.Name())

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return errors.Join(err, w.file.Close())
	}
	return errors.Join(w.upload(w.file), w.file.Close())
}
