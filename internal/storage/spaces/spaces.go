package spaces

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"image-stylizer/internal/storage"
)

// Provider implements an S3 compatible image storage, such as digitalocean spaces
type Provider struct {
	spaces s3iface.S3API
	space  string
}

// New returns a new Provider instance
func New(space, endpoint, accessKey, secretKey string, forcePathStyle bool) (*Provider, error) {
	spacesSession, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String("us-east-1"), // Needs to be us-east-1 for Spaces, or it'll fail
		S3ForcePathStyle: aws.Bool(forcePathStyle),
	})
	if err != nil {
		return nil, err
	}

	spaces := s3.New(spacesSession)

	// Fail early on bad credentials or a missing space
	if _, err := spaces.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(space)}); err != nil {
		return nil, err
	}

	return NewWithClient(spaces, space), nil
}

// NewWithClient returns a Provider using an existing S3 client
func NewWithClient(client s3iface.S3API, space string) *Provider {
	return &Provider{
		spaces: client,
		space:  space,
	}
}

// Get returns the image data for an image id
func (p *Provider) Get(ctx context.Context, id string) ([]byte, error) {
	if !storage.ValidID(id) {
		return nil, storage.ErrInvalidID
	}

	for _, ext := range storage.Extensions {
		data, err := p.get(ctx, id+ext)
		if err == nil {
			return data, nil
		}

		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			continue
		}
		return nil, err
	}

	return nil, storage.ErrNotFound
}

func (p *Provider) get(ctx context.Context, key string) ([]byte, error) {
	object := s3.GetObjectInput{
		Bucket: aws.String(p.space),
		Key:    aws.String(key),
	}

	output, err := p.spaces.GetObjectWithContext(ctx, &object)
	if err != nil {
		return nil, err
	}
	defer output.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, output.Body); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
